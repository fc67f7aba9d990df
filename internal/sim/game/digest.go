package game

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrDigestMismatch = errors.New("digest mismatch")

// Digest hashes the canonical JSON of the state. encoding/json sorts map keys,
// so equal states hash equally. It panics on a state that cannot be encoded
// (a NaN somewhere), which the loop treats as a failed tick.
func Digest(s State) string {
	body, err := json.Marshal(s.Company)
	if err != nil {
		panic(fmt.Sprintf("state digest: %v", err))
	}
	return digestOf(s.Ticks, s.Seed, body)
}

func digestOf(ticks uint64, seed int64, company []byte) string {
	h := sha256.New()
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], ticks)
	h.Write(tmp[:])
	binary.LittleEndian.PutUint64(tmp[:], uint64(seed))
	h.Write(tmp[:])
	h.Write(company)
	return hex.EncodeToString(h.Sum(nil))
}
