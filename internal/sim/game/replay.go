package game

import (
	"errors"
	"fmt"
)

var ErrReplayGap = errors.New("tick log gap")

type ReplayStats struct {
	Replayed int
	Checked  int
	Skipped  int
}

// Replay re-applies logged ticks on top of s and checks each resulting digest
// from verifyFrom on. Entries older than s are skipped, as is a pause-time
// batch at s's own tick that the save already contains. toTick 0 means no
// upper bound.
func Replay(s State, entries []TickLogEntry, verifyFrom, toTick uint64) (State, ReplayStats, error) {
	var st ReplayStats
	for _, e := range entries {
		if toTick != 0 && e.Tick > toTick {
			break
		}
		if e.Tick < s.Ticks {
			st.Skipped++
			continue
		}
		if e.Tick > s.Ticks {
			return s, st, fmt.Errorf("%w: at tick %d, next entry is %d", ErrReplayGap, s.Ticks, e.Tick)
		}
		if !e.Stepped && e.Digest == Digest(s) {
			st.Skipped++
			continue
		}

		for _, c := range e.Commands {
			Apply(s, c)
		}
		if e.Stepped {
			s, _ = Step(s)
			if len(e.Names) > 0 {
				s.Company.RenameCandidates(e.Names)
			}
		}
		st.Replayed++

		if e.Tick >= verifyFrom {
			st.Checked++
			if got := Digest(s); got != e.Digest {
				return s, st, fmt.Errorf("%w at tick %d: got=%s want=%s", ErrDigestMismatch, e.Tick, got, e.Digest)
			}
		}
	}
	return s, st, nil
}
