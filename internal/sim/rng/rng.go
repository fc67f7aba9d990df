// Package rng is the only source of randomness for the simulation.
//
// Every stochastic decision takes a Source. Tick-scoped sources are derived
// from (world seed + tick); player actions use ForAction so they never shift
// the tick stream.
package rng

import (
	"errors"
	"fmt"
	"hash/fnv"
)

var ErrInvalidRange = errors.New("rng: max < min")

type Source interface {
	Float() float64
	Int(min, max int) int
	Chance(p float64) bool
}

// RNG is a mulberry32 generator. The zero value is a valid generator seeded with 0.
type RNG struct {
	state uint32
}

func New(seed int64) *RNG {
	return &RNG{state: uint32(seed)}
}

func ForTick(worldSeed int64, tick uint64) *RNG {
	return New(worldSeed + int64(tick))
}

func ForAction(worldSeed int64, tick, seq uint64) *RNG {
	h := fnv.New64a()
	_, _ = fmt.Fprintf(h, "action:%d:%d:%d", worldSeed, tick, seq)
	return New(int64(h.Sum64()))
}

func (r *RNG) next() uint32 {
	r.state += 0x6D2B79F5
	t := r.state
	t = (t ^ t>>15) * (t | 1)
	t ^= t + (t^t>>7)*(t|61)
	return t ^ t>>14
}

// Float returns a value in [0,1).
func (r *RNG) Float() float64 {
	return float64(r.next()) / 4294967296.0
}

// Int returns a value in [min,max], both ends inclusive. It panics when max < min.
func (r *RNG) Int(min, max int) int {
	if max < min {
		panic(fmt.Errorf("%w: Int(%d, %d)", ErrInvalidRange, min, max))
	}
	span := float64(max-min) + 1
	return min + int(r.Float()*span)
}

func (r *RNG) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return r.Float() < p
}

// State exposes the internal word so callers can persist a generator mid-stream.
func (r *RNG) State() uint32 { return r.state }
