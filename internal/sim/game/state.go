// Package game owns the top-level game state and the driver that advances it
// one tick at a time.
package game

import (
	"encoding/json"
	"fmt"

	"growsim.app/internal/persistence/snapshot"
	"growsim.app/internal/sim/catalogs"
	"growsim.app/internal/sim/company"
	"growsim.app/internal/sim/staff"
)

// State is the whole game. Ticks counts completed ticks and is also the index
// of the next tick to run.
type State struct {
	Ticks   uint64           `json:"ticks"`
	Seed    int64            `json:"seed"`
	Company *company.Company `json:"company"`
}

// Deps are the collaborators a company needs that are not part of its state.
type Deps struct {
	Config   company.Config
	Catalogs *catalogs.Catalogs
	Names    staff.NameSource
}

func New(seed int64, d Deps) (State, error) {
	c, err := company.New(seed, d.Config, d.Catalogs, d.Names)
	if err != nil {
		return State{}, err
	}
	return State{Seed: seed, Company: c}, nil
}

// Step runs tick s.Ticks. The company is mutated in place; the returned State
// replaces s at the top level.
func Step(s State) (State, company.TickReport) {
	rep := s.Company.Tick(s.Ticks)
	return State{Ticks: s.Ticks + 1, Seed: s.Seed, Company: s.Company}, rep
}

func (s State) Day() uint64 { return s.Ticks / company.TicksPerDay }

func (s State) HourOfDay() int { return int(s.Ticks % company.TicksPerDay) }

// Save captures a settled state. Call it only between ticks.
func Save(s State, gameID string) (snapshot.SaveV1, error) {
	body, err := json.Marshal(s.Company)
	if err != nil {
		return snapshot.SaveV1{}, fmt.Errorf("encode company: %w", err)
	}
	return snapshot.SaveV1{
		Header: snapshot.Header{
			Version: snapshot.Version,
			GameID:  gameID,
			Tick:    s.Ticks,
			Seed:    s.Seed,
			Digest:  digestOf(s.Ticks, s.Seed, body),
		},
		Company: body,
	}, nil
}

// Load rebuilds a State from a save and verifies its digest.
func Load(save snapshot.SaveV1, d Deps) (State, error) {
	if save.Header.Digest != "" {
		if got := digestOf(save.Header.Tick, save.Header.Seed, save.Company); got != save.Header.Digest {
			return State{}, fmt.Errorf("%w: save digest %s, computed %s", ErrDigestMismatch, save.Header.Digest, got)
		}
	}
	var c company.Company
	if err := json.Unmarshal(save.Company, &c); err != nil {
		return State{}, fmt.Errorf("decode company: %w", err)
	}
	restored, err := company.Restore(&c, d.Config, d.Catalogs, d.Names)
	if err != nil {
		return State{}, err
	}
	return State{Ticks: save.Header.Tick, Seed: save.Header.Seed, Company: restored}, nil
}
