// Package company is the top-level aggregate: facilities, staff, money and
// alerts, plus the per-tick orchestration that drives them.
package company

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"growsim.app/internal/sim/catalogs"
	"growsim.app/internal/sim/facility"
	"growsim.app/internal/sim/finance"
	"growsim.app/internal/sim/rng"
	"growsim.app/internal/sim/staff"
	"growsim.app/internal/sim/tasks"
	"growsim.app/internal/sim/weather"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrZoneNotReady    = errors.New("zone is not ready for planting")
)

// idNamespace scopes every entity id to this game.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://growsim.app/entities"))

// Company serializes to plain JSON. Dependencies and the per-tick task view are
// reattached by New or Restore.
type Company struct {
	finance.Account

	Seed           int64                               `json:"seed"`
	LastTick       uint64                              `json:"last_tick"`
	Structures     map[string]*facility.Structure      `json:"structures"`
	Employees      map[string]*staff.Employee          `json:"employees"`
	JobMarket      []*staff.Employee                   `json:"job_market_candidates"`
	CustomStrains  map[string]catalogs.StrainBlueprint `json:"custom_strains"`
	Alerts         []Alert                             `json:"alerts"`
	AlertCooldowns map[string]uint64                   `json:"alert_cooldowns"`
	OvertimePolicy staff.OvertimePolicy                `json:"overtime_policy"`
	NextID         uint64                              `json:"next_id"`
	ActionSeq      uint64                              `json:"action_seq"`

	cfg     Config
	cats    *catalogs.Catalogs
	names   staff.NameSource
	weather *weather.Model
	tasks   map[string][]tasks.Task
	report  *TickReport
}

func New(seed int64, cfg Config, cats *catalogs.Catalogs, names staff.NameSource) (*Company, error) {
	cfg.applyDefaults()
	c := &Company{
		Account:        *finance.NewAccount(cfg.InitialCapital),
		Seed:           seed,
		OvertimePolicy: cfg.OvertimePolicy,
	}
	if err := c.attach(cfg, cats, names); err != nil {
		return nil, err
	}
	c.JobMarket = staff.GenerateCandidates(c.actionRNG(), cfg.JobMarketSize, func() string { return c.newID("employee") }, nil)
	return c, nil
}

// Restore rehydrates a decoded company and reattaches its dependencies.
func Restore(c *Company, cfg Config, cats *catalogs.Catalogs, names staff.NameSource) (*Company, error) {
	if c == nil {
		return nil, fmt.Errorf("restore: nil company")
	}
	cfg.applyDefaults()
	c.Account.Restore()
	if !c.OvertimePolicy.Valid() {
		c.OvertimePolicy = cfg.OvertimePolicy
	}
	for _, s := range c.Structures {
		s.Restore()
	}
	for _, e := range c.Employees {
		e.Restore()
	}
	for _, e := range c.JobMarket {
		e.Restore()
	}
	if err := c.attach(cfg, cats, names); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload decodes a company encoded from c and gives it c's collaborators.
func (c *Company) Reload(body []byte) (*Company, error) {
	var back Company
	if err := json.Unmarshal(body, &back); err != nil {
		return nil, fmt.Errorf("decode company: %w", err)
	}
	return Restore(&back, c.cfg, c.cats, c.names)
}

func (c *Company) attach(cfg Config, cats *catalogs.Catalogs, names staff.NameSource) error {
	if !cats.Loaded() {
		return catalogs.ErrNotLoaded
	}
	if c.Structures == nil {
		c.Structures = map[string]*facility.Structure{}
	}
	if c.Employees == nil {
		c.Employees = map[string]*staff.Employee{}
	}
	if c.JobMarket == nil {
		c.JobMarket = []*staff.Employee{}
	}
	if c.CustomStrains == nil {
		c.CustomStrains = map[string]catalogs.StrainBlueprint{}
	}
	if c.Alerts == nil {
		c.Alerts = []Alert{}
	}
	if c.AlertCooldowns == nil {
		c.AlertCooldowns = map[string]uint64{}
	}
	c.cfg = cfg
	c.cats = cats
	c.names = names
	c.weather = weather.New(c.Seed, cfg.Ambient, cfg.WeatherAmplitudeC)
	c.tasks = map[string][]tasks.Task{}
	return nil
}

func (c *Company) Config() Config { return c.cfg }

// newID derives a stable id from (seed, kind, counter).
func (c *Company) newID(kind string) string {
	c.NextID++
	return uuid.NewSHA1(idNamespace, []byte(fmt.Sprintf("%d:%s:%d", c.Seed, kind, c.NextID))).String()
}

// actionRNG yields a fresh generator for a player action so it never shifts
// the tick stream.
func (c *Company) actionRNG() *rng.RNG {
	c.ActionSeq++
	return rng.ForAction(c.Seed, c.LastTick, c.ActionSeq)
}

// Blueprints resolves strains from the bred collection first, then the
// catalogs.
func (c *Company) Blueprints() facility.Blueprints { return blueprints{c: c} }

type blueprints struct{ c *Company }

func (b blueprints) Strain(id string) (catalogs.StrainBlueprint, error) {
	if s, ok := b.c.CustomStrains[id]; ok {
		return s, nil
	}
	return b.c.cats.Strain(id)
}

func (b blueprints) Method(id string) (catalogs.CultivationMethod, error) {
	return b.c.cats.Method(id)
}

// Tasks returns the task list generated for a structure this tick.
func (c *Company) Tasks(structureID string) []tasks.Task { return c.tasks[structureID] }

func (c *Company) SortedStructures() []*facility.Structure {
	ids := make([]string, 0, len(c.Structures))
	for id := range c.Structures {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*facility.Structure, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.Structures[id])
	}
	return out
}

func (c *Company) SortedEmployees() []*staff.Employee {
	ids := make([]string, 0, len(c.Employees))
	for id := range c.Employees {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*staff.Employee, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.Employees[id])
	}
	return out
}

func (c *Company) structure(id string) (*facility.Structure, error) {
	s, ok := c.Structures[id]
	if !ok {
		return nil, fmt.Errorf("structure %s: %w", id, ErrNotFound)
	}
	return s, nil
}

func (c *Company) zone(structureID, zoneID string) (*facility.Structure, facility.ZoneRef, error) {
	s, err := c.structure(structureID)
	if err != nil {
		return nil, facility.ZoneRef{}, err
	}
	ref, ok := s.FindZone(zoneID)
	if !ok {
		return nil, facility.ZoneRef{}, fmt.Errorf("zone %s: %w", zoneID, ErrNotFound)
	}
	return s, ref, nil
}

func (c *Company) employee(id string) (*staff.Employee, error) {
	e, ok := c.Employees[id]
	if !ok {
		return nil, fmt.Errorf("employee %s: %w", id, ErrNotFound)
	}
	return e, nil
}
