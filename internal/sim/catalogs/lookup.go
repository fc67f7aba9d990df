package catalogs

import (
	"errors"
	"fmt"
	"sort"

	"github.com/agnivade/levenshtein"
)

var (
	ErrNotLoaded = errors.New("catalogs: queried before load")
	ErrUnknown   = errors.New("catalogs: unknown blueprint")
)

// UnknownError reports a missing id and, when one is close enough, the id
// the caller most likely meant.
type UnknownError struct {
	Kind       string
	ID         string
	Suggestion string
}

func (e *UnknownError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown %s %q (did you mean %q?)", e.Kind, e.ID, e.Suggestion)
	}
	return fmt.Sprintf("unknown %s %q", e.Kind, e.ID)
}

func (e *UnknownError) Unwrap() error { return ErrUnknown }

func unknown[T any](kind, id string, known map[string]T) error {
	ids := make([]string, 0, len(known))
	for k := range known {
		ids = append(ids, k)
	}
	sort.Strings(ids)
	return &UnknownError{Kind: kind, ID: id, Suggestion: closest(id, ids)}
}

func closest(id string, candidates []string) string {
	best := ""
	bestDist := -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(id, c)
		if d > suggestLimit(len(c)) {
			continue
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func suggestLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

func (c *Catalogs) Structure(id string) (StructureBlueprint, error) {
	if !c.Loaded() {
		return StructureBlueprint{}, ErrNotLoaded
	}
	s, ok := c.Structures.ByID[id]
	if !ok {
		return s, unknown("structure", id, c.Structures.ByID)
	}
	return s, nil
}

func (c *Catalogs) Strain(id string) (StrainBlueprint, error) {
	if !c.Loaded() {
		return StrainBlueprint{}, ErrNotLoaded
	}
	s, ok := c.Strains.ByID[id]
	if !ok {
		return s, unknown("strain", id, c.Strains.ByID)
	}
	return s, nil
}

func (c *Catalogs) Device(id string) (DeviceBlueprint, error) {
	if !c.Loaded() {
		return DeviceBlueprint{}, ErrNotLoaded
	}
	d, ok := c.Devices.ByID[id]
	if !ok {
		return d, unknown("device", id, c.Devices.ByID)
	}
	return d, nil
}

func (c *Catalogs) Method(id string) (CultivationMethod, error) {
	if !c.Loaded() {
		return CultivationMethod{}, ErrNotLoaded
	}
	m, ok := c.Methods.ByID[id]
	if !ok {
		return m, unknown("cultivation method", id, c.Methods.ByID)
	}
	return m, nil
}

func (c *Catalogs) Task(taskType string) (TaskDefinition, error) {
	if !c.Loaded() {
		return TaskDefinition{}, ErrNotLoaded
	}
	t, ok := c.Tasks.ByType[taskType]
	if !ok {
		return t, unknown("task definition", taskType, c.Tasks.ByType)
	}
	return t, nil
}

// DevicePrice returns the zero price for devices missing from the price table.
func (c *Catalogs) DevicePrice(id string) (DevicePrice, error) {
	if !c.Loaded() {
		return DevicePrice{}, ErrNotLoaded
	}
	return c.Prices.Devices[id], nil
}

// StrainPrice falls back to the default entry, which is what bred strains use.
func (c *Catalogs) StrainPrice(id string) (StrainPrice, error) {
	if !c.Loaded() {
		return StrainPrice{}, ErrNotLoaded
	}
	if p, ok := c.Prices.Strains[id]; ok {
		return p, nil
	}
	return c.Prices.DefaultStrain, nil
}

func (c *Catalogs) Utility() (UtilityPrices, error) {
	if !c.Loaded() {
		return UtilityPrices{}, ErrNotLoaded
	}
	return c.Prices.Utility, nil
}

// NewForTest builds a loaded repository from in-memory blueprints.
func NewForTest(structures []StructureBlueprint, strains []StrainBlueprint, devices []DeviceBlueprint, methods []CultivationMethod, prices Prices, tasks []TaskDefinition) *Catalogs {
	c := &Catalogs{loaded: true}
	c.Structures.ByID = map[string]StructureBlueprint{}
	for _, s := range structures {
		c.Structures.ByID[s.ID] = s
	}
	c.Strains.ByID = map[string]StrainBlueprint{}
	for _, s := range strains {
		c.Strains.ByID[s.ID] = s
	}
	c.Devices.ByID = map[string]DeviceBlueprint{}
	for _, d := range devices {
		c.Devices.ByID[d.ID] = d
	}
	c.Methods.ByID = map[string]CultivationMethod{}
	for _, m := range methods {
		c.Methods.ByID[m.ID] = m
	}
	c.Prices.Prices = prices
	if c.Prices.Devices == nil {
		c.Prices.Devices = map[string]DevicePrice{}
	}
	if c.Prices.Strains == nil {
		c.Prices.Strains = map[string]StrainPrice{}
	}
	c.Tasks.ByType = map[string]TaskDefinition{}
	for _, t := range tasks {
		c.Tasks.ByType[t.Type] = t
	}
	return c
}
