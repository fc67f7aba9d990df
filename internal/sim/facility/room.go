package facility

import (
	"fmt"
	"math"
	"sort"
)

type Purpose string

const (
	PurposeGrowroom  Purpose = "growroom"
	PurposeBreakroom Purpose = "breakroom"
	PurposeSalesroom Purpose = "salesroom"
	PurposeLab       Purpose = "lab"
	PurposeStorage   Purpose = "storage"
)

func (p Purpose) Valid() bool {
	switch p {
	case PurposeGrowroom, PurposeBreakroom, PurposeSalesroom, PurposeLab, PurposeStorage:
		return true
	}
	return false
}

// AreaPerRestingEmployee is the breakroom floor one resting employee needs.
const AreaPerRestingEmployee = 4.0

// area comparisons tolerate float noise from repeated additions
const areaEpsilon = 1e-9

// ValidArea rejects zero, negative, NaN and infinite areas.
func ValidArea(area float64) bool { return area > 0 && !math.IsInf(area, 1) }

// fits is written so that NaN never fits.
func fits(area, free float64) bool { return area <= free+areaEpsilon }

type Room struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	AreaM2  float64          `json:"area_m2"`
	Purpose Purpose          `json:"purpose"`
	Zones   map[string]*Zone `json:"zones"`
}

func NewRoom(id, name string, area float64, purpose Purpose) (*Room, error) {
	if !ValidArea(area) {
		return nil, ErrInvalidArea
	}
	if !purpose.Valid() {
		return nil, fmt.Errorf("unknown room purpose %q", purpose)
	}
	return &Room{ID: id, Name: name, AreaM2: area, Purpose: purpose, Zones: map[string]*Zone{}}, nil
}

func (r *Room) UsedArea() float64 {
	sum := 0.0
	for _, z := range r.Zones {
		sum += z.AreaM2
	}
	return sum
}

func (r *Room) FreeArea() float64 { return r.AreaM2 - r.UsedArea() }

// CanAddZone reports why a zone of the given area would not fit.
func (r *Room) CanAddZone(area float64) error {
	if r.Purpose != PurposeGrowroom {
		return fmt.Errorf("%w: %s", ErrZonesNotAllowed, r.Purpose)
	}
	if !ValidArea(area) {
		return ErrInvalidArea
	}
	if !fits(area, r.FreeArea()) {
		return fmt.Errorf("%w: zone %.2fm2, free %.2fm2", ErrInsufficientArea, area, r.FreeArea())
	}
	return nil
}

// AddZone attaches z if the room has enough free floor.
func (r *Room) AddZone(z *Zone) error {
	if err := r.CanAddZone(z.AreaM2); err != nil {
		return err
	}
	r.Zones[z.ID] = z
	return nil
}

func (r *Room) DeleteZone(id string) error {
	if _, ok := r.Zones[id]; !ok {
		return fmt.Errorf("zone %s: %w", id, ErrNotFound)
	}
	delete(r.Zones, id)
	return nil
}

// RestCapacity is floor(area/4) for breakrooms and zero otherwise.
func (r *Room) RestCapacity() int {
	if r.Purpose != PurposeBreakroom {
		return 0
	}
	return int(math.Floor(r.AreaM2/AreaPerRestingEmployee + areaEpsilon))
}

func (r *Room) SortedZones() []*Zone {
	ids := make([]string, 0, len(r.Zones))
	for id := range r.Zones {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*Zone, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.Zones[id])
	}
	return out
}

func (r *Room) restore() {
	if r.Zones == nil {
		r.Zones = map[string]*Zone{}
	}
	for _, z := range r.Zones {
		z.Restore()
	}
}
