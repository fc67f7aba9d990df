package facility

import (
	"fmt"
	"sort"

	"growsim.app/internal/sim/catalogs"
)

type Structure struct {
	ID          string           `json:"id"`
	BlueprintID string           `json:"blueprint_id"`
	Name        string           `json:"name"`
	AreaM2      float64          `json:"area_m2"`
	HeightM     float64          `json:"height_m"`
	RentPerSqm  float64          `json:"rental_cost_per_sqm_per_month"`
	Rooms       map[string]*Room `json:"rooms"`
	EmployeeIDs []string         `json:"employee_ids"`
}

func NewStructure(id string, bp catalogs.StructureBlueprint) *Structure {
	return &Structure{
		ID:          id,
		BlueprintID: bp.ID,
		Name:        bp.Name,
		AreaM2:      bp.AreaM2,
		HeightM:     bp.HeightM,
		RentPerSqm:  bp.RentalCostPerSqmPerMonth,
		Rooms:       map[string]*Room{},
		EmployeeIDs: []string{},
	}
}

func (s *Structure) Restore() {
	if s.Rooms == nil {
		s.Rooms = map[string]*Room{}
	}
	if s.EmployeeIDs == nil {
		s.EmployeeIDs = []string{}
	}
	for _, r := range s.Rooms {
		r.restore()
	}
}

func (s *Structure) UsedArea() float64 {
	sum := 0.0
	for _, r := range s.Rooms {
		sum += r.AreaM2
	}
	return sum
}

func (s *Structure) FreeArea() float64 { return s.AreaM2 - s.UsedArea() }

func (s *Structure) CanAddRoom(area float64) error {
	if !ValidArea(area) {
		return ErrInvalidArea
	}
	if !fits(area, s.FreeArea()) {
		return fmt.Errorf("%w: room %.2fm2, free %.2fm2", ErrInsufficientArea, area, s.FreeArea())
	}
	return nil
}

func (s *Structure) AddRoom(r *Room) error {
	if err := s.CanAddRoom(r.AreaM2); err != nil {
		return err
	}
	s.Rooms[r.ID] = r
	return nil
}

// RentPerTick amortizes the monthly rent over ticksPerMonth.
func (s *Structure) RentPerTick(ticksPerMonth int) float64 {
	if ticksPerMonth <= 0 {
		return 0
	}
	return s.AreaM2 * s.RentPerSqm / float64(ticksPerMonth)
}

func (s *Structure) RestCapacity() int {
	n := 0
	for _, r := range s.Rooms {
		n += r.RestCapacity()
	}
	return n
}

func (s *Structure) SortedRooms() []*Room {
	ids := make([]string, 0, len(s.Rooms))
	for id := range s.Rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*Room, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.Rooms[id])
	}
	return out
}

type ZoneRef struct {
	Room *Room
	Zone *Zone
}

// Zones walks every zone in room then zone id order.
func (s *Structure) Zones() []ZoneRef {
	var out []ZoneRef
	for _, r := range s.SortedRooms() {
		for _, z := range r.SortedZones() {
			out = append(out, ZoneRef{Room: r, Zone: z})
		}
	}
	return out
}

// FindZone locates a zone by id anywhere in the structure.
func (s *Structure) FindZone(zoneID string) (ZoneRef, bool) {
	for _, r := range s.Rooms {
		if z, ok := r.Zones[zoneID]; ok {
			return ZoneRef{Room: r, Zone: z}, true
		}
	}
	return ZoneRef{}, false
}

func (s *Structure) HasEmployee(id string) bool {
	for _, e := range s.EmployeeIDs {
		if e == id {
			return true
		}
	}
	return false
}

func (s *Structure) AttachEmployee(id string) {
	if !s.HasEmployee(id) {
		s.EmployeeIDs = append(s.EmployeeIDs, id)
	}
}

func (s *Structure) DetachEmployee(id string) {
	for i, e := range s.EmployeeIDs {
		if e == id {
			s.EmployeeIDs = append(s.EmployeeIDs[:i], s.EmployeeIDs[i+1:]...)
			return
		}
	}
}
