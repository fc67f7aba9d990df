package company

import (
	"fmt"
	"strings"

	"growsim.app/internal/sim/facility"
	"growsim.app/internal/sim/finance"
	"growsim.app/internal/sim/genetics"
	"growsim.app/internal/sim/staff"
)

// Player actions validate everything they need before touching state; a
// returned error means nothing changed.

func (c *Company) RentStructure(blueprintID string) (string, error) {
	bp, err := c.cats.Structure(blueprintID)
	if err != nil {
		return "", err
	}
	if err := c.SpendCapital(finance.CatStructures, bp.UpfrontFee); err != nil {
		return "", err
	}
	s := facility.NewStructure(c.newID("structure"), bp)
	c.Structures[s.ID] = s
	return s.ID, nil
}

func (c *Company) AddRoom(structureID, name string, area float64, purpose facility.Purpose) (string, error) {
	s, err := c.structure(structureID)
	if err != nil {
		return "", err
	}
	if !facility.ValidArea(area) {
		return "", facility.ErrInvalidArea
	}
	if !purpose.Valid() {
		return "", fmt.Errorf("%w: purpose %q", ErrInvalidArgument, purpose)
	}
	if err := s.CanAddRoom(area); err != nil {
		return "", err
	}
	r, err := facility.NewRoom(c.newID("room"), name, area, purpose)
	if err != nil {
		return "", err
	}
	if err := s.AddRoom(r); err != nil {
		return "", err
	}
	return r.ID, nil
}

// AddZone pays the method's setup cost for the zone's floor.
func (c *Company) AddZone(structureID, roomID, name string, area float64, methodID string) (string, error) {
	s, err := c.structure(structureID)
	if err != nil {
		return "", err
	}
	room, ok := s.Rooms[roomID]
	if !ok {
		return "", fmt.Errorf("room %s: %w", roomID, ErrNotFound)
	}
	if methodID == "" {
		return "", facility.ErrMissingMethod
	}
	if !facility.ValidArea(area) {
		return "", facility.ErrInvalidArea
	}
	m, err := c.cats.Method(methodID)
	if err != nil {
		return "", err
	}
	if err := room.CanAddZone(area); err != nil {
		return "", err
	}
	cost := area * m.SetupCostPerSqm
	if !c.CanAfford(cost) {
		return "", fmt.Errorf("%w: need %s", finance.ErrInsufficientCapital, money(cost))
	}
	z, err := facility.NewZone(c.newID("zone"), name, area, s.HeightM, m.ID, c.cfg.Ambient)
	if err != nil {
		return "", err
	}
	if err := room.AddZone(z); err != nil {
		return "", err
	}
	_ = c.SpendCapital(finance.CatSetup, cost)
	return z.ID, nil
}

func (c *Company) DeleteZone(structureID, zoneID string) error {
	_, ref, err := c.zone(structureID, zoneID)
	if err != nil {
		return err
	}
	return ref.Room.DeleteZone(zoneID)
}

func (c *Company) InstallDevice(structureID, zoneID, blueprintID string) (string, error) {
	_, ref, err := c.zone(structureID, zoneID)
	if err != nil {
		return "", err
	}
	bp, err := c.cats.Device(blueprintID)
	if err != nil {
		return "", err
	}
	price, err := c.cats.DevicePrice(blueprintID)
	if err != nil {
		return "", err
	}
	if err := c.SpendCapital(finance.CatDevices, price.CapitalExpenditure); err != nil {
		return "", err
	}
	d := facility.NewDevice(c.newID("device"), bp, price)
	ref.Zone.InstallDevice(d)
	return d.ID, nil
}

func (c *Company) ToggleDeviceGroup(structureID, zoneID, blueprintID string) (facility.DeviceStatus, error) {
	_, ref, err := c.zone(structureID, zoneID)
	if err != nil {
		return "", err
	}
	return ref.Zone.ToggleDeviceGroup(blueprintID)
}

func (c *Company) SetDeviceGroupTargets(structureID, zoneID, blueprintID string, set facility.GroupSetting) error {
	_, ref, err := c.zone(structureID, zoneID)
	if err != nil {
		return err
	}
	return ref.Zone.SetGroupSetting(blueprintID, set)
}

func (c *Company) SetLightCycle(structureID, zoneID string, on, off int) error {
	_, ref, err := c.zone(structureID, zoneID)
	if err != nil {
		return err
	}
	return ref.Zone.SetLightCycle(facility.LightCycle{On: on, Off: off})
}

// PlantStrain buys quantity seeds and sows them. Capacity and funds are both
// checked before any seed is drawn.
func (c *Company) PlantStrain(structureID, zoneID, strainID string, quantity int) (facility.PlantResult, error) {
	_, ref, err := c.zone(structureID, zoneID)
	if err != nil {
		return facility.PlantResult{}, err
	}
	z := ref.Zone
	if z.Status == facility.ZoneHarvested {
		return facility.PlantResult{}, ErrZoneNotReady
	}
	if quantity <= 0 {
		return facility.PlantResult{}, facility.ErrInvalidQuantity
	}
	bp := c.Blueprints()
	strain, err := bp.Strain(strainID)
	if err != nil {
		return facility.PlantResult{}, err
	}
	capacity, err := z.PlantCapacity(bp)
	if err != nil {
		return facility.PlantResult{}, err
	}
	if free := capacity - z.PlantedCount(); quantity > free {
		return facility.PlantResult{}, fmt.Errorf("%w: requested %d, free %d", facility.ErrZoneAtCapacity, quantity, free)
	}
	price, err := c.cats.StrainPrice(strain.ID)
	if err != nil {
		return facility.PlantResult{}, err
	}
	cost := float64(quantity) * price.SeedPrice
	if !c.CanAfford(cost) {
		return facility.PlantResult{}, fmt.Errorf("%w: need %s", finance.ErrInsufficientCapital, money(cost))
	}
	res, err := z.PlantStrain(strain, quantity, bp, c.newID, c.actionRNG(), c.LastTick)
	if err != nil {
		return facility.PlantResult{}, err
	}
	_ = c.SpendCapital(finance.CatSeeds, cost)
	return res, nil
}

func (c *Company) BuySupplies(structureID, zoneID string, waterL, nutrientG float64) error {
	_, ref, err := c.zone(structureID, zoneID)
	if err != nil {
		return err
	}
	if waterL < 0 || nutrientG < 0 || waterL+nutrientG == 0 {
		return fmt.Errorf("%w: supply amounts", ErrInvalidArgument)
	}
	util, err := c.cats.Utility()
	if err != nil {
		return err
	}
	cost := waterL*util.PricePerLiterWater + nutrientG*util.PricePerGramNutrients
	if err := c.SpendCapital(finance.CatSupplies, cost); err != nil {
		return err
	}
	ref.Zone.AddSupplies(waterL, nutrientG)
	return nil
}

// SetPlantingPlan stores an auto-replant plan; a nil plan clears it.
func (c *Company) SetPlantingPlan(structureID, zoneID string, plan *facility.PlantingPlan) error {
	_, ref, err := c.zone(structureID, zoneID)
	if err != nil {
		return err
	}
	if plan != nil {
		if plan.Quantity <= 0 {
			return facility.ErrInvalidQuantity
		}
		if _, err := c.Blueprints().Strain(plan.StrainID); err != nil {
			return err
		}
		p := *plan
		plan = &p
	}
	ref.Zone.Plan = plan
	return nil
}

// BreedStrain crosses two known strains into a new custom strain.
func (c *Company) BreedStrain(parentA, parentB, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: strain name required", ErrInvalidArgument)
	}
	if !genetics.ValidMutation(c.cfg.MutationFactor) {
		return "", genetics.ErrInvalidMutation
	}
	bp := c.Blueprints()
	a, err := bp.Strain(parentA)
	if err != nil {
		return "", err
	}
	b, err := bp.Strain(parentB)
	if err != nil {
		return "", err
	}
	if !c.CanAfford(c.cfg.BreedingFee) {
		return "", fmt.Errorf("%w: need %s", finance.ErrInsufficientCapital, money(c.cfg.BreedingFee))
	}
	child, err := genetics.Breed(a, b, c.newID("strain"), name, c.cfg.MutationFactor, c.actionRNG())
	if err != nil {
		return "", err
	}
	_ = c.SpendCapital(finance.CatBreeding, c.cfg.BreedingFee)
	c.CustomStrains[child.ID] = child
	return child.ID, nil
}

// Hire takes a candidate off the job market. The first day's salary is paid
// up front.
func (c *Company) Hire(candidateID, structureID string) error {
	idx := -1
	for i, e := range c.JobMarket {
		if e.ID == candidateID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("candidate %s: %w", candidateID, ErrNotFound)
	}
	if structureID != "" {
		if _, err := c.structure(structureID); err != nil {
			return err
		}
	}
	e := c.JobMarket[idx]
	if err := c.SpendCapital(finance.CatHiring, e.SalaryPerDay); err != nil {
		return err
	}
	c.JobMarket = append(c.JobMarket[:idx], c.JobMarket[idx+1:]...)
	e.LastRaiseTick = c.LastTick
	e.Status = staff.StatusIdle
	c.Employees[e.ID] = e
	if structureID != "" {
		e.StructureID = structureID
		c.Structures[structureID].AttachEmployee(e.ID)
	}
	return nil
}

func (c *Company) Fire(employeeID string) error {
	e, err := c.employee(employeeID)
	if err != nil {
		return err
	}
	if s, ok := c.Structures[e.StructureID]; ok {
		s.DetachEmployee(e.ID)
	}
	delete(c.Employees, e.ID)
	return nil
}

// AssignEmployee moves an employee to a structure; an empty id unassigns.
func (c *Company) AssignEmployee(employeeID, structureID string) error {
	e, err := c.employee(employeeID)
	if err != nil {
		return err
	}
	if structureID != "" {
		if _, err := c.structure(structureID); err != nil {
			return err
		}
	}
	if s, ok := c.Structures[e.StructureID]; ok {
		s.DetachEmployee(e.ID)
	}
	e.Unassign()
	if structureID != "" {
		e.StructureID = structureID
		c.Structures[structureID].AttachEmployee(e.ID)
	}
	return nil
}

func (c *Company) SetOvertimePolicy(p staff.OvertimePolicy) error {
	if !p.Valid() {
		return fmt.Errorf("%w: overtime policy %q", ErrInvalidArgument, p)
	}
	c.OvertimePolicy = p
	return nil
}

func (c *Company) AcceptRaise(employeeID string) error {
	e, err := c.employee(employeeID)
	if err != nil {
		return err
	}
	if e.RequestedSalary == 0 {
		return fmt.Errorf("%w: %s has no pending raise", ErrInvalidArgument, e.Name)
	}
	e.SalaryPerDay = e.RequestedSalary
	e.RequestedSalary = 0
	e.LastRaiseTick = c.LastTick
	e.Morale = min(staff.MaxMorale, e.Morale+RaiseMoraleBoost)
	c.dropRaiseAlert(e.ID)
	return nil
}

func (c *Company) DeclineRaise(employeeID string) error {
	e, err := c.employee(employeeID)
	if err != nil {
		return err
	}
	if e.RequestedSalary == 0 {
		return fmt.Errorf("%w: %s has no pending raise", ErrInvalidArgument, e.Name)
	}
	e.RequestedSalary = 0
	e.LastRaiseTick = c.LastTick
	e.Morale = max(0, e.Morale-RaiseMoraleHit)
	c.dropRaiseAlert(e.ID)
	return nil
}

func (c *Company) dropRaiseAlert(employeeID string) {
	key := string(AlertRaiseRequest) + ":" + employeeID
	for i := range c.Alerts {
		if c.Alerts[i].Key == key {
			c.Alerts[i].Acknowledged = true
		}
	}
}
