package facility

import "growsim.app/internal/sim/catalogs"

type DeviceStatus string

const (
	DeviceOn     DeviceStatus = "on"
	DeviceOff    DeviceStatus = "off"
	DeviceBroken DeviceStatus = "broken"
)

// WearPerTick takes a continuously running device from 1 to 0 in 120 days.
const WearPerTick = 1.0 / (24 * 120)

// Device is an installed piece of equipment. Kind and capabilities are copied
// from the blueprint at install time.
type Device struct {
	ID                     string                `json:"id"`
	BlueprintID            string                `json:"blueprint_id"`
	Name                   string                `json:"name"`
	Kind                   catalogs.DeviceKind   `json:"kind"`
	Capabilities           catalogs.Capabilities `json:"capabilities"`
	Status                 DeviceStatus          `json:"status"`
	Durability             float64               `json:"durability"`
	MaintenanceCostPerTick float64               `json:"maintenance_cost_per_tick"`
}

func NewDevice(id string, bp catalogs.DeviceBlueprint, price catalogs.DevicePrice) *Device {
	return &Device{
		ID:                     id,
		BlueprintID:            bp.ID,
		Name:                   bp.Name,
		Kind:                   bp.Kind,
		Capabilities:           bp.Capabilities,
		Status:                 DeviceOn,
		Durability:             1,
		MaintenanceCostPerTick: price.BaseMaintenanceCostPerTick,
	}
}

func (d *Device) Active() bool { return d.Status == DeviceOn }

func (d *Device) Wear() {
	if d.Status != DeviceOn {
		return
	}
	d.Durability -= WearPerTick
	if d.Durability <= 0 {
		d.Durability = 0
		d.Status = DeviceBroken
	}
}

// Repair restores full durability. A broken device comes back switched on.
func (d *Device) Repair() {
	d.Durability = 1
	if d.Status == DeviceBroken {
		d.Status = DeviceOn
	}
}
