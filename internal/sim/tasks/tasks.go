// Package tasks derives the per-tick labor list from facility state.
package tasks

type Type string

const (
	TypeRepairDevice        Type = "repair_device"
	TypeMaintainDevice      Type = "maintain_device"
	TypeHarvestPlants       Type = "harvest_plants"
	TypeRefillWater         Type = "refill_water"
	TypeRefillNutrients     Type = "refill_nutrients"
	TypeAdjustLightCycle    Type = "adjust_light_cycle"
	TypeCleanZone           Type = "clean_zone"
	TypeOverhaulZone        Type = "overhaul_zone"
	TypeResetLightCycle     Type = "reset_light_cycle"
	TypeExecutePlantingPlan Type = "execute_planting_plan"
)

type Location struct {
	StructureID string `json:"structure_id"`
	RoomID      string `json:"room_id,omitempty"`
	ZoneID      string `json:"zone_id,omitempty"`
	ItemID      string `json:"item_id,omitempty"`
}

// Task is derived each tick and never persisted on its own; an employee keeps
// a copy of the task it is working on.
type Task struct {
	ID            string   `json:"id"`
	Type          Type     `json:"type"`
	Location      Location `json:"location"`
	Priority      int      `json:"priority"`
	RequiredRole  string   `json:"required_role"`
	RequiredSkill string   `json:"required_skill"`
	MinSkillLevel int      `json:"min_skill_level"`
	DurationTicks int      `json:"duration_ticks"`
	ProgressTicks int      `json:"progress_ticks"`
	Description   string   `json:"description"`
}

// Done reports whether enough work has gone in to resolve the task.
func (t *Task) Done() bool { return t.ProgressTicks >= t.DurationTicks }

func taskID(t Type, zoneID, itemID string) string {
	return string(t) + ":" + zoneID + ":" + itemID
}
