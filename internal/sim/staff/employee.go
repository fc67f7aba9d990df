// Package staff models employees, their per-tick behavior and the job market.
package staff

import "growsim.app/internal/sim/tasks"

type Role string

const (
	RoleGardener    Role = "Gardener"
	RoleTechnician  Role = "Technician"
	RoleJanitor     Role = "Janitor"
	RoleSalesperson Role = "Salesperson"
)

var Roles = []Role{RoleGardener, RoleTechnician, RoleJanitor, RoleSalesperson}

func (r Role) Valid() bool {
	for _, x := range Roles {
		if x == r {
			return true
		}
	}
	return false
}

const (
	SkillGardening   = "Gardening"
	SkillBotany      = "Botany"
	SkillMaintenance = "Maintenance"
	SkillCleanliness = "Cleanliness"
	SkillNegotiation = "Negotiation"
)

var Skills = []string{SkillBotany, SkillCleanliness, SkillGardening, SkillMaintenance, SkillNegotiation}

// PrimarySkill is the skill a role trains during the daily cycle.
func PrimarySkill(r Role) string {
	switch r {
	case RoleGardener:
		return SkillGardening
	case RoleTechnician:
		return SkillMaintenance
	case RoleJanitor:
		return SkillCleanliness
	case RoleSalesperson:
		return SkillNegotiation
	}
	return ""
}

type Status string

const (
	StatusIdle    Status = "Idle"
	StatusWorking Status = "Working"
	StatusResting Status = "Resting"
	StatusOffDuty Status = "OffDuty"
)

type Employee struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Role             Role             `json:"role"`
	Skills           map[string]Skill `json:"skills"`
	Traits           []string         `json:"traits"`
	SalaryPerDay     float64          `json:"salary_per_day"`
	Energy           float64          `json:"energy"`
	Morale           float64          `json:"morale"`
	StructureID      string           `json:"structure_id,omitempty"`
	Status           Status           `json:"status"`
	CurrentTask      *tasks.Task      `json:"current_task,omitempty"`
	LeaveHours       float64          `json:"leave_hours"`
	LastRaiseTick    uint64           `json:"last_raise_tick"`
	OffDutyUntilTick uint64           `json:"off_duty_until_tick,omitempty"`
	RequestedSalary  float64          `json:"requested_salary,omitempty"`
}

func (e *Employee) Restore() {
	if e.Skills == nil {
		e.Skills = map[string]Skill{}
	}
	if e.Traits == nil {
		e.Traits = []string{}
	}
	if e.Status == "" {
		e.Status = StatusIdle
	}
}

func (e *Employee) HasTrait(t string) bool {
	for _, x := range e.Traits {
		if x == t {
			return true
		}
	}
	return false
}

// HourlyRate assumes an eight hour working day.
func (e *Employee) HourlyRate() float64 { return e.SalaryPerDay / 8 }

// Unassign detaches the employee from its structure and drops any task.
func (e *Employee) Unassign() {
	e.StructureID = ""
	e.CurrentTask = nil
	if e.Status == StatusWorking || e.Status == StatusResting {
		e.Status = StatusIdle
	}
}
