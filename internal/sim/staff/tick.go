package staff

import (
	"math"
	"sort"

	"growsim.app/internal/sim/tasks"
)

const (
	MaxEnergy         = 100.0
	MaxMorale         = 100.0
	EnergyPerWorkTick = 8.0
	IdleRegen         = 1.0
	RestRegen         = 12.0
	RestThreshold     = 20.0
	OffDutyTicks      = 12
	OffDutyMorale     = 5.0
	OvertimeMultiple  = 1.5
)

type OvertimePolicy string

const (
	OvertimePayout  OvertimePolicy = "payout"
	OvertimeTimeOff OvertimePolicy = "timeOff"
)

func (p OvertimePolicy) Valid() bool { return p == OvertimePayout || p == OvertimeTimeOff }

type TickInput struct {
	NowTick   uint64
	Employees []*Employee
	// Tasks per structure id, already priority sorted.
	Tasks    map[string][]tasks.Task
	Overtime OvertimePolicy
}

type TickHooks struct {
	RestCapacity func(structureID string) int
	// Resolve applies a finished task's effect to the world and reports
	// whether it took. Failed work earns no XP.
	Resolve     func(nowTick uint64, e *Employee, t tasks.Task) bool
	PayOvertime func(nowTick uint64, e *Employee, amount float64)
	LevelUp     func(nowTick uint64, e *Employee, skill string)
}

type TickResult struct {
	Claimed  map[string]string // task id -> employee id
	Resolved []tasks.Task
}

// Tick runs one pass of the employee state machine in employee id order.
// Employees without a structure are skipped. A task already held by a
// working employee, or claimed earlier in the pass, cannot be claimed again.
func Tick(in TickInput, hooks TickHooks) TickResult {
	emps := append([]*Employee(nil), in.Employees...)
	sort.Slice(emps, func(i, j int) bool { return emps[i].ID < emps[j].ID })

	res := TickResult{Claimed: map[string]string{}}
	inProgress := map[string]bool{}
	resting := map[string]int{}
	for _, e := range emps {
		if e.Status == StatusWorking && e.CurrentTask != nil {
			inProgress[e.CurrentTask.ID] = true
		}
		if e.Status == StatusResting && e.StructureID != "" {
			resting[e.StructureID]++
		}
	}

	for _, e := range emps {
		if e.StructureID == "" {
			continue
		}
		switch e.Status {
		case StatusIdle:
			tickIdle(in, hooks, e, inProgress, resting, &res)
		case StatusWorking:
			tickWorking(in, hooks, e, &res)
		case StatusResting:
			e.Energy = math.Min(MaxEnergy, e.Energy+RestRegen)
			if e.Energy >= MaxEnergy {
				e.Status = StatusIdle
				resting[e.StructureID]--
			}
		case StatusOffDuty:
			if in.NowTick >= e.OffDutyUntilTick {
				e.Energy = MaxEnergy
				e.OffDutyUntilTick = 0
				e.Morale = math.Min(MaxMorale, e.Morale+OffDutyMorale)
				e.Status = StatusIdle
			}
		}
	}
	return res
}

func tickIdle(in TickInput, hooks TickHooks, e *Employee, inProgress map[string]bool, resting map[string]int, res *TickResult) {
	if e.OffDutyUntilTick > in.NowTick {
		e.Status = StatusOffDuty
		return
	}
	if e.Energy < RestThreshold && hooks.RestCapacity != nil && resting[e.StructureID] < hooks.RestCapacity(e.StructureID) {
		e.Status = StatusResting
		resting[e.StructureID]++
		return
	}
	for _, t := range in.Tasks[e.StructureID] {
		if inProgress[t.ID] || Role(t.RequiredRole) != e.Role || e.SkillLevel(t.RequiredSkill) < t.MinSkillLevel {
			continue
		}
		t := t
		t.ProgressTicks = 0
		e.CurrentTask = &t
		e.Status = StatusWorking
		inProgress[t.ID] = true
		res.Claimed[t.ID] = e.ID
		return
	}
	e.Energy = math.Min(MaxEnergy, e.Energy+IdleRegen)
}

func tickWorking(in TickInput, hooks TickHooks, e *Employee, res *TickResult) {
	t := e.CurrentTask
	if t == nil || !stillNeeded(in.Tasks[e.StructureID], t.ID) {
		e.CurrentTask = nil
		e.Status = StatusIdle
		return
	}
	e.Energy -= EnergyPerWorkTick
	t.ProgressTicks++
	if !t.Done() {
		return
	}

	done := *t
	e.CurrentTask = nil
	ok := true
	if hooks.Resolve != nil {
		ok = hooks.Resolve(in.NowTick, e, done)
	}
	res.Resolved = append(res.Resolved, done)
	if ok && e.AddXP(done.RequiredSkill, XPPerTask) && hooks.LevelUp != nil {
		hooks.LevelUp(in.NowTick, e, done.RequiredSkill)
	}

	if e.Energy < 0 {
		hours := -e.Energy / EnergyPerWorkTick
		switch in.Overtime {
		case OvertimeTimeOff:
			e.LeaveHours += hours
		default:
			if hooks.PayOvertime != nil {
				hooks.PayOvertime(in.NowTick, e, hours*OvertimeMultiple*e.HourlyRate())
			}
		}
		e.Energy = 0
	}

	if e.Energy < RestThreshold {
		e.Status = StatusOffDuty
		e.OffDutyUntilTick = in.NowTick + OffDutyTicks
		return
	}
	e.Status = StatusIdle
}

func stillNeeded(list []tasks.Task, id string) bool {
	for _, t := range list {
		if t.ID == id {
			return true
		}
	}
	return false
}
