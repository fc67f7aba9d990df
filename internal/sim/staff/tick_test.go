package staff

import (
	"testing"

	"growsim.app/internal/sim/tasks"
)

func gardener(id string) *Employee {
	return &Employee{ID: id, Role: RoleGardener, Skills: map[string]Skill{}, Energy: MaxEnergy, Morale: 50, StructureID: "s1", Status: StatusIdle, SalaryPerDay: 80}
}

func task(id string, dur int) tasks.Task {
	return tasks.Task{ID: id, Type: tasks.TypeHarvestPlants, Priority: 90, RequiredRole: string(RoleGardener), RequiredSkill: SkillGardening, DurationTicks: dur}
}

func TestTick_NoTaskClaimedTwice(t *testing.T) {
	emps := []*Employee{gardener("e1"), gardener("e2"), gardener("e3")}
	list := []tasks.Task{task("t1", 3), task("t2", 3)}
	res := Tick(TickInput{NowTick: 1, Employees: emps, Tasks: map[string][]tasks.Task{"s1": list}}, TickHooks{})

	if len(res.Claimed) != 2 {
		t.Fatalf("claimed=%v want 2 tasks", res.Claimed)
	}
	seen := map[string]bool{}
	for _, e := range emps {
		if e.CurrentTask == nil {
			continue
		}
		if seen[e.CurrentTask.ID] {
			t.Fatalf("task %s assigned twice", e.CurrentTask.ID)
		}
		seen[e.CurrentTask.ID] = true
	}
	if emps[2].Status != StatusIdle {
		t.Fatalf("e3 status=%s want Idle", emps[2].Status)
	}

	// the held task stays claimed on the next pass
	fresh := gardener("e0")
	emps = append(emps, fresh)
	Tick(TickInput{NowTick: 2, Employees: emps, Tasks: map[string][]tasks.Task{"s1": list}}, TickHooks{})
	if fresh.CurrentTask != nil {
		t.Fatalf("e0 claimed in-progress task %s", fresh.CurrentTask.ID)
	}
}

func TestTick_SkillRequirement(t *testing.T) {
	e := gardener("e1")
	tk := task("t1", 1)
	tk.MinSkillLevel = 2
	Tick(TickInput{NowTick: 1, Employees: []*Employee{e}, Tasks: map[string][]tasks.Task{"s1": {tk}}}, TickHooks{})
	if e.CurrentTask != nil {
		t.Fatalf("unskilled employee took task")
	}
}

func TestTick_WorkResolveAndXP(t *testing.T) {
	e := gardener("e1")
	list := map[string][]tasks.Task{"s1": {task("t1", 2)}}
	var resolved []string
	hooks := TickHooks{Resolve: func(_ uint64, _ *Employee, tk tasks.Task) bool {
		resolved = append(resolved, tk.ID)
		return true
	}}

	Tick(TickInput{NowTick: 1, Employees: []*Employee{e}, Tasks: list}, hooks)
	Tick(TickInput{NowTick: 2, Employees: []*Employee{e}, Tasks: list}, hooks)
	if len(resolved) != 0 {
		t.Fatalf("resolved early")
	}
	Tick(TickInput{NowTick: 3, Employees: []*Employee{e}, Tasks: list}, hooks)
	if len(resolved) != 1 || resolved[0] != "t1" {
		t.Fatalf("resolved=%v", resolved)
	}
	if e.Status != StatusIdle || e.CurrentTask != nil {
		t.Fatalf("status=%s task=%v", e.Status, e.CurrentTask)
	}
	if e.Energy != MaxEnergy-2*EnergyPerWorkTick {
		t.Fatalf("energy=%v", e.Energy)
	}
	if e.Skills[SkillGardening].XP != XPPerTask {
		t.Fatalf("xp=%v want %v", e.Skills[SkillGardening].XP, XPPerTask)
	}
}

func TestTick_FailedResolveEarnsNoXP(t *testing.T) {
	e := gardener("e1")
	tk := task("t1", 1)
	e.Status = StatusWorking
	e.CurrentTask = &tk
	hooks := TickHooks{Resolve: func(uint64, *Employee, tasks.Task) bool { return false }}
	res := Tick(TickInput{NowTick: 1, Employees: []*Employee{e}, Tasks: map[string][]tasks.Task{"s1": {tk}}}, hooks)
	if len(res.Resolved) != 1 {
		t.Fatalf("resolved=%d want 1", len(res.Resolved))
	}
	if e.Skills[SkillGardening].XP != 0 {
		t.Fatalf("xp=%v want 0 after a failed task", e.Skills[SkillGardening].XP)
	}
	if e.Status != StatusIdle {
		t.Fatalf("status=%s", e.Status)
	}
}

func TestTick_DroppedTaskReturnsToIdle(t *testing.T) {
	e := gardener("e1")
	tk := task("t1", 5)
	e.Status = StatusWorking
	e.CurrentTask = &tk
	Tick(TickInput{NowTick: 1, Employees: []*Employee{e}, Tasks: map[string][]tasks.Task{}}, TickHooks{})
	if e.Status != StatusIdle || e.CurrentTask != nil {
		t.Fatalf("status=%s task=%v", e.Status, e.CurrentTask)
	}
}

func TestTick_OvertimePayoutAndOffDuty(t *testing.T) {
	e := gardener("e1")
	e.Energy = 4
	tk := task("t1", 1)
	e.Status = StatusWorking
	e.CurrentTask = &tk
	paid := 0.0
	hooks := TickHooks{PayOvertime: func(_ uint64, _ *Employee, amt float64) { paid += amt }}
	Tick(TickInput{NowTick: 10, Employees: []*Employee{e}, Tasks: map[string][]tasks.Task{"s1": {tk}}, Overtime: OvertimePayout}, hooks)

	// 4 energy short is half an hour at 1.5x of 10/h.
	if paid != 7.5 {
		t.Fatalf("paid=%v want 7.5", paid)
	}
	if e.Status != StatusOffDuty || e.OffDutyUntilTick != 10+OffDutyTicks {
		t.Fatalf("status=%s until=%d", e.Status, e.OffDutyUntilTick)
	}

	for now := uint64(11); now < 10+OffDutyTicks; now++ {
		Tick(TickInput{NowTick: now, Employees: []*Employee{e}}, TickHooks{})
		if e.Status != StatusOffDuty {
			t.Fatalf("tick %d left off duty early", now)
		}
	}
	Tick(TickInput{NowTick: 10 + OffDutyTicks, Employees: []*Employee{e}}, TickHooks{})
	if e.Status != StatusIdle || e.Energy != MaxEnergy || e.Morale != 50+OffDutyMorale {
		t.Fatalf("after off duty: status=%s energy=%v morale=%v", e.Status, e.Energy, e.Morale)
	}
}

func TestTick_OvertimeTimeOff(t *testing.T) {
	e := gardener("e1")
	e.Energy = 0
	tk := task("t1", 1)
	e.Status = StatusWorking
	e.CurrentTask = &tk
	Tick(TickInput{NowTick: 1, Employees: []*Employee{e}, Tasks: map[string][]tasks.Task{"s1": {tk}}, Overtime: OvertimeTimeOff}, TickHooks{})
	if e.LeaveHours != 1 {
		t.Fatalf("leave=%v want 1", e.LeaveHours)
	}
}

func TestTick_BreakroomCapacity(t *testing.T) {
	var emps []*Employee
	for _, id := range []string{"a", "b", "c", "d"} {
		e := gardener(id)
		e.Energy = 5
		emps = append(emps, e)
	}
	hooks := TickHooks{RestCapacity: func(string) int { return 2 }}
	for now := uint64(1); now < 5; now++ {
		Tick(TickInput{NowTick: now, Employees: emps}, hooks)
		n := 0
		for _, e := range emps {
			if e.Status == StatusResting {
				n++
			}
		}
		if n > 2 {
			t.Fatalf("tick %d resting=%d exceeds capacity", now, n)
		}
	}
}

func TestTick_SkipsUnassigned(t *testing.T) {
	e := gardener("e1")
	e.StructureID = ""
	e.Energy = 50
	Tick(TickInput{NowTick: 1, Employees: []*Employee{e}, Tasks: map[string][]tasks.Task{"": {task("t1", 1)}}}, TickHooks{})
	if e.Status != StatusIdle || e.Energy != 50 {
		t.Fatalf("unassigned employee changed: %s %v", e.Status, e.Energy)
	}
}

func TestAddXP_LevelCap(t *testing.T) {
	e := gardener("e1")
	for i := 0; i < 9; i++ {
		if e.AddXP(SkillBotany, XPPerTask) {
			t.Fatalf("leveled at %d", i)
		}
	}
	if !e.AddXP(SkillBotany, XPPerTask) {
		t.Fatalf("no level-up at threshold")
	}
	if s := e.Skills[SkillBotany]; s.Level != 1 || s.XP != 0 {
		t.Fatalf("skill=%+v", s)
	}
	e.Skills[SkillBotany] = Skill{Level: MaxSkillLevel}
	if e.AddXP(SkillBotany, XPPerLevel) || e.Skills[SkillBotany].Level != MaxSkillLevel {
		t.Fatalf("leveled past cap: %+v", e.Skills[SkillBotany])
	}
}
