package company

import (
	"fmt"
	"math"

	"growsim.app/internal/sim/finance"
	"growsim.app/internal/sim/rng"
	"growsim.app/internal/sim/staff"
	"growsim.app/internal/sim/tasks"
)

const (
	TicksPerDay  = 24
	TicksPerWeek = TicksPerDay * 7

	// below this share of fair pay morale erodes
	UnderpaidShare   = 0.95
	UnderpaidMorale  = 2.0
	ContentMorale    = 0.5
	RaiseAskShare    = 1.05
	RaiseMoraleBoost = 10.0
	RaiseMoraleHit   = 10.0
)

// refreshJobMarket replaces the candidate pool. Names taken from the name
// source are recorded in the tick report so a replay can restore them.
func (c *Company) refreshJobMarket(r rng.Source) {
	c.JobMarket = staff.GenerateCandidates(r, c.cfg.JobMarketSize, func() string { return c.newID("employee") }, nil)
	if c.names == nil {
		return
	}
	for _, e := range c.JobMarket {
		name, ok := c.names.Name()
		if !ok || name == "" {
			continue
		}
		e.Name = name
		if c.report != nil {
			if c.report.Names == nil {
				c.report.Names = map[string]string{}
			}
			c.report.Names[e.ID] = name
		}
	}
}

// RenameCandidates applies recorded candidate names. Unknown ids are ignored.
func (c *Company) RenameCandidates(names map[string]string) {
	for _, e := range c.JobMarket {
		if n, ok := names[e.ID]; ok {
			e.Name = n
		}
	}
}

// dailyCycle pays salaries and runs morale, raise, training and quit rules
// for every employee in id order.
func (c *Company) dailyCycle(tick uint64, r rng.Source) {
	var quits []*staff.Employee
	for _, e := range c.SortedEmployees() {
		c.LogExpense(finance.CatSalaries, e.SalaryPerDay)

		fair := staff.ExpectedSalary(staff.BaseSalaryPerDay, e)
		underpaid := e.SalaryPerDay < fair*UnderpaidShare
		switch {
		case underpaid && e.RequestedSalary > 0:
			// waiting on an answer
		case underpaid:
			e.Morale = math.Max(0, e.Morale-UnderpaidMorale)
		default:
			e.Morale = math.Min(staff.MaxMorale, e.Morale+ContentMorale)
		}

		if e.Morale < c.cfg.QuitMoraleBelow && r.Chance((c.cfg.QuitMoraleBelow-e.Morale)/100) {
			quits = append(quits, e)
			continue
		}

		days := c.cfg.RaiseIntervalDays
		if underpaid {
			days = c.cfg.UnderpaidRaiseDays
		}
		interval := uint64(days) * TicksPerDay
		if e.RequestedSalary == 0 && tick >= e.LastRaiseTick+interval && fair > e.SalaryPerDay*RaiseAskShare {
			e.RequestedSalary = math.Round(fair)
			c.raiseEvent(tick, AlertRaiseRequest, e.ID,
				fmt.Sprintf("%s asks for a raise to %s per day", e.Name, money(e.RequestedSalary)),
				tasks.Location{StructureID: e.StructureID},
				map[string]string{"employee_id": e.ID})
		}

		if e.StructureID != "" {
			e.AddXP(staff.PrimarySkill(e.Role), staff.DailyRoleXP)
		}

		if e.LeaveHours >= staff.OffDutyTicks && e.Status == staff.StatusIdle {
			e.LeaveHours -= staff.OffDutyTicks
			e.Status = staff.StatusOffDuty
			e.OffDutyUntilTick = tick + staff.OffDutyTicks
		}
	}

	for _, e := range quits {
		c.quit(tick, e)
	}
}

// quit returns the employee to the job market.
func (c *Company) quit(tick uint64, e *staff.Employee) {
	loc := tasks.Location{StructureID: e.StructureID}
	if s, ok := c.Structures[e.StructureID]; ok {
		s.DetachEmployee(e.ID)
	}
	delete(c.Employees, e.ID)
	e.Unassign()
	e.Status = staff.StatusIdle
	e.Energy = staff.MaxEnergy
	e.OffDutyUntilTick = 0
	e.RequestedSalary = 0
	c.JobMarket = append(c.JobMarket, e)
	c.raiseEvent(tick, AlertEmployeeQuit, e.ID, fmt.Sprintf("%s quit", e.Name), loc, map[string]string{"employee_id": e.ID})
}
