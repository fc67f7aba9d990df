package staff

const (
	XPPerTask      = 10.0
	XPPerLevel     = 100.0
	MaxSkillLevel  = 10
	DailyRoleXP    = 2.0
	SalaryPerLevel = 6.0

	// frugal employees accept this share of fair pay
	FrugalShare = 0.9
)

type Skill struct {
	Level int     `json:"level"`
	XP    float64 `json:"xp"`
}

func (e *Employee) SkillLevel(name string) int { return e.Skills[name].Level }

// AddXP credits xp to a skill and reports whether it leveled up. XP resets to
// zero on level-up; a maxed skill stops accumulating.
func (e *Employee) AddXP(name string, xp float64) bool {
	if name == "" || xp <= 0 {
		return false
	}
	if e.Skills == nil {
		e.Skills = map[string]Skill{}
	}
	s := e.Skills[name]
	if s.Level >= MaxSkillLevel {
		s.Level, s.XP = MaxSkillLevel, 0
		e.Skills[name] = s
		return false
	}
	s.XP += xp
	up := false
	if s.XP >= XPPerLevel {
		s.Level++
		s.XP = 0
		up = true
	}
	e.Skills[name] = s
	return up
}

// TotalSkill sums every skill level.
func (e *Employee) TotalSkill() int {
	n := 0
	for _, s := range e.Skills {
		n += s.Level
	}
	return n
}

// FairSalary is what the employee's skills are worth per day.
func FairSalary(base float64, e *Employee) float64 {
	return base + SalaryPerLevel*float64(e.TotalSkill())
}

// ExpectedSalary is FairSalary adjusted for traits. It is what the employee
// is hired at and what morale and raise requests are measured against.
func ExpectedSalary(base float64, e *Employee) float64 {
	fair := FairSalary(base, e)
	if e.HasTrait("frugal") {
		fair *= FrugalShare
	}
	return fair
}
