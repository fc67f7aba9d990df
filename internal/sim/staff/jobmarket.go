package staff

import (
	"growsim.app/internal/sim/rng"
)

const BaseSalaryPerDay = 80.0

var (
	firstNames = []string{"Alex", "Billie", "Casey", "Dana", "Eli", "Frankie", "Gale", "Harper", "Indy", "Jules", "Kai", "Lee", "Morgan", "Noa", "Oakley", "Parker", "Quinn", "Remy", "Sage", "Toni"}
	lastNames  = []string{"Alder", "Birch", "Cedar", "Dunn", "Ellis", "Fox", "Grove", "Hale", "Ives", "Jensen", "Kerr", "Lund", "Moss", "Nash", "Olsen", "Pike", "Reed", "Stone", "Thorne", "Vale"}

	// Traits, in draw order.
	Traits = []string{"diligent", "night_owl", "green_thumb", "clumsy", "charismatic", "frugal"}
)

// NameSource may supply cosmetic names for generated candidates. It must not
// block; returning false keeps the locally drawn name.
type NameSource interface {
	Name() (string, bool)
}

// GenerateCandidates draws n candidates from r. Every gameplay value comes from
// r; names only may be replaced by names.
func GenerateCandidates(r rng.Source, n int, newID func() string, names NameSource) []*Employee {
	out := make([]*Employee, 0, n)
	for i := 0; i < n; i++ {
		e := &Employee{
			ID:     newID(),
			Name:   firstNames[r.Int(0, len(firstNames)-1)] + " " + lastNames[r.Int(0, len(lastNames)-1)],
			Role:   Roles[r.Int(0, len(Roles)-1)],
			Skills: map[string]Skill{},
			Traits: []string{},
			Energy: MaxEnergy,
			Morale: float64(r.Int(60, 90)),
			Status: StatusIdle,
		}
		primary := PrimarySkill(e.Role)
		for _, sk := range Skills {
			lvl := r.Int(0, 2)
			if sk == primary {
				lvl = r.Int(1, 4)
			}
			if lvl > 0 {
				e.Skills[sk] = Skill{Level: lvl}
			}
		}
		for _, tr := range Traits {
			if r.Chance(0.15) {
				e.Traits = append(e.Traits, tr)
			}
		}
		e.SalaryPerDay = ExpectedSalary(BaseSalaryPerDay, e)
		out = append(out, e)
	}
	if names != nil {
		for _, e := range out {
			if name, ok := names.Name(); ok && name != "" {
				e.Name = name
			}
		}
	}
	return out
}
