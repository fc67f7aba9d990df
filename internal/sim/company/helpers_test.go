package company

import "growsim.app/internal/sim/tasks"

// fixedRNG never fires chances and always picks the low end.
type fixedRNG struct{}

func (fixedRNG) Float() float64        { return 0.99 }
func (fixedRNG) Int(min, max int) int  { return min }
func (fixedRNG) Chance(p float64) bool { return p >= 1 }

func tasksLoc() tasks.Location { return tasks.Location{StructureID: "s"} }
