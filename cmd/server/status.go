package main

import (
	"fmt"
	"io"
	"sync"

	"growsim.app/internal/sim/game"
)

type statusSnapshot struct {
	Tick          uint64  `json:"tick"`
	Day           uint64  `json:"day"`
	Capital       float64 `json:"capital"`
	TotalRevenue  float64 `json:"total_revenue"`
	TotalExpenses float64 `json:"total_expenses"`
	Structures    int     `json:"structures"`
	Employees     int     `json:"employees"`
	Plants        int     `json:"plants"`
	LivingPlants  int     `json:"living_plants"`
	OpenAlerts    int     `json:"open_alerts"`
	Warnings      int     `json:"warnings_last_tick"`
}

// statusTracker keeps the numbers the HTTP handlers report. Observe runs on
// the loop goroutine; Get may be called from any goroutine.
type statusTracker struct {
	mu   sync.Mutex
	last statusSnapshot
}

func (t *statusTracker) Observe(f game.Frame) {
	s := statusSnapshot{Tick: f.Tick, Day: game.State{Ticks: f.Tick}.Day(), Warnings: len(f.Report.Warnings)}
	if c := f.State.Company; c != nil {
		s.Capital = c.Capital
		s.TotalRevenue = c.TotalRevenue()
		s.TotalExpenses = c.TotalExpenses()
		s.Structures = len(c.Structures)
		s.Employees = len(c.Employees)
		for _, st := range c.SortedStructures() {
			sum := st.PlantSummary()
			s.Plants += sum.Total
			s.LivingPlants += sum.Living
		}
		for _, a := range c.Alerts {
			if !a.Acknowledged {
				s.OpenAlerts++
			}
		}
	}
	t.mu.Lock()
	t.last = s
	t.mu.Unlock()
}

func (t *statusTracker) Get() statusSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

type loopMetrics interface {
	CurrentTick() uint64
	Paused() bool
	Speed() float64
}

// writeMetrics renders a minimal Prometheus exposition.
func writeMetrics(w io.Writer, gameID string, loop loopMetrics, s statusSnapshot, observers int, idx runtimeIndex) {
	paused := 0
	if loop.Paused() {
		paused = 1
	}
	fmt.Fprintf(w, "# HELP growsim_game_tick Current game tick.\n")
	fmt.Fprintf(w, "# TYPE growsim_game_tick gauge\n")
	fmt.Fprintf(w, "growsim_game_tick{game=%q} %d\n", gameID, loop.CurrentTick())

	fmt.Fprintf(w, "# HELP growsim_game_paused 1 while the clock is paused.\n")
	fmt.Fprintf(w, "# TYPE growsim_game_paused gauge\n")
	fmt.Fprintf(w, "growsim_game_paused{game=%q} %d\n", gameID, paused)

	fmt.Fprintf(w, "# HELP growsim_game_speed Clock speed multiplier.\n")
	fmt.Fprintf(w, "# TYPE growsim_game_speed gauge\n")
	fmt.Fprintf(w, "growsim_game_speed{game=%q} %.3f\n", gameID, loop.Speed())

	fmt.Fprintf(w, "# HELP growsim_company_money Company money by kind.\n")
	fmt.Fprintf(w, "# TYPE growsim_company_money gauge\n")
	fmt.Fprintf(w, "growsim_company_money{game=%q,kind=%q} %.2f\n", gameID, "capital", s.Capital)
	fmt.Fprintf(w, "growsim_company_money{game=%q,kind=%q} %.2f\n", gameID, "revenue_total", s.TotalRevenue)
	fmt.Fprintf(w, "growsim_company_money{game=%q,kind=%q} %.2f\n", gameID, "expenses_total", s.TotalExpenses)

	fmt.Fprintf(w, "# HELP growsim_company_count Company entity counts.\n")
	fmt.Fprintf(w, "# TYPE growsim_company_count gauge\n")
	fmt.Fprintf(w, "growsim_company_count{game=%q,kind=%q} %d\n", gameID, "structures", s.Structures)
	fmt.Fprintf(w, "growsim_company_count{game=%q,kind=%q} %d\n", gameID, "employees", s.Employees)
	fmt.Fprintf(w, "growsim_company_count{game=%q,kind=%q} %d\n", gameID, "plants", s.Plants)
	fmt.Fprintf(w, "growsim_company_count{game=%q,kind=%q} %d\n", gameID, "living_plants", s.LivingPlants)
	fmt.Fprintf(w, "growsim_company_count{game=%q,kind=%q} %d\n", gameID, "open_alerts", s.OpenAlerts)

	fmt.Fprintf(w, "# HELP growsim_observers Connected observer sessions.\n")
	fmt.Fprintf(w, "# TYPE growsim_observers gauge\n")
	fmt.Fprintf(w, "growsim_observers{game=%q} %d\n", gameID, observers)

	if idx == nil {
		return
	}
	st := idx.Stats()
	fmt.Fprintf(w, "# HELP growsim_index_queue_depth Index writer queue depth.\n")
	fmt.Fprintf(w, "# TYPE growsim_index_queue_depth gauge\n")
	fmt.Fprintf(w, "growsim_index_queue_depth{game=%q} %d\n", gameID, st.QueueDepth)

	fmt.Fprintf(w, "# HELP growsim_index_dropped_total Index rows dropped because the queue was full.\n")
	fmt.Fprintf(w, "# TYPE growsim_index_dropped_total counter\n")
	fmt.Fprintf(w, "growsim_index_dropped_total{game=%q,kind=%q} %d\n", gameID, "tick", st.DropTick)
	fmt.Fprintf(w, "growsim_index_dropped_total{game=%q,kind=%q} %d\n", gameID, "command", st.DropCommand)
	fmt.Fprintf(w, "growsim_index_dropped_total{game=%q,kind=%q} %d\n", gameID, "snapshot", st.DropSnapshot)
	fmt.Fprintf(w, "growsim_index_dropped_total{game=%q,kind=%q} %d\n", gameID, "month", st.DropMonth)
}
