// Package finance keeps the capital balance and its categorized ledger.
package finance

import (
	"errors"
	"fmt"
	"sort"
)

var ErrInsufficientCapital = errors.New("insufficient capital")

const (
	CatHarvest     = "harvest"
	CatRent        = "rent"
	CatMaintenance = "maintenance"
	CatPower       = "power"
	CatSalaries    = "salaries"
	CatOvertime    = "overtime"
	CatDevices     = "devices"
	CatSupplies    = "supplies"
	CatSeeds       = "seeds"
	CatStructures  = "structures"
	CatSetup       = "setup"
	CatOverhaul    = "overhaul"
	CatBreeding    = "breeding"
	CatHiring      = "hiring"
)

type Ledger struct {
	Revenue  map[string]float64 `json:"revenue"`
	Expenses map[string]float64 `json:"expenses"`
}

// Entry is one capital movement, kept only for the current tick.
type Entry struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Revenue  bool    `json:"revenue"`
}

// Account is the only place capital changes.
type Account struct {
	Capital        float64 `json:"capital"`
	InitialCapital float64 `json:"initial_capital"`
	Ledger         Ledger  `json:"ledger"`

	journal []Entry
}

func NewAccount(initial float64) *Account {
	a := &Account{Capital: initial, InitialCapital: initial}
	a.Restore()
	return a
}

func (a *Account) Restore() {
	if a.Ledger.Revenue == nil {
		a.Ledger.Revenue = map[string]float64{}
	}
	if a.Ledger.Expenses == nil {
		a.Ledger.Expenses = map[string]float64{}
	}
}

func (a *Account) LogRevenue(category string, amount float64) {
	if amount <= 0 {
		return
	}
	a.Ledger.Revenue[category] += amount
	a.Capital += amount
	a.journal = append(a.journal, Entry{Category: category, Amount: amount, Revenue: true})
}

// LogExpense books an expense and debits capital in one step. Capital may go
// negative; use SpendCapital for purchases that must not overdraw.
func (a *Account) LogExpense(category string, amount float64) {
	if amount <= 0 {
		return
	}
	a.Ledger.Expenses[category] += amount
	a.Capital -= amount
	a.journal = append(a.journal, Entry{Category: category, Amount: amount})
}

func (a *Account) CanAfford(amount float64) bool { return amount <= a.Capital }

// SpendCapital debits amount if capital covers it and fails without any
// change otherwise.
func (a *Account) SpendCapital(category string, amount float64) error {
	if amount < 0 {
		return fmt.Errorf("negative spend %.2f", amount)
	}
	if !a.CanAfford(amount) {
		return fmt.Errorf("%w: need %.2f, have %.2f", ErrInsufficientCapital, amount, a.Capital)
	}
	a.LogExpense(category, amount)
	return nil
}

func (a *Account) TotalRevenue() float64 { return sumSorted(a.Ledger.Revenue) }

func (a *Account) TotalExpenses() float64 { return sumSorted(a.Ledger.Expenses) }

// DrainJournal returns the entries logged since the last call.
func (a *Account) DrainJournal() []Entry {
	out := a.journal
	a.journal = nil
	return out
}

func sumSorted(m map[string]float64) float64 {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	sum := 0.0
	for _, k := range keys {
		sum += m[k]
	}
	return sum
}
