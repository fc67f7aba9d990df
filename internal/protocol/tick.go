package protocol

// TICK (server -> observers): a settled tick summary.
type TickMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	Tick            uint64  `json:"tick"`
	Day             uint64  `json:"day"`
	HourOfDay       int     `json:"hour_of_day"`
	Digest          string  `json:"digest"`
	Capital         float64 `json:"capital"`
	TotalRevenue    float64 `json:"total_revenue"`
	TotalExpenses   float64 `json:"total_expenses"`

	Ledger   []LedgerEntry `json:"ledger"`
	Harvests []HarvestObs  `json:"harvests,omitempty"`
	Alerts   []AlertObs    `json:"alerts,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`

	Claimed  int `json:"claimed"`
	Resolved int `json:"resolved"`

	Structures []StructureObs `json:"structures"`
	Employees  int            `json:"employees"`
}

type LedgerEntry struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Revenue  bool    `json:"revenue,omitempty"`
}

type HarvestObs struct {
	Count        int     `json:"count"`
	TotalYield   float64 `json:"total_yield"`
	TotalRevenue float64 `json:"total_revenue"`
}

type AlertObs struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Message string `json:"message"`
	ZoneID  string `json:"zone_id,omitempty"`
}

type StructureObs struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Plants        int            `json:"plants"`
	Living        int            `json:"living"`
	ByStage       map[string]int `json:"by_stage,omitempty"`
	ExpectedYield float64        `json:"expected_yield"`
	Tasks         int            `json:"tasks"`
}
