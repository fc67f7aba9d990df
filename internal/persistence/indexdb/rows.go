package indexdb

// Row types double as sqlx scan targets and JSON output for cmd/admin.

type TickRow struct {
	Tick       int64   `db:"tick" json:"tick"`
	Digest     string  `db:"digest" json:"digest"`
	Stepped    bool    `db:"stepped" json:"stepped"`
	Commands   int     `db:"commands" json:"commands"`
	Rejected   int     `db:"rejected" json:"rejected"`
	Capital    float64 `db:"capital" json:"capital"`
	Revenue    float64 `db:"revenue" json:"revenue"`
	Expenses   float64 `db:"expenses" json:"expenses"`
	Claimed    int     `db:"claimed" json:"claimed"`
	Resolved   int     `db:"resolved" json:"resolved"`
	HarvestedG float64 `db:"harvested_g" json:"harvested_g"`
	NewAlerts  int     `db:"new_alerts" json:"new_alerts"`
	Warnings   int     `db:"warnings" json:"warnings"`
}

type LedgerRow struct {
	Tick     int64   `db:"tick" json:"tick"`
	Seq      int     `db:"seq" json:"seq"`
	Category string  `db:"category" json:"category"`
	Amount   float64 `db:"amount" json:"amount"`
	Revenue  bool    `db:"revenue" json:"revenue"`
}

type CommandRow struct {
	Tick      int64  `db:"tick" json:"tick"`
	Seq       int    `db:"seq" json:"seq"`
	Actor     string `db:"actor" json:"actor"`
	CommandID string `db:"command_id" json:"command_id"`
	Type      string `db:"type" json:"type"`
	Accepted  bool   `db:"accepted" json:"accepted"`
	Code      string `db:"code" json:"code,omitempty"`
	Reason    string `db:"reason" json:"reason,omitempty"`
	CreatedID string `db:"created_id" json:"created_id,omitempty"`
}

type SnapshotRow struct {
	Tick       int64   `db:"tick" json:"tick"`
	Path       string  `db:"path" json:"path"`
	Seed       int64   `db:"seed" json:"seed"`
	Digest     string  `db:"digest" json:"digest"`
	Capital    float64 `db:"capital" json:"capital"`
	Structures int     `db:"structures" json:"structures"`
	Employees  int     `db:"employees" json:"employees"`
}

type MonthRow struct {
	Month        int    `db:"month" json:"month"`
	EndTick      int64  `db:"end_tick" json:"end_tick"`
	Seed         int64  `db:"seed" json:"seed"`
	SnapshotPath string `db:"snapshot_path" json:"snapshot_path"`
	RecordedAt   string `db:"recorded_at" json:"recorded_at"`
}

type CategoryTotal struct {
	Category string  `db:"category" json:"category"`
	Revenue  bool    `db:"revenue" json:"revenue"`
	Total    float64 `db:"total" json:"total"`
	Entries  int     `db:"entries" json:"entries"`
}
