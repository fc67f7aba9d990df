package indexdb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"growsim.app/internal/persistence/snapshot"
	"growsim.app/internal/sim/catalogs"
	"growsim.app/internal/sim/game"
	"growsim.app/internal/sim/tuning"
)

// SQLiteIndex is a read model of the game. Writes are queued and applied by a
// single goroutine; the JSONL logs and saves remain the source of truth, so a
// full queue drops rows instead of stalling the loop.
type SQLiteIndex struct {
	db *sqlx.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropTick     atomic.Uint64
	dropCommand  atomic.Uint64
	dropSnapshot atomic.Uint64
	dropMonth    atomic.Uint64
}

type reqKind int

const (
	reqTick reqKind = iota + 1
	reqCommand
	reqSnapshot
	reqMonth
)

type req struct {
	kind reqKind

	tick     TickRow
	ledger   []LedgerRow
	command  CommandRow
	snapshot SnapshotRow
	month    MonthRow
}

type Stats struct {
	QueueDepth    int    `json:"queue_depth"`
	QueueCapacity int    `json:"queue_capacity"`
	DropTick      uint64 `json:"drop_tick_total"`
	DropCommand   uint64 `json:"drop_command_total"`
	DropSnapshot  uint64 `json:"drop_snapshot_total"`
	DropMonth     uint64 `json:"drop_month_total"`
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sqlx.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sqlx.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS ticks (
			tick INTEGER PRIMARY KEY,
			digest TEXT NOT NULL,
			stepped INTEGER NOT NULL,
			commands INTEGER NOT NULL,
			rejected INTEGER NOT NULL,
			capital REAL NOT NULL,
			revenue REAL NOT NULL,
			expenses REAL NOT NULL,
			claimed INTEGER NOT NULL,
			resolved INTEGER NOT NULL,
			harvested_g REAL NOT NULL,
			new_alerts INTEGER NOT NULL,
			warnings INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS ledger (
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			category TEXT NOT NULL,
			amount REAL NOT NULL,
			revenue INTEGER NOT NULL,
			PRIMARY KEY (tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_category_tick ON ledger(category, tick);`,
		`CREATE TABLE IF NOT EXISTS commands (
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			actor TEXT NOT NULL,
			command_id TEXT NOT NULL,
			type TEXT NOT NULL,
			accepted INTEGER NOT NULL,
			code TEXT NOT NULL,
			reason TEXT NOT NULL,
			created_id TEXT NOT NULL,
			PRIMARY KEY (tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_commands_actor_tick ON commands(actor, tick);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			tick INTEGER PRIMARY KEY,
			path TEXT NOT NULL,
			seed INTEGER NOT NULL,
			digest TEXT NOT NULL,
			capital REAL NOT NULL,
			structures INTEGER NOT NULL,
			employees INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS months (
			month INTEGER PRIMARY KEY,
			end_tick INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			snapshot_path TEXT NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:    len(s.ch),
		QueueCapacity: cap(s.ch),
		DropTick:      s.dropTick.Load(),
		DropCommand:   s.dropCommand.Load(),
		DropSnapshot:  s.dropSnapshot.Load(),
		DropMonth:     s.dropMonth.Load(),
	}
}

func (s *SQLiteIndex) enqueue(r req, drops *atomic.Uint64) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- r:
	default:
		drops.Add(1)
	}
}

// RecordFrame indexes a settled tick. It reads the frame's state, so call it
// from the loop goroutine (a game.Loop observer).
func (s *SQLiteIndex) RecordFrame(f game.Frame) {
	if s == nil {
		return
	}
	row := TickRow{
		Tick:      int64(f.Tick),
		Digest:    f.Digest,
		Stepped:   f.Stepped,
		Commands:  len(f.Results),
		Claimed:   f.Report.Claimed,
		Resolved:  len(f.Report.Resolved),
		NewAlerts: len(f.Report.NewAlerts),
		Warnings:  len(f.Report.Warnings),
	}
	if f.State.Company != nil {
		row.Capital = f.State.Company.Capital
	}
	for _, r := range f.Results {
		if !r.Accepted {
			row.Rejected++
		}
	}
	for _, h := range f.Report.Harvests {
		row.HarvestedG += h.TotalYield
	}
	ledger := make([]LedgerRow, 0, len(f.Report.Ledger))
	for i, e := range f.Report.Ledger {
		if e.Revenue {
			row.Revenue += e.Amount
		} else {
			row.Expenses += e.Amount
		}
		ledger = append(ledger, LedgerRow{Tick: int64(f.Tick), Seq: i, Category: e.Category, Amount: e.Amount, Revenue: e.Revenue})
	}
	s.enqueue(req{kind: reqTick, tick: row, ledger: ledger}, &s.dropTick)
}

// WriteAudit indexes an applied command.
func (s *SQLiteIndex) WriteAudit(e game.AuditEntry) error {
	s.enqueue(req{kind: reqCommand, command: CommandRow{
		Tick:      int64(e.Tick),
		Actor:     e.Actor,
		CommandID: e.CommandID,
		Type:      e.Command,
		Accepted:  e.Accepted,
		Code:      e.Code,
		Reason:    e.Reason,
		CreatedID: e.CreatedID,
	}}, &s.dropCommand)
	return nil
}

func (s *SQLiteIndex) RecordSnapshot(path string, save snapshot.SaveV1) {
	if s == nil || s.closed.Load() {
		return
	}
	var body struct {
		Capital    float64                    `json:"capital"`
		Structures map[string]json.RawMessage `json:"structures"`
		Employees  map[string]json.RawMessage `json:"employees"`
	}
	_ = json.Unmarshal(save.Company, &body)
	s.enqueue(req{kind: reqSnapshot, snapshot: SnapshotRow{
		Tick:       int64(save.Header.Tick),
		Path:       path,
		Seed:       save.Header.Seed,
		Digest:     save.Header.Digest,
		Capital:    body.Capital,
		Structures: len(body.Structures),
		Employees:  len(body.Employees),
	}}, &s.dropSnapshot)
}

func (s *SQLiteIndex) RecordMonth(month int, endTick uint64, archivedSnapshotPath string, seed int64) {
	if month <= 0 || archivedSnapshotPath == "" {
		return
	}
	s.enqueue(req{kind: reqMonth, month: MonthRow{
		Month:        month,
		EndTick:      int64(endTick),
		Seed:         seed,
		SnapshotPath: archivedSnapshotPath,
		RecordedAt:   time.Now().UTC().Format(time.RFC3339Nano),
	}}, &s.dropMonth)
}

// UpsertCatalogs stores the canonical catalogs and tuning the game runs with.
func (s *SQLiteIndex) UpsertCatalogs(cats *catalogs.Catalogs, tune tuning.Tuning) error {
	if s == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	type kv struct {
		name   string
		digest string
		v      any
	}
	rows := []kv{
		{"structures", cats.Structures.Digest, sortedValues(cats.Structures.ByID)},
		{"strains", cats.Strains.Digest, sortedValues(cats.Strains.ByID)},
		{"devices", cats.Devices.Digest, sortedValues(cats.Devices.ByID)},
		{"cultivation_methods", cats.Methods.Digest, sortedValues(cats.Methods.ByID)},
		{"prices", cats.Prices.Digest, cats.Prices.Prices},
		{"task_definitions", cats.Tasks.Digest, sortedValues(cats.Tasks.ByType)},
	}
	rows = append(rows, kv{"tuning", tuning.Digest(tune), tune})

	tx, err := s.db.BeginTxx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	for _, r := range rows {
		b, err := json.Marshal(r.v)
		if err != nil {
			return fmt.Errorf("%s: %w", r.name, err)
		}
		if r.digest == "" || len(b) == 0 {
			continue
		}
		if _, err := tx.Exec(`INSERT OR REPLACE INTO catalogs(name,digest,json,updated_at) VALUES(?,?,?,?)`, r.name, r.digest, string(b), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func sortedValues[T any](m map[string]T) []T {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

const (
	insertTickSQL = `INSERT OR REPLACE INTO ticks(tick,digest,stepped,commands,rejected,capital,revenue,expenses,claimed,resolved,harvested_g,new_alerts,warnings)
		VALUES(:tick,:digest,:stepped,:commands,:rejected,:capital,:revenue,:expenses,:claimed,:resolved,:harvested_g,:new_alerts,:warnings)`
	insertLedgerSQL = `INSERT OR REPLACE INTO ledger(tick,seq,category,amount,revenue)
		VALUES(:tick,:seq,:category,:amount,:revenue)`
	insertCommandSQL = `INSERT OR REPLACE INTO commands(tick,seq,actor,command_id,type,accepted,code,reason,created_id)
		VALUES(:tick,:seq,:actor,:command_id,:type,:accepted,:code,:reason,:created_id)`
	insertSnapshotSQL = `INSERT OR REPLACE INTO snapshots(tick,path,seed,digest,capital,structures,employees)
		VALUES(:tick,:path,:seed,:digest,:capital,:structures,:employees)`
	insertMonthSQL = `INSERT OR REPLACE INTO months(month,end_tick,seed,snapshot_path,recorded_at)
		VALUES(:month,:end_tick,:seed,:snapshot_path,:recorded_at)`
)

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	prepare := func(q string) *sqlx.NamedStmt {
		st, _ := s.db.PrepareNamed(q)
		return st
	}
	insertTick := prepare(insertTickSQL)
	insertLedger := prepare(insertLedgerSQL)
	insertCommand := prepare(insertCommandSQL)
	insertSnapshot := prepare(insertSnapshotSQL)
	insertMonth := prepare(insertMonthSQL)
	defer func() {
		for _, st := range []*sqlx.NamedStmt{insertTick, insertLedger, insertCommand, insertSnapshot, insertMonth} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sqlx.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = 2 * time.Second

		lastCommandTick int64
		commandSeq      int
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTxx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	exec := func(st *sqlx.NamedStmt, arg any) bool {
		if st == nil || tx == nil {
			return false
		}
		if _, err := tx.NamedStmt(st).Exec(arg); err != nil {
			rollback()
			return false
		}
		opCount++
		return true
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqTick:
			if !exec(insertTick, r.tick) {
				continue
			}
			for _, l := range r.ledger {
				if !exec(insertLedger, l) {
					break
				}
			}
		case reqCommand:
			c := r.command
			if c.Tick != lastCommandTick {
				lastCommandTick = c.Tick
				commandSeq = 0
			}
			c.Seq = commandSeq
			commandSeq++
			exec(insertCommand, c)
		case reqSnapshot:
			exec(insertSnapshot, r.snapshot)
		case reqMonth:
			exec(insertMonth, r.month)
		}
		if tx != nil && (opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait) {
			commit()
		}
	}

	commit()
}
