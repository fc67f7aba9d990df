package indexdb

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Reader runs typed queries against an index, usually from cmd/admin while
// the server keeps writing.
type Reader struct {
	db *sqlx.DB
}

func OpenReader(path string) (*Reader, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Reader{db: db}, nil
}

func (r *Reader) Close() error { return r.db.Close() }

func (r *Reader) RecentTicks(ctx context.Context, limit int) ([]TickRow, error) {
	var out []TickRow
	err := r.db.SelectContext(ctx, &out, `SELECT * FROM ticks ORDER BY tick DESC LIMIT ?`, limit)
	return out, err
}

func (r *Reader) Tick(ctx context.Context, tick int64) (TickRow, error) {
	var out TickRow
	err := r.db.GetContext(ctx, &out, `SELECT * FROM ticks WHERE tick=?`, tick)
	return out, err
}

// LedgerTotals sums ledger rows by category over [from, to].
func (r *Reader) LedgerTotals(ctx context.Context, from, to int64) ([]CategoryTotal, error) {
	var out []CategoryTotal
	err := r.db.SelectContext(ctx, &out, `
		SELECT category, revenue, SUM(amount) AS total, COUNT(*) AS entries
		FROM ledger
		WHERE tick BETWEEN ? AND ?
		GROUP BY category, revenue
		ORDER BY revenue DESC, total DESC, category`, from, to)
	return out, err
}

func (r *Reader) Ledger(ctx context.Context, tick int64) ([]LedgerRow, error) {
	var out []LedgerRow
	err := r.db.SelectContext(ctx, &out, `SELECT * FROM ledger WHERE tick=? ORDER BY seq`, tick)
	return out, err
}

func (r *Reader) Commands(ctx context.Context, limit int, rejectedOnly bool) ([]CommandRow, error) {
	q := `SELECT * FROM commands`
	if rejectedOnly {
		q += ` WHERE accepted=0`
	}
	q += ` ORDER BY tick DESC, seq DESC LIMIT ?`
	var out []CommandRow
	err := r.db.SelectContext(ctx, &out, q, limit)
	return out, err
}

func (r *Reader) Snapshots(ctx context.Context, limit int) ([]SnapshotRow, error) {
	var out []SnapshotRow
	err := r.db.SelectContext(ctx, &out, `SELECT * FROM snapshots ORDER BY tick DESC LIMIT ?`, limit)
	return out, err
}

func (r *Reader) Months(ctx context.Context) ([]MonthRow, error) {
	var out []MonthRow
	err := r.db.SelectContext(ctx, &out, `SELECT * FROM months ORDER BY month`)
	return out, err
}
