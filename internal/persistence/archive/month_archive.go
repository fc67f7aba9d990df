package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"growsim.app/internal/persistence/snapshot"
	"growsim.app/internal/sim/finance"
)

type MonthArchiveMeta struct {
	Month         int                `json:"month"`
	EndTick       uint64             `json:"end_tick"`
	Seed          int64              `json:"seed"`
	Digest        string             `json:"digest"`
	Snapshot      string             `json:"snapshot"`
	CreatedAt     string             `json:"created_at"`
	TicksPerMonth int                `json:"ticks_per_month"`
	Capital       float64            `json:"capital"`
	Revenue       map[string]float64 `json:"revenue"`
	Expenses      map[string]float64 `json:"expenses"`
}

// ArchiveMonthSnapshot copies a month-end save into
// `gameDir/archives/month_<NNNN>/`. Saves carry the number of completed ticks,
// so a month ends when that is a multiple of ticksPerMonth.
func ArchiveMonthSnapshot(gameDir, snapshotPath string, save snapshot.SaveV1, ticksPerMonth int) (month int, archivedPath string, archived bool, err error) {
	if ticksPerMonth <= 0 {
		return 0, "", false, nil
	}
	per := uint64(ticksPerMonth)
	if save.Header.Tick == 0 || save.Header.Tick%per != 0 {
		return 0, "", false, nil
	}
	month = int(save.Header.Tick / per)

	archiveDir := filepath.Join(gameDir, "archives", fmt.Sprintf("month_%04d", month))
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return 0, "", false, err
	}

	dst := filepath.Join(archiveDir, filepath.Base(snapshotPath))
	if err := copyFile(snapshotPath, dst); err != nil {
		return 0, "", false, err
	}

	var acct finance.Account
	_ = json.Unmarshal(save.Company, &acct)
	acct.Restore()

	meta := MonthArchiveMeta{
		Month:         month,
		EndTick:       save.Header.Tick,
		Seed:          save.Header.Seed,
		Digest:        save.Header.Digest,
		Snapshot:      filepath.Base(dst),
		CreatedAt:     time.Now().UTC().Format(time.RFC3339Nano),
		TicksPerMonth: ticksPerMonth,
		Capital:       acct.Capital,
		Revenue:       acct.Ledger.Revenue,
		Expenses:      acct.Ledger.Expenses,
	}
	if b, err := json.MarshalIndent(meta, "", "  "); err == nil {
		_ = os.WriteFile(filepath.Join(archiveDir, "meta.json"), b, 0o644)
	}

	return month, dst, true, nil
}

// ListMonths reads every archived month's meta.json in month order.
func ListMonths(gameDir string) ([]MonthArchiveMeta, error) {
	dirs, err := filepath.Glob(filepath.Join(gameDir, "archives", "month_*"))
	if err != nil {
		return nil, err
	}
	var out []MonthArchiveMeta
	for _, d := range dirs {
		b, err := os.ReadFile(filepath.Join(d, "meta.json"))
		if err != nil {
			continue
		}
		var m MonthArchiveMeta
		if err := json.Unmarshal(b, &m); err != nil {
			return nil, fmt.Errorf("%s: %w", d, err)
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
