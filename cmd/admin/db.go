package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"growsim.app/internal/persistence/indexdb"
)

var dbQueries = []string{"snapshots", "months", "ticks", "tick", "ledger", "totals", "commands"}

func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	gameID := fs.String("game", "", "game id (required unless -db)")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	tick := fs.Int64("tick", -1, "tick (tick, ledger; defaults to latest indexed)")
	from := fs.Int64("from", 0, "first tick (totals)")
	to := fs.Int64("to", -1, "last tick (totals; defaults to latest indexed)")
	limit := fs.Int("limit", 20, "result limit")
	rejected := fs.Bool("rejected", false, "only rejected commands (commands)")
	_ = fs.Parse(args)

	q := "snapshots"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}

	path := strings.TrimSpace(*dbPath)
	if path == "" {
		if strings.TrimSpace(*gameID) == "" {
			fmt.Fprintln(os.Stderr, "missing -game or -db")
			os.Exit(2)
		}
		path = filepath.Join(*dataDir, "games", *gameID, "index", "game.sqlite")
	}

	r, err := indexdb.OpenReader(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *limit <= 0 {
		*limit = 20
	}
	latest := func() int64 {
		rows, err := r.RecentTicks(ctx, 1)
		if err != nil {
			fmt.Fprintln(os.Stderr, "latest tick:", err)
			os.Exit(1)
		}
		if len(rows) == 0 {
			fmt.Fprintln(os.Stderr, "no ticks indexed")
			os.Exit(2)
		}
		return rows[0].Tick
	}

	var rows []any
	switch q {
	case "snapshots":
		rows, err = each(r.Snapshots(ctx, *limit))
	case "months":
		rows, err = each(r.Months(ctx))
	case "ticks":
		rows, err = each(r.RecentTicks(ctx, *limit))
	case "tick":
		if *tick < 0 {
			*tick = latest()
		}
		var row indexdb.TickRow
		row, err = r.Tick(ctx, *tick)
		rows = []any{row}
	case "ledger":
		if *tick < 0 {
			*tick = latest()
		}
		rows, err = each(r.Ledger(ctx, *tick))
	case "totals":
		if *to < 0 {
			*to = latest()
		}
		rows, err = each(r.LedgerTotals(ctx, *from, *to))
	case "commands":
		rows, err = each(r.Commands(ctx, *limit, *rejected))
	default:
		fmt.Fprintf(os.Stderr, "unknown query %q%s\n", q, suggest(q, dbQueries))
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	for _, row := range rows {
		printJSON(row)
	}
}

func each[T any](rs []T, err error) ([]any, error) {
	out := make([]any, 0, len(rs))
	for _, r := range rs {
		out = append(out, r)
	}
	return out, err
}
