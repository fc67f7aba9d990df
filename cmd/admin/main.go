package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agnivade/levenshtein"

	"growsim.app/internal/persistence/archive"
	persistlog "growsim.app/internal/persistence/log"
)

var commands = []string{"list", "db", "audit", "months", "state", "save"}

func main() {
	if len(os.Args) >= 2 && !strings.HasPrefix(os.Args[1], "-") {
		switch os.Args[1] {
		case "list":
			listCmd(os.Args[2:])
		case "db":
			dbCmd(os.Args[2:])
		case "audit":
			auditCmd(os.Args[2:])
		case "months":
			monthsCmd(os.Args[2:])
		case "state":
			stateCmd(os.Args[2:])
		case "save":
			saveCmd(os.Args[2:])
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q%s\n", os.Args[1], suggest(os.Args[1], commands))
			os.Exit(2)
		}
		return
	}
	listCmd(os.Args[1:])
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	gameID := fs.String("game", "", "game id (optional)")
	_ = fs.Parse(args)

	base := filepath.Join(*dataDir, "games")
	if *gameID != "" {
		base = filepath.Join(base, *gameID)
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	for _, e := range entries {
		fmt.Println(e.Name())
	}
}

func auditCmd(args []string) {
	fs := flag.NewFlagSet("audit", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	gameID := fs.String("game", "", "game id")
	sinceTick := fs.Uint64("since_tick", 0, "first tick (inclusive)")
	toTick := fs.Uint64("to_tick", 0, "last tick (inclusive, optional)")
	actor := fs.String("actor", "", "actor filter (substring)")
	cmdType := fs.String("type", "", "command type filter")
	rejected := fs.Bool("rejected", false, "only rejected commands")
	_ = fs.Parse(args)

	if strings.TrimSpace(*gameID) == "" {
		fmt.Fprintln(os.Stderr, "missing -game")
		os.Exit(2)
	}
	entries, err := persistlog.ReadAuditLog(filepath.Join(*dataDir, "games", *gameID), *sinceTick, *toTick)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read audit:", err)
		os.Exit(1)
	}
	want := strings.ToUpper(strings.TrimSpace(*cmdType))
	n := 0
	for _, e := range entries {
		if *rejected && e.Accepted {
			continue
		}
		if *actor != "" && !strings.Contains(e.Actor, *actor) {
			continue
		}
		if want != "" && e.Command != want {
			continue
		}
		printJSON(e)
		n++
	}
	fmt.Fprintf(os.Stderr, "%d of %d entries\n", n, len(entries))
}

func monthsCmd(args []string) {
	fs := flag.NewFlagSet("months", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	gameID := fs.String("game", "", "game id")
	_ = fs.Parse(args)

	if strings.TrimSpace(*gameID) == "" {
		fmt.Fprintln(os.Stderr, "missing -game")
		os.Exit(2)
	}
	months, err := archive.ListMonths(filepath.Join(*dataDir, "games", *gameID))
	if err != nil {
		fmt.Fprintln(os.Stderr, "list months:", err)
		os.Exit(1)
	}
	for _, m := range months {
		printJSON(m)
	}
}

func printJSON(v any) {
	b, _ := json.Marshal(v)
	fmt.Println(string(b))
}

// suggest returns a "did you mean" hint when name is close to a known one.
func suggest(name string, known []string) string {
	best, bestDist := "", 3
	for _, k := range known {
		if d := levenshtein.ComputeDistance(name, k); d < bestDist {
			best, bestDist = k, d
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf(" (did you mean %q?)", best)
}
