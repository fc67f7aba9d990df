package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	persistlog "growsim.app/internal/persistence/log"
	"growsim.app/internal/persistence/snapshot"
	"growsim.app/internal/sim/catalogs"
	"growsim.app/internal/sim/company"
	"growsim.app/internal/sim/game"
	"growsim.app/internal/sim/tuning"
)

func main() {
	var (
		snapPath   = flag.String("snapshot", "", "path to .snap.zst")
		gameDir    = flag.String("game_dir", "", "game dir containing ticks/ (optional; default: two levels above -snapshot)")
		configDir  = flag.String("configs", "./configs", "config directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		fromTick   = flag.Uint64("from_tick", 0, "start verifying from tick (inclusive, optional)")
		toTick     = flag.Uint64("to_tick", 0, "stop at tick (inclusive, optional)")
		headerOnly = flag.Bool("header", false, "print the save header and exit")
	)
	flag.Parse()

	if *snapPath == "" {
		fmt.Fprintln(os.Stderr, "missing -snapshot")
		os.Exit(2)
	}

	save, err := snapshot.ReadSnapshot(*snapPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read snapshot:", err)
		os.Exit(1)
	}
	fmt.Printf("save v%d game=%s tick=%d seed=%d digest=%s size=%s\n",
		save.Header.Version, save.Header.GameID, save.Header.Tick, save.Header.Seed, save.Header.Digest,
		humanize.Bytes(uint64(len(save.Company))))
	if *headerOnly {
		return
	}

	tp := *tuningPath
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "load tuning:", err)
		os.Exit(1)
	}
	cats, err := catalogs.Load(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load catalogs:", err)
		os.Exit(1)
	}

	state, err := game.Load(save, game.Deps{Config: company.ConfigFromTuning(tune), Catalogs: cats})
	if err != nil {
		fmt.Fprintln(os.Stderr, "load save:", err)
		os.Exit(1)
	}

	dir := *gameDir
	if dir == "" {
		dir = filepath.Dir(filepath.Dir(*snapPath))
	}
	entries, err := persistlog.ReadTickLog(dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read tick log:", err)
		os.Exit(1)
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "no tick log files found in", filepath.Join(dir, "ticks"))
		os.Exit(1)
	}

	verifyFrom := *fromTick
	if verifyFrom == 0 {
		verifyFrom = state.Ticks
	}
	end, st, err := game.Replay(state, entries, verifyFrom, *toTick)
	if err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
	fmt.Printf("replay ok: replayed=%d checked=%d skipped=%d (from save tick=%d to tick=%d) capital=$%s\n",
		st.Replayed, st.Checked, st.Skipped, save.Header.Tick, end.Ticks, humanize.CommafWithDigits(end.Company.Capital, 2))
}
