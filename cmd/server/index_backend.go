package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"growsim.app/internal/persistence/indexdb"
	"growsim.app/internal/persistence/snapshot"
	"growsim.app/internal/sim/catalogs"
	"growsim.app/internal/sim/game"
	"growsim.app/internal/sim/tuning"
)

type runtimeIndex interface {
	game.AuditLogger
	Close() error
	Stats() indexdb.Stats
	RecordFrame(f game.Frame)
	UpsertCatalogs(cats *catalogs.Catalogs, tune tuning.Tuning) error
	RecordSnapshot(path string, save snapshot.SaveV1)
	RecordMonth(month int, endTick uint64, archivedSnapshotPath string, seed int64)
}

func openRuntimeIndex(gameDir string, disableDB bool) (runtimeIndex, error) {
	if disableDB {
		return nil, nil
	}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("GS_INDEX_BACKEND")))
	if backend == "" {
		backend = "sqlite"
	}

	switch backend {
	case "none", "off", "disabled":
		return nil, nil
	case "sqlite":
		return indexdb.OpenSQLite(filepath.Join(gameDir, "index", "game.sqlite"))
	default:
		return nil, fmt.Errorf("unsupported GS_INDEX_BACKEND: %s", backend)
	}
}
