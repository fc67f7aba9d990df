package main

import (
	"context"
	"log"
	"path/filepath"

	"growsim.app/internal/persistence/archive"
	"growsim.app/internal/persistence/snapshot"
)

// saveWriter persists saves produced by the loop. It runs off the loop
// goroutine; the loop only hands over already-marshaled saves.
type saveWriter struct {
	gameDir       string
	ticksPerMonth int
	idx           runtimeIndex
	logger        *log.Logger
}

func (w saveWriter) snapshotDir() string {
	return filepath.Join(w.gameDir, "snapshots")
}

// persist writes the save, records it in the index and archives month ends.
func (w saveWriter) persist(save snapshot.SaveV1) (string, error) {
	path := snapshot.Path(w.snapshotDir(), save.Header.Tick)
	if err := snapshot.WriteSnapshot(path, save); err != nil {
		return "", err
	}
	if w.idx != nil {
		w.idx.RecordSnapshot(path, save)
	}
	month, archivedPath, ok, err := archive.ArchiveMonthSnapshot(w.gameDir, path, save, w.ticksPerMonth)
	if err != nil {
		w.logger.Printf("archive month snapshot: %v", err)
	} else if ok {
		w.logger.Printf("archived month %d -> %s", month, archivedPath)
		if w.idx != nil {
			w.idx.RecordMonth(month, save.Header.Tick, archivedPath, save.Header.Seed)
		}
	}
	return path, nil
}

// run drains the loop's snapshot sink until ctx is done.
func (w saveWriter) run(ctx context.Context, ch <-chan snapshot.SaveV1) {
	for {
		select {
		case <-ctx.Done():
			return
		case save := <-ch:
			if _, err := w.persist(save); err != nil {
				w.logger.Printf("snapshot write: %v", err)
			}
		}
	}
}
