package log

import (
	"testing"
	"time"

	"growsim.app/internal/protocol"
	"growsim.app/internal/sim/game"
)

func TestTickLogger_RotatesAndReadsBack(t *testing.T) {
	dir := t.TempDir()
	tl := NewTickLogger(dir)
	clock := time.Date(2026, 3, 1, 10, 59, 0, 0, time.UTC)
	tl.w.now = func() time.Time { return clock }

	if err := tl.WriteTick(game.TickLogEntry{Tick: 0, Stepped: true, Digest: "a",
		Commands: []protocol.Command{{ID: "c1", Type: protocol.CmdRentStructure, BlueprintID: "shed"}}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := tl.WriteTick(game.TickLogEntry{Tick: 1, Stepped: true, Digest: "b"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	clock = clock.Add(2 * time.Minute)
	if err := tl.WriteTick(game.TickLogEntry{Tick: 2, Stepped: true, Digest: "c"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := tl.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	entries, err := ReadTickLog(dir)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries=%d want 3", len(entries))
	}
	for i, e := range entries {
		if e.Tick != uint64(i) {
			t.Fatalf("entry %d tick=%d", i, e.Tick)
		}
	}
	if len(entries[0].Commands) != 1 || entries[0].Commands[0].BlueprintID != "shed" {
		t.Fatalf("commands=%+v", entries[0].Commands)
	}
}

func TestTickLogger_AppendAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	clock := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		tl := NewTickLogger(dir)
		tl.w.now = func() time.Time { return clock }
		if err := tl.WriteTick(game.TickLogEntry{Tick: uint64(i), Stepped: true}); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := tl.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
	entries, err := ReadTickLog(dir)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries=%d want 2", len(entries))
	}
}

func TestAuditLogger_ReadRange(t *testing.T) {
	dir := t.TempDir()
	al := NewAuditLogger(dir)
	for i := 0; i < 5; i++ {
		if err := al.WriteAudit(game.AuditEntry{Tick: uint64(i), Actor: "P1:t", CommandID: "c", Command: protocol.CmdFire, Accepted: i%2 == 0}); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := al.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	got, err := ReadAuditLog(dir, 1, 3)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 3 || got[0].Tick != 1 || got[2].Tick != 3 {
		t.Fatalf("entries=%+v", got)
	}
	all, _ := ReadAuditLog(dir, 0, 0)
	if len(all) != 5 {
		t.Fatalf("all=%d want 5", len(all))
	}
}
