package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"growsim.app/internal/protocol"
)

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	p := filepath.Join("..", "..", "schemas", name)
	s, err := jsonschema.Compile(p)
	if err != nil {
		t.Fatalf("compile %s: %v", name, err)
	}
	return s
}

// asAny round-trips a Go message through JSON so the schema sees exactly what
// goes over the wire.
func asAny(t *testing.T, v any) any {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func TestSchemas_ValidateSamples(t *testing.T) {
	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	validate(compileSchema(t, "hello.schema.json"), asAny(t, protocol.HelloMsg{
		Type: protocol.TypeHello, ProtocolVersion: protocol.Version, ClientName: "watch",
	}))

	validate(compileSchema(t, "welcome.schema.json"), asAny(t, protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       "S1",
		Game:            protocol.GameParams{GameID: "g1", Seed: 42, Tick: 10, TickIntervalMs: 1000, Speed: 1},
		Catalogs: protocol.CatalogDigests{
			StructuresDigest: "a", StrainsDigest: "b", DevicesDigest: "c",
			MethodsDigest: "d", PricesDigest: "e", TasksDigest: "f",
		},
	}))

	validate(compileSchema(t, "act.schema.json"), asAny(t, protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		Commands: []protocol.Command{
			{ID: "c1", Type: protocol.CmdRentStructure, BlueprintID: "small_warehouse"},
			{ID: "c2", Type: protocol.CmdPlantStrain, StructureID: "s", ZoneID: "z", StrainID: "ak47", Quantity: 12},
			{ID: "c3", Type: protocol.CmdSetOvertime, Policy: "timeOff"},
		},
	}))

	validate(compileSchema(t, "ack.schema.json"), asAny(t, protocol.AckMsg{
		Type: protocol.TypeAck, ProtocolVersion: protocol.Version, AckFor: "c1", Accepted: false,
		Code: protocol.ErrNoCapital, Message: "insufficient capital",
	}))

	validate(compileSchema(t, "tick.schema.json"), asAny(t, protocol.TickMsg{
		Type:            protocol.TypeTick,
		ProtocolVersion: protocol.Version,
		Tick:            25,
		Day:             1,
		HourOfDay:       1,
		Digest:          strings.Repeat("ab", 32),
		Capital:         99000,
		Ledger:          []protocol.LedgerEntry{{Category: "rent", Amount: 12.5}},
		Structures:      []protocol.StructureObs{{ID: "s1", Name: "Shed", Plants: 4, Living: 3, ExpectedYield: 120}},
	}))
}

func TestSchemas_RejectBadCommand(t *testing.T) {
	s := compileSchema(t, "act.schema.json")
	var bad any
	_ = json.Unmarshal([]byte(`{
	  "type":"ACT",
	  "protocol_version":"1.0",
	  "commands":[{"id":"c1","type":"PLANT_STRAIN","quantity":0}]
	}`), &bad)
	if err := s.Validate(bad); err == nil {
		t.Fatalf("expected quantity 0 to be rejected")
	}
	_ = json.Unmarshal([]byte(`{"type":"ACT","protocol_version":"1.0","commands":[{"id":"c1","type":"TELEPORT"}]}`), &bad)
	if err := s.Validate(bad); err == nil {
		t.Fatalf("expected unknown command type to be rejected")
	}
}
