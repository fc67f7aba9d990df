package game

import (
	"encoding/json"
	"testing"

	"growsim.app/internal/protocol"
)

func TestApply_RejectionLeavesStateUnchanged(t *testing.T) {
	s := newState(t, 8)
	sid := mustApply(t, s, protocol.Command{ID: "1", Type: protocol.CmdRentStructure, BlueprintID: "shed"})
	before, _ := json.Marshal(s.Company)

	cases := []struct {
		cmd  protocol.Command
		code string
	}{
		{protocol.Command{ID: "a", Type: protocol.CmdAddRoom, StructureID: sid, Name: "Huge", Purpose: "growroom", AreaM2: 1e6}, protocol.ErrNoSpace},
		{protocol.Command{ID: "b", Type: protocol.CmdRentStructure, BlueprintID: "shedd"}, protocol.ErrUnknownBlueprint},
		{protocol.Command{ID: "c", Type: protocol.CmdFire, EmployeeID: "nobody"}, protocol.ErrNotFound},
		{protocol.Command{ID: "d", Type: "TELEPORT"}, protocol.ErrBadRequest},
		{protocol.Command{ID: "e", Type: protocol.CmdSetOvertime, Policy: "never"}, protocol.ErrBadRequest},
	}
	for _, tc := range cases {
		res := Apply(s, tc.cmd)
		if res.Accepted || res.Code != tc.code {
			t.Fatalf("%s: accepted=%v code=%s want %s (%s)", tc.cmd.Type, res.Accepted, res.Code, tc.code, res.Message)
		}
		if res.CommandID != tc.cmd.ID {
			t.Fatalf("result id=%q want %q", res.CommandID, tc.cmd.ID)
		}
	}

	after, _ := json.Marshal(s.Company)
	if string(before) != string(after) {
		t.Fatalf("rejected commands mutated state")
	}
}

func TestApply_PlantOverCapacity(t *testing.T) {
	s := newState(t, 8)
	sid := mustApply(t, s, protocol.Command{ID: "1", Type: protocol.CmdRentStructure, BlueprintID: "shed"})
	rid := mustApply(t, s, protocol.Command{ID: "2", Type: protocol.CmdAddRoom, StructureID: sid, Name: "Grow", Purpose: "growroom", AreaM2: 10})
	zid := mustApply(t, s, protocol.Command{ID: "3", Type: protocol.CmdAddZone, StructureID: sid, RoomID: rid, Name: "A", AreaM2: 2, MethodID: "basic_soil_pot"})

	res := Apply(s, protocol.Command{ID: "4", Type: protocol.CmdPlantStrain, StructureID: sid, ZoneID: zid, StrainID: "ak47", Quantity: 10000})
	if res.Accepted || res.Code != protocol.ErrAtCapacity {
		t.Fatalf("res=%+v want %s", res, protocol.ErrAtCapacity)
	}
}
