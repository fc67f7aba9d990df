package game

import (
	"testing"

	"growsim.app/internal/protocol"
	"growsim.app/internal/sim/catalogs"
	"growsim.app/internal/sim/company"
)

func testDeps(t *testing.T) Deps {
	t.Helper()
	cats, err := catalogs.Load("../../../configs")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	return Deps{Config: company.Config{InitialCapital: 50000}, Catalogs: cats}
}

func newState(t *testing.T, seed int64) State {
	t.Helper()
	s, err := New(seed, testDeps(t))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return s
}

// mustApply applies cmd and fails the test on rejection.
func mustApply(t *testing.T, s State, cmd protocol.Command) string {
	t.Helper()
	res := Apply(s, cmd)
	if !res.Accepted {
		t.Fatalf("%s rejected: %s %s", cmd.Type, res.Code, res.Message)
	}
	return res.CreatedID
}

// buildFarm sets up a lit, staffed zone with a planting.
func buildFarm(t *testing.T, s State) {
	t.Helper()
	sid := mustApply(t, s, protocol.Command{ID: "1", Type: protocol.CmdRentStructure, BlueprintID: "shed"})
	rid := mustApply(t, s, protocol.Command{ID: "2", Type: protocol.CmdAddRoom, StructureID: sid, Name: "Grow", Purpose: "growroom", AreaM2: 30})
	mustApply(t, s, protocol.Command{ID: "3", Type: protocol.CmdAddRoom, StructureID: sid, Name: "Break", Purpose: "breakroom", AreaM2: 8})
	zid := mustApply(t, s, protocol.Command{ID: "4", Type: protocol.CmdAddZone, StructureID: sid, RoomID: rid, Name: "A", AreaM2: 10, MethodID: "basic_soil_pot"})
	mustApply(t, s, protocol.Command{ID: "5", Type: protocol.CmdInstallDevice, StructureID: sid, ZoneID: zid, BlueprintID: "led_veg_150"})
	mustApply(t, s, protocol.Command{ID: "6", Type: protocol.CmdInstallDevice, StructureID: sid, ZoneID: zid, BlueprintID: "cool_air_split"})
	mustApply(t, s, protocol.Command{ID: "7", Type: protocol.CmdPlantStrain, StructureID: sid, ZoneID: zid, StrainID: "ak47", Quantity: 4})
	mustApply(t, s, protocol.Command{ID: "8", Type: protocol.CmdSetPlantingPlan, StructureID: sid, ZoneID: zid, StrainID: "ak47", Quantity: 4, AutoReplant: true})
	for i, cand := range s.Company.JobMarket[:3] {
		mustApply(t, s, protocol.Command{ID: "h" + string(rune('a'+i)), Type: protocol.CmdHire, CandidateID: cand.ID, StructureID: sid})
	}
}
