package main

import (
	"bytes"
	"strings"
	"testing"

	"growsim.app/internal/protocol"
)

func TestPrintTick(t *testing.T) {
	msg := protocol.TickMsg{
		Tick: 48, Day: 2, HourOfDay: 0, Capital: 12345.5, Employees: 3,
		Alerts:   []protocol.AlertObs{{Type: "low_water", Message: "Zone A is low on water"}},
		Harvests: []protocol.HarvestObs{{Count: 4, TotalYield: 120, TotalRevenue: 960}},
		Structures: []protocol.StructureObs{{
			Name: "Shed", Plants: 4, Living: 4, ByStage: map[string]int{"vegetative": 3, "flowering": 1},
		}},
	}
	var buf bytes.Buffer
	printTick(&buf, msg, 24, false)
	out := buf.String()
	for _, want := range []string{
		"ALERT low_water",
		"HARVEST 4 plants, 120.0 g, $960",
		"capital $12,345.5",
		"[flowering:1 vegetative:3]",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}

	buf.Reset()
	printTick(&buf, msg, 24, true)
	if strings.Contains(buf.String(), "capital") {
		t.Fatalf("quiet mode printed the summary")
	}
}

func TestMoney_Negative(t *testing.T) {
	if got := money(-1500); got != "-$1,500" {
		t.Fatalf("money=%q", got)
	}
}
