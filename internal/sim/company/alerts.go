package company

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"growsim.app/internal/sim/facility"
	"growsim.app/internal/sim/tasks"
)

type AlertType string

const (
	AlertLowSupply     AlertType = "low_supply"
	AlertHarvestReady  AlertType = "harvest_ready"
	AlertSickPlants    AlertType = "sick_plants"
	AlertDeviceBroken  AlertType = "device_broken"
	AlertLowCapital    AlertType = "low_capital"
	AlertNeedsCleaning AlertType = "zone_needs_cleaning"
	AlertDisease       AlertType = "disease"
	AlertEmployeeQuit  AlertType = "employee_quit"
	AlertRaiseRequest  AlertType = "raise_request"
	AlertPurchase      AlertType = "purchase_failed"
)

// condition alerts live exactly as long as their condition holds
var conditionAlerts = map[AlertType]bool{
	AlertLowSupply:    true,
	AlertHarvestReady: true,
	AlertSickPlants:   true,
	AlertDeviceBroken: true,
	AlertLowCapital:   true,
}

const SickHealthBelow = 0.5

type Alert struct {
	ID            string            `json:"id"`
	Key           string            `json:"key"`
	Type          AlertType         `json:"type"`
	Message       string            `json:"message"`
	Location      tasks.Location    `json:"location"`
	TickGenerated uint64            `json:"tick_generated"`
	Acknowledged  bool              `json:"is_acknowledged"`
	Context       map[string]string `json:"context,omitempty"`
}

type condition struct {
	key  string
	typ  AlertType
	msg  string
	loc  tasks.Location
	ctxt map[string]string
}

// detectAlerts diffs current conditions against the alert list. New alerts
// respect the per-key cooldown; cleared condition alerts and acknowledged
// event alerts are dropped.
func (c *Company) detectAlerts(tick uint64) {
	conds := c.conditions()
	active := map[string]bool{}
	for _, cd := range conds {
		active[cd.key] = true
	}

	kept := c.Alerts[:0]
	existing := map[string]bool{}
	for _, a := range c.Alerts {
		if conditionAlerts[a.Type] {
			if !active[a.Key] {
				continue
			}
		} else if a.Acknowledged {
			continue
		}
		kept = append(kept, a)
		existing[a.Key] = true
	}
	c.Alerts = kept

	for _, cd := range conds {
		if existing[cd.key] {
			continue
		}
		c.raise(tick, cd)
	}
	c.trimAlerts()
}

// raise appends an alert unless its key is cooling down.
func (c *Company) raise(tick uint64, cd condition) bool {
	if until, ok := c.AlertCooldowns[cd.key]; ok && tick < until {
		return false
	}
	a := Alert{
		ID:            c.newID("alert"),
		Key:           cd.key,
		Type:          cd.typ,
		Message:       cd.msg,
		Location:      cd.loc,
		TickGenerated: tick,
		Context:       cd.ctxt,
	}
	c.Alerts = append(c.Alerts, a)
	c.AlertCooldowns[cd.key] = tick + c.cfg.AlertCooldownTicks
	if c.report != nil {
		c.report.NewAlerts = append(c.report.NewAlerts, a)
	}
	return true
}

func (c *Company) raiseEvent(tick uint64, typ AlertType, key, msg string, loc tasks.Location, ctxt map[string]string) {
	c.raise(tick, condition{key: string(typ) + ":" + key, typ: typ, msg: msg, loc: loc, ctxt: ctxt})
}

// trimAlerts drops the oldest acknowledged alerts first, then the oldest.
func (c *Company) trimAlerts() {
	for len(c.Alerts) > c.cfg.MaxAlerts {
		idx := 0
		for i, a := range c.Alerts {
			if a.Acknowledged {
				idx = i
				break
			}
		}
		c.Alerts = append(c.Alerts[:idx], c.Alerts[idx+1:]...)
	}
}

func (c *Company) conditions() []condition {
	var out []condition
	bp := c.Blueprints()
	for _, s := range c.SortedStructures() {
		for _, ref := range s.Zones() {
			z := ref.Zone
			loc := tasks.Location{StructureID: s.ID, RoomID: ref.Room.ID, ZoneID: z.ID}
			if z.Status == facility.ZoneGrowing {
				rates := z.SupplyConsumptionRates(bp)
				water := facility.RunwayDays(z.WaterL, rates.WaterLPerDay)
				food := facility.RunwayDays(z.NutrientG, rates.NutrientGPerDay)
				if water < tasks.RefillRunwayDays || food < tasks.RefillRunwayDays {
					out = append(out, condition{
						key: "low_supply:" + z.ID, typ: AlertLowSupply, loc: loc,
						msg: fmt.Sprintf("%s is running low on supplies", z.Name),
					})
				}
			}
			if n := len(z.HarvestablePlants()); n > 0 {
				out = append(out, condition{
					key: "harvest_ready:" + z.ID, typ: AlertHarvestReady, loc: loc,
					msg:  fmt.Sprintf("%d plants ready to harvest in %s", n, z.Name),
					ctxt: map[string]string{"count": fmt.Sprint(n)},
				})
			}
			if sum := z.PlantSummary(); sum.Living > 0 && sum.AverageHealth < SickHealthBelow {
				out = append(out, condition{
					key: "sick_plants:" + z.ID, typ: AlertSickPlants, loc: loc,
					msg: fmt.Sprintf("Plants in %s are unhealthy (%.0f%% health)", z.Name, sum.AverageHealth*100),
				})
			}
			for _, d := range z.SortedDevices() {
				if d.Status == facility.DeviceBroken {
					dloc := loc
					dloc.ItemID = d.ID
					out = append(out, condition{
						key: "device_broken:" + d.ID, typ: AlertDeviceBroken, loc: dloc,
						msg: fmt.Sprintf("%s in %s is broken", d.Name, z.Name),
					})
				}
			}
		}
	}
	if c.Capital < 0 {
		out = append(out, condition{
			key: "low_capital", typ: AlertLowCapital,
			msg: "Capital is overdrawn: " + money(c.Capital),
		})
	}
	return out
}

func (c *Company) AcknowledgeAlert(id string) error {
	for i := range c.Alerts {
		if c.Alerts[i].ID == id {
			c.Alerts[i].Acknowledged = true
			return nil
		}
	}
	return fmt.Errorf("alert %s: %w", id, ErrNotFound)
}

func money(x float64) string {
	if x < 0 {
		return "-$" + humanize.CommafWithDigits(-x, 2)
	}
	return "$" + humanize.CommafWithDigits(x, 2)
}
