package facility

import "sort"

type GroupStatus string

const (
	GroupOn     GroupStatus = "on"
	GroupOff    GroupStatus = "off"
	GroupMixed  GroupStatus = "mixed"
	GroupBroken GroupStatus = "broken"
)

type DeviceGroup struct {
	BlueprintID string      `json:"blueprint_id"`
	Name        string      `json:"name"`
	DeviceIDs   []string    `json:"device_ids"`
	Status      GroupStatus `json:"status"`
}

// GroupedDevices buckets devices by blueprint, ordered by blueprint id. A group
// with any broken device reports broken.
func (z *Zone) GroupedDevices() []DeviceGroup {
	byBP := map[string]*DeviceGroup{}
	on := map[string]int{}
	broken := map[string]int{}
	for _, d := range z.SortedDevices() {
		g := byBP[d.BlueprintID]
		if g == nil {
			g = &DeviceGroup{BlueprintID: d.BlueprintID, Name: d.Name}
			byBP[d.BlueprintID] = g
		}
		g.DeviceIDs = append(g.DeviceIDs, d.ID)
		switch d.Status {
		case DeviceOn:
			on[d.BlueprintID]++
		case DeviceBroken:
			broken[d.BlueprintID]++
		}
	}
	ids := make([]string, 0, len(byBP))
	for id := range byBP {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]DeviceGroup, 0, len(ids))
	for _, id := range ids {
		g := byBP[id]
		switch {
		case broken[id] > 0:
			g.Status = GroupBroken
		case on[id] == len(g.DeviceIDs):
			g.Status = GroupOn
		case on[id] == 0:
			g.Status = GroupOff
		default:
			g.Status = GroupMixed
		}
		out = append(out, *g)
	}
	return out
}

// ToggleDeviceGroup switches every working device of a blueprint off when all
// of them are on, otherwise on. Broken devices are left alone.
func (z *Zone) ToggleDeviceGroup(blueprintID string) (DeviceStatus, error) {
	var working []*Device
	found := false
	for _, d := range z.SortedDevices() {
		if d.BlueprintID != blueprintID {
			continue
		}
		found = true
		if d.Status != DeviceBroken {
			working = append(working, d)
		}
	}
	if !found {
		return "", ErrNoSuchGroup
	}
	if len(working) == 0 {
		return "", ErrGroupBroken
	}
	next := DeviceOff
	for _, d := range working {
		if d.Status != DeviceOn {
			next = DeviceOn
			break
		}
	}
	for _, d := range working {
		d.Status = next
	}
	return next, nil
}

func (z *Zone) SetGroupSetting(blueprintID string, s GroupSetting) error {
	for _, d := range z.Devices {
		if d.BlueprintID == blueprintID {
			if z.GroupSettings == nil {
				z.GroupSettings = map[string]GroupSetting{}
			}
			z.GroupSettings[blueprintID] = s
			return nil
		}
	}
	return ErrNoSuchGroup
}
