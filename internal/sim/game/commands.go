package game

import (
	"errors"
	"fmt"

	"growsim.app/internal/protocol"
	"growsim.app/internal/sim/catalogs"
	"growsim.app/internal/sim/company"
	"growsim.app/internal/sim/facility"
	"growsim.app/internal/sim/finance"
	"growsim.app/internal/sim/staff"
)

// Result is the outcome of one command. A rejected command leaves the state
// exactly as it was.
type Result struct {
	CommandID string `json:"command_id"`
	Type      string `json:"type"`
	Accepted  bool   `json:"accepted"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message,omitempty"`
	CreatedID string `json:"created_id,omitempty"`
}

// Apply runs a player command against the company. Only call it between ticks.
func Apply(s State, cmd protocol.Command) Result {
	res := Result{CommandID: cmd.ID, Type: cmd.Type}
	created, err := apply(s.Company, cmd)
	if err != nil {
		res.Code = codeFor(err)
		res.Message = err.Error()
		return res
	}
	res.Accepted = true
	res.CreatedID = created
	return res
}

func apply(c *company.Company, cmd protocol.Command) (string, error) {
	switch cmd.Type {
	case protocol.CmdRentStructure:
		return c.RentStructure(cmd.BlueprintID)
	case protocol.CmdAddRoom:
		return c.AddRoom(cmd.StructureID, cmd.Name, cmd.AreaM2, facility.Purpose(cmd.Purpose))
	case protocol.CmdAddZone:
		return c.AddZone(cmd.StructureID, cmd.RoomID, cmd.Name, cmd.AreaM2, cmd.MethodID)
	case protocol.CmdDeleteZone:
		return "", c.DeleteZone(cmd.StructureID, cmd.ZoneID)
	case protocol.CmdInstallDevice:
		return c.InstallDevice(cmd.StructureID, cmd.ZoneID, cmd.BlueprintID)
	case protocol.CmdToggleDeviceGroup:
		st, err := c.ToggleDeviceGroup(cmd.StructureID, cmd.ZoneID, cmd.BlueprintID)
		return string(st), err
	case protocol.CmdSetGroupTargets:
		return "", c.SetDeviceGroupTargets(cmd.StructureID, cmd.ZoneID, cmd.BlueprintID, facility.GroupSetting{
			TargetTemperature: cmd.TargetTemperature,
			TargetHumidity:    cmd.TargetHumidity,
			TargetCO2:         cmd.TargetCO2,
		})
	case protocol.CmdSetLightCycle:
		return "", c.SetLightCycle(cmd.StructureID, cmd.ZoneID, cmd.LightOn, cmd.LightOff)
	case protocol.CmdPlantStrain:
		res, err := c.PlantStrain(cmd.StructureID, cmd.ZoneID, cmd.StrainID, cmd.Quantity)
		return res.PlantingID, err
	case protocol.CmdBuySupplies:
		return "", c.BuySupplies(cmd.StructureID, cmd.ZoneID, cmd.WaterL, cmd.NutrientG)
	case protocol.CmdSetPlantingPlan:
		return "", c.SetPlantingPlan(cmd.StructureID, cmd.ZoneID, &facility.PlantingPlan{
			StrainID:    cmd.StrainID,
			Quantity:    cmd.Quantity,
			AutoReplant: cmd.AutoReplant,
		})
	case protocol.CmdClearPlantingPlan:
		return "", c.SetPlantingPlan(cmd.StructureID, cmd.ZoneID, nil)
	case protocol.CmdBreedStrain:
		return c.BreedStrain(cmd.ParentA, cmd.ParentB, cmd.Name)
	case protocol.CmdHire:
		return cmd.CandidateID, c.Hire(cmd.CandidateID, cmd.StructureID)
	case protocol.CmdFire:
		return "", c.Fire(cmd.EmployeeID)
	case protocol.CmdAssignEmployee:
		return "", c.AssignEmployee(cmd.EmployeeID, cmd.StructureID)
	case protocol.CmdSetOvertime:
		return "", c.SetOvertimePolicy(staff.OvertimePolicy(cmd.Policy))
	case protocol.CmdAcceptRaise:
		return "", c.AcceptRaise(cmd.EmployeeID)
	case protocol.CmdDeclineRaise:
		return "", c.DeclineRaise(cmd.EmployeeID)
	case protocol.CmdAckAlert:
		return "", c.AcknowledgeAlert(cmd.AlertID)
	default:
		return "", fmt.Errorf("%w: unknown command type %q", company.ErrInvalidArgument, cmd.Type)
	}
}

func codeFor(err error) string {
	switch {
	case errors.Is(err, finance.ErrInsufficientCapital):
		return protocol.ErrNoCapital
	case errors.Is(err, facility.ErrInsufficientArea):
		return protocol.ErrNoSpace
	case errors.Is(err, facility.ErrZoneAtCapacity):
		return protocol.ErrAtCapacity
	case errors.Is(err, catalogs.ErrUnknown):
		return protocol.ErrUnknownBlueprint
	case errors.Is(err, company.ErrNotFound), errors.Is(err, facility.ErrNotFound), errors.Is(err, facility.ErrNoSuchGroup):
		return protocol.ErrNotFound
	case errors.Is(err, company.ErrZoneNotReady), errors.Is(err, facility.ErrGroupBroken), errors.Is(err, facility.ErrZonesNotAllowed):
		return protocol.ErrConflict
	case errors.Is(err, catalogs.ErrNotLoaded):
		return protocol.ErrInternal
	default:
		return protocol.ErrBadRequest
	}
}
