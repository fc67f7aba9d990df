package protocol

// ACT (client -> server): a batch of player commands. Commands are queued and
// applied in receive order at the next tick boundary.
type ActMsg struct {
	Type            string    `json:"type"`
	ProtocolVersion string    `json:"protocol_version"`
	Commands        []Command `json:"commands"`
}

// Command types.
const (
	CmdRentStructure     = "RENT_STRUCTURE"
	CmdAddRoom           = "ADD_ROOM"
	CmdAddZone           = "ADD_ZONE"
	CmdDeleteZone        = "DELETE_ZONE"
	CmdInstallDevice     = "INSTALL_DEVICE"
	CmdToggleDeviceGroup = "TOGGLE_DEVICE_GROUP"
	CmdSetGroupTargets   = "SET_GROUP_TARGETS"
	CmdSetLightCycle     = "SET_LIGHT_CYCLE"
	CmdPlantStrain       = "PLANT_STRAIN"
	CmdBuySupplies       = "BUY_SUPPLIES"
	CmdSetPlantingPlan   = "SET_PLANTING_PLAN"
	CmdClearPlantingPlan = "CLEAR_PLANTING_PLAN"
	CmdBreedStrain       = "BREED_STRAIN"
	CmdHire              = "HIRE"
	CmdFire              = "FIRE"
	CmdAssignEmployee    = "ASSIGN_EMPLOYEE"
	CmdSetOvertime       = "SET_OVERTIME_POLICY"
	CmdAcceptRaise       = "ACCEPT_RAISE"
	CmdDeclineRaise      = "DECLINE_RAISE"
	CmdAckAlert          = "ACK_ALERT"
)

// Command is a flat union; each type reads only the fields it needs.
type Command struct {
	ID   string `json:"id"`
	Type string `json:"type"`

	StructureID string `json:"structure_id,omitempty"`
	RoomID      string `json:"room_id,omitempty"`
	ZoneID      string `json:"zone_id,omitempty"`
	BlueprintID string `json:"blueprint_id,omitempty"`
	StrainID    string `json:"strain_id,omitempty"`
	MethodID    string `json:"method_id,omitempty"`
	EmployeeID  string `json:"employee_id,omitempty"`
	CandidateID string `json:"candidate_id,omitempty"`
	AlertID     string `json:"alert_id,omitempty"`

	Name    string  `json:"name,omitempty"`
	Purpose string  `json:"purpose,omitempty"`
	AreaM2  float64 `json:"area_m2,omitempty"`

	Quantity    int     `json:"quantity,omitempty"`
	AutoReplant bool    `json:"auto_replant,omitempty"`
	WaterL      float64 `json:"water_l,omitempty"`
	NutrientG   float64 `json:"nutrient_g,omitempty"`

	LightOn  int `json:"light_on,omitempty"`
	LightOff int `json:"light_off,omitempty"`

	TargetTemperature float64 `json:"target_temperature,omitempty"`
	TargetHumidity    float64 `json:"target_humidity,omitempty"`
	TargetCO2         float64 `json:"target_co2,omitempty"`

	ParentA string `json:"parent_a,omitempty"`
	ParentB string `json:"parent_b,omitempty"`

	Policy string `json:"policy,omitempty"`
}
