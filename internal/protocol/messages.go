package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	SessionID       string         `json:"session_id"`
	Game            GameParams     `json:"game"`
	Catalogs        CatalogDigests `json:"catalogs"`
}

type GameParams struct {
	GameID         string  `json:"game_id"`
	Seed           int64   `json:"seed"`
	Tick           uint64  `json:"tick"`
	TickIntervalMs int     `json:"tick_interval_ms"`
	Speed          float64 `json:"speed"`
	Paused         bool    `json:"paused"`
}

type CatalogDigests struct {
	StructuresDigest string `json:"structures_digest"`
	StrainsDigest    string `json:"strains_digest"`
	DevicesDigest    string `json:"devices_digest"`
	MethodsDigest    string `json:"methods_digest"`
	PricesDigest     string `json:"prices_digest"`
	TasksDigest      string `json:"tasks_digest"`
	TuningDigest     string `json:"tuning_digest,omitempty"`
}

// ACK (server -> client): one per command, sent once the command has been
// applied at a tick boundary.
type AckMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	AckFor          string `json:"ack_for"`
	Accepted        bool   `json:"accepted"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"message,omitempty"`
	CreatedID       string `json:"created_id,omitempty"`
	ServerTick      uint64 `json:"server_tick,omitempty"`
}

// CONTROL (client -> server): driver controls, never part of the simulated
// state.
type ControlMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	Action          string  `json:"action"`
	Speed           float64 `json:"speed,omitempty"`
}

const (
	ControlPause  = "PAUSE"
	ControlResume = "RESUME"
	ControlSpeed  = "SPEED"
	ControlSave   = "SAVE"
)
