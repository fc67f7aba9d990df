package game

import (
	"growsim.app/internal/protocol"
	"growsim.app/internal/sim/company"
)

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

// TickLogEntry is enough to replay a tick from the previous settled state:
// the commands applied at its boundary, in order, then the step. Stepped is
// false for command batches applied while the loop was paused. Names holds
// job market names that came from outside the simulation.
type TickLogEntry struct {
	Tick     uint64             `json:"tick"`
	Commands []protocol.Command `json:"commands,omitempty"`
	Stepped  bool               `json:"stepped"`
	Names    map[string]string  `json:"names,omitempty"`
	Digest   string             `json:"digest"`
}

// AuditEntry records one applied command and its outcome.
type AuditEntry struct {
	Tick      uint64 `json:"tick"`
	Actor     string `json:"actor"`
	CommandID string `json:"command_id"`
	Command   string `json:"command"`
	Accepted  bool   `json:"accepted"`
	Code      string `json:"code,omitempty"`
	Reason    string `json:"reason,omitempty"`
	CreatedID string `json:"created_id,omitempty"`
}

// Frame is handed to observers after every settled tick. State is only valid
// for the duration of the callback.
type Frame struct {
	Tick    uint64
	Stepped bool
	Digest  string
	Report  company.TickReport
	Results []Result
	State   State
}

// Submission is a queued command. Reply, if set, receives the result once the
// command has been applied; it must be buffered.
type Submission struct {
	Actor string
	Cmd   protocol.Command
	Reply chan<- Result
}
