package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"
	ErrBusy            = "E_BUSY"

	// Command layer.
	ErrBadRequest       = "E_BAD_REQUEST"
	ErrNotFound         = "E_NOT_FOUND"
	ErrUnknownBlueprint = "E_UNKNOWN_BLUEPRINT"
	ErrNoCapital        = "E_NO_CAPITAL"
	ErrNoSpace          = "E_NO_SPACE"
	ErrAtCapacity       = "E_AT_CAPACITY"
	ErrConflict         = "E_CONFLICT"
	ErrInternal         = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest:  {},
	ErrBusy:             {},
	ErrBadRequest:       {},
	ErrNotFound:         {},
	ErrUnknownBlueprint: {},
	ErrNoCapital:        {},
	ErrNoSpace:          {},
	ErrAtCapacity:       {},
	ErrConflict:         {},
	ErrInternal:         {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
