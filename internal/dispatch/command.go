// Package dispatch maps inbound dashboard commands onto process-manager
// operations and triggers resynchronization after mutations.
package dispatch

import "encoding/json"

// Kind identifies an inbound command. The set is closed: anything else
// arriving on the wire is ignored, never an error.
type Kind string

// Command kinds accepted from dashboard clients.
const (
	KindStart   Kind = "start"
	KindStop    Kind = "stop"
	KindRestart Kind = "restart"
	KindReset   Kind = "reset"
	KindClear   Kind = "clear"

	KindStartAll   Kind = "start-all"
	KindStopAll    Kind = "stop-all"
	KindRestartAll Kind = "restart-all"
	KindResetAll   Kind = "reset-all"
)

// Command is one validated inbound client command. Single-target kinds
// carry the manager's numeric process id.
type Command struct {
	Kind Kind
	ID   int
}

// isSingle reports whether the kind targets one process and thus
// requires an id.
func (k Kind) isSingle() bool {
	switch k {
	case KindStart, KindStop, KindRestart, KindReset, KindClear:
		return true
	}
	return false
}

// isBulk reports whether the kind targets every managed process.
func (k Kind) isBulk() bool {
	switch k {
	case KindStartAll, KindStopAll, KindRestartAll, KindResetAll:
		return true
	}
	return false
}

// wireCommand is the raw client frame: {"type": string, "id"?: number}.
type wireCommand struct {
	Type string `json:"type"`
	ID   *int   `json:"id"`
}

// ParseCommand decodes and validates an inbound client frame. ok is
// false for malformed JSON, unknown kinds, and single-target commands
// missing an id — all of which the server silently ignores so garbled
// input can't crash the dispatcher.
func ParseCommand(data []byte) (Command, bool) {
	var wire wireCommand
	if err := json.Unmarshal(data, &wire); err != nil {
		return Command{}, false
	}

	kind := Kind(wire.Type)
	switch {
	case kind.isSingle():
		if wire.ID == nil {
			return Command{}, false
		}
		return Command{Kind: kind, ID: *wire.ID}, true
	case kind.isBulk():
		return Command{Kind: kind}, true
	default:
		return Command{}, false
	}
}
