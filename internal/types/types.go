package types

import "github.com/Yagnik-Gohil/skribbl-server/internal/engine"

// ClientMessage is one inbound action on the websocket. The sending
// connection's client id is implicit; Room is required only where the
// action targets a room the sender might not occupy yet.
type ClientMessage struct {
	Type   string         `json:"type"`
	Room   string         `json:"room,omitempty"`
	Name   string         `json:"name,omitempty"`
	Admin  bool           `json:"admin,omitempty"`
	Word   string         `json:"word,omitempty"`
	Config *engine.Config `json:"config,omitempty"`
}

const (
	ActionJoin                = "join"
	ActionLeave               = "leave"
	ActionUpdateConfiguration = "update-configuration"
	ActionWordSelection       = "word-selection"
	ActionWordSelected        = "word-selected"
	ActionWordGuessed         = "word-guessed"
)

// ErrorMessage is pushed to a single client when its action failed.
// Notifications reuse room.Notification verbatim.
type ErrorMessage struct {
	Type  string `json:"type"` // always "error"
	Error string `json:"error"`
}
