package room

import "github.com/Yagnik-Gohil/skribbl-server/internal/engine"

// Participant is one roster entry. Score is the only mutable field.
type Participant struct {
	ID      string `json:"id"`
	RoomID  string `json:"room"`
	IsAdmin bool   `json:"admin"`
	Name    string `json:"name"`
	Score   int    `json:"score"`
}

// Snapshot is a consistent read of a room after a completed mutation.
type Snapshot struct {
	ID          string        `json:"id"`
	Members     []Participant `json:"members"`
	State       engine.State  `json:"gameState"`
	CurrentTurn *Participant  `json:"currentTurn,omitempty"`
}

// Notification types pushed to room occupants.
const (
	NotifyJoined        = "joined"
	NotifyLeft          = "left"
	NotifyConfigUpdated = "configuration-updated"
	NotifyWordSelection = "word-selection"
	NotifyGameStarted   = "game-started"
	NotifyLeaderBoard   = "leader-board"
	NotifyResult        = "result"
	NotifyWordGuessed   = "word-guessed"
)

type Notification struct {
	Type        string         `json:"type"`
	Participant *Participant   `json:"participant,omitempty"`
	Members     []Participant  `json:"members,omitempty"`
	State       *engine.State  `json:"gameState,omitempty"`
	CurrentTurn *Participant   `json:"currentTurn,omitempty"`
	Words       []string       `json:"words,omitempty"`
	Word        string         `json:"word,omitempty"`
	LeaderBoard []Participant  `json:"leaderBoard,omitempty"`
	Config      *engine.Config `json:"config,omitempty"`
}

type Msg interface{ isRoomMsg() }

type Join struct {
	Participant Participant
	ClientID    string
	Outbox      chan Notification // nil for transports that poll instead
	Reply       chan Snapshot
}

func (Join) isRoomMsg() {}

// Remove covers both explicit leave and abrupt disconnect; the two must
// share identical turn-adjustment and cleanup semantics.
type Remove struct {
	ClientID string
	Reply    chan RemoveResult
}

func (Remove) isRoomMsg() {}

type RemoveResult struct {
	Removed bool
	Empty   bool // roster drained; the registry must destroy the room
	Snap    Snapshot
}

type Configure struct {
	Config engine.Config
	Reply  chan ActionResult
}

func (Configure) isRoomMsg() {}

// StartSelection is the turn holder requesting the word-selection phase.
type StartSelection struct {
	ClientID string
	Reply    chan ActionResult
}

func (StartSelection) isRoomMsg() {}

type SelectWord struct {
	Word  string
	Reply chan ActionResult
}

func (SelectWord) isRoomMsg() {}

type Guess struct {
	GuesserID string
	Reply     chan ActionResult
}

func (Guess) isRoomMsg() {}

type ActionResult struct {
	Snap Snapshot
	Err  error
}

type GetSnapshot struct {
	Reply chan Snapshot
}

func (GetSnapshot) isRoomMsg() {}

type GetLeaderBoard struct {
	Reply chan []Participant
}

func (GetLeaderBoard) isRoomMsg() {}

type GetParticipant struct {
	ClientID string
	Reply    chan ParticipantResult
}

func (GetParticipant) isRoomMsg() {}

type ParticipantResult struct {
	Participant Participant
	OK          bool
}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

type deadlineKind int

const (
	deadlineLeaderBoard deadlineKind = iota
	deadlineNextRound
)

// deadline is a scheduled transition delivered back through the inbox so
// timers never touch state directly. Generation-tagged: stale fires are
// dropped.
type deadline struct {
	kind deadlineKind
	gen  uint64
}

func (deadline) isRoomMsg() {}
