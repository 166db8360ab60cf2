package engine

import (
	"errors"
	"time"
)

var ErrWrongPhase = errors.New("action not valid in current status")
var ErrNotYourTurn = errors.New("not the turn holder")
var ErrInvalidConfiguration = errors.New("invalid configuration")

type Status string

const (
	StatusLobby         Status = "lobby"
	StatusWordSelection Status = "word-selection"
	StatusLive          Status = "live"
)

type WordMode string

const (
	WordModeNormal WordMode = "normal"
	WordModeHidden WordMode = "hidden"
	WordModeBoth   WordMode = "both"
)

// NextRoundGrace is how long after the leaderboard deadline the next
// round begins.
const NextRoundGrace = 10 * time.Second

type Config struct {
	DrawTimeSeconds int      `json:"drawTime"`
	HintCount       int      `json:"hints"`
	TotalRounds     int      `json:"rounds"`
	WordCount       int      `json:"wordCount"`
	WordMode        WordMode `json:"wordMode"`
}

func (c Config) Validate() error {
	if c.DrawTimeSeconds < 10 || c.DrawTimeSeconds > 300 {
		return ErrInvalidConfiguration
	}
	if c.HintCount < 0 || c.HintCount > 5 {
		return ErrInvalidConfiguration
	}
	if c.TotalRounds < 1 || c.TotalRounds > 10 {
		return ErrInvalidConfiguration
	}
	if c.WordCount < 1 || c.WordCount > 5 {
		return ErrInvalidConfiguration
	}
	switch c.WordMode {
	case WordModeNormal, WordModeHidden, WordModeBoth:
	default:
		return ErrInvalidConfiguration
	}
	return nil
}

// State is the per-room turn/round machine. It is a plain value: every
// transition returns a new State and the caller owns serialization.
type State struct {
	Status           Status    `json:"status"`
	TurnOrder        []string  `json:"turnOrder"`
	CurrentTurnIndex int       `json:"currentTurnIndex"`
	CurrentRound     int       `json:"currentRound"`
	Config           Config    `json:"config"`
	Word             string    `json:"word,omitempty"`
	RoundStartedAt   time.Time `json:"roundStartedAt,omitzero"`

	// Generation advances on every transition that invalidates pending
	// deadlines. A deadline scheduled under generation g must be ignored
	// once Generation != g.
	Generation uint64 `json:"-"`
}

func NewState() State {
	return State{
		Status:           StatusLobby,
		TurnOrder:        []string{},
		CurrentTurnIndex: 0,
		CurrentRound:     0,
		Config: Config{
			DrawTimeSeconds: 60,
			HintCount:       2,
			TotalRounds:     3,
			WordCount:       3,
			WordMode:        WordModeNormal,
		},
	}
}

// CurrentPlayer returns the turn holder's id, or false when the turn
// order is empty.
func (s State) CurrentPlayer() (string, bool) {
	if len(s.TurnOrder) == 0 {
		return "", false
	}
	return s.TurnOrder[s.CurrentTurnIndex], true
}

// Configure overwrites the mutable tunables. Any status is accepted;
// in-flight deadlines re-read TotalRounds when they fire.
func Configure(s State, cfg Config) (State, error) {
	if err := cfg.Validate(); err != nil {
		return s, err
	}
	s.Config = cfg
	return s, nil
}

// BeginSelection moves lobby -> word-selection and opens the next round.
// Only the current turn holder may request it.
func BeginSelection(s State, clientID string) (State, error) {
	if s.Status != StatusLobby {
		return s, ErrWrongPhase
	}
	holder, ok := s.CurrentPlayer()
	if !ok || holder != clientID {
		return s, ErrNotYourTurn
	}
	s.Status = StatusWordSelection
	s.CurrentRound++
	s.Generation++
	return s, nil
}

// StartRound moves word-selection -> live once a word is chosen. The
// caller schedules the leaderboard deadline at now+drawTime and the
// next-round deadline NextRoundGrace later, both tagged with the
// returned state's Generation.
func StartRound(s State, word string, now time.Time) (State, error) {
	if s.Status != StatusWordSelection {
		return s, ErrWrongPhase
	}
	s.Status = StatusLive
	s.Word = word
	s.RoundStartedAt = now
	s.Generation++
	return s, nil
}

// AdvanceRound handles the next-round deadline while more rounds remain:
// live -> word-selection, turn passes to the next player.
func AdvanceRound(s State) (State, error) {
	if s.Status != StatusLive {
		return s, ErrWrongPhase
	}
	s.Status = StatusWordSelection
	s.Word = ""
	s.RoundStartedAt = time.Time{}
	s.CurrentTurnIndex = nextIndex(s.CurrentTurnIndex, len(s.TurnOrder))
	s.CurrentRound++
	s.Generation++
	return s, nil
}

// EndMatch handles the next-round deadline once CurrentRound has reached
// TotalRounds: live -> lobby.
func EndMatch(s State) (State, error) {
	if s.Status != StatusLive {
		return s, ErrWrongPhase
	}
	s.Status = StatusLobby
	s.Word = ""
	s.RoundStartedAt = time.Time{}
	s.CurrentRound = 0
	s.Generation++
	return s, nil
}

// MatchOver reports whether the next-round deadline should end the match
// instead of opening another round, against the configuration current at
// fire time.
func (s State) MatchOver() bool {
	return s.CurrentRound >= s.Config.TotalRounds
}
