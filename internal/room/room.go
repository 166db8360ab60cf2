// Package room runs one goroutine per game room. All roster and
// game-state mutation happens on that goroutine; inbound actions and
// scheduled deadlines are messages on the same inbox, so no two
// operations on a room ever interleave.
package room

import (
	"context"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/Yagnik-Gohil/skribbl-server/internal/engine"
	"github.com/Yagnik-Gohil/skribbl-server/internal/schedule"
	"github.com/Yagnik-Gohil/skribbl-server/internal/words"
)

type member struct {
	p   Participant
	seq int // join order, breaks leaderboard ties
}

type Room struct {
	id      string
	inbox   chan Msg
	roster  map[string]*member
	state   engine.State
	joinSeq int
	subs    map[string]chan Notification

	sched        *schedule.Scheduler
	leaderBoardH schedule.Handle
	nextRoundH   schedule.Handle

	picker *words.Picker
	log    *zap.Logger
	now    func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

func New(parent context.Context, id string, sched *schedule.Scheduler, picker *words.Picker, log *zap.Logger) *Room {
	ctx, cancel := context.WithCancel(parent)

	r := &Room{
		id:     id,
		inbox:  make(chan Msg, 64),
		roster: make(map[string]*member),
		state:  engine.NewState(),
		subs:   make(map[string]chan Notification),
		sched:  sched,
		picker: picker,
		log:    log.With(zap.String("room", id)),
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
	}

	go r.loop()
	return r
}

func (r *Room) ID() string { return r.id }

// Inbox is where the registry (and tests) deliver messages.
func (r *Room) Inbox() chan<- Msg { return r.inbox }

// Done is closed once the room has been destroyed. Callers racing a
// destruction select on it instead of blocking on a dead inbox.
func (r *Room) Done() <-chan struct{} { return r.ctx.Done() }

// Send delivers m unless the room is destroyed or ctx expires first.
func (r *Room) Send(ctx context.Context, m Msg) bool {
	select {
	case r.inbox <- m:
		return true
	case <-r.ctx.Done():
		return false
	case <-ctx.Done():
		return false
	}
}

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.handleJoin(msg)
			case Remove:
				r.handleRemove(msg)
			case Configure:
				r.handleConfigure(msg)
			case StartSelection:
				r.handleStartSelection(msg)
			case SelectWord:
				r.handleSelectWord(msg)
			case Guess:
				r.handleGuess(msg)
			case GetSnapshot:
				msg.Reply <- r.snapshot()
			case GetLeaderBoard:
				msg.Reply <- r.leaderBoard()
			case GetParticipant:
				if m, ok := r.roster[msg.ClientID]; ok {
					msg.Reply <- ParticipantResult{Participant: m.p, OK: true}
				} else {
					msg.Reply <- ParticipantResult{}
				}
			case deadline:
				r.handleDeadline(msg)
			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) shutdown() {
	r.cancelDeadlines()
	for id, ch := range r.subs {
		close(ch)
		delete(r.subs, id)
	}
	r.cancel()
}

func (r *Room) handleJoin(msg Join) {
	p := msg.Participant
	p.RoomID = r.id

	// Admin join is the authoritative reset path: it replaces the game
	// state with defaults even mid-match. Pending deadlines die with the
	// old generation.
	if p.IsAdmin {
		r.cancelDeadlines()
		r.state = engine.NewState()
		r.log.Info("game state reset by admin join", zap.String("client", msg.ClientID))
	}

	if existing, ok := r.roster[msg.ClientID]; ok {
		// Re-join of the same room: idempotent for membership, but the
		// profile fields may have changed.
		existing.p = p
	} else {
		r.joinSeq++
		r.roster[msg.ClientID] = &member{p: p, seq: r.joinSeq}
	}

	r.state = engine.AddPlayer(r.state, msg.ClientID)

	if msg.Outbox != nil {
		// A re-join brings a fresh outbox; release the old one so its
		// writer can exit.
		if old, ok := r.subs[msg.ClientID]; ok && old != msg.Outbox {
			close(old)
		}
		r.subs[msg.ClientID] = msg.Outbox
	}

	snap := r.snapshot()
	r.broadcast(Notification{
		Type:        NotifyJoined,
		Participant: &p,
		Members:     snap.Members,
		State:       &snap.State,
		CurrentTurn: snap.CurrentTurn,
	})

	if msg.Reply != nil {
		msg.Reply <- snap
	}
}

func (r *Room) handleRemove(msg Remove) {
	m, ok := r.roster[msg.ClientID]
	if !ok {
		if msg.Reply != nil {
			msg.Reply <- RemoveResult{Removed: false}
		}
		return
	}

	delete(r.roster, msg.ClientID)
	if ch, ok := r.subs[msg.ClientID]; ok {
		close(ch)
		delete(r.subs, msg.ClientID)
	}
	r.state = engine.RemovePlayer(r.state, msg.ClientID)

	if len(r.roster) == 0 {
		// Registry destroys the room; deadlines are cancelled on
		// shutdown.
		if msg.Reply != nil {
			msg.Reply <- RemoveResult{Removed: true, Empty: true}
		}
		return
	}

	snap := r.snapshot()
	r.broadcast(Notification{
		Type:        NotifyLeft,
		Participant: &m.p,
		Members:     snap.Members,
		State:       &snap.State,
		CurrentTurn: snap.CurrentTurn,
	})

	if msg.Reply != nil {
		msg.Reply <- RemoveResult{Removed: true, Snap: snap}
	}
}

func (r *Room) handleConfigure(msg Configure) {
	next, err := engine.Configure(r.state, msg.Config)
	if err != nil {
		msg.Reply <- ActionResult{Err: err}
		return
	}
	r.state = next

	cfg := msg.Config
	r.broadcast(Notification{Type: NotifyConfigUpdated, Config: &cfg})
	msg.Reply <- ActionResult{Snap: r.snapshot()}
}

func (r *Room) handleStartSelection(msg StartSelection) {
	next, err := engine.BeginSelection(r.state, msg.ClientID)
	if err != nil {
		msg.Reply <- ActionResult{Err: err}
		return
	}
	r.state = next

	snap := r.snapshot()
	r.broadcast(Notification{
		Type:        NotifyWordSelection,
		CurrentTurn: snap.CurrentTurn,
		Words:       r.picker.Candidates(r.state.Config.WordCount),
		Members:     snap.Members,
		State:       &snap.State,
	})
	msg.Reply <- ActionResult{Snap: snap}
}

func (r *Room) handleSelectWord(msg SelectWord) {
	now := r.now()
	next, err := engine.StartRound(r.state, msg.Word, now)
	if err != nil {
		msg.Reply <- ActionResult{Err: err}
		return
	}
	r.state = next

	r.armDeadlines(now)

	snap := r.snapshot()
	r.broadcast(Notification{
		Type:        NotifyGameStarted,
		Word:        msg.Word,
		CurrentTurn: snap.CurrentTurn,
		State:       &snap.State,
	})
	msg.Reply <- ActionResult{Snap: snap}
}

func (r *Room) handleGuess(msg Guess) {
	if r.state.Status != engine.StatusLive {
		msg.Reply <- ActionResult{Err: engine.ErrWrongPhase}
		return
	}
	m, ok := r.roster[msg.GuesserID]
	if !ok {
		msg.Reply <- ActionResult{Err: ErrParticipantNotInRoom}
		return
	}
	m.p.Score += guessScore

	p := m.p
	r.broadcast(Notification{Type: NotifyWordGuessed, Participant: &p})
	msg.Reply <- ActionResult{Snap: r.snapshot()}
}

// guessScore is the flat award per correct guess.
const guessScore = 100

func (r *Room) handleDeadline(msg deadline) {
	if msg.gen != r.state.Generation {
		r.log.Debug("dropping stale deadline",
			zap.Uint64("fired", msg.gen),
			zap.Uint64("current", r.state.Generation))
		return
	}

	switch msg.kind {
	case deadlineLeaderBoard:
		// Transient broadcast only; status unchanged.
		r.broadcast(Notification{Type: NotifyLeaderBoard, LeaderBoard: r.leaderBoard()})

	case deadlineNextRound:
		if r.state.MatchOver() {
			next, err := engine.EndMatch(r.state)
			if err != nil {
				return
			}
			r.state = next
			r.broadcast(Notification{Type: NotifyResult, LeaderBoard: r.leaderBoard()})
			return
		}

		next, err := engine.AdvanceRound(r.state)
		if err != nil {
			return
		}
		r.state = next

		snap := r.snapshot()
		r.broadcast(Notification{
			Type:        NotifyWordSelection,
			CurrentTurn: snap.CurrentTurn,
			Words:       r.picker.Candidates(r.state.Config.WordCount),
			Members:     snap.Members,
			State:       &snap.State,
		})
	}
}

func (r *Room) armDeadlines(start time.Time) {
	r.cancelDeadlines()

	gen := r.state.Generation
	leaderBoardAt := start.Add(time.Duration(r.state.Config.DrawTimeSeconds) * time.Second)
	nextRoundAt := leaderBoardAt.Add(engine.NextRoundGrace)

	r.leaderBoardH = r.sched.At(leaderBoardAt, func() {
		r.deliver(deadline{kind: deadlineLeaderBoard, gen: gen})
	})
	r.nextRoundH = r.sched.At(nextRoundAt, func() {
		r.deliver(deadline{kind: deadlineNextRound, gen: gen})
	})
}

func (r *Room) cancelDeadlines() {
	r.sched.Cancel(r.leaderBoardH)
	r.sched.Cancel(r.nextRoundH)
	r.leaderBoardH = schedule.None
	r.nextRoundH = schedule.None
}

// deliver funnels a fired deadline back through the inbox. A destroyed
// room's context makes this a no-op instead of a blocked goroutine.
func (r *Room) deliver(msg deadline) {
	select {
	case r.inbox <- msg:
	case <-r.ctx.Done():
	}
}

func (r *Room) snapshot() Snapshot {
	snap := Snapshot{
		ID:      r.id,
		Members: r.membersByJoinOrder(),
		State:   r.state,
	}
	snap.State.TurnOrder = slices.Clone(r.state.TurnOrder)

	if holder, ok := r.state.CurrentPlayer(); ok {
		if m, ok := r.roster[holder]; ok {
			p := m.p
			snap.CurrentTurn = &p
		}
	}
	return snap
}

func (r *Room) membersByJoinOrder() []Participant {
	ms := make([]*member, 0, len(r.roster))
	for _, m := range r.roster {
		ms = append(ms, m)
	}
	slices.SortFunc(ms, func(a, b *member) int { return a.seq - b.seq })

	out := make([]Participant, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.p)
	}
	return out
}

// leaderBoard is the roster sorted by score descending, ties broken by
// join order. Read-only.
func (r *Room) leaderBoard() []Participant {
	ms := make([]*member, 0, len(r.roster))
	for _, m := range r.roster {
		ms = append(ms, m)
	}
	slices.SortFunc(ms, func(a, b *member) int {
		if a.p.Score != b.p.Score {
			return b.p.Score - a.p.Score
		}
		return a.seq - b.seq
	})

	out := make([]Participant, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.p)
	}
	return out
}

func (r *Room) broadcast(n Notification) {
	for id, ch := range r.subs {
		select {
		case ch <- n:
			// ok
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(r.subs, id)
		}
	}
}
