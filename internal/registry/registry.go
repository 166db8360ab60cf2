// Package registry is the single entry point for all room mutations. A
// lone goroutine owns the room table and the client -> room reverse
// index; per-room mutation then happens on that room's own goroutine,
// so independent rooms proceed in parallel.
package registry

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Yagnik-Gohil/skribbl-server/internal/engine"
	"github.com/Yagnik-Gohil/skribbl-server/internal/room"
	"github.com/Yagnik-Gohil/skribbl-server/internal/schedule"
	"github.com/Yagnik-Gohil/skribbl-server/internal/words"
)

var ErrRoomNotFound = errors.New("room not found")
var ErrClientNotInAnyRoom = errors.New("client not in any room")

type regMsg interface{ isRegMsg() }

type joinReq struct {
	participant room.Participant
	clientID    string
	outbox      chan room.Notification
	reply       chan joinRes
}

type joinRes struct {
	snap room.Snapshot
	err  error
}

type removeReq struct {
	clientID string
	reply    chan removeRes
}

type removeRes struct {
	removed bool
	snap    room.Snapshot
}

type lookupRoomReq struct {
	roomID string
	reply  chan *room.Room
}

type lookupClientReq struct {
	clientID string
	reply    chan lookupClientRes
}

type lookupClientRes struct {
	rm     *room.Room
	roomID string
}

type shutdownReq struct{}

func (joinReq) isRegMsg()         {}
func (removeReq) isRegMsg()       {}
func (lookupRoomReq) isRegMsg()   {}
func (lookupClientReq) isRegMsg() {}
func (shutdownReq) isRegMsg()     {}

type Registry struct {
	inbox   chan regMsg
	rooms   map[string]*room.Room
	clients map[string]string // clientID -> roomID, one entry per connected client

	sched  *schedule.Scheduler
	picker *words.Picker
	log    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func New(parent context.Context, sched *schedule.Scheduler, picker *words.Picker, log *zap.Logger) *Registry {
	ctx, cancel := context.WithCancel(parent)

	g := &Registry{
		inbox:   make(chan regMsg, 64),
		rooms:   make(map[string]*room.Room),
		clients: make(map[string]string),
		sched:   sched,
		picker:  picker,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}

	go g.loop()
	return g
}

func (g *Registry) loop() {
	for {
		select {
		case <-g.ctx.Done():
			g.shutdown()
			return

		case m := <-g.inbox:
			switch msg := m.(type) {
			case joinReq:
				msg.reply <- g.handleJoin(msg)
			case removeReq:
				msg.reply <- g.handleRemove(msg.clientID)
			case lookupRoomReq:
				msg.reply <- g.rooms[msg.roomID] // may be nil
			case lookupClientReq:
				res := lookupClientRes{}
				if roomID, ok := g.clients[msg.clientID]; ok {
					res.roomID = roomID
					res.rm = g.rooms[roomID]
				}
				msg.reply <- res
			case shutdownReq:
				g.shutdown()
				return
			}
		}
	}
}

func (g *Registry) shutdown() {
	for id, rm := range g.rooms {
		rm.Send(g.ctx, room.Shutdown{})
		delete(g.rooms, id)
	}
	clear(g.clients)
	g.cancel()
}

func (g *Registry) handleJoin(msg joinReq) joinRes {
	roomID := msg.participant.RoomID
	if roomID == "" {
		return joinRes{err: ErrRoomNotFound}
	}

	// Single-room occupancy: joining room B while occupying room A is an
	// implicit leave of A first. Two independent single-room mutations,
	// not a cross-room transaction.
	if prev, ok := g.clients[msg.clientID]; ok && prev != roomID {
		g.handleRemove(msg.clientID)
	}

	rm, ok := g.rooms[roomID]
	if !ok {
		rm = room.New(g.ctx, roomID, g.sched, g.picker, g.log)
		g.rooms[roomID] = rm
		g.log.Info("room created", zap.String("room", roomID))
	}

	reply := make(chan room.Snapshot, 1)
	rm.Inbox() <- room.Join{
		Participant: msg.participant,
		ClientID:    msg.clientID,
		Outbox:      msg.outbox,
		Reply:       reply,
	}
	snap := <-reply

	g.clients[msg.clientID] = roomID
	return joinRes{snap: snap}
}

// handleRemove is the one removal primitive behind both leave and
// disconnect. The reverse-index entry goes away unconditionally, even
// when the room-side lookup fails.
func (g *Registry) handleRemove(clientID string) removeRes {
	roomID, ok := g.clients[clientID]
	delete(g.clients, clientID)
	if !ok {
		return removeRes{}
	}

	rm, ok := g.rooms[roomID]
	if !ok {
		g.log.Warn("reverse index pointed at missing room",
			zap.String("client", clientID), zap.String("room", roomID))
		return removeRes{}
	}

	reply := make(chan room.RemoveResult, 1)
	rm.Inbox() <- room.Remove{ClientID: clientID, Reply: reply}
	res := <-reply

	if res.Empty {
		delete(g.rooms, roomID)
		rm.Send(g.ctx, room.Shutdown{})
		g.log.Info("room destroyed", zap.String("room", roomID))
	}

	return removeRes{removed: res.Removed, snap: res.Snap}
}

// Join inserts the participant into the room named by
// participant.RoomID, creating it if absent. outbox, when non-nil,
// subscribes the client to the room's notifications.
func (g *Registry) Join(ctx context.Context, p room.Participant, clientID string, outbox chan room.Notification) (room.Snapshot, error) {
	reply := make(chan joinRes, 1)
	select {
	case g.inbox <- joinReq{participant: p, clientID: clientID, outbox: outbox, reply: reply}:
	case <-ctx.Done():
		return room.Snapshot{}, ctx.Err()
	}
	select {
	case res := <-reply:
		return res.snap, res.err
	case <-ctx.Done():
		return room.Snapshot{}, ctx.Err()
	}
}

// Leave removes the client from whatever room it occupies.
func (g *Registry) Leave(ctx context.Context, clientID string) (room.Snapshot, error) {
	return g.remove(ctx, clientID)
}

// Disconnect is leave for an abruptly dropped connection; the cleanup
// semantics are identical by construction.
func (g *Registry) Disconnect(ctx context.Context, clientID string) (room.Snapshot, error) {
	return g.remove(ctx, clientID)
}

func (g *Registry) remove(ctx context.Context, clientID string) (room.Snapshot, error) {
	reply := make(chan removeRes, 1)
	select {
	case g.inbox <- removeReq{clientID: clientID, reply: reply}:
	case <-ctx.Done():
		return room.Snapshot{}, ctx.Err()
	}
	select {
	case res := <-reply:
		if !res.removed {
			return room.Snapshot{}, ErrClientNotInAnyRoom
		}
		return res.snap, nil
	case <-ctx.Done():
		return room.Snapshot{}, ctx.Err()
	}
}

// UpdateConfiguration overwrites the room's tunables. It never creates
// a room as a side effect.
func (g *Registry) UpdateConfiguration(ctx context.Context, roomID string, cfg engine.Config) (room.Snapshot, error) {
	rm, err := g.roomByID(ctx, roomID)
	if err != nil {
		return room.Snapshot{}, err
	}
	return g.roomAction(ctx, rm, func(reply chan room.ActionResult) room.Msg {
		return room.Configure{Config: cfg, Reply: reply}
	})
}

// StartWordSelection is the turn holder opening the next round.
func (g *Registry) StartWordSelection(ctx context.Context, clientID string) (room.Snapshot, error) {
	rm, err := g.roomByClient(ctx, clientID)
	if err != nil {
		return room.Snapshot{}, err
	}
	return g.roomAction(ctx, rm, func(reply chan room.ActionResult) room.Msg {
		return room.StartSelection{ClientID: clientID, Reply: reply}
	})
}

// SelectWord moves the room live and arms the round deadlines.
func (g *Registry) SelectWord(ctx context.Context, roomID, word string) (room.Snapshot, error) {
	rm, err := g.roomByID(ctx, roomID)
	if err != nil {
		return room.Snapshot{}, err
	}
	return g.roomAction(ctx, rm, func(reply chan room.ActionResult) room.Msg {
		return room.SelectWord{Word: word, Reply: reply}
	})
}

// RecordCorrectGuess awards the guesser's score.
func (g *Registry) RecordCorrectGuess(ctx context.Context, roomID, guesserID string) (room.Snapshot, error) {
	rm, err := g.roomByID(ctx, roomID)
	if err != nil {
		return room.Snapshot{}, err
	}
	return g.roomAction(ctx, rm, func(reply chan room.ActionResult) room.Msg {
		return room.Guess{GuesserID: guesserID, Reply: reply}
	})
}

// RoomDetails returns the full room snapshot. Absence is an expected
// condition, not an error.
func (g *Registry) RoomDetails(ctx context.Context, roomID string) (room.Snapshot, bool) {
	rm, err := g.roomByID(ctx, roomID)
	if err != nil {
		return room.Snapshot{}, false
	}
	reply := make(chan room.Snapshot, 1)
	if !rm.Send(ctx, room.GetSnapshot{Reply: reply}) {
		return room.Snapshot{}, false
	}
	select {
	case snap := <-reply:
		return snap, true
	case <-rm.Done():
		return room.Snapshot{}, false
	case <-ctx.Done():
		return room.Snapshot{}, false
	}
}

func (g *Registry) RoomMembers(ctx context.Context, roomID string) ([]room.Participant, bool) {
	snap, ok := g.RoomDetails(ctx, roomID)
	if !ok {
		return nil, false
	}
	return snap.Members, true
}

func (g *Registry) GameState(ctx context.Context, roomID string) (engine.State, bool) {
	snap, ok := g.RoomDetails(ctx, roomID)
	if !ok {
		return engine.State{}, false
	}
	return snap.State, true
}

func (g *Registry) CurrentPlayer(ctx context.Context, roomID string) (room.Participant, bool) {
	snap, ok := g.RoomDetails(ctx, roomID)
	if !ok || snap.CurrentTurn == nil {
		return room.Participant{}, false
	}
	return *snap.CurrentTurn, true
}

func (g *Registry) ParticipantByClient(ctx context.Context, clientID string) (room.Participant, bool) {
	rm, err := g.roomByClient(ctx, clientID)
	if err != nil {
		return room.Participant{}, false
	}
	reply := make(chan room.ParticipantResult, 1)
	if !rm.Send(ctx, room.GetParticipant{ClientID: clientID, Reply: reply}) {
		return room.Participant{}, false
	}
	select {
	case res := <-reply:
		return res.Participant, res.OK
	case <-rm.Done():
		return room.Participant{}, false
	case <-ctx.Done():
		return room.Participant{}, false
	}
}

func (g *Registry) LeaderBoard(ctx context.Context, roomID string) ([]room.Participant, bool) {
	rm, err := g.roomByID(ctx, roomID)
	if err != nil {
		return nil, false
	}
	reply := make(chan []room.Participant, 1)
	if !rm.Send(ctx, room.GetLeaderBoard{Reply: reply}) {
		return nil, false
	}
	select {
	case lb := <-reply:
		return lb, true
	case <-rm.Done():
		return nil, false
	case <-ctx.Done():
		return nil, false
	}
}

func (g *Registry) Shutdown() {
	select {
	case g.inbox <- shutdownReq{}:
	case <-g.ctx.Done():
	}
}

func (g *Registry) roomByID(ctx context.Context, roomID string) (*room.Room, error) {
	reply := make(chan *room.Room, 1)
	select {
	case g.inbox <- lookupRoomReq{roomID: roomID, reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case rm := <-reply:
		if rm == nil {
			return nil, ErrRoomNotFound
		}
		return rm, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *Registry) roomByClient(ctx context.Context, clientID string) (*room.Room, error) {
	reply := make(chan lookupClientRes, 1)
	select {
	case g.inbox <- lookupClientReq{clientID: clientID, reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case res := <-reply:
		if res.rm == nil {
			return nil, ErrClientNotInAnyRoom
		}
		return res.rm, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// roomAction runs one mutation on the room's serial executor. A room
// destroyed between lookup and delivery reports not-found rather than
// blocking.
func (g *Registry) roomAction(ctx context.Context, rm *room.Room, build func(chan room.ActionResult) room.Msg) (room.Snapshot, error) {
	reply := make(chan room.ActionResult, 1)
	if !rm.Send(ctx, build(reply)) {
		return room.Snapshot{}, ErrRoomNotFound
	}
	select {
	case res := <-reply:
		return res.Snap, res.Err
	case <-rm.Done():
		return room.Snapshot{}, ErrRoomNotFound
	case <-ctx.Done():
		return room.Snapshot{}, ctx.Err()
	}
}
