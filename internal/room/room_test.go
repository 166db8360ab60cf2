package room

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Yagnik-Gohil/skribbl-server/internal/engine"
	"github.com/Yagnik-Gohil/skribbl-server/internal/schedule"
	"github.com/Yagnik-Gohil/skribbl-server/internal/words"
)

func newTestRoom(t *testing.T) *Room {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	sched := schedule.New()
	t.Cleanup(sched.Stop)

	return New(ctx, "R1", sched, words.NewPicker(nil), zap.NewNop())
}

// helper: receive one notification with a timeout so tests never hang
func recvNotification(t *testing.T, ch <-chan Notification, within time.Duration) Notification {
	t.Helper()
	select {
	case n, ok := <-ch:
		if !ok {
			t.Fatalf("outbox closed unexpectedly")
		}
		return n
	case <-time.After(within):
		t.Fatalf("timed out waiting for notification")
		return Notification{} // unreachable
	}
}

func recvNoNotification(t *testing.T, ch <-chan Notification, within time.Duration) {
	t.Helper()
	select {
	case n, ok := <-ch:
		if !ok {
			return
		}
		t.Fatalf("expected no notification within %v, but got: %+v", within, n)
	case <-time.After(within):
	}
}

func join(t *testing.T, r *Room, id, name string, admin bool, outbox chan Notification) Snapshot {
	t.Helper()
	reply := make(chan Snapshot, 1)
	r.Inbox() <- Join{
		Participant: Participant{ID: id, Name: name, IsAdmin: admin},
		ClientID:    id,
		Outbox:      outbox,
		Reply:       reply,
	}
	select {
	case snap := <-reply:
		return snap
	case <-time.After(time.Second):
		t.Fatalf("timed out joining %s", id)
		return Snapshot{} // unreachable
	}
}

func act(t *testing.T, r *Room, msg Msg, reply chan ActionResult) ActionResult {
	t.Helper()
	r.Inbox() <- msg
	select {
	case res := <-reply:
		return res
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for action result")
		return ActionResult{} // unreachable
	}
}

func TestJoin_CreatesRosterAndTurnOrder(t *testing.T) {
	r := newTestRoom(t)

	snap := join(t, r, "a", "Alice", true, nil)
	require.Len(t, snap.Members, 1)
	assert.Equal(t, []string{"a"}, snap.State.TurnOrder)
	assert.Equal(t, 0, snap.State.CurrentTurnIndex)
	assert.Equal(t, engine.StatusLobby, snap.State.Status)
	assert.Equal(t, "R1", snap.Members[0].RoomID)
	require.NotNil(t, snap.CurrentTurn)
	assert.Equal(t, "a", snap.CurrentTurn.ID)
}

func TestJoin_BroadcastsToExistingOccupants(t *testing.T) {
	r := newTestRoom(t)

	out := make(chan Notification, 4)
	join(t, r, "a", "Alice", true, out)
	_ = recvNotification(t, out, time.Second) // own joined event

	snap := join(t, r, "b", "Bob", false, nil)
	assert.Equal(t, []string{"a", "b"}, snap.State.TurnOrder)

	n := recvNotification(t, out, time.Second)
	assert.Equal(t, NotifyJoined, n.Type)
	require.NotNil(t, n.Participant)
	assert.Equal(t, "b", n.Participant.ID)
	assert.Len(t, n.Members, 2)
}

func TestJoin_SameClientIsIdempotent(t *testing.T) {
	r := newTestRoom(t)

	join(t, r, "a", "Alice", true, nil)
	join(t, r, "b", "Bob", false, nil)
	snap := join(t, r, "b", "Bobby", false, nil)

	assert.Equal(t, []string{"a", "b"}, snap.State.TurnOrder)
	require.Len(t, snap.Members, 2)
	assert.Equal(t, "Bobby", snap.Members[1].Name)
}

func TestJoin_AdminResetsInProgressGame(t *testing.T) {
	r := newTestRoom(t)

	join(t, r, "a", "Alice", true, nil)
	join(t, r, "b", "Bob", false, nil)

	reply := make(chan ActionResult, 1)
	act(t, r, StartSelection{ClientID: "a", Reply: reply}, reply)

	reply = make(chan ActionResult, 1)
	res := act(t, r, SelectWord{Word: "apple", Reply: reply}, reply)
	require.NoError(t, res.Err)
	assert.Equal(t, engine.StatusLive, res.Snap.State.Status)

	snap := join(t, r, "c", "Cara", true, nil)
	assert.Equal(t, engine.StatusLobby, snap.State.Status)
	assert.Equal(t, 0, snap.State.CurrentRound)
	assert.Empty(t, snap.State.Word)
	// fresh state only carries the joining admin
	assert.Equal(t, []string{"c"}, snap.State.TurnOrder)
	// roster keeps everyone
	assert.Len(t, snap.Members, 3)
}

func remove(t *testing.T, r *Room, id string) RemoveResult {
	t.Helper()
	reply := make(chan RemoveResult, 1)
	r.Inbox() <- Remove{ClientID: id, Reply: reply}
	select {
	case res := <-reply:
		return res
	case <-time.After(time.Second):
		t.Fatalf("timed out removing %s", id)
		return RemoveResult{} // unreachable
	}
}

func TestRemove_UnknownClient(t *testing.T) {
	r := newTestRoom(t)
	join(t, r, "a", "Alice", true, nil)

	res := remove(t, r, "ghost")
	assert.False(t, res.Removed)
}

func TestRemove_LastOccupantReportsEmpty(t *testing.T) {
	r := newTestRoom(t)
	join(t, r, "a", "Alice", true, nil)

	res := remove(t, r, "a")
	assert.True(t, res.Removed)
	assert.True(t, res.Empty)
}

func TestRemove_TurnHolderPassesTurn(t *testing.T) {
	r := newTestRoom(t)
	join(t, r, "a", "Alice", true, nil)
	join(t, r, "b", "Bob", false, nil)
	join(t, r, "c", "Cara", false, nil)

	res := remove(t, r, "a")
	require.True(t, res.Removed)
	assert.False(t, res.Empty)
	assert.Equal(t, []string{"b", "c"}, res.Snap.State.TurnOrder)
	assert.Equal(t, 0, res.Snap.State.CurrentTurnIndex)
	require.NotNil(t, res.Snap.CurrentTurn)
	assert.Equal(t, "b", res.Snap.CurrentTurn.ID)
}

func TestConfigure_RejectsOutOfRange(t *testing.T) {
	r := newTestRoom(t)
	join(t, r, "a", "Alice", true, nil)

	reply := make(chan ActionResult, 1)
	res := act(t, r, Configure{
		Config: engine.Config{DrawTimeSeconds: 5, HintCount: 2, TotalRounds: 3, WordCount: 3, WordMode: engine.WordModeNormal},
		Reply:  reply,
	}, reply)
	require.ErrorIs(t, res.Err, engine.ErrInvalidConfiguration)

	// no mutation happened
	snapReply := make(chan Snapshot, 1)
	r.Inbox() <- GetSnapshot{Reply: snapReply}
	snap := <-snapReply
	assert.Equal(t, 60, snap.State.Config.DrawTimeSeconds)
}

func TestConfigure_Updates(t *testing.T) {
	r := newTestRoom(t)
	out := make(chan Notification, 4)
	join(t, r, "a", "Alice", true, out)
	_ = recvNotification(t, out, time.Second)

	reply := make(chan ActionResult, 1)
	cfg := engine.Config{DrawTimeSeconds: 90, HintCount: 1, TotalRounds: 5, WordCount: 2, WordMode: engine.WordModeHidden}
	res := act(t, r, Configure{Config: cfg, Reply: reply}, reply)
	require.NoError(t, res.Err)
	assert.Equal(t, cfg, res.Snap.State.Config)

	n := recvNotification(t, out, time.Second)
	assert.Equal(t, NotifyConfigUpdated, n.Type)
	require.NotNil(t, n.Config)
	assert.Equal(t, 90, n.Config.DrawTimeSeconds)
}

func TestStartSelection_OnlyTurnHolder(t *testing.T) {
	r := newTestRoom(t)
	join(t, r, "a", "Alice", true, nil)
	join(t, r, "b", "Bob", false, nil)

	reply := make(chan ActionResult, 1)
	res := act(t, r, StartSelection{ClientID: "b", Reply: reply}, reply)
	require.ErrorIs(t, res.Err, engine.ErrNotYourTurn)

	reply = make(chan ActionResult, 1)
	res = act(t, r, StartSelection{ClientID: "a", Reply: reply}, reply)
	require.NoError(t, res.Err)
	assert.Equal(t, engine.StatusWordSelection, res.Snap.State.Status)
	assert.Equal(t, 1, res.Snap.State.CurrentRound)
}

func TestStartSelection_EmitsCandidateWords(t *testing.T) {
	r := newTestRoom(t)
	out := make(chan Notification, 4)
	join(t, r, "a", "Alice", true, out)
	_ = recvNotification(t, out, time.Second)

	reply := make(chan ActionResult, 1)
	res := act(t, r, StartSelection{ClientID: "a", Reply: reply}, reply)
	require.NoError(t, res.Err)

	n := recvNotification(t, out, time.Second)
	assert.Equal(t, NotifyWordSelection, n.Type)
	assert.Len(t, n.Words, 3) // default word count
	require.NotNil(t, n.CurrentTurn)
	assert.Equal(t, "a", n.CurrentTurn.ID)
}

func TestGuess_AwardsScoreOnlyWhileLive(t *testing.T) {
	r := newTestRoom(t)
	join(t, r, "a", "Alice", true, nil)
	join(t, r, "b", "Bob", false, nil)

	reply := make(chan ActionResult, 1)
	res := act(t, r, Guess{GuesserID: "b", Reply: reply}, reply)
	require.ErrorIs(t, res.Err, engine.ErrWrongPhase)

	reply = make(chan ActionResult, 1)
	act(t, r, StartSelection{ClientID: "a", Reply: reply}, reply)
	reply = make(chan ActionResult, 1)
	act(t, r, SelectWord{Word: "apple", Reply: reply}, reply)

	reply = make(chan ActionResult, 1)
	res = act(t, r, Guess{GuesserID: "b", Reply: reply}, reply)
	require.NoError(t, res.Err)
	require.Len(t, res.Snap.Members, 2)
	assert.Equal(t, 100, res.Snap.Members[1].Score)

	reply = make(chan ActionResult, 1)
	res = act(t, r, Guess{GuesserID: "ghost", Reply: reply}, reply)
	require.ErrorIs(t, res.Err, ErrParticipantNotInRoom)
}

func TestLeaderBoard_SortsByScoreThenJoinOrder(t *testing.T) {
	r := newTestRoom(t)
	join(t, r, "a", "Alice", true, nil)
	join(t, r, "b", "Bob", false, nil)
	join(t, r, "c", "Cara", false, nil)

	reply := make(chan ActionResult, 1)
	act(t, r, StartSelection{ClientID: "a", Reply: reply}, reply)
	reply = make(chan ActionResult, 1)
	act(t, r, SelectWord{Word: "apple", Reply: reply}, reply)

	reply = make(chan ActionResult, 1)
	act(t, r, Guess{GuesserID: "c", Reply: reply}, reply)

	lbReply := make(chan []Participant, 1)
	r.Inbox() <- GetLeaderBoard{Reply: lbReply}
	lb := <-lbReply

	require.Len(t, lb, 3)
	assert.Equal(t, "c", lb[0].ID) // 100 points
	assert.Equal(t, "a", lb[1].ID) // 0 points, joined first
	assert.Equal(t, "b", lb[2].ID)
}

// Deadlines are injected directly into the inbox here; the schedule
// package covers real timer firing.

func TestDeadline_LeaderBoardIsTransient(t *testing.T) {
	r := newTestRoom(t)
	out := make(chan Notification, 8)
	join(t, r, "a", "Alice", true, out)
	_ = recvNotification(t, out, time.Second)

	reply := make(chan ActionResult, 1)
	act(t, r, StartSelection{ClientID: "a", Reply: reply}, reply)
	_ = recvNotification(t, out, time.Second)
	reply = make(chan ActionResult, 1)
	res := act(t, r, SelectWord{Word: "apple", Reply: reply}, reply)
	_ = recvNotification(t, out, time.Second)

	r.Inbox() <- deadline{kind: deadlineLeaderBoard, gen: res.Snap.State.Generation}

	n := recvNotification(t, out, time.Second)
	assert.Equal(t, NotifyLeaderBoard, n.Type)
	require.Len(t, n.LeaderBoard, 1)

	snapReply := make(chan Snapshot, 1)
	r.Inbox() <- GetSnapshot{Reply: snapReply}
	snap := <-snapReply
	assert.Equal(t, engine.StatusLive, snap.State.Status)
	assert.Equal(t, "apple", snap.State.Word)
}

func TestDeadline_NextRoundAdvancesTurn(t *testing.T) {
	r := newTestRoom(t)
	out := make(chan Notification, 8)
	join(t, r, "a", "Alice", true, out)
	_ = recvNotification(t, out, time.Second)
	join(t, r, "b", "Bob", false, nil)
	_ = recvNotification(t, out, time.Second)

	reply := make(chan ActionResult, 1)
	act(t, r, StartSelection{ClientID: "a", Reply: reply}, reply)
	_ = recvNotification(t, out, time.Second)
	reply = make(chan ActionResult, 1)
	res := act(t, r, SelectWord{Word: "apple", Reply: reply}, reply)
	_ = recvNotification(t, out, time.Second)

	r.Inbox() <- deadline{kind: deadlineNextRound, gen: res.Snap.State.Generation}

	n := recvNotification(t, out, time.Second)
	assert.Equal(t, NotifyWordSelection, n.Type)
	require.NotNil(t, n.CurrentTurn)
	assert.Equal(t, "b", n.CurrentTurn.ID)
	require.NotNil(t, n.State)
	assert.Equal(t, 2, n.State.CurrentRound)
	assert.Empty(t, n.State.Word)
}

func TestDeadline_FinalRoundEmitsResult(t *testing.T) {
	r := newTestRoom(t)
	out := make(chan Notification, 8)
	join(t, r, "a", "Alice", true, out)
	_ = recvNotification(t, out, time.Second)

	reply := make(chan ActionResult, 1)
	cfg := engine.Config{DrawTimeSeconds: 60, HintCount: 2, TotalRounds: 1, WordCount: 3, WordMode: engine.WordModeNormal}
	act(t, r, Configure{Config: cfg, Reply: reply}, reply)
	_ = recvNotification(t, out, time.Second)

	reply = make(chan ActionResult, 1)
	act(t, r, StartSelection{ClientID: "a", Reply: reply}, reply)
	_ = recvNotification(t, out, time.Second)
	reply = make(chan ActionResult, 1)
	res := act(t, r, SelectWord{Word: "apple", Reply: reply}, reply)
	_ = recvNotification(t, out, time.Second)

	r.Inbox() <- deadline{kind: deadlineNextRound, gen: res.Snap.State.Generation}

	n := recvNotification(t, out, time.Second)
	assert.Equal(t, NotifyResult, n.Type)
	require.Len(t, n.LeaderBoard, 1)

	snapReply := make(chan Snapshot, 1)
	r.Inbox() <- GetSnapshot{Reply: snapReply}
	snap := <-snapReply
	assert.Equal(t, engine.StatusLobby, snap.State.Status)
	assert.Empty(t, snap.State.Word)
}

func TestDeadline_StaleGenerationIsDropped(t *testing.T) {
	r := newTestRoom(t)
	out := make(chan Notification, 8)
	join(t, r, "a", "Alice", true, out)
	_ = recvNotification(t, out, time.Second)

	reply := make(chan ActionResult, 1)
	act(t, r, StartSelection{ClientID: "a", Reply: reply}, reply)
	_ = recvNotification(t, out, time.Second)
	reply = make(chan ActionResult, 1)
	res := act(t, r, SelectWord{Word: "apple", Reply: reply}, reply)
	_ = recvNotification(t, out, time.Second)
	staleGen := res.Snap.State.Generation

	// Admin re-join resets the game; the old round's deadlines must
	// become no-ops.
	join(t, r, "z", "Zed", true, nil)
	_ = recvNotification(t, out, time.Second)

	r.Inbox() <- deadline{kind: deadlineNextRound, gen: staleGen}
	recvNoNotification(t, out, 200*time.Millisecond)

	snapReply := make(chan Snapshot, 1)
	r.Inbox() <- GetSnapshot{Reply: snapReply}
	snap := <-snapReply
	assert.Equal(t, engine.StatusLobby, snap.State.Status)
}

// Matches the end-to-end walkthrough: join, start, select, disconnect,
// both deadlines, three rounds to the final result.
func TestRoom_FullMatchScenario(t *testing.T) {
	r := newTestRoom(t)
	out := make(chan Notification, 16)

	snap := join(t, r, "A", "Admin", true, out)
	_ = recvNotification(t, out, time.Second)
	assert.Equal(t, []string{"A"}, snap.State.TurnOrder)

	snap = join(t, r, "B", "Bob", false, nil)
	_ = recvNotification(t, out, time.Second)
	assert.Equal(t, []string{"A", "B"}, snap.State.TurnOrder)

	reply := make(chan ActionResult, 1)
	res := act(t, r, StartSelection{ClientID: "A", Reply: reply}, reply)
	require.NoError(t, res.Err)
	_ = recvNotification(t, out, time.Second)
	assert.Equal(t, 1, res.Snap.State.CurrentRound)

	reply = make(chan ActionResult, 1)
	res = act(t, r, SelectWord{Word: "apple", Reply: reply}, reply)
	require.NoError(t, res.Err)
	_ = recvNotification(t, out, time.Second)
	assert.Equal(t, "apple", res.Snap.State.Word)
	liveGen := res.Snap.State.Generation

	// B disconnects mid-round; holder unchanged.
	rm := remove(t, r, "B")
	require.True(t, rm.Removed)
	_ = recvNotification(t, out, time.Second)
	assert.Equal(t, []string{"A"}, rm.Snap.State.TurnOrder)
	assert.Equal(t, 0, rm.Snap.State.CurrentTurnIndex)

	// Leaderboard deadline: broadcast only.
	r.Inbox() <- deadline{kind: deadlineLeaderBoard, gen: liveGen}
	n := recvNotification(t, out, time.Second)
	assert.Equal(t, NotifyLeaderBoard, n.Type)

	// Next-round deadline: round 1 of 3, so back to word-selection with
	// the turn wrapped to A.
	r.Inbox() <- deadline{kind: deadlineNextRound, gen: liveGen}
	n = recvNotification(t, out, time.Second)
	assert.Equal(t, NotifyWordSelection, n.Type)
	assert.Equal(t, "A", n.CurrentTurn.ID)
	assert.Equal(t, 2, n.State.CurrentRound)

	// Round 2 and 3.
	for round := 2; round <= 3; round++ {
		reply = make(chan ActionResult, 1)
		res = act(t, r, SelectWord{Word: "pear", Reply: reply}, reply)
		require.NoError(t, res.Err)
		_ = recvNotification(t, out, time.Second)
		gen := res.Snap.State.Generation

		r.Inbox() <- deadline{kind: deadlineNextRound, gen: gen}
		n = recvNotification(t, out, time.Second)
		if round < 3 {
			assert.Equal(t, NotifyWordSelection, n.Type)
		} else {
			assert.Equal(t, NotifyResult, n.Type)
		}
	}

	snapReply := make(chan Snapshot, 1)
	r.Inbox() <- GetSnapshot{Reply: snapReply}
	final := <-snapReply
	assert.Equal(t, engine.StatusLobby, final.State.Status)
	assert.Equal(t, 0, final.State.CurrentRound)
}
