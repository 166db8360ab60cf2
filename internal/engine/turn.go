package engine

import "slices"

// AddPlayer appends id to the turn order iff not already present. Join
// order is preserved; re-joining the same room is idempotent.
func AddPlayer(s State, id string) State {
	if slices.Contains(s.TurnOrder, id) {
		return s
	}
	s.TurnOrder = append(slices.Clone(s.TurnOrder), id)
	return s
}

// RemovePlayer drops id from the turn order and recomputes the current
// turn index against the post-removal order:
//   - removal before the index shifts the index down by one
//   - removal at the index wraps it modulo the new length, so the turn
//     passes to whoever now occupies the same slot (or index 0 if the
//     holder was last)
//   - an emptied order resets the index to 0
//
// Leave and disconnect both go through here so their turn-adjustment
// semantics cannot drift apart.
func RemovePlayer(s State, id string) State {
	p := slices.Index(s.TurnOrder, id)
	if p < 0 {
		return s
	}
	s.TurnOrder = slices.Delete(slices.Clone(s.TurnOrder), p, p+1)
	switch {
	case len(s.TurnOrder) == 0:
		s.CurrentTurnIndex = 0
	case p < s.CurrentTurnIndex:
		s.CurrentTurnIndex--
	case p == s.CurrentTurnIndex:
		s.CurrentTurnIndex = s.CurrentTurnIndex % len(s.TurnOrder)
	}
	return s
}

func nextIndex(cur, n int) int {
	if n == 0 {
		return 0
	}
	return (cur + 1) % n
}
