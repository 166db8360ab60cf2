package room

import "errors"

var ErrParticipantNotInRoom = errors.New("participant not in room")
