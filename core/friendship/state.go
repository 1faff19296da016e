package friendship

import (
	"fmt"

	"github.com/krtchnt/zenki/model"
)

// Status is the relationship between two users, seen from the first one.
type Status int

const (
	NotFriends Status = iota
	RequestSent
	RequestReceived
	Friends
)

var statusNames = [...]string{"NotFriends", "RequestSent", "RequestReceived", "Friends"}

func (s Status) String() string {
	if int(s) < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// MarshalText encodes the status by name for JSON responses.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Action is a mutation requested by uid against fid.
type Action string

const (
	ActionSend    Action = "send"
	ActionAccept  Action = "accept"
	ActionDecline Action = "decline"
	ActionCancel  Action = "cancel"
	ActionRemove  Action = "remove"
)

type verdict int

const (
	reject verdict = iota
	noop
	apply
)

type transition struct {
	verdict verdict
	next    Status
}

// transitions lists every (status, action) pair. A pair absent from the
// table is rejected.
var transitions = map[Status]map[Action]transition{
	NotFriends: {
		ActionSend:    {apply, RequestSent},
		ActionDecline: {noop, NotFriends},
		ActionCancel:  {noop, NotFriends},
		ActionRemove:  {noop, NotFriends},
	},
	RequestSent: {
		ActionCancel:  {apply, NotFriends},
		ActionDecline: {noop, RequestSent},
		ActionRemove:  {noop, RequestSent},
	},
	RequestReceived: {
		ActionAccept:  {apply, Friends},
		ActionDecline: {apply, NotFriends},
		ActionCancel:  {noop, RequestReceived},
		ActionRemove:  {noop, RequestReceived},
	},
	Friends: {
		ActionRemove:  {apply, NotFriends},
		ActionDecline: {noop, Friends},
		ActionCancel:  {noop, Friends},
	},
}

func lookup(s Status, a Action) transition {
	if t, ok := transitions[s][a]; ok {
		return t
	}
	return transition{verdict: reject, next: s}
}

// classify derives the status of (uid, fid) from the edges between them.
func classify(edges []model.Friendship, uid, fid int64) Status {
	if len(edges) == 0 {
		return NotFriends
	}
	if len(edges) == 1 && edges[0].Pending {
		if edges[0].UID == uid {
			return RequestSent
		}
		if edges[0].UID == fid {
			return RequestReceived
		}
	}
	return Friends
}
