package lockservice

import "slices"

// TargetAll is the pseudo-target that applies a lock operation to
// every tracked detector.
const TargetAll = "ALL"

// AccessAdmin marks operators that may force-take and force-release
// locks held by someone else.
const AccessAdmin = "admin"

// State of a detector lock.
type State string

// A lock is either free or taken by exactly one operator.
const (
	Free  State = "FREE"
	Taken State = "TAKEN"
)

// User identifies the operator behind a request. Access carries the
// role names granted by the SSO layer and is never serialized into
// lock snapshots.
type User struct {
	Username string   `json:"username"`
	FullName string   `json:"fullName"`
	PersonID int      `json:"personid"`
	Access   []string `json:"-"`
}

// SameIdentity reports whether u is the identity (username, personID).
// Both fields must match; either alone is not sufficient.
func (u User) SameIdentity(username string, personID int) bool {
	return u.Username == username && u.PersonID == personID
}

// IsAdmin reports whether u carries the admin access role.
func (u User) IsAdmin() bool {
	return slices.Contains(u.Access, AccessAdmin)
}

// Lock is the exclusive-access flag of a single detector. Owner is set
// exactly when State is Taken.
type Lock struct {
	Name  string `json:"name"`
	State State  `json:"state"`
	Owner *User  `json:"owner,omitempty"`
}

// Snapshot is the full current map of tracked locks keyed by detector
// name. Every mutating and read operation returns one so a single
// response fully describes system state.
type Snapshot map[string]Lock

// Taken counts the locks currently held.
func (s Snapshot) Taken() int {
	n := 0
	for _, l := range s {
		if l.State == Taken {
			n++
		}
	}
	return n
}

// Action is a lock operation requested over the wire.
type Action string

// The two actions a client may apply on a lock.
const (
	ActionTake    Action = "TAKE"
	ActionRelease Action = "RELEASE"
)

// ParseAction maps the wire representation to an Action, rejecting
// anything outside the closed set.
func ParseAction(s string) (Action, bool) {
	switch Action(s) {
	case ActionTake:
		return ActionTake, true
	case ActionRelease:
		return ActionRelease, true
	}
	return "", false
}
