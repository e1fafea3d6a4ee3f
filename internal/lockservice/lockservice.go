package lockservice

// LockService describes the detector lock coordinator. It maintains
// one exclusive-access lock per tracked detector and arbitrates which
// operator identity may drive state-changing control actions on it.
// This service is a standalone component; transports sit on top of it.
type LockService interface {
	// TakeLock assigns the lock of target to requester. Target may be
	// a detector name or TargetAll. An error is generated if the
	// detector is unknown or the lock is held by a different identity
	// and force is not set.
	TakeLock(target string, requester User, force bool) (Snapshot, error)
	// ReleaseLock frees the lock of target. Releasing a free lock is a
	// no-op; releasing a lock held by a different identity requires
	// force.
	ReleaseLock(target string, requester User, force bool) (Snapshot, error)
	// HasLocks reports whether every listed detector lock is currently
	// held by the identity (username, personID). An empty list is
	// vacuously true.
	HasLocks(username string, personID int, detectors []string) bool
	// Snapshot returns the current state of every tracked lock.
	Snapshot() Snapshot
}

// Publisher is the broadcast sink the registry pushes a full snapshot
// to after every state change. Publishing is fire and forget: the
// registry never consults a result and correctness does not depend on
// delivery, since the registry stays queryable as the authoritative
// source.
type Publisher interface {
	Publish(Snapshot)
}
