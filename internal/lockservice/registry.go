package lockservice

import (
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/AliceO2Group/detlockd/internal/metrics"
)

var _ LockService = (*Registry)(nil)

// Registry is the single source of truth for detector lock state. It
// keeps one Lock per detector in a mutex-guarded map: the check and
// the mutation of any one call happen under the same mutex hold, so
// two racing takes can never both observe a free lock.
//
// The registry does not check caller privilege for force operations.
// Verifying that the requester holds admin access before setting force
// is the routing layer's contract.
type Registry struct {
	log zerolog.Logger
	pub Publisher

	mu    sync.Mutex
	locks map[string]*Lock
}

// NewRegistry creates an empty registry. Seed must be called before
// any lock can be taken. pub may be nil, in which case mutations are
// not broadcast.
func NewRegistry(log zerolog.Logger, pub Publisher) *Registry {
	return &Registry{
		log:   log,
		pub:   pub,
		locks: make(map[string]*Lock),
	}
}

// Seed replaces the tracked detector set with fresh free locks, one
// per name. Ownership held at the time of a re-seed is discarded
// unconditionally. The fresh snapshot is broadcast so observers of a
// late inventory refresh are not left rendering stale ownership.
func (r *Registry) Seed(detectors []string) {
	r.mu.Lock()
	locks := make(map[string]*Lock, len(detectors))
	for _, d := range detectors {
		locks[d] = &Lock{Name: d, State: Free}
	}
	r.locks = locks
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.log.Info().
		Int("detectors", len(detectors)).
		Msg("lock registry seeded")
	metrics.LocksTaken.Set(0)
	r.publish(snap)
}

// TakeLock assigns the lock of target to requester and returns the
// resulting snapshot. Taking a lock already held by the same identity
// is a no-op. Target TargetAll applies to every tracked detector, all
// or nothing: if any detector is held by another identity and force is
// not set, no lock changes hands and the error names that detector.
func (r *Registry) TakeLock(target string, requester User, force bool) (Snapshot, error) {
	r.mu.Lock()
	targets, err := r.resolveLocked(target)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}

	if !force {
		for _, l := range targets {
			if l.State == Taken && !l.Owner.SameIdentity(requester.Username, requester.PersonID) {
				r.mu.Unlock()
				r.log.Debug().
					Str("detector", l.Name).
					Str("user", requester.Username).
					Msg("can't take, held by another operator")
				return nil, ErrUnauthorizedAction(ActionTake, l.Name, requester.FullName)
			}
		}
	}

	changed := false
	for _, l := range targets {
		if l.State == Taken && l.Owner.SameIdentity(requester.Username, requester.PersonID) {
			continue
		}
		owner := requester
		l.State = Taken
		l.Owner = &owner
		changed = true
		r.log.Debug().
			Str("detector", l.Name).
			Str("user", requester.Username).
			Bool("force", force).
			Msg("lock taken")
	}
	snap := r.snapshotLocked()
	r.mu.Unlock()

	if changed {
		metrics.LocksTaken.Set(float64(snap.Taken()))
		r.publish(snap)
	}
	return snap, nil
}

// ReleaseLock frees the lock of target and returns the resulting
// snapshot. Releasing a free lock is a no-op. Target TargetAll is all
// or nothing under contention, like TakeLock.
func (r *Registry) ReleaseLock(target string, requester User, force bool) (Snapshot, error) {
	r.mu.Lock()
	targets, err := r.resolveLocked(target)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}

	if !force {
		for _, l := range targets {
			if l.State == Taken && !l.Owner.SameIdentity(requester.Username, requester.PersonID) {
				r.mu.Unlock()
				r.log.Debug().
					Str("detector", l.Name).
					Str("user", requester.Username).
					Msg("can't release, held by another operator")
				return nil, ErrUnauthorizedAction(ActionRelease, l.Name, requester.FullName)
			}
		}
	}

	changed := false
	for _, l := range targets {
		if l.State == Free {
			continue
		}
		l.State = Free
		l.Owner = nil
		changed = true
		r.log.Debug().
			Str("detector", l.Name).
			Str("user", requester.Username).
			Bool("force", force).
			Msg("lock released")
	}
	snap := r.snapshotLocked()
	r.mu.Unlock()

	if changed {
		metrics.LocksTaken.Set(float64(snap.Taken()))
		r.publish(snap)
	}
	return snap, nil
}

// HasLocks reports whether every detector in detectors is currently
// held by the identity (username, personID). An unknown detector
// counts as not held. An empty list is vacuously true.
func (r *Registry) HasLocks(username string, personID int, detectors []string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range detectors {
		l, ok := r.locks[d]
		if !ok || l.State != Taken || !l.Owner.SameIdentity(username, personID) {
			return false
		}
	}
	return true
}

// Snapshot returns a copy of the current state of every tracked lock.
func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// resolveLocked expands target into the affected locks. TargetAll
// resolves to every tracked detector in name order, which keeps bulk
// operations and their error messages deterministic.
func (r *Registry) resolveLocked(target string) ([]*Lock, error) {
	if target == TargetAll {
		names := make([]string, 0, len(r.locks))
		for name := range r.locks {
			names = append(names, name)
		}
		slices.Sort(names)
		targets := make([]*Lock, len(names))
		for i, name := range names {
			targets[i] = r.locks[name]
		}
		return targets, nil
	}
	l, ok := r.locks[target]
	if !ok {
		return nil, ErrDetectorNotFound(target)
	}
	return []*Lock{l}, nil
}

// snapshotLocked copies the lock map. Owner values are copied too so
// callers never alias registry-internal state.
func (r *Registry) snapshotLocked() Snapshot {
	snap := make(Snapshot, len(r.locks))
	for name, l := range r.locks {
		view := *l
		if l.Owner != nil {
			owner := *l.Owner
			view.Owner = &owner
		}
		snap[name] = view
	}
	return snap
}

func (r *Registry) publish(snap Snapshot) {
	if r.pub == nil {
		return
	}
	r.pub.Publish(snap)
}
