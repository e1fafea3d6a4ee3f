package routing

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/AliceO2Group/detlockd/internal/lockservice"
	"github.com/AliceO2Group/detlockd/internal/metrics"
)

func makeLocksHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, deps.Locks.Snapshot())
	}
}

// makeLockActionHandler builds the handler for both the plain and the
// forced lock route. Restricting who may use force happens here, on
// the forced route, not in the registry.
func makeLockActionHandler(deps Deps, force bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lockAction(w, r, deps, force)
	}
}

func lockAction(w http.ResponseWriter, r *http.Request, deps Deps, force bool) {
	vars := mux.Vars(r)
	detector := vars["detectorId"]
	if detector == "" {
		writeMessage(w, http.StatusBadRequest, "Missing detectorId")
		return
	}

	action, ok := lockservice.ParseAction(vars["action"])
	if !ok {
		metrics.LockActions.WithLabelValues(vars["action"], "invalid").Inc()
		writeMessage(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid action to apply on lock for detector: %s", detector))
		return
	}

	requester, ok := IdentityFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Missing operator identity")
		return
	}
	if force && !requester.IsAdmin() {
		writeMessage(w, http.StatusForbidden,
			fmt.Sprintf("Forced %s action requires admin access", action))
		return
	}

	var (
		snap lockservice.Snapshot
		err  error
	)
	switch action {
	case lockservice.ActionTake:
		snap, err = deps.Locks.TakeLock(detector, requester, force)
	case lockservice.ActionRelease:
		snap, err = deps.Locks.ReleaseLock(detector, requester, force)
	}
	if err != nil {
		metrics.LockActions.WithLabelValues(string(action), outcomeLabel(err)).Inc()
		writeLockError(w, deps, err)
		return
	}

	metrics.LockActions.WithLabelValues(string(action), "ok").Inc()
	writeJSON(w, http.StatusOK, snap)
}

// writeLockError maps a registry error to a transport status. Only
// classified errors leak their message; anything else is logged and
// answered generically.
func writeLockError(w http.ResponseWriter, deps Deps, err error) {
	switch lockservice.KindOf(err) {
	case lockservice.KindInvalidInput:
		writeMessage(w, http.StatusBadRequest, err.Error())
	case lockservice.KindNotFound:
		writeMessage(w, http.StatusNotFound, err.Error())
	case lockservice.KindUnauthorized:
		writeMessage(w, http.StatusForbidden, err.Error())
	case lockservice.KindTimeout:
		writeMessage(w, http.StatusRequestTimeout, err.Error())
	default:
		deps.Log.Error().Err(err).Msg("lock action failed")
		writeMessage(w, http.StatusInternalServerError, err.Error())
	}
}

func outcomeLabel(err error) string {
	switch lockservice.KindOf(err) {
	case lockservice.KindUnauthorized:
		return "denied"
	case lockservice.KindNotFound:
		return "not_found"
	default:
		return "error"
	}
}
