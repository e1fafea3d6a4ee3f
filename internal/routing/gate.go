package routing

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/AliceO2Group/detlockd/internal/core"
	"github.com/AliceO2Group/detlockd/internal/metrics"
)

// OwnershipGate wraps mutating environment routes. A request only
// reaches the next handler if the requester currently holds the lock
// of every detector included in the target environment.
func OwnershipGate(deps Deps) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requester, ok := IdentityFromContext(r.Context())
			if !ok {
				writeMessage(w, http.StatusUnauthorized, "Missing operator identity")
				return
			}

			id := mux.Vars(r)["id"]
			env, err := deps.Lookup.GetEnvironment(r.Context(), id)
			if err != nil {
				writeLookupError(w, deps, err)
				return
			}

			if !deps.Locks.HasLocks(requester.Username, requester.PersonID, env.IncludedDetectors) {
				metrics.GateDenials.Inc()
				deps.Log.Debug().
					Str("environment", id).
					Str("user", requester.Username).
					Msg("request refused, missing lock ownership")
				writeMessage(w, http.StatusForbidden,
					fmt.Sprintf("Action not allowed for user %s due to missing ownership of lock(s)", requester.Username))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func makeTransitionHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		id, transition := vars["id"], vars["transition"]
		if err := deps.Core.RequestTransition(r.Context(), id, transition); err != nil {
			writeLookupError(w, deps, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"id":         id,
			"transition": transition,
		})
	}
}

func writeLookupError(w http.ResponseWriter, deps Deps, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrTimeout):
		writeMessage(w, http.StatusRequestTimeout, err.Error())
	default:
		deps.Log.Error().Err(err).Msg("control core call failed")
		writeMessage(w, http.StatusInternalServerError, err.Error())
	}
}
