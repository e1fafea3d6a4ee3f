// Package routing is the HTTP surface of the lock coordinator. It
// translates requests into registry calls and typed errors into
// status codes; it performs no lock logic of its own.
package routing

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/AliceO2Group/detlockd/internal/broadcast"
	"github.com/AliceO2Group/detlockd/internal/core"
	"github.com/AliceO2Group/detlockd/internal/lockservice"
)

// EnvironmentLookup resolves an environment id to the detectors it
// includes. Implemented by core.Client.
type EnvironmentLookup interface {
	GetEnvironment(ctx context.Context, id string) (core.Environment, error)
}

// TransitionRequester forwards an admitted environment transition to
// the control core. Implemented by core.Client.
type TransitionRequester interface {
	RequestTransition(ctx context.Context, id, transition string) error
}

// Deps are the collaborators the routes are wired against.
type Deps struct {
	Log    zerolog.Logger
	Locks  lockservice.LockService
	Hub    *broadcast.Hub
	Lookup EnvironmentLookup
	Core   TransitionRequester
}

// SetupRouting adds all the routes on the http server.
func SetupRouting(deps Deps, r *mux.Router) *mux.Router {
	r.Use(Identity)

	r.HandleFunc("/locks", makeLocksHandler(deps)).Methods(http.MethodGet)
	r.HandleFunc("/locks/stream", makeStreamHandler(deps)).Methods(http.MethodGet)
	r.HandleFunc("/locks/force/{detectorId}/{action}", makeLockActionHandler(deps, true)).Methods(http.MethodPut)
	r.HandleFunc("/locks/{detectorId}/{action}", makeLockActionHandler(deps, false)).Methods(http.MethodPut)

	env := r.PathPrefix("/environment").Subrouter()
	env.Use(OwnershipGate(deps))
	env.HandleFunc("/{id}/{transition}", makeTransitionHandler(deps)).Methods(http.MethodPost)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}
