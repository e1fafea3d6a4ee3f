package routing

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AliceO2Group/detlockd/internal/core"
)

func TestGateAdmitsLockOwner(t *testing.T) {
	f := newFixture(t, "ABC")
	f.lookup.env = core.Environment{ID: "env1", IncludedDetectors: []string{"ABC"}}

	rec := f.request(t, http.MethodPut, "/locks/ABC/TAKE", &userA)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.request(t, http.MethodPost, "/environment/env1/START_ACTIVITY", &userA)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, f.core.calls, "admitted request must reach the transition handler")
}

func TestGateRefusesNonOwner(t *testing.T) {
	f := newFixture(t, "ABC")
	f.lookup.env = core.Environment{ID: "env1", IncludedDetectors: []string{"ABC"}}

	rec := f.request(t, http.MethodPut, "/locks/ABC/TAKE", &userA)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.request(t, http.MethodPost, "/environment/env1/START_ACTIVITY", &userB)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t,
		"Action not allowed for user boris due to missing ownership of lock(s)",
		decodeMessage(t, rec))
	assert.Zero(t, f.core.calls, "refused request must not reach the transition handler")
}

func TestGateRefusesWhenLockIsFree(t *testing.T) {
	f := newFixture(t, "ABC")
	f.lookup.env = core.Environment{ID: "env1", IncludedDetectors: []string{"ABC"}}

	rec := f.request(t, http.MethodPost, "/environment/env1/START_ACTIVITY", &userA)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGateAdmitsEnvironmentWithoutDetectors(t *testing.T) {
	f := newFixture(t, "ABC")
	f.lookup.env = core.Environment{ID: "env1"}

	rec := f.request(t, http.MethodPost, "/environment/env1/START_ACTIVITY", &userA)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, f.core.calls)
}

func TestGateMapsLookupErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"unknown environment", fmt.Errorf("env1: %w", core.ErrNotFound), http.StatusNotFound},
		{"lookup timeout", fmt.Errorf("%w: deadline exceeded", core.ErrTimeout), http.StatusRequestTimeout},
		{"other failure", fmt.Errorf("connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, "ABC")
			f.lookup.err = tc.err

			rec := f.request(t, http.MethodPost, "/environment/env1/START_ACTIVITY", &userA)
			assert.Equal(t, tc.status, rec.Code)
			assert.Zero(t, f.core.calls)
		})
	}
}

func TestGateRequiresIdentity(t *testing.T) {
	f := newFixture(t, "ABC")

	rec := f.request(t, http.MethodPost, "/environment/env1/START_ACTIVITY", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
