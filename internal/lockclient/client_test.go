package lockclient

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AliceO2Group/detlockd/internal/broadcast"
	"github.com/AliceO2Group/detlockd/internal/lockservice"
	"github.com/AliceO2Group/detlockd/internal/routing"
)

func startService(t *testing.T, detectors ...string) string {
	t.Helper()
	hub := broadcast.NewHub(zerolog.Nop())
	locks := lockservice.NewRegistry(zerolog.Nop(), hub)
	locks.Seed(detectors)
	router := routing.SetupRouting(routing.Deps{
		Log:   zerolog.Nop(),
		Locks: locks,
		Hub:   hub,
	}, mux.NewRouter())
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestClientRoundtrip(t *testing.T) {
	url := startService(t, "ABC", "XYZ")
	anna := New(url, lockservice.User{Username: "anna", FullName: "Anna Marchetti", PersonID: 0})
	ctx := context.Background()

	snap, err := anna.Take(ctx, "ABC")
	require.NoError(t, err)
	require.Equal(t, lockservice.Taken, snap["ABC"].State)
	assert.Equal(t, "anna", snap["ABC"].Owner.Username)

	snap, err = anna.Locks(ctx)
	require.NoError(t, err)
	assert.Equal(t, lockservice.Taken, snap["ABC"].State)
	assert.Equal(t, lockservice.Free, snap["XYZ"].State)

	snap, err = anna.Release(ctx, "ABC")
	require.NoError(t, err)
	assert.Equal(t, lockservice.Free, snap["ABC"].State)
}

func TestClientSurfacesTypedErrors(t *testing.T) {
	url := startService(t, "ABC")
	ctx := context.Background()

	anna := New(url, lockservice.User{Username: "anna", FullName: "Anna Marchetti", PersonID: 0})
	boris := New(url, lockservice.User{Username: "boris", FullName: "Boris Kovac", PersonID: 1})

	_, err := anna.Take(ctx, "ABC")
	require.NoError(t, err)

	_, err = boris.Take(ctx, "ABC")
	require.Error(t, err)
	assert.Equal(t, lockservice.KindUnauthorized, lockservice.KindOf(err))
	assert.Equal(t, "Unauthorized TAKE action for lock of detector ABC by user Boris Kovac", err.Error())

	_, err = anna.Take(ctx, "GHOST")
	require.Error(t, err)
	assert.Equal(t, lockservice.KindNotFound, lockservice.KindOf(err))
}

func TestClientForceNeedsAdmin(t *testing.T) {
	url := startService(t, "ABC")
	ctx := context.Background()

	anna := New(url, lockservice.User{Username: "anna", FullName: "Anna Marchetti", PersonID: 0})
	shifter := New(url, lockservice.User{Username: "root", FullName: "Shift Leader", PersonID: 2, Access: []string{"admin"}})

	_, err := anna.Take(ctx, "ABC")
	require.NoError(t, err)

	_, err = anna.ForceRelease(ctx, "ABC")
	require.Error(t, err)
	assert.Equal(t, lockservice.KindUnauthorized, lockservice.KindOf(err))

	snap, err := shifter.ForceTake(ctx, "ABC")
	require.NoError(t, err)
	assert.Equal(t, "root", snap["ABC"].Owner.Username)

	snap, err = shifter.ForceRelease(ctx, lockservice.TargetAll)
	require.NoError(t, err)
	assert.Equal(t, lockservice.Free, snap["ABC"].State)
}
