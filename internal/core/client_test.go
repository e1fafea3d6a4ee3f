package core

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListDetectors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/detectors", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]string{"ABC", "XYZ"})
	}))
	defer srv.Close()

	c := NewClient(zerolog.Nop(), srv.URL, time.Second)
	detectors, err := c.ListDetectors(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ABC", "XYZ"}, detectors)
}

func TestGetEnvironment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/environment/env1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(Environment{
			ID:                "env1",
			State:             "RUNNING",
			IncludedDetectors: []string{"ABC"},
		})
	}))
	defer srv.Close()

	c := NewClient(zerolog.Nop(), srv.URL, time.Second)
	env, err := c.GetEnvironment(context.Background(), "env1")
	require.NoError(t, err)
	assert.Equal(t, "env1", env.ID)
	assert.Equal(t, []string{"ABC"}, env.IncludedDetectors)
}

func TestGetEnvironmentNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(zerolog.Nop(), srv.URL, time.Second)
	_, err := c.GetEnvironment(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetEnvironmentTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(zerolog.Nop(), srv.URL, 20*time.Millisecond)
	_, err := c.GetEnvironment(context.Background(), "env1")
	require.ErrorIs(t, err, ErrTimeout)
}

func TestGetEnvironmentContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(zerolog.Nop(), srv.URL, time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.GetEnvironment(ctx, "env1")
	require.ErrorIs(t, err, ErrTimeout)
}

func TestRequestTransition(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		gotPath = r.URL.Path
	}))
	defer srv.Close()

	c := NewClient(zerolog.Nop(), srv.URL, time.Second)
	require.NoError(t, c.RequestTransition(context.Background(), "env1", "START_ACTIVITY"))
	assert.Equal(t, "/api/environment/env1/START_ACTIVITY", gotPath)
}

func TestRequestTransitionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	c := NewClient(zerolog.Nop(), srv.URL, time.Second)
	err := c.RequestTransition(context.Background(), "env1", "START_ACTIVITY")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
