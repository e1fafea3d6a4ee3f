package routing

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AliceO2Group/detlockd/internal/broadcast"
	"github.com/AliceO2Group/detlockd/internal/lockservice"
)

func TestStreamDeliversSnapshots(t *testing.T) {
	f := newFixture(t, "ABC")
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/locks/stream")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// Trigger a mutation once the subscription is up.
	go func() {
		time.Sleep(50 * time.Millisecond)
		_, _ = f.locks.TakeLock("ABC", userA, false)
	}()

	reader := bufio.NewReader(resp.Body)
	deadline := time.After(5 * time.Second)
	events := make(chan string, 1)
	go func() {
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				return
			}
			if strings.HasPrefix(line, "data: ") {
				events <- strings.TrimPrefix(strings.TrimSpace(line), "data: ")
				return
			}
		}
	}()

	select {
	case <-deadline:
		t.Fatal("no stream event within deadline")
	case raw := <-events:
		var msg broadcast.Message
		require.NoError(t, json.Unmarshal([]byte(raw), &msg))
		assert.NotEmpty(t, msg.ID)
		assert.Equal(t, lockservice.Taken, msg.Locks["ABC"].State)
	}
}
