package routing

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// makeStreamHandler serves lock snapshots as server-sent events fed by
// the broadcast hub, so consoles do not have to poll GET /locks.
func makeStreamHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeMessage(w, http.StatusInternalServerError, "Streaming unsupported")
			return
		}

		id, ch := deps.Hub.Subscribe()
		defer deps.Hub.Unsubscribe(id)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		for {
			select {
			case <-r.Context().Done():
				return
			case msg, open := <-ch:
				if !open {
					return
				}
				payload, err := json.Marshal(msg)
				if err != nil {
					deps.Log.Error().Err(err).Msg("marshaling stream event failed")
					continue
				}
				fmt.Fprintf(w, "data: %s\n\n", payload)
				flusher.Flush()
			}
		}
	}
}
