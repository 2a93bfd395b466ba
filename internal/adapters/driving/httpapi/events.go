package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/custodia-labs/ragchat/internal/logger"
)

// clientBuffer is the per-client event buffer. Answer deltas arrive in bursts;
// a client that falls further behind loses events and should refetch /api/state.
const clientBuffer = 256

// GET /api/events
//
// Streams every conversation store event as `event: <type>` with the JSON
// StoreEvent as data. A comment line is sent on each heartbeat.
func (s *Server) streamEvents(c *gin.Context) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		respondError(c, http.StatusInternalServerError, "streaming_unsupported", nil)
		return
	}

	clientID := uuid.NewString()
	events, unsubscribe := s.ports.Conversation.Subscribe(clientBuffer)
	defer unsubscribe()

	w := c.Writer
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "event: hello\ndata: {\"client_id\":%q}\n\n", clientID)
	flusher.Flush()
	logger.Debug("SSE client %s connected", clientID)

	heartbeat := time.NewTicker(s.heartbeat)
	defer heartbeat.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			logger.Debug("SSE client %s disconnected", clientID)
			return
		case <-s.closing:
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Warn("marshal SSE event: %v", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
			flusher.Flush()
		}
	}
}
