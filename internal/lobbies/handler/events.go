package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"

	"huddle/internal/live"
	"huddle/internal/lobbies/service"
	apperrors "huddle/pkg/errors"
	httputil "huddle/pkg/http"
	"huddle/pkg/logger"
)

// EventsHandler streams lobby notifications as server-sent events.
type EventsHandler struct {
	service   service.LobbyService
	log       *logger.Logger
	heartbeat time.Duration
	retry     time.Duration
}

func NewEventsHandler(service service.LobbyService, heartbeat, retry time.Duration, log *logger.Logger) *EventsHandler {
	return &EventsHandler{
		service:   service,
		log:       log,
		heartbeat: heartbeat,
		retry:     retry,
	}
}

// Stream holds the connection open until the client goes away, the broker
// drops the subscriber or a write fails. This goroutine is the only writer.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sub, err := h.service.Subscribe(r.Context(), ps.ByName("code"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Stream", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	defer h.service.Unsubscribe(sub)

	code := sub.LobbyCode()
	log := h.log.With("code", code, "remote_addr", r.RemoteAddr)

	sse, err := httputil.NewSSEWriter(w)
	if err != nil {
		log.Error("Streaming is not supported", "error", err)
		if writeErr := httputil.WriteError(w, apperrors.Internal("Streaming is not supported", err)); writeErr != nil {
			log.Error("failed to write error response", "handler", "Stream", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	sse.SetWriteTimeout(h.heartbeat)

	now := time.Now().UTC()
	if err := h.open(sse, code, now, r.Header.Get("Last-Event-ID") != ""); err != nil {
		log.Debug("Stream closed during handshake", "error", err)
		return
	}
	log.Info("Live stream opened")

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			log.Info("Live stream closed by client")
			return

		case event, ok := <-sub.Events():
			if !ok {
				log.Info("Live stream closed by broker")
				return
			}
			if err := sse.Event(eventID(event.Timestamp), event.Type, event); err != nil {
				log.Warn("Failed to write live event", "type", event.Type, "error", err)
				return
			}

		case tick := <-ticker.C:
			if err := sse.Comment(fmt.Sprintf("heartbeat %d", tick.UnixMilli())); err != nil {
				log.Warn("Failed to write heartbeat", "error", err)
				return
			}
		}
	}
}

// open sends the reconnect delay and the connected event. A client that is
// resuming a dropped stream may have missed notifications, so it is also told
// to refresh.
func (h *EventsHandler) open(sse *httputil.SSEWriter, code string, now time.Time, resumed bool) error {
	if err := sse.Retry(h.retry); err != nil {
		return err
	}

	connected := map[string]any{"lobby_code": code, "timestamp": now}
	if err := sse.Event(eventID(now), live.EventConnected, connected); err != nil {
		return err
	}

	if resumed {
		return sse.Event(eventID(now), live.EventRefresh, live.NewEvent(live.EventRefresh, code, nil))
	}
	return nil
}

func eventID(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func (h *EventsHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/lobbies/:code/events", h.Stream)
}
