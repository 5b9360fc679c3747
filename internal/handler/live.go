package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/sakif/shelf/internal/apperror"
	"github.com/sakif/shelf/internal/live"
	"github.com/sakif/shelf/internal/model"
	"github.com/sakif/shelf/internal/service"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

type feedFunc func(ctx context.Context, limit int) ([]model.RecommendationWithAuthor, error)

// LiveHandler serves live feeds over websockets.
//
// LIVE QUERIES:
// The socket receives the feed once on connect, then again after every
// committed mutation (the hub fires after each one). Each frame is the full
// result, never a diff, so a client only ever renders the latest frame.
// Bursts of mutations coalesce into one re-read.
type LiveHandler struct {
	feeds  map[string]feedFunc
	hub    *live.Hub
	logger *slog.Logger
}

func NewLiveHandler(recs *service.RecommendationService, hub *live.Hub, logger *slog.Logger) *LiveHandler {
	return &LiveHandler{
		feeds: map[string]feedFunc{
			"latest":   recs.ListLatest,
			"featured": recs.ListFeatured,
		},
		hub:    hub,
		logger: logger,
	}
}

type liveFrame struct {
	Feed  string                           `json:"feed"`
	Items []model.RecommendationWithAuthor `json:"items"`
}

// HandleFeed upgrades to a websocket and streams one feed.
//
// HTTP: GET /api/live/{feed}?limit=10   (feed = latest | featured)
//
// GOROUTINES:
// gorilla/websocket allows one reader and one writer at a time. A reader
// goroutine drains client frames (and answers pongs) so a closed socket is
// noticed; this goroutine is the only writer.
func (h *LiveHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "feed")
	read, ok := h.feeds[name]
	if !ok {
		writeError(w, apperror.NotFound("feed", name))
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, err)
		return
	}

	// Subscribe before the first read so no mutation slips between them.
	updates, unsubscribe := h.hub.Subscribe()
	defer unsubscribe()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		h.logger.Warn("live: upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		defer cancel()
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	push := func() error {
		items, err := read(ctx, limit)
		if err != nil {
			return err
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(liveFrame{Feed: name, Items: items})
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	h.logger.Debug("live: subscribed", slog.String("feed", name))
	if err := push(); err != nil {
		h.logger.Warn("live: push failed", slog.String("feed", name), slog.String("error", err.Error()))
		return
	}

	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("live: client gone", slog.String("feed", name))
			return
		case <-updates:
			if err := push(); err != nil {
				h.logger.Warn("live: push failed", slog.String("feed", name), slog.String("error", err.Error()))
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
