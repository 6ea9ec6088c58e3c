package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"filehost/internal/models"
	"filehost/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	streamWriteTimeout = 10 * time.Second
	streamPongTimeout  = 60 * time.Second
	streamPingEvery    = streamPongTimeout * 9 / 10
	streamReadLimit    = 4 << 10

	statsIntervalDefault = time.Second
	statsIntervalMax     = 10 * time.Second
)

// streamMessage is the JSON frame written to /admin/ws clients.
type streamMessage struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Browsers must come from the same host. Clients without an Origin header are let through.
var statsUpgrader = websocket.Upgrader{CheckOrigin: sameOrigin}

func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// statsInterval reads ?interval=2s, then ?interval_ms=2000. Values outside (0, 10s] are ignored.
func statsInterval(q url.Values) time.Duration {
	if d, err := time.ParseDuration(q.Get("interval")); err == nil && d > 0 && d <= statsIntervalMax {
		return d
	}
	if ms, err := strconv.Atoi(q.Get("interval_ms")); err == nil && ms > 0 && ms <= int(statsIntervalMax/time.Millisecond) {
		return time.Duration(ms) * time.Millisecond
	}
	return statsIntervalDefault
}

// @Summary      Storage stats stream
// @Description  WebSocket; sends {"type":"stats","data":{...}} immediately and then every interval (?interval=2s or ?interval_ms=2000, max 10s).
// @Tags         admin
// @Param        interval     query  string  false  "Go duration"
// @Param        interval_ms  query  int     false  "Milliseconds"
// @Success      101
// @Router       /admin/ws [get]
func (h *Handler) wsStats(c *gin.Context) {
	interval := statsInterval(c.Request.URL.Query())

	conn, err := statsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		if h.log != nil {
			h.log.Warnw("ws_upgrade_failed", "err", err)
		}
		return
	}

	s := &statsStream{h: h, conn: conn, admin: c.GetString(ctxUsername), gone: make(chan struct{})}
	defer func() { _ = conn.Close() }()
	s.serve(c.Request.Context(), interval)
}

// statsStream pushes storage stats to one admin connection until either side goes away.
type statsStream struct {
	h     *Handler
	conn  *websocket.Conn
	admin string
	gone  chan struct{} // closed when the client stops reading
}

func (s *statsStream) serve(ctx context.Context, interval time.Duration) {
	s.conn.SetReadLimit(streamReadLimit)
	_ = s.conn.SetReadDeadline(time.Now().Add(streamPongTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(streamPongTimeout))
	})
	go s.drain()

	if err := s.push(ctx); err != nil {
		s.debug("ws_initial_push_failed", err)
		return
	}

	updates := time.NewTicker(interval)
	defer updates.Stop()
	pings := time.NewTicker(streamPingEvery)
	defer pings.Stop()

	for {
		var err error
		select {
		case <-s.gone:
			return
		case <-ctx.Done():
			return
		case <-pings.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			err = s.conn.WriteMessage(websocket.PingMessage, nil)
		case <-updates.C:
			if !s.stillAdmin(ctx) {
				s.revoke()
				return
			}
			err = s.push(ctx)
		}
		if err != nil {
			s.debug("ws_write_failed", err)
			return
		}
	}
}

// stillAdmin re-reads the role from the store, so a deleted or demoted admin loses the stream.
// Other lookup failures keep it open; push reports them in-band.
func (s *statsStream) stillAdmin(ctx context.Context) bool {
	role, err := s.h.services.Role(ctx, s.admin)
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return false
	case err != nil:
		s.h.logError("ws_role_check_failed", err, "username", s.admin)
		return true
	default:
		return role == models.RoleAdmin
	}
}

// revoke tells the client why the stream ends.
func (s *statsStream) revoke() {
	if s.h.log != nil {
		s.h.log.Infow("ws_admin_revoked", "username", s.admin)
	}
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, msgAdminRequired),
		time.Now().Add(streamWriteTimeout))
}

// drain reads client frames so pong and close are processed.
func (s *statsStream) drain() {
	defer close(s.gone)
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			s.debug("ws_client_gone", err)
			return
		}
	}
}

// push writes one stats frame. A failed computation is reported in-band and keeps the stream open.
func (s *statsStream) push(ctx context.Context) error {
	msg := streamMessage{Type: "stats"}
	st, err := s.h.services.Stats(ctx)
	if err != nil {
		s.h.logError("ws_get_stats_failed", err)
		msg = streamMessage{Type: "error", Error: msgInternal}
	} else {
		s.h.metrics.RecordStats(st)
		msg.Data = st
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	return s.conn.WriteJSON(msg)
}

func (s *statsStream) debug(event string, err error) {
	if s.h.log != nil {
		s.h.log.Debugw(event, "err", err)
	}
}
