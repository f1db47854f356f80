package handlers

import (
	"net/http"
	"time"

	"smart_kettle/internal/service"
	"smart_kettle/internal/thermal"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	maxMsgSize = 1 << 12 // 4 KB
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Cause string      `json:"cause,omitempty"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

type wsReading struct {
	Degrees thermal.NullDegrees `json:"degrees"`
	At      time.Time           `json:"at"`
}

// The page is served from the same device; other origins are not expected.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// @Summary      Status stream (WebSocket)
// @Description  Sends a "status" envelope on connect, then "reading", "mode_changed" and "fault" envelopes. Keep-alives are ping frames.
// @Tags         ui
// @Router       /ws [get]
func (h *Handler) wsConnect(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	sub := h.services.Feed.Subscribe()
	defer sub.Cancel()

	// Configure read limits and pong handler to extend read deadline.
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go h.startReader(conn, done)

	ctx := c.Request.Context()
	st, err := h.services.Monitoring.GetStatus(ctx)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_get_status_failed", "err", err)
		}
		_ = h.writeEnvelope(conn, wsEnvelope{Type: "error", Error: errGetStatus})
		return
	}
	if err := h.writeEnvelope(conn, wsEnvelope{Type: "status", Data: st}); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "err", err)
		}
		return
	}

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case e, open := <-sub.Events():
			if !open {
				return
			}
			if err := h.sendEvent(conn, e); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "kind", e.Kind, "err", err)
				}
				return
			}
		}
	}
}

// startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Debugw("ws_read_closed", "err", err)
			}
			return
		}
	}
}

func (h *Handler) sendEvent(conn *websocket.Conn, e thermal.Event) error {
	switch e.Kind {
	case thermal.EventKeepAlive:
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteMessage(websocket.PingMessage, nil)
	case thermal.EventReading:
		return h.writeEnvelope(conn, wsEnvelope{
			Type: string(e.Kind),
			Data: wsReading{Degrees: e.Degrees, At: e.At},
		})
	case thermal.EventModeChanged, thermal.EventFault:
		return h.writeEnvelope(conn, wsEnvelope{
			Type:  string(e.Kind),
			Cause: string(e.Cause),
			Data:  service.NewKettleStatus(e.State, h.opts.Locale),
		})
	default:
		return nil
	}
}

func (h *Handler) writeEnvelope(conn *websocket.Conn, env wsEnvelope) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(env)
}
