package handlers

import (
	"net/http"

	"smart_kettle/internal/thermal"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
)

// Browser reconnect delay sent with the first frame, in milliseconds.
const sseRetryMillis = 10_000

// SSE event names understood by the page script.
const (
	sseUpdate = "update"
	sseReload = "reload"
	sseFault  = "fault"
	ssePing   = "ping"
)

// sseFrame maps a status event to an SSE event name and payload.
func sseFrame(e thermal.Event) (name, data string, ok bool) {
	switch e.Kind {
	case thermal.EventReading:
		return sseUpdate, e.Degrees.String(), true
	case thermal.EventModeChanged:
		return sseReload, string(e.Cause), true
	case thermal.EventFault:
		return sseFault, string(e.Cause), true
	case thermal.EventKeepAlive:
		return ssePing, "", true
	default:
		return "", "", false
	}
}

// @Summary      Status stream (Server-Sent Events)
// @Description  Emits "update" with the temperature (or None), "reload" on mode changes, "fault" on faults and a periodic "ping".
// @Tags         ui
// @Produce      text/event-stream
// @Success      200
// @Router       /events [get]
func (h *Handler) events(c *gin.Context) {
	sub := h.services.Feed.Subscribe()
	defer sub.Cancel()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Status(http.StatusOK)

	first := true
	ctx := c.Request.Context()
	defer func() {
		if dropped := sub.Dropped(); dropped > 0 && h.log != nil {
			h.log.Infow("sse_slow_client", "dropped", dropped)
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case e, open := <-sub.Events():
			if !open {
				return
			}
			name, data, ok := sseFrame(e)
			if !ok {
				continue
			}
			ev := sse.Event{Event: name, Data: data}
			if first {
				ev.Retry = sseRetryMillis
				first = false
			}
			c.Render(-1, ev)
			c.Writer.Flush()
		}
	}
}
