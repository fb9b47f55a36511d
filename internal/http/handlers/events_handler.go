package handlers

import (
	"bufio"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	applog "glowcandles/internal/log"
	"glowcandles/internal/relay"
)

// EventsHandler streams the admin room as Server-Sent Events.
type EventsHandler struct {
	Hub       *relay.Hub
	Heartbeat time.Duration
	// Done ends open streams, e.g. on shutdown.
	Done <-chan struct{}
}

// GET /api/admin/events
func (h *EventsHandler) Stream(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	events, leave := h.Hub.Subscribe(32)
	applog.Info(c, "admin.events.join", map[string]any{"subscribers": h.Hub.Subscribers()})

	beat := h.Heartbeat
	if beat <= 0 {
		beat = 25 * time.Second
	}
	done := h.Done

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer leave()
		ticker := time.NewTicker(beat)
		defer ticker.Stop()

		fmt.Fprint(w, ": connected\n\n")
		if w.Flush() != nil {
			return
		}
		for {
			select {
			case ev, open := <-events:
				if !open {
					return
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, ev.JSON())
			case <-ticker.C:
				fmt.Fprint(w, ": ping\n\n")
			case <-done:
				return
			}
			if err := w.Flush(); err != nil {
				// client went away
				return
			}
		}
	}))
	return nil
}
