package handler

import (
	"bufio"
	"time"

	"github.com/CRTOsp3ck/mwce/internal/clock"
	"github.com/CRTOsp3ck/mwce/internal/devserver"
	"github.com/CRTOsp3ck/mwce/internal/middleware"
	"github.com/CRTOsp3ck/mwce/internal/model"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// StreamHandler serves the server-sent event stream of a player.
type StreamHandler struct {
	broker    *devserver.Broker
	clock     clock.Clock
	heartbeat time.Duration
	log       zerolog.Logger
}

func NewStreamHandler(broker *devserver.Broker, clk clock.Clock, heartbeat time.Duration, log zerolog.Logger) *StreamHandler {
	if clk == nil {
		clk = clock.Real
	}
	return &StreamHandler{broker: broker, clock: clk, heartbeat: heartbeat, log: log}
}

func (h *StreamHandler) Stream(c *fiber.Ctx) error {
	sub := h.broker.Subscribe(middleware.PlayerID(c))
	if sub == nil {
		return fail(c, fiber.StatusServiceUnavailable, model.CodeUnavailable, "server is shutting down")
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ticker := h.clock.NewTicker(h.heartbeat)
		defer ticker.Stop()
		defer h.broker.Unsubscribe(sub)
		if err := stream(w, sub, ticker.C(), h.clock.Now); err != nil {
			h.log.Debug().Err(err).Str("client", sub.ID).Msg("stream ended")
		}
	})
	return nil
}

// stream writes the connected frame, then every queued frame and a
// heartbeat per tick, until the subscription closes or a write fails.
func stream(w *bufio.Writer, sub *devserver.Subscriber, ticks <-chan time.Time, now func() time.Time) error {
	if err := writeEvent(w, model.EventConnected, model.ConnectedPayload{
		Message:  "Connection established",
		ClientID: sub.ID,
	}); err != nil {
		return err
	}
	for {
		select {
		case frame, open := <-sub.Send:
			if !open {
				return nil
			}
			if _, err := w.Write(frame); err != nil {
				return err
			}
			if err := w.Flush(); err != nil {
				return err
			}
		case <-ticks:
			if err := writeEvent(w, model.EventHeartbeat, model.HeartbeatPayload{
				Timestamp: model.FormatTime(now()),
			}); err != nil {
				return err
			}
		}
	}
}

func writeEvent(w *bufio.Writer, event string, data any) error {
	frame, err := devserver.Frame(event, data)
	if err != nil {
		return err
	}
	if _, err := w.Write(frame); err != nil {
		return err
	}
	return w.Flush()
}
