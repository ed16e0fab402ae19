package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-linefollow/pkg/follower"
	"github.com/teslashibe/go-linefollow/pkg/hub"
	"github.com/teslashibe/go-linefollow/pkg/protocol"
)

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	Latest  *follower.Telemetry `json:"latest"`
	Stats   follower.Snapshot   `json:"stats"`
	Tuning  follower.Tuning     `json:"tuning"`
	Clients map[string]int      `json:"clients"`
}

// handleStatus returns the latest frame and loop counters
func (s *Server) handleStatus(c *fiber.Ctx) error {
	ctl := s.controller()
	resp := StatusResponse{
		Stats:  ctl.Stats(),
		Tuning: ctl.Tuning(),
		Clients: map[string]int{
			"telemetry": s.telemetryHub.ClientCount(),
			"camera":    s.cameraHub.ClientCount(),
		},
	}
	if t, ok := s.Latest(); ok {
		resp.Latest = &t
	}
	return c.JSON(resp)
}

// handleGetTuning returns the tuning in effect
func (s *Server) handleGetTuning(c *fiber.Ctx) error {
	return c.JSON(s.controller().Tuning())
}

// handleSetTuning merges the request body over the current tuning and
// queues it for the loop. Omitted fields keep their value.
func (s *Server) handleSetTuning(c *fiber.Ctx) error {
	ctl := s.controller()
	t := ctl.Tuning()
	if err := c.BodyParser(&t); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid tuning body: " + err.Error(),
		})
	}

	if err := ctl.ApplyTuning(t); err != nil {
		var verr *follower.ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":    "invalid tuning",
				"problems": verr.Problems,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	s.addEvent(0, "tuning", "tuning updated from dashboard")
	if msg, err := protocol.NewMessage(protocol.TypeTuning, t); err == nil {
		s.broadcast(s.telemetryHub, msg)
	}
	return c.Status(fiber.StatusAccepted).JSON(t)
}

// handleFrame returns the latest annotated frame as JPEG
func (s *Server) handleFrame(c *fiber.Ctx) error {
	s.latestMu.RLock()
	jpeg := s.latestJPEG
	s.latestMu.RUnlock()

	if jpeg == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no frame yet",
		})
	}
	c.Set(fiber.HeaderContentType, "image/jpeg")
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(jpeg)
}

// handleEvents returns recent direction changes and errors
func (s *Server) handleEvents(c *fiber.Ctx) error {
	return c.JSON(s.Events())
}

// handleTelemetryWS streams per-frame telemetry. Clients may send ping
// messages and get a pong back.
func (s *Server) handleTelemetryWS(c *websocket.Conn) {
	client := hub.NewClient(s.telemetryHub, c)
	if client == nil {
		return
	}
	client.OnText = s.handleClientMessage

	// Current tuning first so the client knows the thresholds
	if ctl := s.controller(); ctl != nil {
		if msg, err := protocol.NewMessage(protocol.TypeTuning, ctl.Tuning()); err == nil {
			if data, err := msg.Bytes(); err == nil {
				client.Reply(hub.Text(data))
			}
		}
	}

	client.Run()
}

func (s *Server) handleClientMessage(client *hub.Client, data []byte) {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		s.logger.Debug("ignoring client message", "error", err)
		return
	}

	switch msg.Type {
	case protocol.TypePing:
		reply, _, err := protocol.Pong(msg)
		if err != nil {
			return
		}
		if b, err := reply.Bytes(); err == nil {
			client.Reply(hub.Text(b))
		}
	case protocol.TypeStats:
		ctl := s.controller()
		if ctl == nil {
			return
		}
		if reply, err := protocol.NewMessage(protocol.TypeStats, ctl.Stats()); err == nil {
			if b, err := reply.Bytes(); err == nil {
				client.Reply(hub.Text(b))
			}
		}
	}
}

// handleCameraWS streams annotated JPEG frames
func (s *Server) handleCameraWS(c *websocket.Conn) {
	client := hub.NewClient(s.cameraHub, c)
	if client == nil {
		return
	}
	client.Run()
}
