// Package web provides the live dashboard for the line follower: status and
// tuning over HTTP, telemetry and annotated camera frames over websockets.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-linefollow/internal/log"
	"github.com/teslashibe/go-linefollow/pkg/follower"
	"github.com/teslashibe/go-linefollow/pkg/hub"
	"github.com/teslashibe/go-linefollow/pkg/protocol"
	"github.com/teslashibe/go-linefollow/pkg/steering"
)

const maxEvents = 200

// Controller is the part of the control loop the dashboard drives.
type Controller interface {
	Stats() follower.Snapshot
	Tuning() follower.Tuning
	ApplyTuning(t follower.Tuning) error
}

// Event is a notable change in the loop: a new stable direction or a failed
// cycle.
type Event struct {
	Time    string `json:"time"`
	Frame   uint64 `json:"frame"`
	Type    string `json:"type"` // direction, error
	Message string `json:"message"`
}

// Server is the web dashboard server
type Server struct {
	app  *fiber.App
	addr string

	// Control loop
	ctl   Controller
	ctlMu sync.RWMutex

	// Latest frame
	latest     *follower.Telemetry
	latestJPEG []byte
	lastStable steering.Direction
	latestMu   sync.RWMutex

	// Event buffer (last maxEvents entries)
	events   []Event
	eventsMu sync.RWMutex

	// Hubs for websocket broadcast
	telemetryHub *hub.Hub
	cameraHub    *hub.Hub

	logger *slog.Logger
}

// NewServer creates a new dashboard server listening on addr. Attach the
// control loop before serving.
func NewServer(addr string) *Server {
	s := &Server{
		addr:         addr,
		events:       make([]Event, 0, maxEvents),
		telemetryHub: hub.New("telemetry"),
		cameraHub:    hub.New("camera"),
		logger:       log.With("component", "web"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Line Follower Dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// API routes
	api := app.Group("/api", s.requireController)
	api.Get("/status", s.handleStatus)
	api.Get("/tuning", s.handleGetTuning)
	api.Post("/tuning", s.handleSetTuning)
	api.Get("/frame.jpg", s.handleFrame)
	api.Get("/events", s.handleEvents)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/telemetry", websocket.New(s.handleTelemetryWS))
	app.Get("/ws/camera", websocket.New(s.handleCameraWS))

	s.app = app
	return s
}

// Attach connects the control loop the dashboard reports on and tunes.
func (s *Server) Attach(ctl Controller) {
	s.ctlMu.Lock()
	s.ctl = ctl
	s.ctlMu.Unlock()
}

func (s *Server) controller() Controller {
	s.ctlMu.RLock()
	defer s.ctlMu.RUnlock()
	return s.ctl
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts the hubs and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	go s.telemetryHub.Run(ctx)
	go s.cameraHub.Run(ctx)

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", "addr", s.addr)
		errc <- s.app.Listen(s.addr)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("dashboard: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return s.app.ShutdownWithContext(shutdownCtx)
	}
}

// Publish records one frame's telemetry and fans it out to websocket
// clients. It implements follower.TelemetrySink.
func (s *Server) Publish(t follower.Telemetry, jpeg []byte) {
	s.latestMu.Lock()
	s.latest = &t
	if jpeg != nil {
		s.latestJPEG = jpeg
	}
	changed := t.Stable != steering.Unset && t.Stable != s.lastStable
	if changed {
		s.lastStable = t.Stable
	}
	s.latestMu.Unlock()

	if changed {
		s.addEvent(t.Frame, "direction", fmt.Sprintf("%s → %s", t.Stable, t.Command))
	}
	if t.Error != "" {
		s.addEvent(t.Frame, "error", t.Error)
	}

	if s.telemetryHub.ClientCount() > 0 {
		if msg, err := protocol.NewMessage(protocol.TypeTelemetry, t); err != nil {
			s.logger.Warn("telemetry encode failed", "error", err)
		} else {
			s.broadcast(s.telemetryHub, msg)
		}
	}
	if jpeg != nil && s.cameraHub.ClientCount() > 0 {
		s.cameraHub.BroadcastFrame(jpeg)
	}
}

// Latest returns the most recent telemetry, if any frame was published.
func (s *Server) Latest() (follower.Telemetry, bool) {
	s.latestMu.RLock()
	defer s.latestMu.RUnlock()
	if s.latest == nil {
		return follower.Telemetry{}, false
	}
	return *s.latest, true
}

// Events returns a copy of the recent events, oldest first.
func (s *Server) Events() []Event {
	s.eventsMu.RLock()
	defer s.eventsMu.RUnlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *Server) addEvent(frame uint64, eventType, message string) {
	entry := Event{
		Time:    time.Now().Format("15:04:05.000"),
		Frame:   frame,
		Type:    eventType,
		Message: message,
	}

	s.eventsMu.Lock()
	s.events = append(s.events, entry)
	if len(s.events) > maxEvents {
		s.events = s.events[1:]
	}
	s.eventsMu.Unlock()
}

func (s *Server) requireController(c *fiber.Ctx) error {
	if s.controller() == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "control loop not attached",
		})
	}
	return c.Next()
}

func (s *Server) broadcast(h *hub.Hub, msg *protocol.Message) {
	data, err := msg.Bytes()
	if err != nil {
		s.logger.Warn("message encode failed", "type", msg.Type, "error", err)
		return
	}
	h.Broadcast(hub.Text(data))
}
