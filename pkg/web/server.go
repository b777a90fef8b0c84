// Package web exposes the arbiter over HTTP and websockets: a status
// endpoint, a state feed for observers, and the ingest endpoint the
// detector publishes frames to.
package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-redlight/internal/log"
	"github.com/teslashibe/go-redlight/pkg/detect"
	"github.com/teslashibe/go-redlight/pkg/game"
	"github.com/teslashibe/go-redlight/pkg/hub"
	"github.com/teslashibe/go-redlight/pkg/protocol"
)

// Server is the arbiter's HTTP/websocket front end.
type Server struct {
	app     *fiber.App
	addr    string
	session string

	machine *game.Machine
	tracker *detect.Tracker

	// Hub for state broadcast (thread-safe!)
	stateHub *hub.Hub
}

// NewServer creates the arbiter server. The machine and tracker are
// read from handlers; the machine keeps running on its own goroutine.
func NewServer(addr, session string, machine *game.Machine, tracker *detect.Tracker) *Server {
	s := &Server{
		addr:     addr,
		session:  session,
		machine:  machine,
		tracker:  tracker,
		stateHub: hub.New("state"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Red Light Arbiter",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/state", websocket.New(s.handleStateWS))
	app.Get("/ws/detections", websocket.New(s.handleDetectionsWS))

	s.app = app
	return s
}

// Start starts the server and blocks until it stops.
func (s *Server) Start() error {
	log.Info("arbiter listening", "addr", s.addr)

	go s.stateHub.Run()

	return s.app.Listen(s.addr)
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("web server error", "error", err)
		}
	}()
}

// BroadcastState pushes a phase change to every connected observer.
// Safe to call from the game loop: the hub never blocks the sender.
func (s *Server) BroadcastState(phase game.Phase, result game.Result, elapsed float64) {
	state := protocol.StateData{
		Session:        s.session,
		Phase:          phase.String(),
		ElapsedSeconds: elapsed,
	}
	if result != game.ResultUnset {
		state.Result = result.String()
	}

	msg, err := protocol.NewMessage(protocol.TypeState, state)
	if err != nil {
		log.Error("encode state broadcast", "error", err)
		return
	}
	data, err := msg.Bytes()
	if err != nil {
		log.Error("encode state broadcast", "error", err)
		return
	}
	s.stateHub.Broadcast(data)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
