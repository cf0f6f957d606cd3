// Package web serves a live dashboard over HTTP and websockets: the
// current run's ProgressSnapshot stream, the crash list, and a
// corpus-size endpoint, mirroring the terminal dashboard for
// headless or remote monitoring.
package web

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/bytescribe/fuzz/pkg/types"
)

// Server is the fuzzer's live web dashboard. It holds only the latest
// snapshot and the crash list the engine reports; it never talks to
// the engine's internals directly.
type Server struct {
	app *fiber.App

	mu           sync.RWMutex
	snapshot     types.ProgressSnapshot
	crashes      []types.CrashEntry
	corpusSample []types.Input
	startedAt    time.Time

	clientsMu sync.Mutex
	clients   map[*websocket.Conn]bool
	broadcast chan []byte

	logger *slog.Logger
}

// NewServer builds a Server with routes registered and its broadcast
// loop running.
func NewServer(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	s := &Server{
		app:       app,
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan []byte, 100),
		startedAt: time.Now(),
		logger:    logger,
	}
	s.setupRoutes()
	go s.broadcastLoop()
	return s
}

func (s *Server) setupRoutes() {
	s.app.Use(cors.New())

	s.app.Get("/stats", s.handleStats)
	s.app.Get("/crashes", s.handleCrashes)
	s.app.Get("/corpus", s.handleCorpus)

	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.app.Get("/ws", websocket.New(s.handleWebSocket))
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return c.JSON(s.snapshot)
}

func (s *Server) handleCrashes(c *fiber.Ctx) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return c.JSON(s.crashes)
}

func (s *Server) handleCorpus(c *fiber.Ctx) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return c.JSON(fiber.Map{
		"size":   s.snapshot.CorpusSize,
		"sample": s.corpusSample,
	})
}

func (s *Server) handleWebSocket(c *websocket.Conn) {
	s.clientsMu.Lock()
	s.clients[c] = true
	s.clientsMu.Unlock()

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, c)
		s.clientsMu.Unlock()
		c.Close()
	}()

	s.mu.RLock()
	data, _ := json.Marshal(map[string]interface{}{"type": "stats", "data": s.snapshot})
	s.mu.RUnlock()
	c.WriteMessage(websocket.TextMessage, data)

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}

func (s *Server) broadcastLoop() {
	for msg := range s.broadcast {
		s.clientsMu.Lock()
		for client := range s.clients {
			if err := client.WriteMessage(websocket.TextMessage, msg); err != nil {
				client.Close()
				delete(s.clients, client)
			}
		}
		s.clientsMu.Unlock()
	}
}

// PushSnapshot updates the server's current snapshot and broadcasts
// it to connected websocket clients. Intended as an Engine.OnProgress
// callback.
func (s *Server) PushSnapshot(snap types.ProgressSnapshot) {
	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()

	data, err := json.Marshal(map[string]interface{}{"type": "stats", "data": snap})
	if err != nil {
		s.logger.Warn("marshaling snapshot", "error", err)
		return
	}
	select {
	case s.broadcast <- data:
	default:
		s.logger.Warn("broadcast channel full, dropping snapshot")
	}
}

// SetCorpusSample replaces the sample of corpus inputs served by
// /corpus, truncated to the first 50 entries. Intended to be called
// alongside PushSnapshot with a fresh corpus.Manager.Snapshot().
func (s *Server) SetCorpusSample(sample []types.Input) {
	const maxSample = 50
	if len(sample) > maxSample {
		sample = sample[:maxSample]
	}
	s.mu.Lock()
	s.corpusSample = sample
	s.mu.Unlock()
}

// PushCrash appends a crash to the server's list and broadcasts it.
func (s *Server) PushCrash(entry types.CrashEntry) {
	s.mu.Lock()
	s.crashes = append(s.crashes, entry)
	s.mu.Unlock()

	data, err := json.Marshal(map[string]interface{}{"type": "crash", "data": entry})
	if err != nil {
		s.logger.Warn("marshaling crash", "error", err)
		return
	}
	select {
	case s.broadcast <- data:
	default:
		s.logger.Warn("broadcast channel full, dropping crash event")
	}
}

// Listen starts the HTTP server, blocking until it stops.
func (s *Server) Listen(addr string) error {
	s.logger.Info("web dashboard listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
