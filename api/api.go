package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"

	"github.com/papercomputeco/masque/api/mcp"
	"github.com/papercomputeco/masque/pkg/sse"
	"github.com/papercomputeco/masque/pkg/store"
	"github.com/papercomputeco/masque/relay/header"
)

// Server serves the latest event held in the relay's Store. Every request
// reads the Store once; nothing is buffered per client.
type Server struct {
	config        Config
	store         *store.Store[sse.Event]
	logger        *slog.Logger
	app           *fiber.App
	headerHandler *header.Handler
}

// NewServer creates a new API server.
// The store is injected so it can be shared with the relay's ingest loop.
func NewServer(config Config, st *store.Store[sse.Event], logger *slog.Logger) (*Server, error) {
	if st == nil {
		return nil, errors.New("store is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(compress.New())

	s := &Server{
		config:        config,
		store:         st,
		logger:        logger,
		app:           app,
		headerHandler: header.NewHandler("", ""),
	}

	app.Get("/ping", s.handlePing)
	app.Get("/event", s.handleEvent)

	if config.MCP {
		mcpServer, err := mcp.NewServer(mcp.Config{
			Store:  st,
			Logger: logger,
		})
		if err != nil {
			return nil, fmt.Errorf("could not create mcp server: %w", err)
		}
		app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))
	}

	// Every other path serves the latest data.
	app.Get("/*", s.handleLatest)

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
		"mcp", s.config.MCP,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// RunWithListener starts the API server using the provided listener.
func (s *Server) RunWithListener(listener net.Listener) error {
	s.logger.Info("starting API server",
		"listen", listener.Addr().String(),
		"mcp", s.config.MCP,
	)
	return s.app.Listener(listener)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
