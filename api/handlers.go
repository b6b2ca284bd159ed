package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/masque/pkg/sse"
)

// ErrorResponse is the JSON body of a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleEvent returns the full latest event as JSON.
func (s *Server) handleEvent(c *fiber.Ctx) error {
	ev, ok := s.latest(c)
	if !ok {
		return s.unavailable(c)
	}

	s.headerHandler.SetClientResponseHeaders(c)
	return c.JSON(ev)
}

// handleLatest returns the latest event data as the whole plain text body.
func (s *Server) handleLatest(c *fiber.Ctx) error {
	ev, ok := s.latest(c)
	if !ok {
		return s.unavailable(c)
	}

	s.headerHandler.SetClientResponseHeaders(c)
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(ev.Data)
}

func (s *Server) latest(c *fiber.Ctx) (sse.Event, bool) {
	ev, err := s.store.Get()
	if err != nil {
		s.logger.Error("failed to read latest event",
			"path", c.Path(),
			"error", err,
		)
		return sse.Event{}, false
	}
	return ev, true
}

func (s *Server) unavailable(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "latest event unavailable"})
}
