// Package header provides header handling for the masque relay.
//
// The relay has two legs, each negotiating headers independently:
//
//	Upstream SSE server --> Relay --> Local HTTP clients
//
// The upstream leg asks for an event stream and resumes from the last seen
// event id. The client leg serves the latest value and must never be cached.
package header

import (
	"mime"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/masque/pkg/utils"
)

const (
	// EventStreamMediaType is the media type of an SSE response.
	EventStreamMediaType = "text/event-stream"

	// LastEventIDHeader carries the id of the last event seen when the relay
	// reconnects.
	LastEventIDHeader = "Last-Event-ID"
)

// Handler manages headers on both legs of the relay.
type Handler struct {
	username string
	password string
}

// NewHandler creates a new header Handler. When username is non-empty every
// upstream request carries HTTP Basic credentials.
func NewHandler(username, password string) *Handler {
	return &Handler{
		username: username,
		password: password,
	}
}

// SetUpstreamRequestHeaders prepares the outgoing subscribe request.
// lastEventID is sent as Last-Event-ID when non-empty.
func (h *Handler) SetUpstreamRequestHeaders(req *http.Request, lastEventID string) {
	req.Header.Set("Accept", EventStreamMediaType)
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("User-Agent", "masque/"+utils.Version)

	if h.username != "" {
		req.SetBasicAuth(h.username, h.password)
	}

	if lastEventID != "" {
		req.Header.Set(LastEventIDHeader, lastEventID)
	}
}

// IsEventStream reports whether the upstream response declares an SSE body.
// Parameters such as charset are ignored.
func IsEventStream(resp *http.Response) bool {
	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == EventStreamMediaType
}

// SetClientResponseHeaders marks a served value as uncacheable. The latest
// value changes whenever the upstream emits, so intermediaries must always
// revalidate.
func (h *Handler) SetClientResponseHeaders(c *fiber.Ctx) {
	c.Set(fiber.HeaderCacheControl, "no-store")
}
