package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	masquelogger "github.com/papercomputeco/masque/pkg/logger"
	"github.com/papercomputeco/masque/pkg/sse"
	"github.com/papercomputeco/masque/pkg/store"
)

var _ = Describe("MCP Server", func() {
	var (
		server *Server
		st     *store.Store[sse.Event]
	)

	BeforeEach(func() {
		st = store.New(sse.Event{Data: "initial"}, store.WithClone(sse.Event.Clone))

		var err error
		server, err = NewServer(Config{
			Store:  st,
			Logger: masquelogger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewServer", func() {
		It("returns an error when store is nil", func() {
			_, err := NewServer(Config{Logger: masquelogger.Nop()})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("store is required"))
		})

		It("returns an error when logger is nil", func() {
			_, err := NewServer(Config{Store: st})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("logger is required"))
		})

		It("returns an HTTP handler", func() {
			Expect(server.Handler()).NotTo(BeNil())
		})
	})

	Describe("latest_event tool", func() {
		It("returns the initial value before any event", func() {
			result, output, err := server.handleLatestEvent(context.Background(), nil, LatestEventInput{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
			Expect(output.Data).To(Equal("initial"))
			Expect(output.ID).To(BeNil())
		})

		It("returns the latest event", func() {
			id, typ := "7", "tick"
			_, err := st.Update(sse.NewEvent(&id, &typ, "payload"))
			Expect(err).NotTo(HaveOccurred())

			result, output, err := server.handleLatestEvent(context.Background(), nil, LatestEventInput{})
			Expect(err).NotTo(HaveOccurred())
			Expect(output.ID).To(HaveValue(Equal("7")))
			Expect(output.Event).To(HaveValue(Equal("tick")))
			Expect(output.Data).To(Equal("payload"))

			Expect(result.Content).To(HaveLen(1))
			text, ok := result.Content[0].(*mcp.TextContent)
			Expect(ok).To(BeTrue())
			Expect(text.Text).To(MatchJSON(`{"id":"7","event":"tick","data":"payload"}`))
		})

		It("reports a poisoned store as a tool error", func() {
			_, _ = st.Modify(func(sse.Event) sse.Event { panic("boom") })

			result, _, err := server.handleLatestEvent(context.Background(), nil, LatestEventInput{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
		})

		It("is callable by an MCP client", func() {
			ctx := context.Background()
			serverTransport, clientTransport := mcp.NewInMemoryTransports()

			serverSession, err := server.MCPServer().Connect(ctx, serverTransport, nil)
			Expect(err).NotTo(HaveOccurred())
			defer serverSession.Close()

			client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.0"}, nil)
			clientSession, err := client.Connect(ctx, clientTransport, nil)
			Expect(err).NotTo(HaveOccurred())
			defer clientSession.Close()

			res, err := clientSession.CallTool(ctx, &mcp.CallToolParams{
				Name:      "latest_event",
				Arguments: map[string]any{},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeFalse())
			Expect(res.Content).To(HaveLen(1))
			Expect(res.Content[0].(*mcp.TextContent).Text).To(MatchJSON(`{"data":"initial"}`))
		})
	})
})
