// Package servecmder provides the serve command that runs the relay's ingest
// loop and HTTP server together.
package servecmder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/masque/api"
	"github.com/papercomputeco/masque/pkg/config"
	eventstreamutils "github.com/papercomputeco/masque/pkg/eventstream/utils"
	"github.com/papercomputeco/masque/pkg/logger"
	snapshotutils "github.com/papercomputeco/masque/pkg/snapshot/utils"
	"github.com/papercomputeco/masque/relay"
)

type serveCommander struct {
	listen         string
	upstream       string
	username       string
	password       string
	maxRetries     uint
	initialBackoff string
	maxBackoff     string
	initialValue   string
	mcp            bool
	logFile        string

	snapshotProvider string
	snapshotTarget   string

	eventStreamProvider string
	eventStreamBrokers  string
	eventStreamTopic    string

	debug  bool
	logger *slog.Logger
}

// serveFlags are the registry keys serve binds to viper.
var serveFlags = []string{
	config.FlagListen,
	config.FlagUpstream,
	config.FlagUsername,
	config.FlagPassword,
	config.FlagMaxRetries,
	config.FlagInitialBackoff,
	config.FlagMaxBackoff,
	config.FlagInitialValue,
	config.FlagMCP,
	config.FlagLogFile,
	config.FlagSnapshotProvider,
	config.FlagSnapshotTarget,
	config.FlagEventStreamProvider,
	config.FlagEventStreamBrokers,
	config.FlagEventStreamTopic,
}

const serveLongDesc string = `Run the masque relay.

The relay subscribes to the upstream server-sent event stream, decodes each
event and serves the most recent one to local HTTP clients:

  GET /ping     Health check
  GET /event    Latest event as JSON (id, event, data)
  GET /*        Latest event data as the plain text body
  /mcp          MCP server with a latest_event tool (with --mcp)

Configuration precedence: flags > MASQUE_* environment > config.toml > defaults.

With --log-file, logs are also appended to that file as JSON.

Optionally persist the latest event with a snapshot provider (sqlite, postgres)
so a restarted relay serves it immediately, and mirror every event to Kafka.`

const serveShortDesc string = "Run the masque relay"

func NewServeCmd() *cobra.Command {
	return newServeCmd(&serveCommander{})
}

func newServeCmd(cmder *serveCommander) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Registry, serveFlags)
			cmder.resolve(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.Registry, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Registry, config.FlagUpstream, &cmder.upstream)
	config.AddStringFlag(cmd, config.Registry, config.FlagUsername, &cmder.username)
	config.AddStringFlag(cmd, config.Registry, config.FlagPassword, &cmder.password)
	config.AddUintFlag(cmd, config.Registry, config.FlagMaxRetries, &cmder.maxRetries)
	config.AddStringFlag(cmd, config.Registry, config.FlagInitialBackoff, &cmder.initialBackoff)
	config.AddStringFlag(cmd, config.Registry, config.FlagMaxBackoff, &cmder.maxBackoff)
	config.AddStringFlag(cmd, config.Registry, config.FlagInitialValue, &cmder.initialValue)
	config.AddBoolFlag(cmd, config.Registry, config.FlagMCP, &cmder.mcp)
	config.AddStringFlag(cmd, config.Registry, config.FlagLogFile, &cmder.logFile)
	config.AddStringFlag(cmd, config.Registry, config.FlagSnapshotProvider, &cmder.snapshotProvider)
	config.AddStringFlag(cmd, config.Registry, config.FlagSnapshotTarget, &cmder.snapshotTarget)
	config.AddStringFlag(cmd, config.Registry, config.FlagEventStreamProvider, &cmder.eventStreamProvider)
	config.AddStringFlag(cmd, config.Registry, config.FlagEventStreamBrokers, &cmder.eventStreamBrokers)
	config.AddStringFlag(cmd, config.Registry, config.FlagEventStreamTopic, &cmder.eventStreamTopic)

	return cmd
}

// resolve reads every setting back out of viper so env and file values apply
// to flags the user did not pass.
func (c *serveCommander) resolve(v *viper.Viper) {
	c.listen = v.GetString("server.listen")
	c.upstream = v.GetString("upstream.url")
	c.username = v.GetString("upstream.username")
	c.password = v.GetString("upstream.password")
	c.maxRetries = v.GetUint("upstream.max_retries")
	c.initialBackoff = v.GetString("upstream.initial_backoff")
	c.maxBackoff = v.GetString("upstream.max_backoff")
	c.initialValue = v.GetString("server.initial_value")
	c.mcp = v.GetBool("server.mcp")
	c.logFile = v.GetString("server.log_file")
	c.snapshotProvider = v.GetString("snapshot.provider")
	c.snapshotTarget = v.GetString("snapshot.target")
	c.eventStreamProvider = v.GetString("eventstream.provider")
	c.eventStreamBrokers = v.GetString("eventstream.brokers")
	c.eventStreamTopic = v.GetString("eventstream.topic")
}

func (c *serveCommander) relayConfig() (relay.Config, error) {
	initialBackoff, err := time.ParseDuration(c.initialBackoff)
	if err != nil {
		return relay.Config{}, fmt.Errorf("invalid initial backoff %q: %w", c.initialBackoff, err)
	}

	maxBackoff, err := time.ParseDuration(c.maxBackoff)
	if err != nil {
		return relay.Config{}, fmt.Errorf("invalid max backoff %q: %w", c.maxBackoff, err)
	}

	return relay.Config{
		UpstreamURL:    c.upstream,
		Username:       c.username,
		Password:       c.password,
		MaxRetries:     c.maxRetries,
		InitialBackoff: initialBackoff,
		MaxBackoff:     maxBackoff,
	}, nil
}

// buildLogger returns the logger writing to out. With a log file configured,
// records are also appended to it as JSON with source locations. The returned
// func closes the file.
func (c *serveCommander) buildLogger(out io.Writer, pretty bool) (*slog.Logger, func() error, error) {
	console := logger.New(
		logger.WithDebug(c.debug),
		logger.WithPretty(pretty),
		logger.WithWriter(out),
	)

	if c.logFile == "" {
		return console, func() error { return nil }, nil
	}

	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	file := logger.New(
		logger.WithDebug(c.debug),
		logger.WithJSON(true),
		logger.WithSource(true),
		logger.WithWriter(f),
	)

	return logger.Multi(console, file), f.Close, nil
}

func (c *serveCommander) run() error {
	var (
		closeLog func() error
		err      error
	)
	c.logger, closeLog, err = c.buildLogger(os.Stdout, logger.IsTerminal(os.Stdout))
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	relayConfig, err := c.relayConfig()
	if err != nil {
		return err
	}

	driver, err := snapshotutils.NewDriver(ctx, &snapshotutils.NewDriverOpts{
		ProviderType: c.snapshotProvider,
		Target:       c.snapshotTarget,
	})
	if err != nil {
		return fmt.Errorf("creating snapshot driver: %w", err)
	}
	defer driver.Close()

	publisher, err := eventstreamutils.NewPublisher(&eventstreamutils.NewPublisherOpts{
		ProviderType: c.eventStreamProvider,
		Brokers:      c.eventStreamBrokers,
		Topic:        c.eventStreamTopic,
	})
	if err != nil {
		return fmt.Errorf("creating event stream publisher: %w", err)
	}
	defer publisher.Close()

	c.logger.Info("side effects configured",
		"snapshot_provider", c.snapshotProvider,
		"eventstream_provider", c.eventStreamProvider,
	)

	relayConfig.Snapshot = driver
	relayConfig.Publisher = publisher

	st := relay.NewStore(c.initialValue)

	r, err := relay.New(relayConfig, st, c.logger)
	if err != nil {
		return fmt.Errorf("creating relay: %w", err)
	}
	// Drains queued snapshot and publish jobs before the driver and
	// publisher are closed.
	defer r.Close()

	if err := r.Restore(ctx); err != nil {
		c.logger.Warn("could not restore snapshot", "error", err)
	}

	apiServer, err := api.NewServer(api.Config{
		ListenAddr: c.listen,
		MCP:        c.mcp,
	}, st, c.logger)
	if err != nil {
		return fmt.Errorf("creating api server: %w", err)
	}

	apiErr := make(chan error, 1)
	go func() {
		if err := apiServer.Run(); err != nil {
			apiErr <- fmt.Errorf("API server error: %w", err)
		}
	}()

	relayErr := make(chan error, 1)
	go func() {
		relayErr <- r.Run(ctx)
	}()

	var runErr error
	select {
	case runErr = <-apiErr:
		stop()
		<-relayErr
	case err := <-relayErr:
		if err != nil {
			runErr = fmt.Errorf("relay error: %w", err)
		}
	case <-ctx.Done():
		c.logger.Info("received signal, shutting down")
		<-relayErr
	}

	if err := apiServer.Shutdown(); err != nil {
		c.logger.Error("api server shutdown failed", "error", err)
	}

	return runErr
}
