package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config represents the persistent masque configuration stored as config.toml
// in the .masque/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Upstream    UpstreamConfig    `toml:"upstream"`
	Server      ServerConfig      `toml:"server"`
	Snapshot    SnapshotConfig    `toml:"snapshot"`
	EventStream EventStreamConfig `toml:"eventstream"`
	Client      ClientConfig      `toml:"client"`
}

// UpstreamConfig describes the SSE stream the relay subscribes to and how it
// reconnects when that stream fails.
type UpstreamConfig struct {
	URL      string `toml:"url,omitempty"`
	Username string `toml:"username,omitempty"`
	Password string `toml:"password,omitempty"`

	// MaxRetries caps consecutive failed subscribe cycles. Zero retries forever.
	MaxRetries uint `toml:"max_retries,omitempty"`

	// InitialBackoff and MaxBackoff are Go duration strings ("500ms", "30s").
	InitialBackoff string `toml:"initial_backoff,omitempty"`
	MaxBackoff     string `toml:"max_backoff,omitempty"`
}

// ServerConfig holds settings for the outward HTTP server.
type ServerConfig struct {
	Listen       string `toml:"listen,omitempty"`
	InitialValue string `toml:"initial_value,omitempty"`
	MCP          bool   `toml:"mcp,omitempty"`

	// LogFile, when set, receives a JSON copy of the serve logs.
	LogFile string `toml:"log_file,omitempty"`
}

// SnapshotConfig selects where the latest event is persisted for warm starts.
type SnapshotConfig struct {
	Provider string `toml:"provider,omitempty"`
	Target   string `toml:"target,omitempty"`
}

// EventStreamConfig selects where decoded events are mirrored.
type EventStreamConfig struct {
	Provider string `toml:"provider,omitempty"`
	Brokers  string `toml:"brokers,omitempty"`
	Topic    string `toml:"topic,omitempty"`
}

// ClientConfig holds settings for CLI commands that talk to a running relay
// (e.g. masque get). Target is a full URL (scheme + host + port).
type ClientConfig struct {
	Target string `toml:"target,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"upstream.url": {
		get: func(c *Config) string { return c.Upstream.URL },
		set: func(c *Config, v string) error { c.Upstream.URL = v; return nil },
	},
	"upstream.username": {
		get: func(c *Config) string { return c.Upstream.Username },
		set: func(c *Config, v string) error { c.Upstream.Username = v; return nil },
	},
	"upstream.password": {
		get: func(c *Config) string { return c.Upstream.Password },
		set: func(c *Config, v string) error { c.Upstream.Password = v; return nil },
	},
	"upstream.max_retries": {
		get: func(c *Config) string { return strconv.FormatUint(uint64(c.Upstream.MaxRetries), 10) },
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for upstream.max_retries: %w", err)
			}
			c.Upstream.MaxRetries = uint(n)
			return nil
		},
	},
	"upstream.initial_backoff": {
		get: func(c *Config) string { return c.Upstream.InitialBackoff },
		set: func(c *Config, v string) error {
			if err := validateDuration("upstream.initial_backoff", v); err != nil {
				return err
			}
			c.Upstream.InitialBackoff = v
			return nil
		},
	},
	"upstream.max_backoff": {
		get: func(c *Config) string { return c.Upstream.MaxBackoff },
		set: func(c *Config, v string) error {
			if err := validateDuration("upstream.max_backoff", v); err != nil {
				return err
			}
			c.Upstream.MaxBackoff = v
			return nil
		},
	},
	"server.listen": {
		get: func(c *Config) string { return c.Server.Listen },
		set: func(c *Config, v string) error { c.Server.Listen = v; return nil },
	},
	"server.initial_value": {
		get: func(c *Config) string { return c.Server.InitialValue },
		set: func(c *Config, v string) error { c.Server.InitialValue = v; return nil },
	},
	"server.mcp": {
		get: func(c *Config) string { return strconv.FormatBool(c.Server.MCP) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for server.mcp: %w", err)
			}
			c.Server.MCP = b
			return nil
		},
	},
	"server.log_file": {
		get: func(c *Config) string { return c.Server.LogFile },
		set: func(c *Config, v string) error { c.Server.LogFile = v; return nil },
	},
	"snapshot.provider": {
		get: func(c *Config) string { return c.Snapshot.Provider },
		set: func(c *Config, v string) error { c.Snapshot.Provider = v; return nil },
	},
	"snapshot.target": {
		get: func(c *Config) string { return c.Snapshot.Target },
		set: func(c *Config, v string) error { c.Snapshot.Target = v; return nil },
	},
	"eventstream.provider": {
		get: func(c *Config) string { return c.EventStream.Provider },
		set: func(c *Config, v string) error { c.EventStream.Provider = v; return nil },
	},
	"eventstream.brokers": {
		get: func(c *Config) string { return c.EventStream.Brokers },
		set: func(c *Config, v string) error { c.EventStream.Brokers = v; return nil },
	},
	"eventstream.topic": {
		get: func(c *Config) string { return c.EventStream.Topic },
		set: func(c *Config, v string) error { c.EventStream.Topic = v; return nil },
	},
	"client.target": {
		get: func(c *Config) string { return c.Client.Target },
		set: func(c *Config, v string) error { c.Client.Target = v; return nil },
	},
}

func validateDuration(key, v string) error {
	if _, err := time.ParseDuration(v); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return nil
}
