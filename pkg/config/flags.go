package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --listen
// on both "masque serve" and the standalone masquerelay binary).
type Flag struct {
	// Name is the long flag name (e.g. "upstream").
	Name string

	// Shorthand is the one-letter short flag (e.g. "u"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "upstream.url").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag, AddBoolFlag
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagListen              = "listen"
	FlagUpstream            = "upstream"
	FlagUsername            = "username"
	FlagPassword            = "password"
	FlagMaxRetries          = "max-retries"
	FlagInitialBackoff      = "initial-backoff"
	FlagMaxBackoff          = "max-backoff"
	FlagInitialValue        = "initial-value"
	FlagMCP                 = "mcp"
	FlagLogFile             = "log-file"
	FlagSnapshotProvider    = "snapshot-provider"
	FlagSnapshotTarget      = "snapshot-target"
	FlagEventStreamProvider = "eventstream-provider"
	FlagEventStreamBrokers  = "eventstream-brokers"
	FlagEventStreamTopic    = "eventstream-topic"
	FlagTarget              = "target"
)

// Registry holds every flag masque commands register.
var Registry = FlagSet{
	FlagListen: {
		Name:        "listen",
		Shorthand:   "l",
		ViperKey:    "server.listen",
		Description: "Address for the relay HTTP server to listen on",
	},
	FlagUpstream: {
		Name:        "upstream",
		Shorthand:   "u",
		ViperKey:    "upstream.url",
		Description: "Upstream server-sent event stream URL",
	},
	FlagUsername: {
		Name:        "username",
		ViperKey:    "upstream.username",
		Description: "Username for upstream basic authentication",
	},
	FlagPassword: {
		Name:        "password",
		ViperKey:    "upstream.password",
		Description: "Password for upstream basic authentication",
	},
	FlagMaxRetries: {
		Name:        "max-retries",
		ViperKey:    "upstream.max_retries",
		Description: "Consecutive failed subscribe attempts before giving up (0 retries forever)",
	},
	FlagInitialBackoff: {
		Name:        "initial-backoff",
		ViperKey:    "upstream.initial_backoff",
		Description: "Delay before the first reconnect attempt",
	},
	FlagMaxBackoff: {
		Name:        "max-backoff",
		ViperKey:    "upstream.max_backoff",
		Description: "Upper bound on the delay between reconnect attempts",
	},
	FlagInitialValue: {
		Name:        "initial-value",
		ViperKey:    "server.initial_value",
		Description: "Payload served before the first event arrives",
	},
	FlagMCP: {
		Name:        "mcp",
		ViperKey:    "server.mcp",
		Description: "Mount the MCP server at /mcp",
	},
	FlagLogFile: {
		Name:        "log-file",
		ViperKey:    "server.log_file",
		Description: "Also append JSON logs to this file",
	},
	FlagSnapshotProvider: {
		Name:        "snapshot-provider",
		ViperKey:    "snapshot.provider",
		Description: "Latest event snapshot provider (memory, sqlite, postgres)",
	},
	FlagSnapshotTarget: {
		Name:        "snapshot-target",
		ViperKey:    "snapshot.target",
		Description: "SQLite path or Postgres DSN for the snapshot provider",
	},
	FlagEventStreamProvider: {
		Name:        "eventstream-provider",
		ViperKey:    "eventstream.provider",
		Description: "Event mirror provider (nop, kafka)",
	},
	FlagEventStreamBrokers: {
		Name:        "eventstream-brokers",
		ViperKey:    "eventstream.brokers",
		Description: "Comma separated Kafka broker addresses",
	},
	FlagEventStreamTopic: {
		Name:        "eventstream-topic",
		ViperKey:    "eventstream.topic",
		Description: "Kafka topic relayed events are written to",
	},
	FlagTarget: {
		Name:        "target",
		Shorthand:   "t",
		ViperKey:    "client.target",
		Description: "URL of a running masque relay",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *bool) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

func defaults() *viper.Viper {
	v := viper.New()
	setViperDefaults(v)
	return v
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	return defaults().GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	return defaults().GetUint(viperKey)
}

// defaultBool returns the default bool value for a viper key from NewDefaultConfig.
func defaultBool(viperKey string) bool {
	return defaults().GetBool(viperKey)
}
