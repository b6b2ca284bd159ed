package config

const (
	defaultUpstreamURL    = "http://localhost:8088/api/v1/stream/test_app/test_env/"
	defaultInitialBackoff = "500ms"
	defaultMaxBackoff     = "30s"

	defaultServerListen = "127.0.0.1:3459"

	defaultClientTarget = "http://127.0.0.1:3459"

	defaultSnapshotProvider    = "memory"
	defaultEventStreamProvider = "nop"
	defaultEventStreamTopic    = "masque.events"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Upstream: UpstreamConfig{
			URL:            defaultUpstreamURL,
			InitialBackoff: defaultInitialBackoff,
			MaxBackoff:     defaultMaxBackoff,
		},
		Server: ServerConfig{
			Listen: defaultServerListen,
		},
		Snapshot: SnapshotConfig{
			Provider: defaultSnapshotProvider,
		},
		EventStream: EventStreamConfig{
			Provider: defaultEventStreamProvider,
			Topic:    defaultEventStreamTopic,
		},
		Client: ClientConfig{
			Target: defaultClientTarget,
		},
	}
}
