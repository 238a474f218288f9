package inspector

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pathbind-dev/pathbind/internal/errors"
)

const (
	// ConfigFileName is the name of the inspector configuration file.
	ConfigFileName = "pathbind.yaml"

	// DefaultAddr is the default inspector listen address.
	DefaultAddr = "localhost:6550"

	// DefaultPathPrefix is the default URL prefix for inspector routes.
	DefaultPathPrefix = "/_pathbind"
)

// Config is the inspector's pathbind.yaml configuration.
type Config struct {
	// Addr is the listen address for the standalone inspector server.
	Addr string `yaml:"addr,omitempty"`

	// PathPrefix is the URL prefix the routes mount under. Must start
	// with a slash.
	PathPrefix string `yaml:"pathPrefix,omitempty"`

	// Metrics enables the Prometheus endpoint under PathPrefix/metrics.
	Metrics bool `yaml:"metrics,omitempty"`

	// Stream contains WebSocket stream settings.
	Stream StreamConfig `yaml:"stream,omitempty"`
}

// StreamConfig contains WebSocket batch-stream settings.
type StreamConfig struct {
	// ReadBufferSize is the per-connection read buffer in bytes.
	ReadBufferSize int `yaml:"readBufferSize,omitempty"`

	// WriteBufferSize is the per-connection write buffer in bytes.
	WriteBufferSize int `yaml:"writeBufferSize,omitempty"`

	// AllowAnyOrigin disables origin checking on upgrade. Development
	// only.
	AllowAnyOrigin bool `yaml:"allowAnyOrigin,omitempty"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Addr:       DefaultAddr,
		PathPrefix: DefaultPathPrefix,
		Metrics:    true,
		Stream: StreamConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			AllowAnyOrigin:  true,
		},
	}
}

// LoadConfig reads and validates path. A missing file yields the defaults;
// a malformed or invalid file is the PB401 configuration error.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, errors.New("PB401").With("file", path).Wrap(err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("PB401").With("file", path).
			WithSuggestion("check the YAML syntax of " + path).
			Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the inspector cannot run
// with.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("PB401").With("field", "addr").
			WithSuggestion("set addr to host:port, e.g. localhost:6550")
	}
	if !strings.HasPrefix(c.PathPrefix, "/") {
		return errors.New("PB401").
			With("field", "pathPrefix").
			With("value", c.PathPrefix).
			WithSuggestion("pathPrefix must start with /")
	}
	if strings.HasSuffix(c.PathPrefix, "/") && c.PathPrefix != "/" {
		return errors.New("PB401").
			With("field", "pathPrefix").
			With("value", c.PathPrefix).
			WithSuggestion("drop the trailing slash from pathPrefix")
	}
	if c.Stream.ReadBufferSize < 0 || c.Stream.WriteBufferSize < 0 {
		return errors.New("PB401").
			With("field", "stream").
			WithSuggestion("stream buffer sizes must not be negative")
	}
	return nil
}
