// Package config loads weave.json, the runtime configuration for
// cmd/weave serve: listen address, telemetry toggle, and S3 snapshot
// settings. Grounded on the teacher's internal/config package (JSON
// config struct, Default... constants, Load/LoadFile/SaveTo), narrowed
// to this repo's ambient-stack scope — the teacher's project-scaffolding
// fields (routes/components/Tailwind/UI paths) belong to the excluded
// authoring/compiler surface and have no equivalent here.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/weaverun/weave/internal/rterrors"
)

const (
	// FileName is the name of the configuration file.
	FileName = "weave.json"

	// DefaultPort is the default listen port for cmd/weave serve.
	DefaultPort = 8080

	// DefaultHost is the default listen host.
	DefaultHost = "0.0.0.0"

	// DefaultSnapshotPrefix is the default S3 key prefix for snapshots.
	DefaultSnapshotPrefix = "weave/snapshots/"

	// DefaultReadTimeoutMS is the default WebSocket read deadline.
	DefaultReadTimeoutMS = 60_000
)

// Config is the complete weave.json configuration schema.
type Config struct {
	// Host is the listen host for cmd/weave serve.
	Host string `json:"host,omitempty"`
	// Port is the listen port for cmd/weave serve.
	Port int `json:"port,omitempty"`
	// ReadTimeoutMS bounds how long a WebSocket read may block before
	// the session is considered dead.
	ReadTimeoutMS int `json:"read_timeout_ms,omitempty"`

	// Telemetry configures Prometheus/OpenTelemetry instrumentation.
	Telemetry TelemetryConfig `json:"telemetry,omitempty"`

	// Snapshot configures durable root persistence to S3.
	Snapshot SnapshotConfig `json:"snapshot,omitempty"`

	configPath string
}

// TelemetryConfig toggles and namespaces pkg/telemetry.
type TelemetryConfig struct {
	Enabled   bool   `json:"enabled,omitempty"`
	Namespace string `json:"namespace,omitempty"`
}

// SnapshotConfig points pkg/snapshot at an S3 bucket/prefix.
type SnapshotConfig struct {
	Enabled bool   `json:"enabled,omitempty"`
	Bucket  string `json:"bucket,omitempty"`
	Prefix  string `json:"prefix,omitempty"`
	Region  string `json:"region,omitempty"`
}

// New returns a Config with every default applied.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads weave.json from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile reads configuration from an explicit file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, rterrors.New("WEAVE-E101").
				Wrap(err).
				WithSuggestion("create " + path + " or pass explicit flags to 'weave serve'")
		}
		return nil, rterrors.New("WEAVE-E101").Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, rterrors.New("WEAVE-E101").Wrap(err)
	}
	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// SaveTo writes the configuration to path, creating it if necessary.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return rterrors.New("WEAVE-E101").Wrap(err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return rterrors.New("WEAVE-E101").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the file Config was loaded from, or "" if unsaved.
func (c *Config) Path() string { return c.configPath }

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.ReadTimeoutMS == 0 {
		c.ReadTimeoutMS = DefaultReadTimeoutMS
	}
	if c.Snapshot.Prefix == "" {
		c.Snapshot.Prefix = DefaultSnapshotPrefix
	}
	if c.Telemetry.Namespace == "" {
		c.Telemetry.Namespace = "weave"
	}
}

// Address returns the host:port listen address.
func (c *Config) Address() string {
	return c.Host + ":" + itoa(c.Port)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
