package framekit

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/YuminosukeSato/framekit/internal/framing"
	"github.com/YuminosukeSato/framekit/internal/protocol"
)

// Config holds all configuration for framekit
type Config struct {
	Profile   ProfileConfig          `mapstructure:"profile"`
	Messages  []protocol.MessageSpec `mapstructure:"messages"`
	Transport TransportConfig        `mapstructure:"transport"`
	Logging   LoggingConfig          `mapstructure:"logging"`
	Metrics   MetricsConfig          `mapstructure:"metrics"`
}

// ProfileConfig selects a canonical wire profile by name, or describes a
// custom one when Custom is set
type ProfileConfig struct {
	Name        string `mapstructure:"name"`
	Custom      bool   `mapstructure:"custom"`
	StartBytes  []int  `mapstructure:"start_bytes"`
	LengthWidth int    `mapstructure:"length_width"`
	PackageID   bool   `mapstructure:"package_id"`
	Sequence    bool   `mapstructure:"sequence"`
	SystemID    bool   `mapstructure:"system_id"`
	ComponentID bool   `mapstructure:"component_id"`
	Checksum    bool   `mapstructure:"checksum"`
}

// TransportConfig defines connection settings
type TransportConfig struct {
	Network           string        `mapstructure:"network"`
	Address           string        `mapstructure:"address"`
	DialTimeout       time.Duration `mapstructure:"dial_timeout"`
	ReadBufferSize    int           `mapstructure:"read_buffer_size"`
	Codec             string        `mapstructure:"codec"`
	SocketPermissions uint32        `mapstructure:"socket_permissions"`
}

// LoggingConfig defines logging settings
type LoggingConfig struct {
	Level        string `mapstructure:"level"`
	Format       string `mapstructure:"format"`
	TraceEnabled bool   `mapstructure:"trace_enabled"`
}

// MetricsConfig defines metrics collection settings
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

// LoadConfig loads configuration from file and environment
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("framekit")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/framekit")
	}

	// Read environment variables
	v.SetEnvPrefix("FRAMEKIT")
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		// It's ok if config file doesn't exist, we have defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// viper reads the dial timeout as seconds
	cfg.Transport.DialTimeout *= time.Second

	return &cfg, nil
}

// DefaultConfig returns the built-in defaults without reading any file
func DefaultConfig() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	_ = v.Unmarshal(&cfg)
	cfg.Transport.DialTimeout *= time.Second
	return &cfg
}

func setDefaults(v *viper.Viper) {
	// Profile defaults
	v.SetDefault("profile.name", "standard")
	v.SetDefault("profile.custom", false)
	v.SetDefault("profile.checksum", true)

	// Transport defaults
	v.SetDefault("transport.network", "tcp")
	v.SetDefault("transport.address", "127.0.0.1:7600")
	v.SetDefault("transport.dial_timeout", 5)
	v.SetDefault("transport.read_buffer_size", framing.DefaultReadSize)
	v.SetDefault("transport.codec", string(CodecJSON))
	v.SetDefault("transport.socket_permissions", 0600)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.trace_enabled", true)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.endpoint", ":9090")
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "framekit")
}

// BuildProfile resolves the configured wire profile
func (c ProfileConfig) BuildProfile() (*Profile, error) {
	if !c.Custom {
		p, ok := framing.LookupProfile(c.Name)
		if !ok {
			return nil, fmt.Errorf("unknown profile %q", c.Name)
		}
		return p, nil
	}

	start := make([]byte, 0, len(c.StartBytes))
	for _, b := range c.StartBytes {
		if b < 0 || b > 0xFF {
			return nil, fmt.Errorf("profile %q: start byte %d out of range", c.Name, b)
		}
		start = append(start, byte(b))
	}

	name := c.Name
	if name == "" {
		name = "custom"
	}
	return framing.NewProfile(name, framing.ProfileOptions{
		StartBytes:     start,
		LengthWidth:    c.LengthWidth,
		HasPackageID:   c.PackageID,
		HasSequence:    c.Sequence,
		HasSystemID:    c.SystemID,
		HasComponentID: c.ComponentID,
		HasChecksum:    c.Checksum,
	})
}

// BuildRegistry creates the message registry from the messages table
func (c *Config) BuildRegistry() (*protocol.Registry, error) {
	reg, err := protocol.NewRegistry(c.Messages...)
	if err != nil {
		return nil, fmt.Errorf("invalid messages table: %w", err)
	}
	return reg, nil
}

// ConnOptions assembles connection options from the configuration
func (c *Config) ConnOptions(logger *Logger, metrics *StreamMetrics) (ConnOptions, error) {
	profile, err := c.Profile.BuildProfile()
	if err != nil {
		return ConnOptions{}, err
	}
	reg, err := c.BuildRegistry()
	if err != nil {
		return ConnOptions{}, err
	}
	codec, err := NewCodec(CodecType(c.Transport.Codec))
	if err != nil {
		return ConnOptions{}, err
	}
	return ConnOptions{
		Profile:        profile,
		Registry:       reg,
		Codec:          codec,
		ReadBufferSize: c.Transport.ReadBufferSize,
		Logger:         logger,
		Metrics:        metrics,
	}, nil
}
