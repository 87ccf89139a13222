package config

import (
	"time"

	"github.com/kbukum/hostproc/logger"
	"github.com/kbukum/hostproc/observability"
	"github.com/kbukum/hostproc/provider"
	"github.com/kbukum/hostproc/security"
	"github.com/kbukum/hostproc/validation"
)

// ServiceName is the name used for config file lookup and telemetry.
const ServiceName = "hostproc"

// Defaults applied to zero-valued fields.
const (
	DefaultTimeoutMS   uint32 = 10000
	DefaultGracePeriod        = 5 * time.Second
	DefaultHost               = "auto"
	DefaultEndpoint           = "localhost:4318"
	DefaultInterval           = 15 * time.Second
)

// Config is the complete hostproc configuration.
type Config struct {
	Base       BaseConfig                `yaml:"base" mapstructure:"base"`
	Logging    logger.Config             `yaml:"logging" mapstructure:"logging"`
	Process    ProcessConfig             `yaml:"process" mapstructure:"process"`
	Resilience provider.ResilienceConfig `yaml:"resilience" mapstructure:"resilience"`
	Telemetry  TelemetryConfig           `yaml:"telemetry" mapstructure:"telemetry"`
}

// ProcessConfig holds the defaults for commands started by the CLI.
type ProcessConfig struct {
	// Host selects the process host: auto, local or module.
	Host string `yaml:"host" mapstructure:"host" validate:"oneof=auto local module"`
	// TimeoutMS is the timeout sent to the host. Zero selects DefaultTimeoutMS.
	TimeoutMS uint32 `yaml:"timeout_ms" mapstructure:"timeout_ms"`
	// InheritEnv copies the caller's environment into every command.
	InheritEnv bool `yaml:"inherit_env" mapstructure:"inherit_env"`
	// Env is a base environment of KEY=VALUE entries applied before
	// per-command entries. Viper lowercases map keys, so this is a list.
	Env []string `yaml:"env" mapstructure:"env"`
	// GracePeriod is how long the local host waits after SIGTERM before
	// killing a timed-out process.
	GracePeriod time.Duration `yaml:"grace_period" mapstructure:"grace_period" validate:"gte=0"`
	// Dir is the working directory for the local host. Empty uses the
	// current directory.
	Dir string `yaml:"dir" mapstructure:"dir" validate:"nonul"`
	// FailOnStatus treats a non-zero exit status as a failed attempt.
	FailOnStatus bool `yaml:"fail_on_status" mapstructure:"fail_on_status"`
}

// TelemetryConfig controls OTLP trace and metric export.
type TelemetryConfig struct {
	Enabled    bool               `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string             `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure   bool               `yaml:"insecure" mapstructure:"insecure"`
	TLS        security.TLSConfig `yaml:"tls" mapstructure:"tls"`
	SampleRate float64            `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	Interval   time.Duration      `yaml:"interval" mapstructure:"interval" validate:"gte=0"`
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	c.Base.ApplyDefaults()
	c.Logging.ApplyDefaults()
	if c.Base.Debug {
		c.Logging.Level = "debug"
	}

	if c.Process.Host == "" {
		c.Process.Host = DefaultHost
	}
	if c.Process.TimeoutMS == 0 {
		c.Process.TimeoutMS = DefaultTimeoutMS
	}
	if c.Process.GracePeriod == 0 {
		c.Process.GracePeriod = DefaultGracePeriod
	}

	if c.Telemetry.Endpoint == "" {
		c.Telemetry.Endpoint = DefaultEndpoint
	}
	if c.Telemetry.Interval == 0 {
		c.Telemetry.Interval = DefaultInterval
	}
	if c.Telemetry.SampleRate == 0 {
		c.Telemetry.SampleRate = 1.0
	}
}

// Validate checks the configuration. Call ApplyDefaults first.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	v := validation.New()
	for _, entry := range c.Process.Env {
		v.EnvEntry("process.env", entry)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return c.Logging.Validate()
}

// TracerConfig returns the tracer settings for this configuration.
func (c *Config) TracerConfig() observability.TracerConfig {
	return observability.TracerConfig{
		ServiceName:    c.Base.Name,
		ServiceVersion: c.Base.Version,
		Environment:    c.Base.Environment,
		Endpoint:       c.Telemetry.Endpoint,
		Insecure:       c.Telemetry.Insecure,
		TLS:            c.Telemetry.TLS,
		SampleRate:     c.Telemetry.SampleRate,
	}
}

// MeterConfig returns the meter settings for this configuration.
func (c *Config) MeterConfig() observability.MeterConfig {
	return observability.MeterConfig{
		ServiceName:    c.Base.Name,
		ServiceVersion: c.Base.Version,
		Environment:    c.Base.Environment,
		Endpoint:       c.Telemetry.Endpoint,
		Insecure:       c.Telemetry.Insecure,
		TLS:            c.Telemetry.TLS,
		Interval:       c.Telemetry.Interval,
	}
}

// Load reads, defaults and validates the configuration.
func Load(opts ...LoaderOption) (*Config, error) {
	var cfg Config
	if err := LoadConfig(ServiceName, &cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
