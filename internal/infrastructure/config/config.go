package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure shared by the fetcher,
// healthcheck, and roomsync processes.
//
// All configuration is loaded from YAML and can be overridden by
// environment variables. The environment names match the original
// container deployment (DB_HOST, SENSOR_IDS, ...), so the processes run
// unchanged under the existing compose files.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Sensors  SensorConfig   `yaml:"sensors"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Health   HealthConfig   `yaml:"health"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig contains TimescaleDB connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// SensorConfig contains the set of sensors the fetcher polls and the
// healthcheck inspects.
type SensorConfig struct {
	// IDs is the ordered list of device identifiers (hex device ids).
	IDs []string `yaml:"ids"`
}

// FetchConfig contains measurement API polling settings.
type FetchConfig struct {
	// APIURL is the base URL of the measurement service. The client
	// appends the lastmeasurement endpoint path.
	APIURL string `yaml:"api_url"`

	// IntervalSeconds is the target poll cadence. A cycle that overruns
	// the interval is followed immediately by the next one.
	IntervalSeconds int `yaml:"interval_seconds"`

	// TimeoutSeconds bounds a single outbound API request.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// HealthConfig contains staleness probe settings.
type HealthConfig struct {
	// ThresholdMinutes is the maximum age of a reading for the sensor to
	// count as recent.
	ThresholdMinutes int `yaml:"threshold_minutes"`
}

// MQTTConfig contains settings for the optional live measurement
// publisher.
type MQTTConfig struct {
	Enabled bool             `yaml:"enabled"`
	Broker  MQTTBrokerConfig `yaml:"broker"`
	Auth    MQTTAuthConfig   `yaml:"auth"`
	QoS     int              `yaml:"qos"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MetricsConfig contains settings for the optional Prometheus endpoint
// on the fetch daemon.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// ErrMissingCredentials indicates required store credentials are absent.
// Retrying cannot fix this, so callers must treat it as fatal.
var ErrMissingCredentials = errors.New("config: missing database credentials")

// Load reads configuration from an optional YAML file and applies
// environment variable overrides.
//
// The loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults; a missing file is not an
//     error — the deployment may be configured purely by environment)
//  3. Environment variables (override file values)
//
// Parameters:
//   - path: Path to the YAML configuration file ("" to skip)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If the file cannot be parsed or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		case os.IsNotExist(err):
			// Environment-only deployment.
		default:
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
// Database credentials deliberately have no defaults; each process
// validates them with RequireStoreCredentials before connecting.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host: "timescaledb",
			Port: 5432,
		},
		Fetch: FetchConfig{
			APIURL:          "https://www.data199.com",
			IntervalSeconds: 300,
			TimeoutSeconds:  10,
		},
		Health: HealthConfig{
			ThresholdMinutes: 30,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "roomsense-fetcher",
			},
			QoS: 1,
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. The names follow the original deployment contract.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("SENSOR_IDS"); v != "" {
		cfg.Sensors.IDs = ParseSensorIDs(v)
	}
	if v := os.Getenv("MEASUREMENT_API_URL"); v != "" {
		cfg.Fetch.APIURL = v
	}
	if v := os.Getenv("FETCH_INTERVAL_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			cfg.Fetch.IntervalSeconds = secs
		}
	}
	if v := os.Getenv("MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
		cfg.MQTT.Enabled = true
	}
	if v := os.Getenv("MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
		cfg.Metrics.Enabled = true
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// ParseSensorIDs splits a comma-separated sensor id list, trimming
// whitespace and dropping empty items.
//
// An empty input yields a nil slice, which the fetcher treats as "poll
// nothing" and the healthcheck as vacuously healthy.
func ParseSensorIDs(value string) []string {
	var ids []string
	for _, part := range strings.Split(value, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Validate checks the configuration for structural errors.
//
// Store credentials are intentionally not checked here — not every
// invocation needs them (a vacuous healthcheck never touches the store).
// Processes that do need them call RequireStoreCredentials separately.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		errs = append(errs, "database.port must be between 1 and 65535")
	}
	if c.Fetch.APIURL == "" {
		errs = append(errs, "fetch.api_url is required")
	}
	if c.Fetch.IntervalSeconds < 1 {
		errs = append(errs, "fetch.interval_seconds must be positive")
	}
	if c.Fetch.TimeoutSeconds < 1 {
		errs = append(errs, "fetch.timeout_seconds must be positive")
	}
	if c.Health.ThresholdMinutes < 1 {
		errs = append(errs, "health.threshold_minutes must be positive")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// RequireStoreCredentials verifies that the database name, user, and
// password are all set.
//
// Missing credentials are a configuration fault, not a connectivity
// fault: the connection manager never retries them, and every process
// that needs them exits non-zero immediately.
//
// Returns:
//   - error: ErrMissingCredentials naming the absent fields, or nil
func (c *Config) RequireStoreCredentials() error {
	var missing []string
	if c.Database.Name == "" {
		missing = append(missing, "DB_NAME")
	}
	if c.Database.User == "" {
		missing = append(missing, "DB_USER")
	}
	if c.Database.Password == "" {
		missing = append(missing, "DB_PASSWORD")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}

// DSN returns a keyword/value PostgreSQL connection string for the pgx
// driver.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s",
		c.Host, c.Port, c.Name, c.User, c.Password,
	)
}

// FetchInterval returns the poll cadence as a Duration.
func (c *Config) FetchInterval() time.Duration {
	return time.Duration(c.Fetch.IntervalSeconds) * time.Second
}

// FetchTimeout returns the per-request API timeout as a Duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// StalenessThreshold returns the probe threshold as a Duration.
func (c *Config) StalenessThreshold() time.Duration {
	return time.Duration(c.Health.ThresholdMinutes) * time.Minute
}
