package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure of the audio controller.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site       SiteConfig       `yaml:"site"`
	Controller ControllerConfig `yaml:"controller"`
	Policy     PolicyConfig     `yaml:"policy"`
	Database   DatabaseConfig   `yaml:"database"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	API        APIConfig        `yaml:"api"`
	WebSocket  WebSocketConfig  `yaml:"websocket"`
	InfluxDB   InfluxDBConfig   `yaml:"influxdb"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SiteConfig names the installation (vehicle or bench).
type SiteConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// ControllerConfig contains decision core settings.
type ControllerConfig struct {
	// StaticIDBoundary is the first ID handed out to dynamically registered
	// elements. Statically configured IDs must stay below it.
	StaticIDBoundary int `yaml:"static_id_boundary"`

	// DomainRegistrationTimeout is how long startup waits (in seconds) for
	// every domain to report registration complete.
	DomainRegistrationTimeout int `yaml:"domain_registration_timeout"`

	// DefaultClass governs connections whose ends share no class.
	DefaultClass string `yaml:"default_class"`
}

// PolicyConfig selects the policy engine.
type PolicyConfig struct {
	// Engine is "default" (built-in rules) or "mqtt" (remote rule engine).
	Engine string `yaml:"engine"`

	// File is the static element configuration (YAML).
	File string `yaml:"file"`

	HookTopic    string `yaml:"hook_topic"`
	ActionsTopic string `yaml:"actions_topic"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
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

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern AUDIOCONTROL_SECTION_KEY, for
// example AUDIOCONTROL_MQTT_HOST.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:   "bench-001",
			Name: "Audio Controller",
		},
		Controller: ControllerConfig{
			StaticIDBoundary:          100,
			DomainRegistrationTimeout: 10,
			DefaultClass:              "DEFAULT",
		},
		Policy: PolicyConfig{
			Engine:       "default",
			File:         "./configs/policy.yaml",
			HookTopic:    "audiocontrol/policy/hooks",
			ActionsTopic: "audiocontrol/policy/actions",
		},
		Database: DatabaseConfig{
			Path:        "./data/audiocontrol.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "audiocontrol",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    8090,
			Timeouts: APITimeoutConfig{
				Read:  15,
				Write: 15,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 4096,
			PingInterval:   30,
			PongTimeout:    10,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// envPrefix starts every override variable, e.g. AUDIOCONTROL_DATABASE_PATH.
const envPrefix = "AUDIOCONTROL_"

// applyEnvOverrides copies set AUDIOCONTROL_* variables over cfg.
// Unparseable numbers and booleans are ignored.
func applyEnvOverrides(cfg *Config) {
	strs := map[string]*string{
		"SITE_ID":                  &cfg.Site.ID,
		"CONTROLLER_DEFAULT_CLASS": &cfg.Controller.DefaultClass,
		"POLICY_ENGINE":            &cfg.Policy.Engine,
		"POLICY_FILE":              &cfg.Policy.File,
		"DATABASE_PATH":            &cfg.Database.Path,
		"MQTT_HOST":                &cfg.MQTT.Broker.Host,
		"MQTT_CLIENT_ID":           &cfg.MQTT.Broker.ClientID,
		"MQTT_USERNAME":            &cfg.MQTT.Auth.Username,
		"MQTT_PASSWORD":            &cfg.MQTT.Auth.Password,
		"API_HOST":                 &cfg.API.Host,
		"INFLUXDB_URL":             &cfg.InfluxDB.URL,
		"INFLUXDB_TOKEN":           &cfg.InfluxDB.Token,
		"LOGGING_LEVEL":            &cfg.Logging.Level,
		"LOGGING_FORMAT":           &cfg.Logging.Format,
	}
	for key, dst := range strs {
		if v := os.Getenv(envPrefix + key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"CONTROLLER_STATIC_ID_BOUNDARY":          &cfg.Controller.StaticIDBoundary,
		"CONTROLLER_DOMAIN_REGISTRATION_TIMEOUT": &cfg.Controller.DomainRegistrationTimeout,
		"MQTT_PORT":                              &cfg.MQTT.Broker.Port,
		"MQTT_QOS":                               &cfg.MQTT.QoS,
		"API_PORT":                               &cfg.API.Port,
	}
	for key, dst := range ints {
		if n, err := strconv.Atoi(os.Getenv(envPrefix + key)); err == nil {
			*dst = n
		}
	}

	bools := map[string]*bool{
		"MQTT_TLS":         &cfg.MQTT.Broker.TLS,
		"API_ENABLED":      &cfg.API.Enabled,
		"INFLUXDB_ENABLED": &cfg.InfluxDB.Enabled,
	}
	for key, dst := range bools {
		if b, err := strconv.ParseBool(os.Getenv(envPrefix + key)); err == nil {
			*dst = b
		}
	}
}

// Validate checks the configuration for errors.
// All problems are reported together.
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	if c.Controller.StaticIDBoundary < 1 || c.Controller.StaticIDBoundary > 65535 {
		errs = append(errs, "controller.static_id_boundary must be between 1 and 65535")
	}
	if c.Controller.DomainRegistrationTimeout < 0 {
		errs = append(errs, "controller.domain_registration_timeout must not be negative")
	}

	switch c.Policy.Engine {
	case "default":
	case "mqtt":
		if c.Policy.HookTopic == "" || c.Policy.ActionsTopic == "" {
			errs = append(errs, "policy.hook_topic and policy.actions_topic are required for the mqtt engine")
		} else if strings.ContainsAny(c.Policy.HookTopic, "+#") {
			errs = append(errs, "policy.hook_topic must not contain wildcards")
		}
	default:
		errs = append(errs, fmt.Sprintf("policy.engine %q must be default or mqtt", c.Policy.Engine))
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.InfluxDB.Enabled && (c.InfluxDB.URL == "" || c.InfluxDB.Bucket == "") {
		errs = append(errs, "influxdb.url and influxdb.bucket are required when enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// RegistrationTimeout returns the domain registration timeout as a Duration.
func (c *Config) RegistrationTimeout() time.Duration {
	return time.Duration(c.Controller.DomainRegistrationTimeout) * time.Second
}

// ReadTimeout returns the read timeout as a Duration.
func (t APITimeoutConfig) ReadTimeout() time.Duration {
	return time.Duration(t.Read) * time.Second
}

// WriteTimeout returns the write timeout as a Duration.
func (t APITimeoutConfig) WriteTimeout() time.Duration {
	return time.Duration(t.Write) * time.Second
}

// IdleTimeout returns the keep-alive idle timeout as a Duration.
func (t APITimeoutConfig) IdleTimeout() time.Duration {
	return time.Duration(t.Idle) * time.Second
}
