// Package common provides configuration management, id encoding, and HTTP
// endpoint utilities shared by the digital twin repository service. It supports
// YAML configuration files with environment variable overrides, CORS setup and
// a health endpoint.
// nolint:all
package common

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
)

// Config represents the complete configuration structure for the service.
type Config struct {
	Server      ServerConfig      `mapstructure:"server" json:"server"`
	CorsConfig  CorsConfig        `mapstructure:"cors" json:"cors"`
	Persistence PersistenceConfig `mapstructure:"persistence" json:"persistence"`
	MessageBus  MessageBusConfig  `mapstructure:"messagebus" json:"messagebus"`
	Registry    RegistryConfig    `mapstructure:"registry" json:"registry"`
}

// ServerConfig contains HTTP server configuration parameters.
type ServerConfig struct {
	Port        int    `mapstructure:"port" json:"port"`
	ContextPath string `mapstructure:"contextPath" json:"contextPath"`
	// ExternalURL is the URL under which remote clients reach this service.
	// It is the base of every endpoint href pushed to the registries.
	ExternalURL string `mapstructure:"externalUrl" json:"externalUrl"`
}

// CorsConfig contains Cross-Origin Resource Sharing (CORS) policy settings.
type CorsConfig struct {
	AllowedOrigins   []string `mapstructure:"allowedOrigins" json:"allowedOrigins"`
	AllowedMethods   []string `mapstructure:"allowedMethods" json:"allowedMethods"`
	AllowedHeaders   []string `mapstructure:"allowedHeaders" json:"allowedHeaders"`
	AllowCredentials bool     `mapstructure:"allowCredentials" json:"allowCredentials"`
}

// PersistenceConfig selects and configures the persistence backend.
// Backend is one of "memory", "postgres" or "mongodb".
type PersistenceConfig struct {
	Backend  string         `mapstructure:"backend" json:"backend"`
	Postgres PostgresConfig `mapstructure:"postgres" json:"postgres"`
	MongoDB  MongoDBConfig  `mapstructure:"mongodb" json:"mongodb"`
}

// PostgresConfig contains PostgreSQL database connection parameters.
type PostgresConfig struct {
	Host                   string `mapstructure:"host" json:"host"`
	Port                   int    `mapstructure:"port" json:"port"`
	User                   string `mapstructure:"user" json:"user"`
	Password               string `mapstructure:"password" json:"password"`
	DBName                 string `mapstructure:"dbname" json:"dbname"`
	MaxOpenConnections     int    `mapstructure:"maxOpenConnections" json:"maxOpenConnections"`
	MaxIdleConnections     int    `mapstructure:"maxIdleConnections" json:"maxIdleConnections"`
	ConnMaxLifetimeMinutes int    `mapstructure:"connMaxLifetimeMinutes" json:"connMaxLifetimeMinutes"`
}

// MongoDBConfig contains MongoDB connection parameters.
type MongoDBConfig struct {
	URI      string `mapstructure:"uri" json:"uri"`
	Database string `mapstructure:"database" json:"database"`
}

// MessageBusConfig selects and configures the message bus backend.
// Backend is one of "internal" or "mqtt".
type MessageBusConfig struct {
	Backend string     `mapstructure:"backend" json:"backend"`
	MQTT    MQTTConfig `mapstructure:"mqtt" json:"mqtt"`
}

// MQTTConfig contains MQTT broker connection parameters for the MQTT bus.
type MQTTConfig struct {
	BrokerURL   string `mapstructure:"brokerUrl" json:"brokerUrl"`
	ClientID    string `mapstructure:"clientId" json:"clientId"`
	Username    string `mapstructure:"username" json:"username"`
	Password    string `mapstructure:"password" json:"password"`
	TopicPrefix string `mapstructure:"topicPrefix" json:"topicPrefix"`
	QoS         int    `mapstructure:"qos" json:"qos"`
}

// RegistryConfig configures the registry synchronization engine.
type RegistryConfig struct {
	// ShellRegistries and SubmodelRegistries hold the base URLs of the external
	// registries descriptors are mirrored to, one list per descriptor kind.
	ShellRegistries    []string `mapstructure:"shellRegistries" json:"shellRegistries"`
	SubmodelRegistries []string `mapstructure:"submodelRegistries" json:"submodelRegistries"`
	// RequestTimeoutSeconds bounds a single registry HTTP call.
	RequestTimeoutSeconds int `mapstructure:"requestTimeoutSeconds" json:"requestTimeoutSeconds"`
	// BulkWorkers bounds the parallelism of initial registration and
	// unregistration on shutdown.
	BulkWorkers int `mapstructure:"bulkWorkers" json:"bulkWorkers"`
	// PageSize is the page size used when listing entities from persistence.
	PageSize int32 `mapstructure:"pageSize" json:"pageSize"`
}

// LoadConfig loads the configuration from a YAML file and environment variables.
//
// Precedence, highest first: environment variables, configuration file,
// defaults. Environment variables use underscore notation, e.g. SERVER_PORT
// for server.port.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		log.Printf("📁 Loading config from file: %s", configPath)
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		log.Println("📁 No config file provided, loading from environment variables only")
	}

	// Override config with environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Server.ExternalURL == "" {
		cfg.Server.ExternalURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}

	log.Println("✅ Configuration loaded successfully")
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.contextPath", "")
	v.SetDefault("server.externalUrl", "")

	// CORS defaults
	v.SetDefault("cors.allowedOrigins", []string{"*"})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"*"})
	v.SetDefault("cors.allowCredentials", true)

	// Persistence defaults
	v.SetDefault("persistence.backend", "memory")
	v.SetDefault("persistence.postgres.host", "localhost")
	v.SetDefault("persistence.postgres.port", 5432)
	v.SetDefault("persistence.postgres.user", "admin")
	v.SetDefault("persistence.postgres.password", "admin123")
	v.SetDefault("persistence.postgres.dbname", "twinRepository")
	v.SetDefault("persistence.postgres.maxOpenConnections", 50)
	v.SetDefault("persistence.postgres.maxIdleConnections", 50)
	v.SetDefault("persistence.postgres.connMaxLifetimeMinutes", 5)
	v.SetDefault("persistence.mongodb.uri", "mongodb://localhost:27017")
	v.SetDefault("persistence.mongodb.database", "twinRepository")

	// Message bus defaults
	v.SetDefault("messagebus.backend", "internal")
	v.SetDefault("messagebus.mqtt.brokerUrl", "tcp://localhost:1883")
	v.SetDefault("messagebus.mqtt.clientId", "twin-repository-service")
	v.SetDefault("messagebus.mqtt.topicPrefix", "twins/events")
	v.SetDefault("messagebus.mqtt.qos", 1)

	// Registry synchronization defaults
	v.SetDefault("registry.shellRegistries", []string{})
	v.SetDefault("registry.submodelRegistries", []string{})
	v.SetDefault("registry.requestTimeoutSeconds", 30)
	v.SetDefault("registry.bulkWorkers", 8)
	v.SetDefault("registry.pageSize", 100)
}

// PrintConfiguration prints the current configuration with credentials redacted.
func PrintConfiguration(cfg *Config) {
	cfgCopy := *cfg

	if cfg.Persistence.Postgres.Host != "" {
		cfgCopy.Persistence.Postgres.Host = "****"
		cfgCopy.Persistence.Postgres.User = "****"
		cfgCopy.Persistence.Postgres.Password = "****"
	}
	if cfg.Persistence.MongoDB.URI != "" {
		cfgCopy.Persistence.MongoDB.URI = "****"
	}
	if cfg.MessageBus.MQTT.Password != "" {
		cfgCopy.MessageBus.MQTT.Username = "****"
		cfgCopy.MessageBus.MQTT.Password = "****"
	}

	configJSON, err := json.MarshalIndent(cfgCopy, "", "  ")
	if err != nil {
		log.Printf("Unable to marshal configuration to JSON: %v", err)
		return
	}

	log.Printf("📜 Loaded configuration:\n%s", string(configJSON))
}

// AddCors configures Cross-Origin Resource Sharing middleware for the router.
func AddCors(r *chi.Mux, config *Config) {
	c := cors.New(cors.Options{
		AllowedOrigins:   config.CorsConfig.AllowedOrigins,
		AllowedMethods:   config.CorsConfig.AllowedMethods,
		AllowedHeaders:   config.CorsConfig.AllowedHeaders,
		AllowCredentials: config.CorsConfig.AllowCredentials,
	})
	r.Use(c.Handler)
}
