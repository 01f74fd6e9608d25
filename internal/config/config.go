package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Chain         ChainConfig        `mapstructure:"chain"`
	Ticketing     TicketingConfig    `mapstructure:"ticketing"`
	Storage       StorageConfig      `mapstructure:"storage"`
	Bank          BankConfig         `mapstructure:"bank"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Server        ServerConfig       `mapstructure:"server"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// ChainConfig contains ledger height source configuration. When Enabled is
// false the daemon runs on a manually advanced height, which is the mode the
// operations API's height endpoint controls.
type ChainConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	NodeURL        string        `mapstructure:"node_url"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	StartHeight    uint64        `mapstructure:"start_height"`
}

// TicketingConfig contains the contract deployment parameters
type TicketingConfig struct {
	ContractOwner      string `mapstructure:"contract_owner"`
	MinTicketPrice     uint64 `mapstructure:"min_ticket_price"`
	PlatformFeePercent uint64 `mapstructure:"platform_fee_percent"`
	MaxTicketsPerOwner uint64 `mapstructure:"max_tickets_per_owner"`
}

// StorageConfig contains database configuration
type StorageConfig struct {
	Type             string        `mapstructure:"type"` // sqlite, postgres
	ConnectionString string        `mapstructure:"connection_string"`
	MaxConnections   int           `mapstructure:"max_connections"`
	MaxIdleTime      time.Duration `mapstructure:"max_idle_time"`
}

// BankConfig contains currency-transfer collaborator configuration
type BankConfig struct {
	Provider       string `mapstructure:"provider"`
	InitialBalance uint64 `mapstructure:"initial_balance"`
	AutoFund       bool   `mapstructure:"auto_fund"`
}

// NotificationConfig contains lifecycle notification configuration
type NotificationConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	WebhookURL    string        `mapstructure:"webhook_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port          int           `mapstructure:"port"`
	Host          string        `mapstructure:"host"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	EnableMetrics bool          `mapstructure:"enable_metrics"`
	EnableHealth  bool          `mapstructure:"enable_health"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json, text
	Output string `mapstructure:"output"` // stdout, file
	File   string `mapstructure:"file"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigType("yaml")

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./internal/config")
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("TICKETING")
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Println("Config file not found, using defaults and environment variables")
		} else {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Override with environment variables if present
	if nodeURL := os.Getenv("CHAIN_NODE_URL"); nodeURL != "" {
		config.Chain.NodeURL = nodeURL
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Storage.ConnectionString = dbURL
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// App defaults
	viper.SetDefault("app.name", "event-ticketing")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.environment", "development")
	viper.SetDefault("app.debug", false)

	// Chain defaults
	viper.SetDefault("chain.enabled", false)
	viper.SetDefault("chain.node_url", "https://public-node.testnet.rsk.co")
	viper.SetDefault("chain.poll_interval", "15s")
	viper.SetDefault("chain.request_timeout", "30s")
	viper.SetDefault("chain.start_height", 0)

	// Ticketing defaults (amounts in currency micro-units)
	viper.SetDefault("ticketing.contract_owner", "")
	viper.SetDefault("ticketing.min_ticket_price", 1000000)
	viper.SetDefault("ticketing.platform_fee_percent", 5)
	viper.SetDefault("ticketing.max_tickets_per_owner", 0)

	// Storage defaults
	viper.SetDefault("storage.type", "sqlite")
	viper.SetDefault("storage.connection_string", "./data/ticketing.db")
	viper.SetDefault("storage.max_connections", 25)
	viper.SetDefault("storage.max_idle_time", "15m")

	// Bank defaults
	viper.SetDefault("bank.provider", "memory")
	viper.SetDefault("bank.initial_balance", 100000000)
	viper.SetDefault("bank.auto_fund", true)

	// Notification defaults
	viper.SetDefault("notifications.enabled", true)
	viper.SetDefault("notifications.webhook_url", "")
	viper.SetDefault("notifications.timeout", "10s")
	viper.SetDefault("notifications.retry_attempts", 3)
	viper.SetDefault("notifications.retry_delay", "5s")

	// Server defaults
	viper.SetDefault("server.port", 8081)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", "10s")
	viper.SetDefault("server.write_timeout", "10s")
	viper.SetDefault("server.enable_metrics", true)
	viper.SetDefault("server.enable_health", true)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")
}
