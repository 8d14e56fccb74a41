package config

import (
	"fmt"
	"time"

	"github.com/creasty/defaults"
	"github.com/spf13/viper"
)

// Config represents the ledger server configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Ethereum EthereumConfig `mapstructure:"ethereum"`
	Token    TokenConfig    `mapstructure:"token"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host" default:"0.0.0.0"`
	Port            int           `mapstructure:"port" default:"3004"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" default:"30s"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" default:"30s"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" default:"60s"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" default:"60s"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" default:"30s"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host     string `mapstructure:"host" default:"localhost"`
	Port     int    `mapstructure:"port" default:"5432"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database" default:"shakti_ledger"`
	SSLMode  string `mapstructure:"ssl_mode" default:"disable"`
}

// EthereumConfig contains settings for the optional read-only chain client
// used to cross-check mirror writes against the SHG factory contract.
type EthereumConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	RPCURL         string        `mapstructure:"rpc_url"`
	FactoryAddress string        `mapstructure:"factory_address"`
	ChainID        int64         `mapstructure:"chain_id" default:"11155111"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" default:"10s"`
}

// TokenConfig describes the vault stablecoin, used only for display
// formatting of smallest-unit amounts.
type TokenConfig struct {
	Symbol   string `mapstructure:"symbol" default:"USDC"`
	Decimals int32  `mapstructure:"decimals" default:"6"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level" default:"info"`
	Format     string `mapstructure:"format" default:"json"`
	OutputPath string `mapstructure:"output_path" default:"stdout"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Fill anything the file left unset from the struct tags
	if err := defaults.Set(&config); err != nil {
		return nil, fmt.Errorf("failed to apply config defaults: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func validate(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if config.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if config.Ethereum.Enabled {
		if config.Ethereum.RPCURL == "" {
			return fmt.Errorf("ethereum.rpc_url is required when ethereum.enabled is true")
		}
		if config.Ethereum.FactoryAddress == "" {
			return fmt.Errorf("ethereum.factory_address is required when ethereum.enabled is true")
		}
	}
	return nil
}
