package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/raaihank/spell-sentinel/internal/diff"
)

var (
	current   *viper.Viper
	currentMu sync.Mutex
)

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	// Set defaults
	config := GetDefaults()

	// Configure viper
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/spell-sentinel/")
	v.AddConfigPath("$HOME/.spell-sentinel/")
	setDefaults(v, config)

	// Environment variable overrides
	v.SetEnvPrefix("SENTINEL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Use specific config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	// Read configuration
	if err := v.ReadInConfig(); err != nil {
		// Config file not found is not an error - we'll use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal into config struct
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	currentMu.Lock()
	current = v
	currentMu.Unlock()

	return config, nil
}

// setDefaults registers every default so environment overrides reach keys
// that are absent from the config file
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("server.port", c.Server.Port)
	v.SetDefault("server.read_timeout", c.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", c.Server.WriteTimeout)
	v.SetDefault("server.idle_timeout", c.Server.IdleTimeout)

	v.SetDefault("engine.spell_check", c.Engine.SpellCheck)
	v.SetDefault("engine.grammar_check", c.Engine.GrammarCheck)
	v.SetDefault("engine.diff_mode", c.Engine.DiffMode)

	v.SetDefault("limits.max_text_length", c.Limits.MaxTextLength)
	v.SetDefault("limits.rate_limit.enabled", c.Limits.RateLimit.Enabled)
	v.SetDefault("limits.rate_limit.requests", c.Limits.RateLimit.Requests)
	v.SetDefault("limits.rate_limit.window", c.Limits.RateLimit.Window)
	v.SetDefault("limits.rate_limit.idle_ttl", c.Limits.RateLimit.IdleTTL)

	v.SetDefault("dictionary.file", c.Dictionary.File)
	v.SetDefault("dictionary.database_url", c.Dictionary.DatabaseURL)
	v.SetDefault("dictionary.max_open_conns", c.Dictionary.MaxOpenConns)
	v.SetDefault("dictionary.max_idle_conns", c.Dictionary.MaxIdleConns)
	v.SetDefault("dictionary.conn_max_lifetime", c.Dictionary.ConnMaxLifetime)
	v.SetDefault("dictionary.import.batch_size", c.Dictionary.Import.BatchSize)
	v.SetDefault("dictionary.import.worker_count", c.Dictionary.Import.WorkerCount)
	v.SetDefault("dictionary.import.max_edit_distance", c.Dictionary.Import.MaxEditDistance)
	v.SetDefault("dictionary.import.validate_data", c.Dictionary.Import.ValidateData)

	v.SetDefault("cache.enabled", c.Cache.Enabled)
	v.SetDefault("cache.redis_url", c.Cache.RedisURL)
	v.SetDefault("cache.max_connections", c.Cache.MaxConnections)
	v.SetDefault("cache.min_idle_conns", c.Cache.MinIdleConns)
	v.SetDefault("cache.default_ttl", c.Cache.DefaultTTL)
	v.SetDefault("cache.key_prefix", c.Cache.KeyPrefix)

	v.SetDefault("logging.level", c.Logging.Level)
	v.SetDefault("logging.format", c.Logging.Format)
	v.SetDefault("logging.file.enabled", c.Logging.File.Enabled)
	v.SetDefault("logging.file.path", c.Logging.File.Path)

	v.SetDefault("websocket.enabled", c.WebSocket.Enabled)
	v.SetDefault("websocket.path", c.WebSocket.Path)
	v.SetDefault("websocket.username", c.WebSocket.Username)
	v.SetDefault("websocket.password", c.WebSocket.Password)
	v.SetDefault("websocket.events.broadcast_corrections", c.WebSocket.Events.BroadcastCorrections)
	v.SetDefault("websocket.events.broadcast_requests", c.WebSocket.Events.BroadcastRequests)
	v.SetDefault("websocket.events.broadcast_connections", c.WebSocket.Events.BroadcastConnections)
}

// validateConfig validates the loaded configuration
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if _, err := diff.ParseMode(config.Engine.DiffMode); err != nil {
		return fmt.Errorf("invalid diff mode: %w", err)
	}

	if config.Limits.MaxTextLength <= 0 {
		return fmt.Errorf("invalid max text length: %d", config.Limits.MaxTextLength)
	}

	if config.Limits.RateLimit.Enabled {
		if config.Limits.RateLimit.Requests <= 0 {
			return fmt.Errorf("invalid rate limit requests: %d", config.Limits.RateLimit.Requests)
		}
		if config.Limits.RateLimit.Window <= 0 {
			return fmt.Errorf("invalid rate limit window: %s", config.Limits.RateLimit.Window)
		}
	}

	if config.Cache.Enabled && config.Cache.RedisURL == "" {
		return fmt.Errorf("cache enabled but redis_url is empty")
	}

	if config.Logging.Level != "debug" && config.Logging.Level != "info" && config.Logging.Level != "warn" && config.Logging.Level != "error" {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.Logging.Level)
	}

	if config.Logging.Format != "json" && config.Logging.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", config.Logging.Format)
	}

	return nil
}

// Watch starts watching the configuration file loaded by the last call to
// Load. The callback receives each valid new configuration; invalid edits
// are reported through onError and otherwise ignored.
func Watch(callback func(*Config), onError func(error)) error {
	currentMu.Lock()
	v := current
	currentMu.Unlock()

	if v == nil {
		return fmt.Errorf("configuration not loaded")
	}
	if v.ConfigFileUsed() == "" {
		return fmt.Errorf("no configuration file to watch")
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		newConfig := GetDefaults()
		if err := v.Unmarshal(newConfig); err != nil {
			if onError != nil {
				onError(fmt.Errorf("failed to unmarshal %s: %w", e.Name, err))
			}
			return
		}

		if err := validateConfig(newConfig); err != nil {
			if onError != nil {
				onError(fmt.Errorf("invalid configuration in %s: %w", e.Name, err))
			}
			return
		}

		callback(newConfig)
	})
	v.WatchConfig()

	return nil
}
