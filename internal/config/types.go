package config

import "time"

// Config represents the main configuration structure
type Config struct {
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Engine     EngineConfig     `yaml:"engine" mapstructure:"engine"`
	Limits     LimitsConfig     `yaml:"limits" mapstructure:"limits"`
	Dictionary DictionaryConfig `yaml:"dictionary" mapstructure:"dictionary"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Logging    LoggingConfig    `yaml:"logging" mapstructure:"logging"`
	WebSocket  WebSocketConfig  `yaml:"websocket" mapstructure:"websocket"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
}

// EngineConfig holds the correction defaults applied when a request does not
// set them
type EngineConfig struct {
	SpellCheck   bool   `yaml:"spell_check" mapstructure:"spell_check"`
	GrammarCheck bool   `yaml:"grammar_check" mapstructure:"grammar_check"`
	DiffMode     string `yaml:"diff_mode" mapstructure:"diff_mode"` // lockstep or lcs
}

// LimitsConfig bounds what a client may send
type LimitsConfig struct {
	MaxTextLength int `yaml:"max_text_length" mapstructure:"max_text_length"`
	RateLimit     struct {
		Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
		Requests int           `yaml:"requests" mapstructure:"requests"`
		Window   time.Duration `yaml:"window" mapstructure:"window"`
		IdleTTL  time.Duration `yaml:"idle_ttl" mapstructure:"idle_ttl"`
	} `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// DictionaryConfig lists extra misspelling sources merged at startup
type DictionaryConfig struct {
	File            string        `yaml:"file" mapstructure:"file"`
	DatabaseURL     string        `yaml:"database_url" mapstructure:"database_url"`
	MaxOpenConns    int           `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
	Import          struct {
		BatchSize       int  `yaml:"batch_size" mapstructure:"batch_size"`
		WorkerCount     int  `yaml:"worker_count" mapstructure:"worker_count"`
		MaxEditDistance int  `yaml:"max_edit_distance" mapstructure:"max_edit_distance"`
		ValidateData    bool `yaml:"validate_data" mapstructure:"validate_data"`
	} `yaml:"import" mapstructure:"import"`
}

// CacheConfig contains Redis result cache configuration
type CacheConfig struct {
	Enabled        bool          `yaml:"enabled" mapstructure:"enabled"`
	RedisURL       string        `yaml:"redis_url" mapstructure:"redis_url"`
	MaxConnections int           `yaml:"max_connections" mapstructure:"max_connections"`
	MinIdleConns   int           `yaml:"min_idle_conns" mapstructure:"min_idle_conns"`
	DefaultTTL     time.Duration `yaml:"default_ttl" mapstructure:"default_ttl"`
	KeyPrefix      string        `yaml:"key_prefix" mapstructure:"key_prefix"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json or console
	File   struct {
		Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
		Path    string `yaml:"path" mapstructure:"path"`
	} `yaml:"file" mapstructure:"file"`
}

// WebSocketConfig contains dashboard feed configuration
type WebSocketConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Path     string `yaml:"path" mapstructure:"path"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
	Events   struct {
		BroadcastCorrections bool `yaml:"broadcast_corrections" mapstructure:"broadcast_corrections"`
		BroadcastRequests    bool `yaml:"broadcast_requests" mapstructure:"broadcast_requests"`
		BroadcastConnections bool `yaml:"broadcast_connections" mapstructure:"broadcast_connections"`
	} `yaml:"events" mapstructure:"events"`
}

// GetDefaults returns a configuration with sensible defaults
func GetDefaults() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Engine: EngineConfig{
			SpellCheck:   true,
			GrammarCheck: true,
			DiffMode:     "lockstep",
		},
		Limits: LimitsConfig{
			MaxTextLength: 2000,
		},
		Dictionary: DictionaryConfig{
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Cache: CacheConfig{
			Enabled:        false,
			RedisURL:       "redis://localhost:6379/0",
			MaxConnections: 10,
			MinIdleConns:   2,
			DefaultTTL:     time.Hour,
			KeyPrefix:      "spell-sentinel",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		WebSocket: WebSocketConfig{
			Enabled: true,
			Path:    "/ws",
		},
	}

	cfg.Limits.RateLimit.Enabled = true
	cfg.Limits.RateLimit.Requests = 10
	cfg.Limits.RateLimit.Window = time.Minute
	cfg.Limits.RateLimit.IdleTTL = time.Hour

	cfg.Dictionary.Import.BatchSize = 500
	cfg.Dictionary.Import.WorkerCount = 4
	cfg.Dictionary.Import.MaxEditDistance = 4
	cfg.Dictionary.Import.ValidateData = true

	cfg.Logging.File.Path = "logs/spell-sentinel.log"

	cfg.WebSocket.Events.BroadcastCorrections = true
	cfg.WebSocket.Events.BroadcastRequests = true
	cfg.WebSocket.Events.BroadcastConnections = true

	return cfg
}
