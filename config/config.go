package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds process configuration read from the environment.
type Config struct {
	Port           string        `env:"PORT" envDefault:"3000"`
	AllowedOrigins string        `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173"`
	Rooms          []string      `env:"CHAT_ROOMS" envDefault:"general,random,help" envSeparator:","`
	HistorySize    int           `env:"CHAT_HISTORY_CAPACITY" envDefault:"200"`
	TypingTimeout  time.Duration `env:"CHAT_TYPING_TIMEOUT" envDefault:"3s"`
	PageSize       int           `env:"CHAT_PAGE_SIZE" envDefault:"50"`

	EventsPerSecond float64 `env:"WS_EVENTS_PER_SECOND" envDefault:"10"`
	EventBurst      int     `env:"WS_EVENT_BURST" envDefault:"20"`
	SendBuffer      int     `env:"WS_SEND_BUFFER" envDefault:"64"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first setting that cannot run a server.
func (c Config) Validate() error {
	switch {
	case len(c.Rooms) == 0:
		return fmt.Errorf("CHAT_ROOMS must name at least one room")
	case c.HistorySize <= 0:
		return fmt.Errorf("CHAT_HISTORY_CAPACITY must be positive, got %d", c.HistorySize)
	case c.TypingTimeout <= 0:
		return fmt.Errorf("CHAT_TYPING_TIMEOUT must be positive, got %s", c.TypingTimeout)
	case c.PageSize <= 0:
		return fmt.Errorf("CHAT_PAGE_SIZE must be positive, got %d", c.PageSize)
	case c.EventsPerSecond <= 0 || c.EventBurst <= 0:
		return fmt.Errorf("WS_EVENTS_PER_SECOND and WS_EVENT_BURST must be positive")
	case c.SendBuffer <= 0:
		return fmt.Errorf("WS_SEND_BUFFER must be positive, got %d", c.SendBuffer)
	case c.LogLevel != "info" && c.LogLevel != "error":
		return fmt.Errorf("LOG_LEVEL must be info or error, got %q", c.LogLevel)
	}
	return nil
}
