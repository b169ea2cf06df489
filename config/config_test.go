package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "3000" {
		t.Errorf("Port = %q, want %q", cfg.Port, "3000")
	}
	if got := strings.Join(cfg.Rooms, ","); got != "general,random,help" {
		t.Errorf("Rooms = %q, want %q", got, "general,random,help")
	}
	if cfg.HistorySize != 200 {
		t.Errorf("HistorySize = %d, want 200", cfg.HistorySize)
	}
	if cfg.TypingTimeout != 3*time.Second {
		t.Errorf("TypingTimeout = %s, want 3s", cfg.TypingTimeout)
	}
	if cfg.PageSize != 50 {
		t.Errorf("PageSize = %d, want 50", cfg.PageSize)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("CHAT_ROOMS", "lobby,design")
	t.Setenv("CHAT_TYPING_TIMEOUT", "1500ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if len(cfg.Rooms) != 2 || cfg.Rooms[1] != "design" {
		t.Errorf("Rooms = %v, want [lobby design]", cfg.Rooms)
	}
	if cfg.TypingTimeout != 1500*time.Millisecond {
		t.Errorf("TypingTimeout = %s, want 1.5s", cfg.TypingTimeout)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{name: "unparsable capacity", key: "CHAT_HISTORY_CAPACITY", value: "lots", want: "parse env:"},
		{name: "zero capacity", key: "CHAT_HISTORY_CAPACITY", value: "0", want: "CHAT_HISTORY_CAPACITY"},
		{name: "negative timeout", key: "CHAT_TYPING_TIMEOUT", value: "-1s", want: "CHAT_TYPING_TIMEOUT"},
		{name: "zero send buffer", key: "WS_SEND_BUFFER", value: "0", want: "WS_SEND_BUFFER"},
		{name: "unknown log level", key: "LOG_LEVEL", value: "verbose", want: "LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}
