package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tasktree/internal/tree"
)

func TestNewWithoutSettingsFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if cfg.Settings != DefaultSettings() {
		t.Errorf("Settings = %+v, want defaults", cfg.Settings)
	}
	if got, want := cfg.TokenPath(), filepath.Join(dir, "token.json"); got != want {
		t.Errorf("TokenPath() = %q, want %q", got, want)
	}
}

func TestNewReadsSettingsFile(t *testing.T) {
	dir := t.TempDir()
	data := "flush_interval: 250ms\nflush_timeout: 5s\nrenumber: on-delete\ndefault_list: Work\nlog_level: info\n"
	if err := os.WriteFile(filepath.Join(dir, SettingsFile), []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	want := Settings{
		FlushInterval: 250 * time.Millisecond,
		FlushTimeout:  5 * time.Second,
		Renumber:      tree.RenumberOnDelete,
		DefaultList:   "Work",
		LogLevel:      slog.LevelInfo,
	}
	if cfg.Settings != want {
		t.Errorf("Settings = %+v, want %+v", cfg.Settings, want)
	}
}

func TestParseSettings(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    Settings
		wantErr string
	}{
		{
			name: "empty",
			data: "",
			want: DefaultSettings(),
		},
		{
			name: "partial keeps defaults",
			data: "renumber: never\n",
			want: Settings{FlushInterval: time.Second, FlushTimeout: 30 * time.Second, Renumber: tree.RenumberNever, LogLevel: slog.LevelWarn},
		},
		{
			name:    "unknown key",
			data:    "flush: 1s\n",
			wantErr: "field flush not found",
		},
		{
			name:    "bad policy",
			data:    "renumber: sometimes\n",
			wantErr: "invalid renumber policy",
		},
		{
			name:    "negative interval",
			data:    "flush_interval: -1s\n",
			wantErr: "must not be negative",
		},
		{
			name: "unbounded flush",
			data: "flush_timeout: 0s\n",
			want: Settings{FlushInterval: time.Second, Renumber: tree.RenumberAlways, LogLevel: slog.LevelWarn},
		},
		{
			name:    "negative flush timeout",
			data:    "flush_timeout: -5s\n",
			wantErr: "flush_timeout must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSettings([]byte(tt.data))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("ParseSettings() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSettings() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseSettings() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLogLevel(t *testing.T) {
	cfg := &Config{Settings: DefaultSettings()}
	if got := cfg.LogLevel(); got != slog.LevelWarn {
		t.Errorf("LogLevel() = %v, want WARN", got)
	}
	cfg.Debug = true
	if got := cfg.LogLevel(); got != slog.LevelDebug {
		t.Errorf("LogLevel() with Debug = %v, want DEBUG", got)
	}
}

func TestDefaultConfigDirUsesXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got, want := DefaultConfigDir(), filepath.Join("/tmp/xdg", AppName); got != want {
		t.Errorf("DefaultConfigDir() = %q, want %q", got, want)
	}
}
