package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		setup   func()
		cleanup func()
		wantErr bool
		check   func(t *testing.T)
	}{
		{
			name: "missing config file with defaults",
			setup: func() {
				viper.Reset()
			},
			cleanup: func() {
				viper.Reset()
			},
			wantErr: false,
			check: func(t *testing.T) {
				if GetInt("server.port") != 8080 {
					t.Errorf("Expected default server.port to be 8080, got %d", GetInt("server.port"))
				}
				if GetString("whisper.model") != "tiny" {
					t.Errorf("Expected default whisper.model to be tiny, got %s", GetString("whisper.model"))
				}
				if GetInt("processing.max_split_parts") != 20 {
					t.Errorf("Expected default max_split_parts to be 20, got %d", GetInt("processing.max_split_parts"))
				}
			},
		},
		{
			name: "environment variable override",
			setup: func() {
				viper.Reset()
				os.Setenv("VIDSLICE_SERVER_PORT", "9090")
				os.Setenv("VIDSLICE_WHISPER_MODEL", "base")
			},
			cleanup: func() {
				os.Unsetenv("VIDSLICE_SERVER_PORT")
				os.Unsetenv("VIDSLICE_WHISPER_MODEL")
				viper.Reset()
			},
			wantErr: false,
			check: func(t *testing.T) {
				if GetInt("server.port") != 9090 {
					t.Errorf("Expected server.port to be overridden to 9090, got %d", GetInt("server.port"))
				}
				if GetString("whisper.model") != "base" {
					t.Errorf("Expected whisper.model to be overridden to base, got %s", GetString("whisper.model"))
				}
			},
		},
		{
			name: "invalid whisper model rejected",
			setup: func() {
				viper.Reset()
				os.Setenv("VIDSLICE_WHISPER_MODEL", "gigantic")
			},
			cleanup: func() {
				os.Unsetenv("VIDSLICE_WHISPER_MODEL")
				viper.Reset()
			},
			wantErr: true,
		},
		{
			name: "worker count auto-corrected",
			setup: func() {
				viper.Reset()
				os.Setenv("VIDSLICE_PROCESSING_WORKERS", "-1")
			},
			cleanup: func() {
				os.Unsetenv("VIDSLICE_PROCESSING_WORKERS")
				viper.Reset()
			},
			wantErr: false,
			check: func(t *testing.T) {
				if GetInt("processing.workers") != 2 {
					t.Errorf("Expected workers to be corrected to 2, got %d", GetInt("processing.workers"))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.cleanup()

			err := load()
			if (err != nil) != tt.wantErr {
				t.Errorf("load() error = %v, wantErr %v", err, tt.wantErr)
			}

			if tt.check != nil && err == nil {
				tt.check(t)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: &Config{
				Server: ServerConfig{
					Host: "localhost",
					Port: 8080,
				},
				Database: DatabaseConfig{
					Path: "./data/vidslice.db",
				},
			},
			wantErr: false,
		},
		{
			name: "invalid port",
			config: &Config{
				Server: ServerConfig{
					Host: "localhost",
					Port: 0,
				},
			},
			wantErr: true,
		},
		{
			name: "empty database path allowed",
			config: &Config{
				Server: ServerConfig{
					Host: "localhost",
					Port: 8080,
				},
				Database: DatabaseConfig{
					Path: "",
				},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCorrectsSplitBound(t *testing.T) {
	cfg := &Config{
		Server:     ServerConfig{Host: "localhost", Port: 8080},
		Processing: ProcessingConfig{Workers: 1, MaxSplitParts: 0},
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.Processing.MaxSplitParts != 20 {
		t.Errorf("Expected MaxSplitParts corrected to 20, got %d", cfg.Processing.MaxSplitParts)
	}
}
