// Package config loads the process-wide settings object once at startup,
// the way the Rust original's config/settings.rs does: a layered TOML
// build, environment overrides applied last, handed to every subsystem by
// shared reference rather than read from a global at deep call sites.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string       `toml:"environment"`
	Server      ServerConfig `toml:"server"`
	Logger      LoggerConfig `toml:"logger"`
	Triton      TritonConfig `toml:"triton"`
	Tracer      TracerConfig `toml:"tracer"`
	App         AppConfig    `toml:"app"`
}

type ServerConfig struct {
	HTTPPort       int    `toml:"http_port"`
	APIKey         string `toml:"api_key"`
	RequestTimeout int    `toml:"request_timeout"` // seconds
}

func (s ServerConfig) Timeout() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

type TritonConfig struct {
	FaceIDHost     string `toml:"faceid_host"`
	FaceIDGRPCPort int    `toml:"faceid_grpc_port"`
}

func (t TritonConfig) Address() string {
	return fmt.Sprintf("%s:%d", t.FaceIDHost, t.FaceIDGRPCPort)
}

type LoggerConfig struct {
	Level string `toml:"level"`
}

type TracerConfig struct {
	URI string `toml:"uri"`
}

type AppConfig struct {
	Name string `toml:"name"`
}

// Load builds the layered configuration: a required base file, an optional
// RUN_MODE overlay, an optional local override, then environment variables
// with a "__" separator (SERVER__HTTP_PORT overrides server.http_port).
// basePath points at the required base TOML file (e.g. conf/config.toml).
func Load(basePath string) (*Config, error) {
	cfg := &Config{}

	if _, err := toml.DecodeFile(basePath, cfg); err != nil {
		return nil, fmt.Errorf("read base config %s: %w", basePath, err)
	}

	dir := dirOf(basePath)
	runMode := os.Getenv("RUN_MODE")
	if runMode == "" {
		runMode = "development"
	}

	for _, overlay := range []string{dir + "/" + runMode + ".toml", dir + "/local.toml"} {
		if _, err := os.Stat(overlay); err == nil {
			if _, err := toml.DecodeFile(overlay, cfg); err != nil {
				return nil, fmt.Errorf("read overlay config %s: %w", overlay, err)
			}
		}
	}

	applyEnvOverrides(cfg)
	setDefaults(cfg)

	return cfg, nil
}

func dirOf(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return "."
}

// applyEnvOverrides mirrors the Rust Environment::default().separator("__")
// behavior for the handful of keys this service actually reads, plus the
// bare PORT override the original also honors.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER__HTTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.HTTPPort = n
		}
	}
	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.HTTPPort = n
		}
	}
	if v := os.Getenv("SERVER__API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("SERVER__REQUEST_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RequestTimeout = n
		}
	}
	if v := os.Getenv("TRITON__FACEID_HOST"); v != "" {
		cfg.Triton.FaceIDHost = v
	}
	if v := os.Getenv("TRITON__FACEID_GRPC_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Triton.FaceIDGRPCPort = n
		}
	}
	if v := os.Getenv("TRACER__URI"); v != "" {
		cfg.Tracer.URI = v
	}
	if v := os.Getenv("LOGGER__LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("APP__NAME"); v != "" {
		cfg.App.Name = v
	}
}

func setDefaults(cfg *Config) {
	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = 8080
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 20
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if cfg.App.Name == "" {
		cfg.App.Name = "faceid-gateway"
	}
}
