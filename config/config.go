package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration. It is loaded once in main and
// passed to whatever needs it.
type Config struct {
	Addr string `yaml:"addr"`

	ModelDir       string `yaml:"model_dir"`
	RegressorFile  string `yaml:"regressor_file"`
	ForecasterFile string `yaml:"forecaster_file"`

	PredictorBackend   string        `yaml:"predictor_backend"`
	ModelServerURL     string        `yaml:"model_server_url"`
	ModelServerTimeout time.Duration `yaml:"model_server_timeout"`

	LogLevel        string        `yaml:"log_level"`
	CORSOrigins     string        `yaml:"cors_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

const (
	defaultAddr               = ":3000"
	defaultModelDir           = "./artifacts"
	defaultRegressorFile      = "regressor.json"
	defaultForecasterFile     = "forecaster.json"
	defaultPredictorBackend   = "artifact"
	defaultModelServerTimeout = 10 * time.Second
	defaultLogLevel           = "info"
	defaultCORSOrigins        = "*"
	defaultShutdownTimeout    = 10 * time.Second
)

var logLevels = map[string]log.Level{
	"trace": log.LevelTrace,
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

// Load reads config.yaml (or CONFIG_PATH) when present, applies environment
// overrides and defaults, and validates the result.
func Load() (Config, error) {
	var cfg Config

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", configPath, err)
		}
		log.Infof("Loaded config from %s", configPath)
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read %s: %w", configPath, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	envOverride(&cfg.Addr, "ADDR")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("ADDR") == "" {
		cfg.Addr = ":" + port
	}
	envOverride(&cfg.ModelDir, "MODEL_DIR")
	envOverride(&cfg.RegressorFile, "REGRESSOR_FILE")
	envOverride(&cfg.ForecasterFile, "FORECASTER_FILE")
	envOverride(&cfg.PredictorBackend, "PREDICTOR_BACKEND")
	envOverride(&cfg.ModelServerURL, "MODEL_SERVER_URL")
	envOverride(&cfg.LogLevel, "LOG_LEVEL")
	envOverride(&cfg.CORSOrigins, "CORS_ORIGINS")
	if err := envOverrideDuration(&cfg.ModelServerTimeout, "MODEL_SERVER_TIMEOUT"); err != nil {
		return err
	}
	return envOverrideDuration(&cfg.ShutdownTimeout, "SHUTDOWN_TIMEOUT")
}

func applyDefaults(cfg *Config) {
	setDefault(&cfg.Addr, defaultAddr)
	setDefault(&cfg.ModelDir, defaultModelDir)
	setDefault(&cfg.RegressorFile, defaultRegressorFile)
	setDefault(&cfg.ForecasterFile, defaultForecasterFile)
	setDefault(&cfg.PredictorBackend, defaultPredictorBackend)
	setDefault(&cfg.LogLevel, defaultLogLevel)
	setDefault(&cfg.CORSOrigins, defaultCORSOrigins)
	if cfg.ModelServerTimeout == 0 {
		cfg.ModelServerTimeout = defaultModelServerTimeout
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	cfg.PredictorBackend = strings.ToLower(cfg.PredictorBackend)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.PredictorBackend {
	case "artifact":
	case "remote":
		if c.ModelServerURL == "" {
			return errors.New("MODEL_SERVER_URL is required when PREDICTOR_BACKEND=remote")
		}
	default:
		return fmt.Errorf("unsupported PREDICTOR_BACKEND %q (use artifact or remote)", c.PredictorBackend)
	}
	if _, ok := logLevels[c.LogLevel]; !ok {
		return fmt.Errorf("unsupported LOG_LEVEL %q", c.LogLevel)
	}
	if c.ModelServerTimeout < 0 || c.ShutdownTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	return nil
}

// Level returns the fiber log level for LogLevel.
func (c Config) Level() log.Level {
	if lvl, ok := logLevels[c.LogLevel]; ok {
		return lvl
	}
	return log.LevelInfo
}

func envOverride(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func envOverrideDuration(dst *time.Duration, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func setDefault(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}
