package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix  = "CLASSENCE"
	configName = "config"
	configType = "toml"
	configDir  = ".classence"
	dotEnvFile = ".env"

	checkpointsFile = "checkpoints.toml"
)

// Keys understood by Load. Each maps to a CLASSENCE_* environment variable
// with dots replaced by underscores.
const (
	KeyPortalBaseURL        = "portal.base_url"
	KeyPortalToken          = "portal.token"
	KeyPortalTimeout        = "portal.timeout"
	KeyActorID              = "actor.id"
	KeyActorRole            = "actor.role"
	KeyPollSessionsInterval = "poll.sessions_interval"
	KeyPollUpdatesInterval  = "poll.updates_interval"
	KeyCheckpointsPath      = "checkpoints.path"
	KeyCheckpointsRedisAddr = "checkpoints.redis_addr"
	KeyCheckpointsRedisPfx  = "checkpoints.redis_prefix"
	KeyLogLevel             = "log.level"
	KeyMetricsAddr          = "metrics.addr"
)

type Config struct {
	Portal      Portal      `mapstructure:"portal"`
	Actor       Actor       `mapstructure:"actor"`
	Poll        Poll        `mapstructure:"poll"`
	Checkpoints Checkpoints `mapstructure:"checkpoints"`
	Log         Log         `mapstructure:"log"`
	Metrics     Metrics     `mapstructure:"metrics"`
}

type Portal struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout" validate:"min=1s"`
}

type Actor struct {
	ID   string `mapstructure:"id" validate:"required"`
	Role string `mapstructure:"role" validate:"oneof=student admin"`
}

type Poll struct {
	SessionsInterval time.Duration `mapstructure:"sessions_interval" validate:"min=1s"`
	UpdatesInterval  time.Duration `mapstructure:"updates_interval" validate:"min=1s"`
}

// Checkpoints selects the acknowledgment store. With RedisAddr set, redis is
// the primary store and the TOML file at Path the fallback.
type Checkpoints struct {
	Path        string `mapstructure:"path" validate:"required"`
	RedisAddr   string `mapstructure:"redis_addr" validate:"omitempty,hostname_port"`
	RedisPrefix string `mapstructure:"redis_prefix"`
}

type Log struct {
	Level string `mapstructure:"level" validate:"oneof=trace debug info warn warning error fatal panic"`
}

type Metrics struct {
	Addr string `mapstructure:"addr" validate:"omitempty,hostname_port"`
}

// Dir returns the per-user configuration directory.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(homeDir, configDir), nil
}

// Load resolves configuration from, in increasing precedence: defaults,
// ~/.classence/config.toml, .env files, CLASSENCE_* environment variables
// and values already set on v (e.g. bound flags).
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	dir, err := Dir()
	if err != nil {
		return Config{}, err
	}

	if err := loadDotEnv(filepath.Join(dir, dotEnvFile), dotEnvFile); err != nil {
		return Config{}, err
	}

	setDefaults(v, dir)

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(dir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	cfg.Actor.Role = strings.ToLower(strings.TrimSpace(cfg.Actor.Role))
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))

	path, err := normalizePath(cfg.Checkpoints.Path)
	if err != nil {
		return Config{}, err
	}
	cfg.Checkpoints.Path = path

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return fmt.Errorf("invalid config: %s", describe(validationErrs))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault(KeyPortalBaseURL, "http://127.0.0.1:8088/api")
	v.SetDefault(KeyPortalToken, "")
	v.SetDefault(KeyPortalTimeout, 15*time.Second)
	v.SetDefault(KeyActorID, "")
	v.SetDefault(KeyActorRole, "student")
	v.SetDefault(KeyPollSessionsInterval, 30*time.Second)
	v.SetDefault(KeyPollUpdatesInterval, 30*time.Second)
	v.SetDefault(KeyCheckpointsPath, filepath.Join(dir, checkpointsFile))
	v.SetDefault(KeyCheckpointsRedisAddr, "")
	v.SetDefault(KeyCheckpointsRedisPfx, "classence")
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyMetricsAddr, "")
}

// loadDotEnv loads the first files that exist. Variables already present in
// the environment are never overridden.
func loadDotEnv(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("stat %s: %w", path, err)
		}

		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}

	return nil
}

func normalizePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve checkpoints path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func describe(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fieldErr := range errs {
		key := strings.ToLower(strings.TrimPrefix(fieldErr.Namespace(), "Config."))
		if fieldErr.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", key, fieldErr.Tag(), fieldErr.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s failed %s", key, fieldErr.Tag()))
	}

	return strings.Join(parts, "; ")
}
