// config предоставляет структуру конфигурации auth-flow и функции
// загрузки из файла/переменных окружения с предсказуемым приоритетом.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Бэкенды реестра сессий.
const (
	RegistryMemory = "memory"
	RegistryRedis  = "redis"
)

// Config — корневая конфигурация.
// Источники значений (по убыванию приоритета):
//  1. явный путь через флаг --config;
//  2. путь в переменной окружения CONFIG_PATH;
//  3. файл local.yaml из рабочей директории;
//  4. переменные окружения (cleanenv).
type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"local"`
	Auth     AuthConfig     `yaml:"auth"`
	Latency  LatencyConfig  `yaml:"latency"`
	Registry RegistryConfig `yaml:"registry"`
	Form     FormConfig     `yaml:"form"`
}

// AuthConfig содержит параметры выпуска и валидации токенов.
type AuthConfig struct {
	Secret   string        `yaml:"secret" env:"AUTH_SECRET" env-required:"true"`
	TokenTTL time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"1h"`
	Issuer   string        `yaml:"issuer" env:"ISSUER" env-default:"auth-flow"`
	Audience []string      `yaml:"audience" env:"AUDIENCE" env-default:"web"`
}

// LatencyConfig — имитация сетевой задержки вызовов сервиса.
// Нулевое значение Disabled — задержка включена.
type LatencyConfig struct {
	Disabled bool          `yaml:"disabled" env:"LATENCY_DISABLED"`
	Min      time.Duration `yaml:"min" env:"LATENCY_MIN" env-default:"1s"`
	Max      time.Duration `yaml:"max" env:"LATENCY_MAX" env-default:"1500ms"`
}

// RegistryConfig — выбор и настройки реестра сессий.
type RegistryConfig struct {
	Backend       string        `yaml:"backend" env:"REGISTRY_BACKEND" env-default:"memory"`
	RedisURL      string        `yaml:"redis_url" env:"REDIS_URL"`
	Prefix        string        `yaml:"prefix" env:"REGISTRY_PREFIX" env-default:"authflow:sess:"`
	JanitorPeriod time.Duration `yaml:"janitor_period" env:"JANITOR_PERIOD" env-default:"30m"`
}

// FormConfig — поведение контроллера формы.
type FormConfig struct {
	Destination   string        `yaml:"destination" env:"FORM_DESTINATION" env-default:"/dashboard"`
	SubmitTimeout time.Duration `yaml:"submit_timeout" env:"FORM_SUBMIT_TIMEOUT" env-default:"5s"`
}

// Validate проверяет согласованность значений, которые не выражаются тегами.
func (c *Config) Validate() error {
	if c.Auth.Secret == "" {
		return fmt.Errorf("auth.secret is required")
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive, got %s", c.Auth.TokenTTL)
	}

	if c.Latency.Min < 0 || c.Latency.Max < c.Latency.Min {
		return fmt.Errorf("latency bounds are invalid: min=%s max=%s", c.Latency.Min, c.Latency.Max)
	}

	switch c.Registry.Backend {
	case RegistryMemory:
	case RegistryRedis:
		if c.Registry.RedisURL == "" {
			return fmt.Errorf("registry.redis_url is required for backend %q", RegistryRedis)
		}
	default:
		return fmt.Errorf("unknown registry backend %q", c.Registry.Backend)
	}

	return nil
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// После чтения файла ENV-переменные накладываются поверх значений из YAML.
func Load(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	var (
		c   *Config
		err error
	)

	switch envPath := os.Getenv("CONFIG_PATH"); {
	case path != "":
		c, err = tryRead(path)
	case envPath != "":
		c, err = tryRead(envPath)
	default:
		if _, statErr := os.Stat("local.yaml"); statErr == nil {
			c, err = tryRead("local.yaml")
			break
		}

		if err = cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
		}
		c = &cfg
	}

	if err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}
