package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	ProviderNone       = "none"
	ProviderStatic     = "static"
	ProviderClaude     = "claude"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	DB     DBConfig     `yaml:"db"`
	Care   CareConfig   `yaml:"care"`
	Auth   AuthConfig   `yaml:"auth"`
	AI     AIConfig     `yaml:"ai"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type DBConfig struct {
	Driver string `yaml:"driver"` // memory | sqlite | postgres
	DSN    string `yaml:"dsn"`    // ruta del archivo en sqlite
}

type CareConfig struct {
	Timezone     string `yaml:"timezone"` // vacío o "Local" = hora del servidor
	LookbackDays int    `yaml:"lookback_days"`
}

// AuthConfig: sin BaseURL el server queda en modo dev (X-Debug-User-ID).
type AuthConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

type AIConfig struct {
	Provider   string           `yaml:"provider"` // vacío = auto según API keys
	Claude     ProviderConfig   `yaml:"claude"`
	Gemini     ProviderConfig   `yaml:"gemini"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
}

type ProviderConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type OpenRouterConfig struct {
	APIKey  string   `yaml:"api_key"`
	BaseURL string   `yaml:"base_url"`
	Models  []string `yaml:"models"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	App    string `yaml:"app"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 20 * time.Second,
		},
		Care: CareConfig{
			LookbackDays: 365,
		},
		Auth: AuthConfig{
			Timeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			App:    "pet-care-tracker",
		},
	}
}

// Load lee el YAML (opcional; path vacío o inexistente = solo defaults) y
// luego aplica overrides de entorno.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}

	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.DB.Driver, "DB_DRIVER")
	setString(&cfg.DB.DSN, "DB_DSN")
	setString(&cfg.Care.Timezone, "CARE_TIMEZONE")
	setString(&cfg.Auth.BaseURL, "AUTH_BASE_URL")
	setString(&cfg.Auth.APIKey, "AUTH_API_KEY")
	setString(&cfg.AI.Provider, "AI_PROVIDER")
	setString(&cfg.AI.Claude.APIKey, "ANTHROPIC_API_KEY")
	setString(&cfg.AI.Claude.Model, "ANTHROPIC_MODEL")
	setString(&cfg.AI.Gemini.APIKey, "GOOGLE_API_KEY")
	setString(&cfg.AI.Gemini.Model, "GEMINI_MODEL")
	setString(&cfg.AI.OpenRouter.APIKey, "OPENROUTER_API_KEY")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")
	setString(&cfg.Log.App, "APP_NAME")

	if v := strings.TrimSpace(os.Getenv("CARE_LOOKBACK_DAYS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CARE_LOOKBACK_DAYS: %w", err)
		}
		cfg.Care.LookbackDays = n
	}
	if v := strings.TrimSpace(os.Getenv("OPENROUTER_MODELS")); v != "" {
		var models []string
		for _, m := range strings.Split(v, ",") {
			if m = strings.TrimSpace(m); m != "" {
				models = append(models, m)
			}
		}
		cfg.AI.OpenRouter.Models = models
	}
	return nil
}

func (c *Config) normalize() {
	c.DB.Driver = strings.ToLower(strings.TrimSpace(c.DB.Driver))
	c.AI.Provider = strings.ToLower(strings.TrimSpace(c.AI.Provider))

	// Compatibilidad: DB_DSN sin driver explícito = Postgres.
	if c.DB.Driver == "" {
		if c.DB.DSN != "" {
			c.DB.Driver = DriverPostgres
		} else {
			c.DB.Driver = DriverMemory
		}
	}
	if c.DB.Driver == DriverSQLite && c.DB.DSN == "" {
		c.DB.DSN = "data/care.db"
	}

	if c.AI.Provider == "" {
		switch {
		case c.AI.Claude.APIKey != "":
			c.AI.Provider = ProviderClaude
		case c.AI.Gemini.APIKey != "":
			c.AI.Provider = ProviderGemini
		case c.AI.OpenRouter.APIKey != "":
			c.AI.Provider = ProviderOpenRouter
		default:
			c.AI.Provider = ProviderNone
		}
	}
}

func (c *Config) Validate() error {
	var errs []error

	switch c.DB.Driver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if c.DB.DSN == "" {
			errs = append(errs, errors.New("db: postgres requires dsn"))
		}
	default:
		errs = append(errs, fmt.Errorf("db: unknown driver %q", c.DB.Driver))
	}

	if c.Care.LookbackDays < 1 || c.Care.LookbackDays > 3650 {
		errs = append(errs, fmt.Errorf("care: lookback_days must be in [1, 3650], got %d", c.Care.LookbackDays))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("care: timezone: %w", err))
	}

	if c.Auth.BaseURL != "" && c.Auth.APIKey == "" {
		errs = append(errs, errors.New("auth: api_key required when base_url is set"))
	}

	switch c.AI.Provider {
	case ProviderNone, ProviderStatic:
	case ProviderClaude:
		if c.AI.Claude.APIKey == "" {
			errs = append(errs, errors.New("ai: claude requires ANTHROPIC_API_KEY"))
		}
	case ProviderGemini:
		if c.AI.Gemini.APIKey == "" {
			errs = append(errs, errors.New("ai: gemini requires GOOGLE_API_KEY"))
		}
	case ProviderOpenRouter:
		if c.AI.OpenRouter.APIKey == "" {
			errs = append(errs, errors.New("ai: openrouter requires OPENROUTER_API_KEY"))
		}
	default:
		errs = append(errs, fmt.Errorf("ai: unknown provider %q", c.AI.Provider))
	}

	return errors.Join(errs...)
}

// Location resuelve la zona que define la frontera del día de cuidados.
func (c *Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Care.Timezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(tz)
}

func (c *Config) Lookback() time.Duration {
	return time.Duration(c.Care.LookbackDays) * 24 * time.Hour
}

func (c *Config) Addr() string {
	port := strings.TrimPrefix(strings.TrimSpace(c.Server.Port), ":")
	return ":" + port
}
