package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Hermes   HermesConfig   `yaml:"hermes"`
	Supplier SupplierConfig `yaml:"supplier"`
	Rating   RatingConfig   `yaml:"rating"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"`
	AdminToken  string `yaml:"admin_token"`
}

// DatabaseConfig selects the store. Driver is "postgres" or "memory"; when
// unset it is postgres if a URL is configured and memory otherwise.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	URL    string `yaml:"url"`
}

// HermesConfig points at NATS. An empty URL disables events.
type HermesConfig struct {
	URL string `yaml:"url"`
}

type SupplierConfig struct {
	DefaultTarget int `yaml:"default_target"`
	MaxTarget     int `yaml:"max_target"`
	// Seed makes pair sampling reproducible; 0 seeds from the runtime.
	Seed uint64 `yaml:"seed"`
}

type RatingConfig struct {
	Mu              float64 `yaml:"mu"`
	Sigma           float64 `yaml:"sigma"`
	Beta            float64 `yaml:"beta"`
	DrawProbability float64 `yaml:"draw_probability"`
	MinSigma        float64 `yaml:"min_sigma"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        8600,
			MetricsPort: 8601,
		},
		Hermes: HermesConfig{
			URL: "nats://localhost:4222",
		},
		Supplier: SupplierConfig{
			DefaultTarget: 10,
			MaxTarget:     100,
		},
		Rating: RatingConfig{
			Mu:              25,
			Sigma:           25.0 / 3,
			Beta:            25.0 / 6,
			DrawProbability: 0.10,
			MinSigma:        0.01,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.Driver == "" {
		c.Database.Driver = "memory"
		if c.Database.URL != "" {
			c.Database.Driver = "postgres"
		}
	}
	switch c.Database.Driver {
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("database.url required for postgres driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Supplier.MaxTarget <= 0 {
		return fmt.Errorf("supplier.max_target must be positive, got %d", c.Supplier.MaxTarget)
	}
	if c.Supplier.DefaultTarget <= 0 || c.Supplier.DefaultTarget > c.Supplier.MaxTarget {
		return fmt.Errorf("supplier.default_target must be in [1, %d], got %d", c.Supplier.MaxTarget, c.Supplier.DefaultTarget)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("HOTLIKEME_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("HOTLIKEME_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("HOTLIKEME_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("HOTLIKEME_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("HOTLIKEME_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v, ok := os.LookupEnv("HOTLIKEME_HERMES_URL"); ok {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("HOTLIKEME_DEFAULT_TARGET"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Supplier.DefaultTarget = n
		}
	}
	if v := os.Getenv("HOTLIKEME_MAX_TARGET"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Supplier.MaxTarget = n
		}
	}
	if v := os.Getenv("HOTLIKEME_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Supplier.Seed = n
		}
	}
	if v := os.Getenv("HOTLIKEME_DRAW_PROBABILITY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Rating.DrawProbability = f
		}
	}
	if v := os.Getenv("HOTLIKEME_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("HOTLIKEME_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
