package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Name string `yaml:"name"`
	Port string `yaml:"port"`
}

type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	DBName          string        `yaml:"dbname"`
	SSLMode         string        `yaml:"sslmode"`
	MigrationsPath  string        `yaml:"migrations_path"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
}

type Config struct {
	App      AppConfig      `yaml:"app"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// Load reads configuration from an optional yaml file and overlays
// environment variables on top. A .env file next to the binary is
// loaded first if present, so local runs need no exported vars.
func Load(yamlPath string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.App.Name = "ecommerce-core"
	cfg.App.Port = "8080"
	cfg.Postgres.SSLMode = "disable"
	cfg.Postgres.MigrationsPath = "migrations"
	cfg.Postgres.MaxConns = 10
	cfg.Postgres.MinConns = 2
	cfg.Postgres.MaxConnLifetime = 30 * time.Minute

	if yamlPath != "" {
		file, err := os.Open(yamlPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("config: failed to open %s: %w", yamlPath, err)
			}
		} else {
			defer file.Close()
			if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
				return nil, fmt.Errorf("config: invalid yaml in %s: %w", yamlPath, err)
			}
		}
	}

	overlayEnv(cfg)

	if cfg.Postgres.Host == "" {
		return nil, fmt.Errorf("config: DB_HOST is required")
	}
	if cfg.Postgres.Port == "" {
		return nil, fmt.Errorf("config: DB_PORT is required")
	}
	if cfg.Postgres.User == "" {
		return nil, fmt.Errorf("config: DB_USER is required")
	}
	if cfg.Postgres.DBName == "" {
		return nil, fmt.Errorf("config: DB_NAME is required")
	}

	return cfg, nil
}

func overlayEnv(cfg *Config) {
	setIfPresent(&cfg.App.Port, "APP_PORT")
	setIfPresent(&cfg.Postgres.Host, "DB_HOST")
	setIfPresent(&cfg.Postgres.Port, "DB_PORT")
	setIfPresent(&cfg.Postgres.User, "DB_USER")
	setIfPresent(&cfg.Postgres.Password, "DB_PASSWORD")
	setIfPresent(&cfg.Postgres.DBName, "DB_NAME")
	setIfPresent(&cfg.Postgres.SSLMode, "DB_SSLMODE")
	setIfPresent(&cfg.Postgres.MigrationsPath, "DB_MIGRATIONS_PATH")
}

func setIfPresent(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
