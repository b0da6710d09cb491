package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// Config holds all settings of the POS service.
type Config struct {
	Port          string
	StoreDriver   string
	MongoURL      string
	MongoDatabase string
	DatabaseURL   string
	MigrationsDir string
	// RabbitMQURL is optional; kitchen events go to websockets only when
	// it is empty.
	RabbitMQURL string
	SecretKey   string
	CORSOrigins []string
	LogLevel    string
	LogFormat   string
	// AdminEmail and AdminPassword, when both set, seed the first admin
	// account at startup.
	AdminEmail    string
	AdminPassword string
}

// Load reads the .env file at path into the environment, if it exists, and
// builds a Config from the environment. Variables already set take
// precedence over the file.
func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8000"),
		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", DriverMemory)),
		MongoURL:      getEnv("MONGODB_URL", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "restaurant"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "database/migrations"),
		RabbitMQURL:   os.Getenv("RABBITMQ_URL"),
		SecretKey:     os.Getenv("SECRET_KEY"),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "http://localhost:9000")),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     strings.ToLower(getEnv("LOG_FORMAT", "json")),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid PORT %q: %w", c.Port, err)
	}
	switch c.StoreDriver {
	case DriverMemory, DriverMongo:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.SecretKey == "" {
		return errors.New("SECRET_KEY is required")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat)
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
