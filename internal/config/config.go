package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port              string
	DBDriver          string
	DBDSN             string
	JWTSecret         string
	TokenTTL          time.Duration
	CORSOrigins       []string
	MigrationsDir     string
	Location          *time.Location
	ReconcileInterval time.Duration
	ReconcileApply    bool
}

var defaultCORSOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}

// Load reads .env (when present), an optional YAML file named by CONFIG_FILE
// and the process environment, in increasing order of precedence.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_DRIVER", "sqlite3")
	v.SetDefault("DB_DSN", "./data/studytracker.db")
	v.SetDefault("JWT_SECRET", "change-this-secret")
	v.SetDefault("TOKEN_TTL_HOURS", 72)
	v.SetDefault("CORS_ORIGINS", strings.Join(defaultCORSOrigins, ","))
	v.SetDefault("MIGRATIONS_DIR", "./migrations")
	v.SetDefault("TIMEZONE", "UTC")
	v.SetDefault("RECONCILE_INTERVAL_MINUTES", 60)
	v.SetDefault("RECONCILE_APPLY", false)
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	location, err := time.LoadLocation(v.GetString("TIMEZONE"))
	if err != nil {
		return Config{}, fmt.Errorf("load timezone: %w", err)
	}

	driver := v.GetString("DB_DRIVER")
	if driver != "sqlite3" && driver != "postgres" {
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	ttlHours := v.GetInt("TOKEN_TTL_HOURS")
	if ttlHours <= 0 {
		ttlHours = 72
	}
	reconcileMinutes := v.GetInt("RECONCILE_INTERVAL_MINUTES")

	return Config{
		Port:              v.GetString("PORT"),
		DBDriver:          driver,
		DBDSN:             v.GetString("DB_DSN"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		TokenTTL:          time.Duration(ttlHours) * time.Hour,
		CORSOrigins:       splitList(v.GetString("CORS_ORIGINS"), defaultCORSOrigins),
		MigrationsDir:     v.GetString("MIGRATIONS_DIR"),
		Location:          location,
		ReconcileInterval: time.Duration(reconcileMinutes) * time.Minute,
		ReconcileApply:    v.GetBool("RECONCILE_APPLY"),
	}, nil
}

func splitList(value string, fallback []string) []string {
	if value == "" {
		return fallback
	}

	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}
