package configs

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	StatsModeExtended = "extended"
	StatsModeBasic    = "basic"
)

type ENV struct {
	DBDriver           string
	DBHost             string
	DBUser             string
	DBPassword         string
	DBName             string
	DBPort             string
	DBPath             string
	Port               string
	AppURL             string
	AppEnv             string
	JWTSecret          string
	TokenTTL           time.Duration
	StorageDir         string
	StatsMode          string
	CORSOrigins        []string
	TrustedProxies     []string
	LogLevel           string
	LoginRatePerMinute int
}

func (e ENV) IsProduction() bool {
	return e.AppEnv == "production"
}

func LoadEnv() ENV {
	if err := godotenv.Load(".env"); err != nil {
		log.Warn().Msg("No .env file found, using process environment")
	}

	return ENV{
		DBDriver:           getEnv("DB_DRIVER", "mysql"),
		DBHost:             getEnv("DB_HOST", "127.0.0.1"),
		DBUser:             os.Getenv("DB_USER"),
		DBPassword:         os.Getenv("DB_PASSWORD"),
		DBName:             getEnv("DB_NAME", "techstore"),
		DBPort:             getEnv("DB_PORT", "3306"),
		DBPath:             getEnv("DB_PATH", "techstore.db"),
		Port:               getEnv("APP_PORT", ":8000"),
		AppURL:             strings.TrimRight(getEnv("APP_URL", "http://localhost:8000"), "/"),
		AppEnv:             getEnv("APP_ENV", "local"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		TokenTTL:           getDuration("TOKEN_TTL", 0),
		StorageDir:         getEnv("STORAGE_DIR", "storage/app/public"),
		StatsMode:          getEnv("STATS_MODE", StatsModeExtended),
		CORSOrigins:        splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		TrustedProxies:     splitList(os.Getenv("TRUSTED_PROXIES")),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LoginRatePerMinute: getInt("LOGIN_RATE_PER_MINUTE", 6),
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid integer in environment, using default")
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid duration in environment, using default")
		return fallback
	}
	return d
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
