package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	vld "github.com/hoshichaam/account_backend_go/pkg/validator"
)

type Config struct {
	Port            string        `validate:"required,numeric"`
	AppEnv          string
	IdentityURL     string        `validate:"required,url"`
	IdentityTimeout time.Duration `validate:"gt=0"`
	JWTSecret       string
	SessionCookie   string `validate:"required"`
	CORSOrigins     string
	LogLevel        string `validate:"omitempty,oneof=trace debug info warn warning error fatal panic"`
	LogFormat       string `validate:"omitempty,oneof=text json"`
}

func Load() Config {
	// coba load .env, kalau gak ada ya di-skip
	_ = godotenv.Load()

	return Config{
		Port:            strings.TrimSpace(getEnv("PORT", "3000")),
		AppEnv:          getEnv("APP_ENV", "production"),
		IdentityURL:     strings.TrimRight(strings.TrimSpace(getEnv("IDENTITY_URL", "")), "/"),
		IdentityTimeout: getEnvDuration("IDENTITY_TIMEOUT", 15*time.Second),
		JWTSecret:       strings.TrimSpace(os.Getenv("JWT_SECRET")),
		SessionCookie:   getEnv("SESSION_COOKIE", "nf_jwt"),
		CORSOrigins:     getEnv("CORS_ORIGINS", "http://localhost:5173"),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}
}

// Validate mengembalikan error kalau ada field wajib yang kosong / tidak valid.
func (c Config) Validate() error {
	_, err := vld.ValidateStruct(c)
	return err
}

func (c Config) IsDev() bool { return strings.EqualFold(c.AppEnv, "development") }

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
