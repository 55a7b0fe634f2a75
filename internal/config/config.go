package config

import (
	"net/url"
	"os"
	"strconv"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string

	JWTSecret           string
	JWTExpiresInSeconds int64

	// AppBaseURL is the public origin embedded in password-reset links.
	AppBaseURL string

	// HomeCurrency is the fallback display currency for users without a
	// stored preference.
	HomeCurrency string

	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	SMTPUseTLS   bool
}

func Load() *Config {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		host := getEnv("PSQL_HOST", "localhost")
		port := getEnv("PSQL_PORT", "5432")
		user := getEnv("PSQL_USER", "postgres")
		password := getEnv("PSQL_PASSWORD", "postgres")
		dbName := getEnv("PSQL_DB_NAME", "networth")

		u := &url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(user, password),
			Host:   host + ":" + port,
			Path:   dbName,
		}
		q := u.Query()
		q.Set("sslmode", "disable")
		u.RawQuery = q.Encode()
		databaseURL = u.String()
	}

	expiresIn, _ := strconv.ParseInt(getEnv("JWT_EXPIRES_IN_SECONDS", "86400"), 10, 64)
	if expiresIn <= 0 {
		expiresIn = 86400
	}

	return &Config{
		Port:                getEnv("PORT", "8080"),
		Environment:         getEnv("ENVIRONMENT", "development"),
		DatabaseURL:         databaseURL,
		JWTSecret:           getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTExpiresInSeconds: expiresIn,
		AppBaseURL:          getEnv("APP_BASE_URL", "http://localhost:3000"),
		HomeCurrency:        getEnv("HOME_CURRENCY", "USD"),
		SMTPHost:            getEnv("SMTP_HOST", ""),
		SMTPPort:            getEnv("SMTP_PORT", "587"),
		SMTPUser:            getEnv("SMTP_USER", ""),
		SMTPPassword:        getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:            getEnv("SMTP_FROM", "no-reply@localhost"),
		SMTPUseTLS:          getEnv("SMTP_USE_TLS", "false") == "true",
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
