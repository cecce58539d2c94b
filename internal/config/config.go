// internal/config/config.go
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
	JWTExpiresInSeconds int
	AuthVerboseErrors   bool
	// AuthReturnResetToken echoes reset tokens in the forgot-password
	// response instead of mailing them. Development only.
	AuthReturnResetToken bool

	SMTPHost   string
	SMTPPort   string
	SMTPUser   string
	SMTPPass   string
	SMTPFrom   string
	SMTPUseTLS bool

	AdminEmail    string
	AdminPassword string
}

func Load() *Config {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		host := getEnv("PSQL_HOST", "localhost")
		port := getEnv("PSQL_PORT", "5432")
		user := getEnv("PSQL_USER", "postgres")
		password := getEnv("PSQL_PASSWORD", "postgres")
		dbName := getEnv("PSQL_DB_NAME", "siscoca")

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

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		DatabaseURL: databaseURL,

		JWTSecret:            getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTExpiresInSeconds:  getEnvInt("JWT_EXPIRES_IN_SECONDS", 86400),
		AuthVerboseErrors:    getEnvBool("AUTH_VERBOSE_ERRORS", false),
		AuthReturnResetToken: getEnvBool("AUTH_RETURN_RESET_TOKEN", false),

		SMTPHost:   getEnv("SMTP_HOST", ""),
		SMTPPort:   getEnv("SMTP_PORT", "587"),
		SMTPUser:   getEnv("SMTP_USER", ""),
		SMTPPass:   getEnv("SMTP_PASS", ""),
		SMTPFrom:   getEnv("SMTP_FROM", ""),
		SMTPUseTLS: getEnvBool("SMTP_USE_TLS", false),

		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@siscoca.local"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
