package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	Store     Store
	Mail      Mail
	Admin     Admin
	Retention Retention

	CORSOrigins []string
}

type Store struct {
	Driver      string
	CSVFile     string
	DatabaseURL string
}

type Mail struct {
	Provider       string
	Host           string
	Port           int
	Username       string
	Password       string
	From           string
	FromName       string
	SendGridAPIKey string
	Timeout        time.Duration
}

type Admin struct {
	Email        string
	Name         string
	PasswordHash string
	JWTSecret    string
	TokenTTL     time.Duration
}

type Retention struct {
	Days     int
	CronSpec string
}

// Load reads the environment, after applying any .env file in the working directory.
func Load() *Config {
	godotenv.Load()

	return &Config{
		Port:     getEnvString("PORT", "8080"),
		Env:      getEnvString("APP_ENV", "development"),
		LogLevel: getEnvString("LOG_LEVEL", "info"),
		Store: Store{
			Driver:      getEnvString("STORE_DRIVER", "csv"),
			CSVFile:     getEnvString("CSV_FILE", "appointments.csv"),
			DatabaseURL: getEnvString("DATABASE_URL", ""),
		},
		Mail: Mail{
			Provider:       getEnvString("MAIL_PROVIDER", "smtp"),
			Host:           getEnvString("SMTP_HOST", "smtp.gmail.com"),
			Port:           getEnvInt("SMTP_PORT", 465),
			Username:       getEnvString("SMTP_USER", ""),
			Password:       getEnvString("SMTP_PASS", ""),
			From:           getEnvString("MAIL_FROM", getEnvString("SMTP_USER", "")),
			FromName:       getEnvString("SENDGRID_FROM_NAME", "Appointments"),
			SendGridAPIKey: getEnvString("SENDGRID_API_KEY", ""),
			Timeout:        getEnvDuration("MAIL_TIMEOUT", 10*time.Second),
		},
		Admin: Admin{
			Email:        getEnvString("ADMIN_EMAIL", ""),
			Name:         getEnvString("ADMIN_NAME", "Admin"),
			PasswordHash: getEnvString("ADMIN_PASSWORD_HASH", ""),
			JWTSecret:    getEnvString("JWT_SECRET", ""),
			TokenTTL:     getEnvDuration("ADMIN_TOKEN_TTL", time.Hour),
		},
		Retention: Retention{
			Days:     getEnvInt("RETENTION_DAYS", 0),
			CronSpec: getEnvString("RETENTION_CRON", "@daily"),
		},
		CORSOrigins: splitList(getEnvString("CORS_ORIGINS", "*")),
	}
}

func getEnvString(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnvString(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

// getEnvDuration accepts Go durations ("15s") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnvString(key, "")
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
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
