package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	AuthJWTSecret string

	DBType     string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	RedisAddr     string
	RedisPassword string

	CORSAllowOrigins []string

	SMTP SMTPConfig
	SMS  SMSConfig

	Notify    NotifyConfig
	Scheduler SchedulerConfig

	Logger LoggerConfig
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SMSConfig struct {
	GatewayURL string
	APIKey     string
	SenderID   string
}

// NotifyConfig carries per-priority hourly delivery ceilings.
type NotifyConfig struct {
	LowPerHour    int
	MediumPerHour int
	HighPerHour   int
	UrgentPerHour int
}

type SchedulerConfig struct {
	Timezone          string
	LowBalanceCron    string
	DailyStatsCron    string
	DisabledJobs      []string
	JobTimeoutSeconds int
}

type LoggerConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "gridadmin"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		AuthJWTSecret: strings.TrimSpace(getenv("AUTH_JWT_SECRET", "")),

		DBType:     getenv("DATABASE_TYPE", "postgres"),
		DBHost:     getenv("DATABASE_HOST", "localhost"),
		DBPort:     getenv("DATABASE_PORT", "5432"),
		DBName:     getenv("DATABASE_NAME", "gridadmin"),
		DBUser:     getenv("DATABASE_USER", "postgres"),
		DBPassword: getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:  getenv("DATABASE_SSLMODE", "disable"),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),

		CORSAllowOrigins: getenvList("CORS_ALLOW_ORIGINS", nil),

		SMTP: SMTPConfig{
			Host:     getenv("SMTP_HOST", ""),
			Port:     getenvInt("SMTP_PORT", 587),
			Username: getenv("SMTP_USERNAME", ""),
			Password: getenv("SMTP_PASSWORD", ""),
			From:     getenv("SMTP_FROM", "no-reply@gridadmin.local"),
		},
		SMS: SMSConfig{
			GatewayURL: getenv("SMS_GATEWAY_URL", ""),
			APIKey:     getenv("SMS_API_KEY", ""),
			SenderID:   getenv("SMS_SENDER_ID", "GRIDOPS"),
		},

		Notify: NotifyConfig{
			LowPerHour:    getenvInt("NOTIFY_LOW_PER_HOUR", 10),
			MediumPerHour: getenvInt("NOTIFY_MEDIUM_PER_HOUR", 20),
			HighPerHour:   getenvInt("NOTIFY_HIGH_PER_HOUR", 30),
			UrgentPerHour: getenvInt("NOTIFY_URGENT_PER_HOUR", 50),
		},

		Scheduler: SchedulerConfig{
			Timezone:          getenv("SCHEDULER_TIMEZONE", "Asia/Kolkata"),
			LowBalanceCron:    getenv("SCHEDULER_LOW_BALANCE_CRON", "0 * * * *"),
			DailyStatsCron:    getenv("SCHEDULER_DAILY_STATS_CRON", "0 6 * * *"),
			DisabledJobs:      getenvList("SCHEDULER_DISABLED_JOBS", nil),
			JobTimeoutSeconds: getenvInt("SCHEDULER_JOB_TIMEOUT_SECONDS", 30),
		},

		Logger: LoggerConfig{
			Level:  getenv("LOG_LEVEL", "info"),
			Format: getenv("LOG_FORMAT", "json"),
		},
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvList(key string, def []string) []string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
