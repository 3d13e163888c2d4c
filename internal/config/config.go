package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Store drivers understood by database.NewDatabase.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

type Config struct {
	Port        string
	JWTSecret   string
	SkipAuth    bool
	Environment string
	AppId       string

	StoreDriver string
	SQLitePath  string
	PostgresDSN string
	MongoURI    string
	DBName      string

	ReminderSchedule   string // cron spec for the reminder engine
	ReminderPolicyFile string // optional YAML override of cadence and escalation delay

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	TraceEnabled bool
	TraceFile    string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", "secret"),
		SkipAuth:    getEnv("SKIP_AUTH", "false") == "true",
		Environment: getEnv("ENVIRONMENT", "development"),
		AppId:       getEnv("APP_ID", "go-approvals"),

		StoreDriver: getEnv("STORE_DRIVER", DriverSQLite),
		SQLitePath:  getEnv("SQLITE_PATH", "approvals.db"),
		PostgresDSN: getEnv("POSTGRES_DSN", "postgres://localhost:5432/approvals?sslmode=disable"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:      getEnv("DB_NAME", "approvals"),

		ReminderSchedule:   getEnv("REMINDER_SCHEDULE", "@every 5m"),
		ReminderPolicyFile: getEnv("REMINDER_POLICY_FILE", ""),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "approvals@localhost"),

		TraceEnabled: getEnv("TRACE_ENABLED", "false") == "true",
		TraceFile:    getEnv("TRACE_FILE", ""),
	}, nil
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer for %s: %q, using %d", key, value, fallback)
		return fallback
	}
	return n
}
