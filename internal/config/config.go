package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment     string
	DBDSN           string
	HTTPAddr        string
	JWTSecret       string
	AMQPURL         string
	RedisAddr       string
	RedisPassword   string
	TelegramToken   string
	MigrationsPath  string
	MinAdvanceHours int
	MaxBookingDays  int
}

// Load reads configuration from a .env file when present, then from the
// environment. DB_DSN and JWT_SECRET are required; everything else has a
// default or disables its feature when empty (AMQP_URL, REDIS_ADDR,
// TELEGRAM_TOKEN).
func Load() (*Config, error) {
	loadDotenv()

	cfg := &Config{
		Environment:     getenv("ENV", "development"),
		DBDSN:           os.Getenv("DB_DSN"),
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		AMQPURL:         os.Getenv("AMQP_URL"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		TelegramToken:   os.Getenv("TELEGRAM_TOKEN"),
		MigrationsPath:  getenv("MIGRATIONS_PATH", "migrations"),
		MinAdvanceHours: getenvInt("MIN_ADVANCE_HOURS", 12),
		MaxBookingDays:  getenvInt("MAX_BOOKING_DAYS", 30),
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	return cfg, nil
}

func loadDotenv() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d", key, v, def)
		return def
	}
	return n
}
