package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings read from .env and the process environment
type Config struct {
	AppName string
	Port    string

	// Database
	DBDriver        string // mysql | postgres
	DatabaseURL     string
	DBHost          string
	DBPort          string
	DBUser          string
	DBPassword      string
	DBName          string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	JWTSecret    string
	RedisAddress string
	LogLevel     string
}

// Load reads .env (if present) and builds a Config with defaults applied
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	return &Config{
		AppName:         stringFromEnv("APP_NAME", "INDRHI Inventario v1.0"),
		Port:            stringFromEnv("PORT", "3000"),
		DBDriver:        strings.ToLower(stringFromEnv("DB_DRIVER", "mysql")),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DBHost:          stringFromEnv("DB_HOST", "127.0.0.1"),
		DBPort:          os.Getenv("DB_PORT"),
		DBUser:          os.Getenv("DB_USER"),
		DBPassword:      os.Getenv("DB_PASSWORD"),
		DBName:          stringFromEnv("DB_NAME", "indrhi_inventario"),
		MaxOpenConns:    intFromEnv("DB_MAX_OPEN_CONNS", 50),
		MaxIdleConns:    intFromEnv("DB_MAX_IDLE_CONNS", 10),
		ConnMaxLifetime: time.Duration(intFromEnv("DB_CONN_MAX_LIFETIME_SECONDS", 3600)) * time.Second,
		JWTSecret:       os.Getenv("JWT_SECRET"),
		RedisAddress:    os.Getenv("REDIS_ADDRESS"),
		LogLevel:        stringFromEnv("LOG_LEVEL", "info"),
	}
}

func stringFromEnv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
