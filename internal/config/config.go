// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
)

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port string
	Name string
}

// DatabaseConfig holds archive database settings
type DatabaseConfig struct {
	Driver   string // sqlite | postgres
	Path     string // sqlite file path
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// RedisConfig holds Redis settings for the settled-round cache
type RedisConfig struct {
	Enabled bool
	Host    string
	Port    string
}

// LogConfig holds logger settings
type LogConfig struct {
	File   string
	Level  string
	Format string
}

// LotteryConfig holds everything the lottery service needs
type LotteryConfig struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Log         LogConfig
	AdminSecret string
}

// LoadLotteryConfig loads configuration for the lottery service
func LoadLotteryConfig() *LotteryConfig {
	return &LotteryConfig{
		Server: ServerConfig{
			Port: getEnv("LOTTERY_SERVER_PORT", "8080"),
			Name: "lottery-service",
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "sqlite"),
			Path:     getEnv("DB_PATH", "data/lottery.db"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "lottery_user"),
			Password: getEnv("DB_PASSWORD", "lottery_pass"),
			Name:     getEnv("DB_NAME", "lottery_db"),
		},
		Redis: RedisConfig{
			Enabled: getEnvBool("REDIS_ENABLED", false),
			Host:    getEnv("REDIS_HOST", "localhost"),
			Port:    getEnv("REDIS_PORT", "6379"),
		},
		Log: LogConfig{
			File:   getEnv("LOG_FILE", "logs/lottery/server.log"),
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		AdminSecret: getEnv("ADMIN_JWT_SECRET", "dev-only-admin-secret"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
