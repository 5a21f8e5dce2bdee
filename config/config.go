package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	// Объектное хранилище для архивов снимков турниров. Все поля
	// опциональны: без них архив отключён.
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// R2Configured reports whether every snapshot archive field is set.
func (c *Config) R2Configured() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" &&
		c.R2SecretAccessKey != "" && c.R2BucketName != "" && c.R2PublicBaseURL != ""
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080" // Порт по умолчанию
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	cfg := &Config{
		DatabaseURL:  dbURL,
		JWTSecretKey: jwtKey,
		ServerPort:   port,

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	return cfg, nil
}
