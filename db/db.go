package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq" // postgres driver
)

const (
	maxOpenConns    = 25
	maxIdleConns    = 25
	connMaxLifetime = 5 * time.Minute
)

// Connect открывает пул соединений и проверяет его пингом с таймаутом.
func Connect(dsn string, timeout time.Duration) (*sql.DB, error) {
	pool, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}

	pool.SetMaxOpenConns(maxOpenConns)
	pool.SetMaxIdleConns(maxIdleConns)
	pool.SetConnMaxLifetime(connMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err = pool.PingContext(ctx); err != nil {
		if closeErr := pool.Close(); closeErr != nil {
			slog.Error("failed to close database handle after ping error", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to ping database within %v: %w", timeout, err)
	}

	return pool, nil
}
