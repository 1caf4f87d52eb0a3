package pgrepo

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	// драйвер postgres для применения миграций.
	_ "github.com/golang-migrate/migrate/v4/database/postgres" //nolint:revive
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	defaultMaxConnectAttempts uint = 30
	defaultRetryInterval           = 3 * time.Second
)

// Connect открывает пул pgx, повторяя попытки пока база недоступна, и приводит схему
// к актуальному виду встроенными миграциями.
func Connect(ctx context.Context, dsn string, l *logrus.Logger) (*pgxpool.Pool, error) {
	pool, err := connectWithRetry(ctx, dsn, l.WithField("component", "pgrepo"))
	if err != nil {
		return nil, fmt.Errorf("init postgres connection: %w", err)
	}

	if migrateErr := postgresMigrate(dsn); migrateErr != nil {
		pool.Close()
		return nil, migrateErr
	}
	return pool, nil
}

func connectWithRetry(ctx context.Context, dsn string, l *logrus.Entry) (*pgxpool.Pool, error) {
	var attempts uint
	for {
		pool, connErr := newPostgresConnection(ctx, dsn)
		if connErr == nil {
			return pool, nil
		}

		attempts++
		if attempts >= defaultMaxConnectAttempts {
			return nil, fmt.Errorf("giving up after %d attempts: %w", attempts, connErr)
		}
		l.WithError(connErr).
			WithField("CurrentAttempt", fmt.Sprintf("#%d / %d", attempts, defaultMaxConnectAttempts)).
			Warnf("init postgres connection error, retrying in %.f seconds", defaultRetryInterval.Seconds())

		select {
		case <-ctx.Done():
			return nil, ctx.Err() //nolint:wrapcheck
		case <-time.After(defaultRetryInterval):
		}
	}
}

func newPostgresConnection(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolConfig, confErr := pgxpool.ParseConfig(dsn)
	if confErr != nil {
		return nil, fmt.Errorf("parse postgres config: %w", confErr)
	}
	pool, poolErr := pgxpool.NewWithConfig(ctx, poolConfig)
	if poolErr != nil {
		return nil, fmt.Errorf("create pool: %w", poolErr)
	}

	if pingErr := pool.Ping(ctx); pingErr != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", pingErr)
	}
	return pool, nil
}

func postgresMigrate(dsn string) error {
	src, srcErr := iofs.New(migrationsFS, "migrations")
	if srcErr != nil {
		return fmt.Errorf("open embedded migrations: %w", srcErr)
	}

	m, mErr := migrate.NewWithSourceInstance("iofs", src, dsn)
	if mErr != nil {
		return fmt.Errorf("create migrate instance: %w", mErr)
	}
	defer func() {
		_, _ = m.Close()
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
