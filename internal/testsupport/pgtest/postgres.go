// Package pgtest starts a throwaway postgres with the service schema for integration tests.
package pgtest

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/spec-kit/stay-service/internal/persistence"
)

// Postgres is a disposable database with the service schema applied.
type Postgres struct {
	Pool      *pgxpool.Pool
	container testcontainers.Container
}

// StartPostgres runs postgres in a container and applies the migrations in migrationsDir.
func StartPostgres(ctx context.Context, migrationsDir string) (*Postgres, error) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "stay",
			"POSTGRES_PASSWORD": "stay",
			"POSTGRES_DB":       "stay",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(90 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start postgres container: %w", err)
	}
	pg := &Postgres{container: container}

	host, err := container.Host(ctx)
	if err != nil {
		pg.Close(ctx)
		return nil, err
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		pg.Close(ctx)
		return nil, err
	}

	dsn := fmt.Sprintf("postgres://stay:stay@%s:%s/stay?sslmode=disable", host, port.Port())
	pg.Pool, err = pgxpool.New(ctx, dsn)
	if err != nil {
		pg.Close(ctx)
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := persistence.RunMigrations(ctx, pg.Pool, migrationsDir, zap.NewNop()); err != nil {
		pg.Close(ctx)
		return nil, err
	}
	return pg, nil
}

// Close releases the pool and removes the container.
func (p *Postgres) Close(ctx context.Context) {
	if p.Pool != nil {
		p.Pool.Close()
	}
	if p.container != nil {
		_ = p.container.Terminate(ctx)
	}
}
