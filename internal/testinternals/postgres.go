package testinternals

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/2beens/liftlog/internal/db"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

const (
	postgresDBName   = "liftlog"
	postgresPassword = "admin"
)

// Postgres is a throwaway Postgres container with the liftlog schema applied.
// Pool is what repos under test use; DB is a separate lib/pq connection for
// asserting on raw table contents.
type Postgres struct {
	Pool *pgxpool.Pool
	DB   *sql.DB
	// host port the container's 5432 is published on
	Port     string
	Password string

	dockerPool *dockertest.Pool
	resource   *dockertest.Resource
}

// StartPostgres runs a postgres container and migrates it. It returns an error
// when Docker is not reachable, so callers can skip.
func StartPostgres(ctx context.Context) (_ *Postgres, err error) {
	// uses a sensible default on windows (tcp/http) and linux/osx (socket)
	dockerPool, err := dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("create dockertest pool: %w", err)
	}
	if err := dockerPool.Client.Ping(); err != nil {
		return nil, fmt.Errorf("ping docker: %w", err)
	}
	dockerPool.MaxWait = 90 * time.Second

	resource, err := dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_PASSWORD=" + postgresPassword,
			"POSTGRES_DB=" + postgresDBName,
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{
			Name: "no",
		}
	})
	if err != nil {
		return nil, fmt.Errorf("dockerpool run postgres: %w", err)
	}

	pg := &Postgres{
		dockerPool: dockerPool,
		resource:   resource,
	}
	defer func() {
		if err != nil {
			pg.Close()
		}
	}()

	if err := resource.Expire(300); err != nil {
		log.Printf("set postgres container expiry: %s", err)
	}

	pgPort := resource.GetPort("5432/tcp")
	pg.Port = pgPort
	pg.Password = postgresPassword
	pg.Pool, err = db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:     "localhost",
		DBPort:     pgPort,
		DBName:     postgresDBName,
		DBUser:     "postgres",
		DBPassword: postgresPassword,
	})
	if err != nil {
		return nil, err
	}

	if err := dockerPool.Retry(func() error {
		return pg.Pool.Ping(ctx)
	}); err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}

	if err := db.Migrate(ctx, pg.Pool); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	dsn := fmt.Sprintf(
		"postgres://postgres:%s@localhost:%s/%s?sslmode=disable",
		postgresPassword, pgPort, postgresDBName,
	)
	pg.DB, err = sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open lib/pq conn: %w", err)
	}

	return pg, nil
}

// Truncate empties every table, keeping the schema.
func (p *Postgres) Truncate(ctx context.Context) error {
	_, err := p.Pool.Exec(ctx, `TRUNCATE workout_set, workout_exercise, workout, exercise, user_preferences;`)
	return err
}

// Count returns the number of rows in table matching the optional where clause.
func (p *Postgres) Count(table, where string, args ...any) (int, error) {
	query := "SELECT count(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	var n int
	if err := p.DB.QueryRow(query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (p *Postgres) Close() {
	if p.DB != nil {
		if err := p.DB.Close(); err != nil {
			log.Printf("close lib/pq conn: %s", err)
		}
	}
	if p.Pool != nil {
		p.Pool.Close()
	}
	if p.resource != nil {
		if err := p.dockerPool.Purge(p.resource); err != nil {
			log.Printf("postgres teardown: %s", err)
		}
	}
}
