package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/2beens/liftlog/internal/telemetry/tracing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// List returns the user's exercises ordered by name.
func (r *Repo) List(ctx context.Context, userID string) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, name, created_at
			FROM exercise
			WHERE user_id = $1
			ORDER BY name_key, id;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exercises := make([]Exercise, 0)
	for rows.Next() {
		var ex Exercise
		if err := rows.Scan(&ex.ID, &ex.UserID, &ex.Name, &ex.CreatedAt); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		exercises = append(exercises, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("exercises.count", len(exercises)))
	return exercises, nil
}

// ResolveOrCreate returns the id of the user's exercise whose name matches
// case-insensitively, creating it when there is none. The conflict on the
// (user_id, name_key) index makes concurrent first uses of a name resolve
// to the same row.
func (r *Repo) ResolveOrCreate(ctx context.Context, tx pgx.Tx, userID, name string) (_ uuid.UUID, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.resolve")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	name = strings.TrimSpace(name)
	if name == "" {
		return uuid.Nil, errors.New("empty exercise name")
	}

	var id uuid.UUID
	err = tx.QueryRow(
		ctx,
		`INSERT INTO exercise (id, user_id, name, name_key)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id, name_key) DO UPDATE SET name_key = EXCLUDED.name_key
			RETURNING id;`,
		uuid.New(), userID, name, NameKey(name),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve exercise [%s]: %w", name, err)
	}

	span.SetAttributes(attribute.String("exercise.id", id.String()))
	return id, nil
}

// Owned reports whether the exercise with the given id belongs to the user.
func (r *Repo) Owned(ctx context.Context, tx pgx.Tx, userID string, id uuid.UUID) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.owned")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise.id", id.String()))

	var owned bool
	err = tx.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM exercise WHERE id = $1 AND user_id = $2);`,
		id, userID,
	).Scan(&owned)
	if err != nil {
		return false, err
	}
	return owned, nil
}
