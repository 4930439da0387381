package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS exercise (
	id         UUID PRIMARY KEY,
	user_id    TEXT NOT NULL,
	name       TEXT NOT NULL,
	name_key   TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (user_id, name_key)
);

CREATE TABLE IF NOT EXISTS workout (
	id           UUID PRIMARY KEY,
	user_id      TEXT NOT NULL,
	name         TEXT,
	started_at   TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_workout_user_started_at ON workout (user_id, started_at);

CREATE TABLE IF NOT EXISTS workout_exercise (
	id          UUID PRIMARY KEY,
	workout_id  UUID NOT NULL REFERENCES workout (id) ON DELETE CASCADE,
	exercise_id UUID NOT NULL REFERENCES exercise (id) ON DELETE CASCADE,
	position    INTEGER NOT NULL CHECK (position > 0),
	UNIQUE (workout_id, position)
);

CREATE INDEX IF NOT EXISTS idx_workout_exercise_exercise_id ON workout_exercise (exercise_id);

CREATE TABLE IF NOT EXISTS workout_set (
	id                  UUID PRIMARY KEY,
	workout_exercise_id UUID NOT NULL REFERENCES workout_exercise (id) ON DELETE CASCADE,
	set_number          INTEGER NOT NULL CHECK (set_number > 0),
	weight              DOUBLE PRECISION NOT NULL CHECK (weight >= 0),
	reps                INTEGER NOT NULL CHECK (reps > 0),
	UNIQUE (workout_exercise_id, set_number)
);

CREATE TABLE IF NOT EXISTS user_preferences (
	user_id      TEXT PRIMARY KEY,
	default_unit TEXT NOT NULL DEFAULT 'kg' CHECK (default_unit IN ('kg', 'lbs')),
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Migrate creates the tables and indexes if they do not exist yet.
// Safe to run on every startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
