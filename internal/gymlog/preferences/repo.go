package preferences

import (
	"context"
	"errors"

	"github.com/2beens/liftlog/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Get(ctx context.Context, userID string) (_ *Preferences, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.preferences.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	prefs := &Preferences{}
	err = r.db.QueryRow(
		ctx,
		`SELECT default_unit, updated_at FROM user_preferences WHERE user_id = $1;`,
		userID,
	).Scan(&prefs.DefaultUnit, &prefs.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		defaults := Defaults()
		return &defaults, nil
	}
	if err != nil {
		return nil, err
	}
	return prefs, nil
}

func (r *Repo) SetDefaultUnit(ctx context.Context, userID, unit string) (_ *Preferences, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.preferences.setunit")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	prefs := &Preferences{}
	err = r.db.QueryRow(
		ctx,
		`INSERT INTO user_preferences (user_id, default_unit)
			VALUES ($1, $2)
			ON CONFLICT (user_id) DO UPDATE SET default_unit = EXCLUDED.default_unit, updated_at = now()
			RETURNING default_unit, updated_at;`,
		userID, unit,
	).Scan(&prefs.DefaultUnit, &prefs.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return prefs, nil
}
