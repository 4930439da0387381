package workouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/liftlog/internal/gymlog"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/pkg"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

type exerciseResolver interface {
	ResolveOrCreate(ctx context.Context, tx pgx.Tx, userID, name string) (uuid.UUID, error)
	Owned(ctx context.Context, tx pgx.Tx, userID string, id uuid.UUID) (bool, error)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// selectWorkouts loads whole aggregates in one pass; rows come out grouped by
// workout, then link position, then set number.
const selectWorkouts = `
	SELECT
		w.id, w.user_id, w.name, w.started_at, w.completed_at, w.created_at, w.updated_at,
		we.id, we.exercise_id, e.name, we.position,
		s.id, s.set_number, s.weight, s.reps
	FROM workout w
	LEFT JOIN workout_exercise we ON we.workout_id = w.id
	LEFT JOIN exercise e ON e.id = we.exercise_id
	LEFT JOIN workout_set s ON s.workout_exercise_id = we.id
	WHERE w.user_id = $1 AND %s
	ORDER BY w.started_at, w.created_at, w.id, we.position, s.set_number;`

type Repo struct {
	db       *pgxpool.Pool
	resolver exerciseResolver
}

func NewRepo(db *pgxpool.Pool, resolver exerciseResolver) *Repo {
	return &Repo{
		db:       db,
		resolver: resolver,
	}
}

// ListInWindow returns the user's workouts with start in [start, end).
func (r *Repo) ListInWindow(ctx context.Context, userID string, start, end time.Time) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("from", start.String()),
		attribute.String("to", end.String()),
	)

	workouts, err := r.query(ctx, r.db,
		fmt.Sprintf(selectWorkouts, "w.started_at >= $2 AND w.started_at < $3"),
		userID, start, end,
	)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("workouts.count", len(workouts)))
	return workouts, nil
}

func (r *Repo) Get(ctx context.Context, userID string, id uuid.UUID) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("id", id.String()))

	return r.get(ctx, r.db, userID, id)
}

func (r *Repo) Create(ctx context.Context, userID string, m Mutation) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	id := uuid.New()
	span.SetAttributes(attribute.String("id", id.String()))

	var created *Workout
	err = r.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO workout (id, user_id, name, started_at, completed_at)
				VALUES ($1, $2, $3, $4, $5);`,
			id, userID, m.Name, m.StartedAt, m.CompletedAt,
		); err != nil {
			return fmt.Errorf("insert workout: %w", err)
		}

		if err := r.writeExercises(ctx, tx, userID, id, m.Exercises); err != nil {
			return err
		}

		w, err := r.get(ctx, tx, userID, id)
		if err != nil {
			return fmt.Errorf("read created workout: %w", err)
		}
		created = w
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Update replaces the workout fields and its whole exercise list.
func (r *Repo) Update(ctx context.Context, userID string, id uuid.UUID, m Mutation) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("id", id.String()))

	return r.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(
			ctx,
			`UPDATE workout
				SET name = $3, started_at = $4, completed_at = $5, updated_at = now()
				WHERE id = $1 AND user_id = $2;`,
			id, userID, m.Name, m.StartedAt, m.CompletedAt,
		)
		if err != nil {
			return fmt.Errorf("update workout: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return gymlog.ErrNotFound
		}

		// sets go with their links
		if _, err := tx.Exec(ctx, `DELETE FROM workout_exercise WHERE workout_id = $1;`, id); err != nil {
			return fmt.Errorf("delete workout exercises: %w", err)
		}

		return r.writeExercises(ctx, tx, userID, id, m.Exercises)
	})
}

// Delete removes the workout; links and sets cascade, catalog exercises stay.
func (r *Repo) Delete(ctx context.Context, userID string, id uuid.UUID) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("id", id.String()))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM workout WHERE id = $1 AND user_id = $2;`,
		id, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return gymlog.ErrNotFound
	}
	return nil
}

func (r *Repo) inTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				err = fmt.Errorf("rollback tx: %w: %w", rollbackErr, err)
			}
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("commit tx: %w", commitErr)
		}
	}()

	return fn(tx)
}

// writeExercises resolves every exercise reference once, in input order, then
// writes the links and sets in a single batch. Positions and set numbers come
// from slice indexes.
func (r *Repo) writeExercises(ctx context.Context, tx pgx.Tx, userID string, workoutID uuid.UUID, refs []ExerciseRef) error {
	batch := &pgx.Batch{}
	for i, ref := range refs {
		exerciseID, err := r.resolve(ctx, tx, userID, i, ref)
		if err != nil {
			return err
		}

		linkID := uuid.New()
		batch.Queue(
			`INSERT INTO workout_exercise (id, workout_id, exercise_id, position) VALUES ($1, $2, $3, $4);`,
			linkID, workoutID, exerciseID, i+1,
		)
		for j, s := range ref.Sets {
			batch.Queue(
				`INSERT INTO workout_set (id, workout_exercise_id, set_number, weight, reps) VALUES ($1, $2, $3, $4, $5);`,
				uuid.New(), linkID, j+1, s.Weight, s.Reps,
			)
		}
	}

	if batch.Len() == 0 {
		return nil
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			// exercise removed after it was resolved
			return gymlog.NewValidationError("exercises", "unknown exercise")
		}
		return fmt.Errorf("insert workout exercises: %w", err)
	}
	return nil
}

func (r *Repo) resolve(ctx context.Context, tx pgx.Tx, userID string, index int, ref ExerciseRef) (uuid.UUID, error) {
	if ref.ExerciseID == nil {
		return r.resolver.ResolveOrCreate(ctx, tx, userID, ref.Name)
	}

	owned, err := r.resolver.Owned(ctx, tx, userID, *ref.ExerciseID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("check exercise %s: %w", *ref.ExerciseID, err)
	}
	if !owned {
		return uuid.Nil, gymlog.NewValidationError(
			fmt.Sprintf("exercises[%d].exerciseId", index),
			"unknown exercise",
		)
	}
	return *ref.ExerciseID, nil
}

func (r *Repo) get(ctx context.Context, q querier, userID string, id uuid.UUID) (*Workout, error) {
	workouts, err := r.query(ctx, q, fmt.Sprintf(selectWorkouts, "w.id = $2"), userID, id)
	if err != nil {
		return nil, err
	}
	if len(workouts) == 0 {
		return nil, gymlog.ErrNotFound
	}
	return &workouts[0], nil
}

func (r *Repo) query(ctx context.Context, q querier, sql string, args ...any) ([]Workout, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workouts := make([]Workout, 0)
	for rows.Next() {
		var (
			w            Workout
			linkID       *uuid.UUID
			exerciseID   *uuid.UUID
			exerciseName *string
			position     *int
			setID        *uuid.UUID
			setNumber    *int
			weight       *float64
			reps         *int
		)
		if err := rows.Scan(
			&w.ID, &w.UserID, &w.Name, &w.StartedAt, &w.CompletedAt, &w.CreatedAt, &w.UpdatedAt,
			&linkID, &exerciseID, &exerciseName, &position,
			&setID, &setNumber, &weight, &reps,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}

		if len(workouts) == 0 || workouts[len(workouts)-1].ID != w.ID {
			w.StartedAt = w.StartedAt.UTC()
			if w.CompletedAt != nil {
				completedAt := w.CompletedAt.UTC()
				w.CompletedAt = &completedAt
			}
			w.Exercises = make([]WorkoutExercise, 0)
			workouts = append(workouts, w)
		}
		current := &workouts[len(workouts)-1]

		if linkID == nil {
			continue
		}
		if n := len(current.Exercises); n == 0 || current.Exercises[n-1].ID != *linkID {
			link := WorkoutExercise{
				ID:   *linkID,
				Sets: make([]Set, 0),
			}
			if exerciseID != nil {
				link.ExerciseID = *exerciseID
			}
			if exerciseName != nil {
				link.ExerciseName = *exerciseName
			}
			if position != nil {
				link.Order = *position
			}
			current.Exercises = append(current.Exercises, link)
		}
		link := &current.Exercises[len(current.Exercises)-1]

		if setID == nil || setNumber == nil || weight == nil || reps == nil {
			continue
		}
		link.Sets = append(link.Sets, Set{
			ID:        *setID,
			SetNumber: *setNumber,
			Weight:    *weight,
			Reps:      *reps,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return workouts, nil
}
