package workouts

import (
	"context"
	"errors"
	"time"

	"github.com/2beens/liftlog/internal/gymlog"
	"github.com/2beens/liftlog/internal/telemetry/metrics"
	"github.com/2beens/liftlog/internal/telemetry/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=workouts_test

type workoutsStore interface {
	ListInWindow(ctx context.Context, userID string, start, end time.Time) ([]Workout, error)
	Get(ctx context.Context, userID string, id uuid.UUID) (*Workout, error)
	Create(ctx context.Context, userID string, m Mutation) (*Workout, error)
	Update(ctx context.Context, userID string, id uuid.UUID, m Mutation) error
	Delete(ctx context.Context, userID string, id uuid.UUID) error
}

// Service is the entry point for workout reads and mutations. Every call is
// scoped to one user and bounded by the store timeout. Payloads are
// validated before the store is touched.
type Service struct {
	store          workoutsStore
	timeout        time.Duration
	metricsManager *metrics.Manager
}

func NewService(store workoutsStore, timeout time.Duration, metricsManager *metrics.Manager) *Service {
	return &Service{
		store:          store,
		timeout:        timeout,
		metricsManager: metricsManager,
	}
}

// ListForDay returns the user's workouts started on dateStr in the client's
// timezone, ordered by start time.
func (s *Service) ListForDay(ctx context.Context, userID, dateStr string, utcOffsetMinutes int) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.listforday")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("date", dateStr),
		attribute.Int("offset", utcOffsetMinutes),
	)

	userID, err = gymlog.CheckUserID(userID)
	if err != nil {
		return nil, err
	}

	start, end, err := ResolveDayWindow(dateStr, utcOffsetMinutes)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	workouts, err := s.store.ListInWindow(ctx, userID, start, end)
	if err != nil {
		return nil, storeError("list workouts", err)
	}
	return workouts, nil
}

func (s *Service) Get(ctx context.Context, userID, workoutID string) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("id", workoutID))

	userID, err = gymlog.CheckUserID(userID)
	if err != nil {
		return nil, err
	}
	id, err := parseWorkoutID(workoutID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	w, err := s.store.Get(ctx, userID, id)
	if err != nil {
		return nil, storeError("get workout", err)
	}
	return w, nil
}

func (s *Service) Create(ctx context.Context, userID string, payload Payload) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
		s.recordMutation("create", err)
	}()

	userID, err = gymlog.CheckUserID(userID)
	if err != nil {
		return nil, err
	}
	m, err := payload.Validate()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	w, err := s.store.Create(ctx, userID, *m)
	if err != nil {
		return nil, storeError("create workout", err)
	}
	span.SetAttributes(attribute.String("id", w.ID.String()))
	return w, nil
}

// Update replaces the workout and its exercises; nothing is merged.
func (s *Service) Update(ctx context.Context, userID, workoutID string, payload Payload) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
		s.recordMutation("update", err)
	}()
	span.SetAttributes(attribute.String("id", workoutID))

	userID, err = gymlog.CheckUserID(userID)
	if err != nil {
		return err
	}
	m, err := payload.Validate()
	if err != nil {
		return err
	}
	id, err := parseWorkoutID(workoutID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.store.Update(ctx, userID, id, *m); err != nil {
		return storeError("update workout", err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, userID, workoutID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
		s.recordMutation("delete", err)
	}()
	span.SetAttributes(attribute.String("id", workoutID))

	userID, err = gymlog.CheckUserID(userID)
	if err != nil {
		return err
	}
	id, err := parseWorkoutID(workoutID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.store.Delete(ctx, userID, id); err != nil {
		return storeError("delete workout", err)
	}
	return nil
}

func (s *Service) recordMutation(op string, err error) {
	if s.metricsManager == nil {
		return
	}
	s.metricsManager.WorkoutMutation(op, err)
}

// parseWorkoutID treats a malformed id like an id that matches nothing.
func parseWorkoutID(workoutID string) (uuid.UUID, error) {
	id, err := uuid.Parse(workoutID)
	if err != nil {
		return uuid.Nil, gymlog.ErrNotFound
	}
	return id, nil
}

// storeError passes domain errors through and wraps the rest.
func storeError(op string, err error) error {
	if errors.Is(err, gymlog.ErrNotFound) || gymlog.IsValidationError(err) {
		return err
	}
	return gymlog.NewStoreError(op, err)
}
