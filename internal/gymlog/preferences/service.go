package preferences

import (
	"context"
	"time"

	"github.com/2beens/liftlog/internal/gymlog"

	"github.com/go-playground/validator/v10"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=preferences_test

type preferencesStore interface {
	Get(ctx context.Context, userID string) (*Preferences, error)
	SetDefaultUnit(ctx context.Context, userID, unit string) (*Preferences, error)
}

type Service struct {
	store    preferencesStore
	timeout  time.Duration
	validate *validator.Validate
}

func NewService(store preferencesStore, timeout time.Duration) *Service {
	return &Service{
		store:    store,
		timeout:  timeout,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *Service) Get(ctx context.Context, userID string) (*Preferences, error) {
	userID, err := gymlog.CheckUserID(userID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prefs, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, gymlog.NewStoreError("get preferences", err)
	}
	return prefs, nil
}

func (s *Service) Update(ctx context.Context, userID string, req UpdateRequest) (*Preferences, error) {
	userID, err := gymlog.CheckUserID(userID)
	if err != nil {
		return nil, err
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, gymlog.NewValidationError("defaultUnit", "must be one of: kg, lbs")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prefs, err := s.store.SetDefaultUnit(ctx, userID, req.DefaultUnit)
	if err != nil {
		return nil, gymlog.NewStoreError("set default unit", err)
	}
	return prefs, nil
}
