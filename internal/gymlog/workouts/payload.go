package workouts

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/2beens/liftlog/internal/gymlog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const maxNameLength = 100

// Payload is the create/update request body.
type Payload struct {
	Name        *string        `json:"name" validate:"omitempty,max=100"`
	StartedAt   string         `json:"startedAt" validate:"required"`
	CompletedAt *string        `json:"completedAt"`
	Exercises   []ExerciseItem `json:"exercises" validate:"required,min=1,dive"`
}

// ExerciseItem references a catalog exercise by id, or by name to be
// resolved (or created) case-insensitively. The id wins when both are set.
type ExerciseItem struct {
	ExerciseID   string    `json:"exerciseId,omitempty" validate:"omitempty,uuid"`
	ExerciseName string    `json:"exerciseName,omitempty" validate:"omitempty,max=100"`
	Sets         []SetItem `json:"sets" validate:"required,min=1,dive"`
}

type SetItem struct {
	Weight *float64 `json:"weight" validate:"required,gte=0"`
	Reps   *int     `json:"reps" validate:"required,gt=0,lte=2147483647"`
}

// Mutation is a validated payload, ready to be written by the store.
type Mutation struct {
	Name        *string
	StartedAt   time.Time
	CompletedAt *time.Time
	Exercises   []ExerciseRef
}

type ExerciseRef struct {
	// ExerciseID is set when the client picked an existing exercise.
	ExerciseID *uuid.UUID
	Name       string
	Sets       []SetValues
}

type SetValues struct {
	Weight float64
	Reps   int
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the payload shape and ranges and normalises it.
// All failures are *gymlog.ValidationError.
func (p Payload) Validate() (*Mutation, error) {
	if err := validate.Struct(p); err != nil {
		return nil, toValidationError(err)
	}

	startedAt, err := time.Parse(time.RFC3339, strings.TrimSpace(p.StartedAt))
	if err != nil {
		return nil, gymlog.NewValidationError("startedAt", "expected an RFC 3339 timestamp")
	}

	m := &Mutation{
		StartedAt: startedAt.UTC(),
		Exercises: make([]ExerciseRef, 0, len(p.Exercises)),
	}

	if p.Name != nil {
		if name := strings.TrimSpace(*p.Name); name != "" {
			m.Name = &name
		}
	}

	if p.CompletedAt != nil && strings.TrimSpace(*p.CompletedAt) != "" {
		completedAt, err := time.Parse(time.RFC3339, strings.TrimSpace(*p.CompletedAt))
		if err != nil {
			return nil, gymlog.NewValidationError("completedAt", "expected an RFC 3339 timestamp")
		}
		if completedAt.Before(startedAt) {
			return nil, gymlog.NewValidationError("completedAt", "must not be before startedAt")
		}
		completedAt = completedAt.UTC()
		m.CompletedAt = &completedAt
	}

	for i, item := range p.Exercises {
		ref := ExerciseRef{
			Sets: make([]SetValues, 0, len(item.Sets)),
		}

		switch {
		case item.ExerciseID != "":
			id, err := uuid.Parse(item.ExerciseID)
			if err != nil {
				return nil, gymlog.NewValidationError(fmt.Sprintf("exercises[%d].exerciseId", i), "must be a valid UUID")
			}
			ref.ExerciseID = &id
		case strings.TrimSpace(item.ExerciseName) != "":
			ref.Name = strings.TrimSpace(item.ExerciseName)
		default:
			return nil, gymlog.NewValidationError(
				fmt.Sprintf("exercises[%d]", i),
				"either exerciseId or exerciseName is required",
			)
		}

		for _, s := range item.Sets {
			ref.Sets = append(ref.Sets, SetValues{Weight: *s.Weight, Reps: *s.Reps})
		}
		m.Exercises = append(m.Exercises, ref)
	}

	return m, nil
}

func toValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return gymlog.NewValidationError("", err.Error())
	}

	fe := validationErrs[0]
	field := strings.TrimPrefix(fe.Namespace(), "Payload.")

	var msg string
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "min":
		msg = fmt.Sprintf("must have at least %s item(s)", fe.Param())
	case "max":
		msg = fmt.Sprintf("must be at most %d characters", maxNameLength)
	case "gte":
		msg = fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "gt":
		msg = fmt.Sprintf("must be greater than %s", fe.Param())
	case "lte":
		msg = fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "uuid":
		msg = "must be a valid UUID"
	default:
		msg = fmt.Sprintf("failed %s check", fe.Tag())
	}
	return gymlog.NewValidationError(field, msg)
}
