package workouts

import (
	"time"

	"github.com/google/uuid"
)

// Workout is the root aggregate: a session with ordered exercises, each with
// ordered sets.
type Workout struct {
	ID          uuid.UUID         `json:"id"`
	UserID      string            `json:"-"`
	Name        *string           `json:"name"`
	StartedAt   time.Time         `json:"startedAt"`
	CompletedAt *time.Time        `json:"completedAt"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
	Exercises   []WorkoutExercise `json:"exercises"`
}

// WorkoutExercise links a workout to a catalog exercise at a 1-based position.
type WorkoutExercise struct {
	ID           uuid.UUID `json:"id"`
	ExerciseID   uuid.UUID `json:"exerciseId"`
	ExerciseName string    `json:"exerciseName"`
	Order        int       `json:"order"`
	Sets         []Set     `json:"sets"`
}

type Set struct {
	ID        uuid.UUID `json:"id"`
	SetNumber int       `json:"setNumber"`
	Weight    float64   `json:"weight"`
	Reps      int       `json:"reps"`
}

type ListResponse struct {
	Workouts []Workout `json:"workouts"`
}

type UpdateResponse struct {
	UpdatedID uuid.UUID `json:"updatedId"`
}

type DeleteResponse struct {
	DeletedID uuid.UUID `json:"deletedId"`
}
