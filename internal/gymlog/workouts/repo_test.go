package workouts_test

import (
	"context"
	"testing"
	"time"

	"github.com/2beens/liftlog/internal/gymlog"
	"github.com/2beens/liftlog/internal/gymlog/catalog"
	"github.com/2beens/liftlog/internal/gymlog/workouts"
	"github.com/2beens/liftlog/internal/testinternals"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type RepoTestSuite struct {
	suite.Suite

	pg      *testinternals.Postgres
	catalog *catalog.Repo
	repo    *workouts.Repo
	service *workouts.Service
}

func TestRepoTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres suite in short mode")
	}
	suite.Run(t, new(RepoTestSuite))
}

func (s *RepoTestSuite) SetupSuite() {
	pg, err := testinternals.StartPostgres(context.Background())
	if err != nil {
		s.T().Skipf("postgres not available: %s", err)
	}
	s.pg = pg
	s.catalog = catalog.NewRepo(pg.Pool)
	s.repo = workouts.NewRepo(pg.Pool, s.catalog)
	s.service = workouts.NewService(s.repo, 5*time.Second, nil)
}

func (s *RepoTestSuite) TearDownSuite() {
	if s.pg != nil {
		s.pg.Close()
	}
}

func (s *RepoTestSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(context.Background()))
}

func (s *RepoTestSuite) count(table, where string, args ...any) int {
	n, err := s.pg.Count(table, where, args...)
	s.Require().NoError(err)
	return n
}

func payloadAt(startedAt string, items ...workouts.ExerciseItem) workouts.Payload {
	return workouts.Payload{
		StartedAt: startedAt,
		Exercises: items,
	}
}

func named(name string, sets ...workouts.SetItem) workouts.ExerciseItem {
	return workouts.ExerciseItem{ExerciseName: name, Sets: sets}
}

func (s *RepoTestSuite) TestCreateAndRead_RoundTrip() {
	ctx := context.Background()

	created, err := s.service.Create(ctx, testUserID, payloadAt("2024-03-10T10:00:00Z", named("Squat", set(100, 5))))
	s.Require().NoError(err)
	s.Require().Len(created.Exercises, 1)
	s.Equal("Squat", created.Exercises[0].ExerciseName)

	list, err := s.service.ListForDay(ctx, testUserID, "2024-03-10", 0)
	s.Require().NoError(err)
	s.Require().Len(list, 1)

	w := list[0]
	s.Equal(created.ID, w.ID)
	s.Nil(w.Name)
	s.Nil(w.CompletedAt)
	s.Equal(time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC), w.StartedAt)
	s.Require().Len(w.Exercises, 1)
	s.Equal(1, w.Exercises[0].Order)
	s.Equal("Squat", w.Exercises[0].ExerciseName)
	s.Require().Len(w.Exercises[0].Sets, 1)
	s.Equal(1, w.Exercises[0].Sets[0].SetNumber)
	s.Equal(100.0, w.Exercises[0].Sets[0].Weight)
	s.Equal(5, w.Exercises[0].Sets[0].Reps)

	got, err := s.service.Get(ctx, testUserID, created.ID.String())
	s.Require().NoError(err)
	s.Equal(w, *got)
	s.Equal(*created, *got)
}

func (s *RepoTestSuite) TestExerciseResolution_CaseInsensitive() {
	ctx := context.Background()

	first, err := s.service.Create(ctx, testUserID, payloadAt("2024-03-10T08:00:00Z", named("Bench Press", set(80, 8))))
	s.Require().NoError(err)
	second, err := s.service.Create(ctx, testUserID, payloadAt("2024-03-11T08:00:00Z",
		named("bench press", set(82.5, 6)),
		named("  BENCH PRESS ", set(60, 12)),
	))
	s.Require().NoError(err)

	s.Equal(1, s.count("exercise", "user_id = $1", testUserID))
	s.Equal(first.Exercises[0].ExerciseID, second.Exercises[0].ExerciseID)
	s.Equal(first.Exercises[0].ExerciseID, second.Exercises[1].ExerciseID)
	// the first spelling is kept
	s.Equal("Bench Press", second.Exercises[0].ExerciseName)

	exercises, err := s.catalog.List(ctx, testUserID)
	s.Require().NoError(err)
	s.Require().Len(exercises, 1)
	s.Equal("Bench Press", exercises[0].Name)

	// another user gets their own row
	_, err = s.service.Create(ctx, "user-2", payloadAt("2024-03-10T08:00:00Z", named("bench press", set(40, 10))))
	s.Require().NoError(err)
	s.Equal(2, s.count("exercise", ""))
}

func (s *RepoTestSuite) TestCreate_Ordering() {
	ctx := context.Background()

	created, err := s.service.Create(ctx, testUserID, payloadAt("2024-03-10T08:00:00Z",
		named("C exercise", set(10, 1)),
		named("A exercise", set(30, 3), set(20, 2), set(10, 1)),
		named("B exercise", set(5, 5), set(6, 6)),
	))
	s.Require().NoError(err)

	w, err := s.service.Get(ctx, testUserID, created.ID.String())
	s.Require().NoError(err)
	s.Require().Len(w.Exercises, 3)
	for i, expectedName := range []string{"C exercise", "A exercise", "B exercise"} {
		s.Equal(i+1, w.Exercises[i].Order)
		s.Equal(expectedName, w.Exercises[i].ExerciseName)
		for j, set := range w.Exercises[i].Sets {
			s.Equal(j+1, set.SetNumber)
		}
	}
	s.Equal([]int{3, 2, 1}, []int{w.Exercises[1].Sets[0].Reps, w.Exercises[1].Sets[1].Reps, w.Exercises[1].Sets[2].Reps})

	// catalog is ordered by name
	exercises, err := s.catalog.List(ctx, testUserID)
	s.Require().NoError(err)
	s.Require().Len(exercises, 3)
	s.Equal("A exercise", exercises[0].Name)
	s.Equal("B exercise", exercises[1].Name)
	s.Equal("C exercise", exercises[2].Name)
}

func (s *RepoTestSuite) TestCreate_ByExerciseID() {
	ctx := context.Background()

	first, err := s.service.Create(ctx, testUserID, payloadAt("2024-03-10T08:00:00Z", named("Deadlift", set(140, 3))))
	s.Require().NoError(err)
	deadliftID := first.Exercises[0].ExerciseID

	second, err := s.service.Create(ctx, testUserID, payloadAt("2024-03-12T08:00:00Z", workouts.ExerciseItem{
		ExerciseID: deadliftID.String(),
		Sets:       []workouts.SetItem{set(150, 1)},
	}))
	s.Require().NoError(err)
	s.Equal(deadliftID, second.Exercises[0].ExerciseID)
	s.Equal("Deadlift", second.Exercises[0].ExerciseName)
	s.Equal(1, s.count("exercise", ""))
}

func (s *RepoTestSuite) TestUpdate_ReplacesExercises() {
	ctx := context.Background()

	created, err := s.service.Create(ctx, testUserID, workouts.Payload{
		Name:      ptr("Push"),
		StartedAt: "2024-03-10T08:00:00Z",
		Exercises: []workouts.ExerciseItem{
			named("Bench Press", set(80, 8), set(80, 8)),
			named("Dips", set(0, 12)),
		},
	})
	s.Require().NoError(err)

	err = s.service.Update(ctx, testUserID, created.ID.String(), workouts.Payload{
		StartedAt:   "2024-03-10T09:00:00Z",
		CompletedAt: ptr("2024-03-10T10:15:00Z"),
		Exercises:   []workouts.ExerciseItem{named("Overhead Press", set(50, 5))},
	})
	s.Require().NoError(err)

	w, err := s.service.Get(ctx, testUserID, created.ID.String())
	s.Require().NoError(err)
	s.Nil(w.Name)
	s.Equal(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC), w.StartedAt)
	s.Require().NotNil(w.CompletedAt)
	s.Equal(time.Date(2024, 3, 10, 10, 15, 0, 0, time.UTC), *w.CompletedAt)
	s.Require().Len(w.Exercises, 1)
	s.Equal("Overhead Press", w.Exercises[0].ExerciseName)
	s.Equal(1, w.Exercises[0].Order)
	s.Require().Len(w.Exercises[0].Sets, 1)
	s.Equal(50.0, w.Exercises[0].Sets[0].Weight)

	s.Equal(1, s.count("workout_exercise", ""))
	s.Equal(1, s.count("workout_set", ""))
	// old catalog entries stay
	s.Equal(3, s.count("exercise", ""))
	s.True(w.UpdatedAt.After(w.CreatedAt) || w.UpdatedAt.Equal(w.CreatedAt))
}

func (s *RepoTestSuite) TestDelete_Cascades() {
	ctx := context.Background()

	created, err := s.service.Create(ctx, testUserID, payloadAt("2024-03-10T08:00:00Z",
		named("Row", set(60, 10), set(60, 10)),
		named("Curl", set(15, 12)),
	))
	s.Require().NoError(err)
	s.Equal(2, s.count("workout_exercise", ""))
	s.Equal(3, s.count("workout_set", ""))

	s.Require().NoError(s.service.Delete(ctx, testUserID, created.ID.String()))

	s.Equal(0, s.count("workout", ""))
	s.Equal(0, s.count("workout_exercise", ""))
	s.Equal(0, s.count("workout_set", ""))
	s.Equal(2, s.count("exercise", ""))

	s.ErrorIs(s.service.Delete(ctx, testUserID, created.ID.String()), gymlog.ErrNotFound)
	_, err = s.service.Get(ctx, testUserID, created.ID.String())
	s.ErrorIs(err, gymlog.ErrNotFound)
}

func (s *RepoTestSuite) TestListForDay_Boundaries() {
	ctx := context.Background()

	for _, startedAt := range []string{
		"2024-03-09T23:59:59Z",
		"2024-03-10T00:00:00Z",
		"2024-03-10T23:59:59.999Z",
		"2024-03-11T00:00:00Z",
	} {
		_, err := s.service.Create(ctx, testUserID, payloadAt(startedAt, named(gofakeit.Word(), set(10, 10))))
		s.Require().NoError(err)
	}

	list, err := s.service.ListForDay(ctx, testUserID, "2024-03-10", 0)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), list[0].StartedAt)
	s.Equal(time.Date(2024, 3, 10, 23, 59, 59, 999000000, time.UTC), list[1].StartedAt)

	// UTC+1: local 2024-03-10 is [03-09T23:00Z, 03-10T23:00Z)
	list, err = s.service.ListForDay(ctx, testUserID, "2024-03-10", -60)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(time.Date(2024, 3, 9, 23, 59, 59, 0, time.UTC), list[0].StartedAt)
	s.Equal(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), list[1].StartedAt)

	list, err = s.service.ListForDay(ctx, testUserID, "2024-05-01", 0)
	s.Require().NoError(err)
	s.NotNil(list)
	s.Empty(list)
}

func (s *RepoTestSuite) TestListForDay_OrderedByStart() {
	ctx := context.Background()

	late, err := s.service.Create(ctx, testUserID, payloadAt("2024-03-10T18:00:00Z", named("Squat", set(100, 5))))
	s.Require().NoError(err)
	early, err := s.service.Create(ctx, testUserID, payloadAt("2024-03-10T06:00:00Z", named("Squat", set(100, 5))))
	s.Require().NoError(err)

	for range 3 {
		list, err := s.service.ListForDay(ctx, testUserID, "2024-03-10", 0)
		s.Require().NoError(err)
		s.Require().Len(list, 2)
		s.Equal(early.ID, list[0].ID)
		s.Equal(late.ID, list[1].ID)
	}
}

func (s *RepoTestSuite) TestCreate_RollsBackOnUnknownExercise() {
	ctx := context.Background()

	_, err := s.service.Create(ctx, testUserID, payloadAt("2024-03-10T08:00:00Z",
		named("Lunges", set(20, 10)),
		workouts.ExerciseItem{ExerciseID: uuid.New().String(), Sets: []workouts.SetItem{set(10, 10)}},
	))
	requireValidationError(s.T(), err, "exercises[1].exerciseId")

	s.Equal(0, s.count("workout", ""))
	s.Equal(0, s.count("workout_exercise", ""))
	s.Equal(0, s.count("exercise", ""))

	list, err := s.service.ListForDay(ctx, testUserID, "2024-03-10", 0)
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *RepoTestSuite) TestForeignUser() {
	ctx := context.Background()

	created, err := s.service.Create(ctx, testUserID, payloadAt("2024-03-10T08:00:00Z", named("Squat", set(100, 5))))
	s.Require().NoError(err)
	id := created.ID.String()

	s.ErrorIs(s.service.Delete(ctx, "user-2", id), gymlog.ErrNotFound)
	s.ErrorIs(s.service.Update(ctx, "user-2", id, payloadAt("2024-03-10T08:00:00Z", named("Hack", set(1, 1)))), gymlog.ErrNotFound)
	_, err = s.service.Get(ctx, "user-2", id)
	s.ErrorIs(err, gymlog.ErrNotFound)

	list, err := s.service.ListForDay(ctx, "user-2", "2024-03-10", 0)
	s.Require().NoError(err)
	s.Empty(list)

	// another user's exercise id cannot be referenced
	_, err = s.service.Create(ctx, "user-2", payloadAt("2024-03-10T08:00:00Z", workouts.ExerciseItem{
		ExerciseID: created.Exercises[0].ExerciseID.String(),
		Sets:       []workouts.SetItem{set(10, 10)},
	}))
	requireValidationError(s.T(), err, "exercises[0].exerciseId")

	// untouched
	got, err := s.service.Get(ctx, testUserID, id)
	s.Require().NoError(err)
	s.Equal(*created, *got)
	s.Equal(1, s.count("workout", ""))
	s.Equal(1, s.count("exercise", ""))
}
