package workouts

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/2beens/liftlog/internal/gymlog"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/pkg"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=workouts_test

type workoutsService interface {
	ListForDay(ctx context.Context, userID, dateStr string, utcOffsetMinutes int) ([]Workout, error)
	Get(ctx context.Context, userID, workoutID string) (*Workout, error)
	Create(ctx context.Context, userID string, payload Payload) (*Workout, error)
	Update(ctx context.Context, userID, workoutID string, payload Payload) error
	Delete(ctx context.Context, userID, workoutID string) error
}

type Handler struct {
	service workoutsService
}

func NewHandler(service workoutsService) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) HandleListForDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.listforday")
	defer span.End()

	userID, err := gymlog.UserIDFromContext(ctx)
	if err != nil {
		gymlog.WriteError(w, err)
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		gymlog.WriteError(w, gymlog.NewValidationError("date", "is required"))
		return
	}
	offset, err := ParseOffset(r.URL.Query().Get("offset"))
	if err != nil {
		gymlog.WriteError(w, err)
		return
	}

	workouts, err := h.service.ListForDay(ctx, userID, date, offset)
	if err != nil {
		gymlog.WriteError(w, err)
		return
	}

	h.writeJSON(w, ListResponse{Workouts: workouts}, http.StatusOK)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.get")
	defer span.End()

	userID, err := gymlog.UserIDFromContext(ctx)
	if err != nil {
		gymlog.WriteError(w, err)
		return
	}

	workout, err := h.service.Get(ctx, userID, mux.Vars(r)["id"])
	if err != nil {
		gymlog.WriteError(w, err)
		return
	}

	h.writeJSON(w, workout, http.StatusOK)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.create")
	defer span.End()

	userID, err := gymlog.UserIDFromContext(ctx)
	if err != nil {
		gymlog.WriteError(w, err)
		return
	}

	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}

	workout, err := h.service.Create(ctx, userID, payload)
	if err != nil {
		gymlog.WriteError(w, err)
		return
	}

	log.Debugf("workout %s created for user %s", workout.ID, userID)
	h.writeJSON(w, workout, http.StatusCreated)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.update")
	defer span.End()

	userID, err := gymlog.UserIDFromContext(ctx)
	if err != nil {
		gymlog.WriteError(w, err)
		return
	}

	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}

	workoutID := mux.Vars(r)["id"]
	if err := h.service.Update(ctx, userID, workoutID, payload); err != nil {
		gymlog.WriteError(w, err)
		return
	}

	h.writeJSON(w, UpdateResponse{UpdatedID: uuid.MustParse(workoutID)}, http.StatusOK)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.delete")
	defer span.End()

	userID, err := gymlog.UserIDFromContext(ctx)
	if err != nil {
		gymlog.WriteError(w, err)
		return
	}

	workoutID := mux.Vars(r)["id"]
	if err := h.service.Delete(ctx, userID, workoutID); err != nil {
		gymlog.WriteError(w, err)
		return
	}

	h.writeJSON(w, DeleteResponse{DeletedID: uuid.MustParse(workoutID)}, http.StatusOK)
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any, status int) {
	respJson, err := json.Marshal(v)
	if err != nil {
		log.Errorf("marshal workouts response: %s", err)
		http.Error(w, "marshal response failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, status)
}

func decodePayload(w http.ResponseWriter, r *http.Request) (Payload, bool) {
	var payload Payload
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		gymlog.WriteError(w, gymlog.NewValidationError("", "invalid content type"))
		return payload, false
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Tracef("decode workout payload: %s", err)
		gymlog.WriteError(w, gymlog.NewValidationError("", "malformed JSON body"))
		return payload, false
	}
	return payload, true
}
