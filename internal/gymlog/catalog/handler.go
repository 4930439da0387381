package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/2beens/liftlog/internal/gymlog"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/pkg"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=catalog_test

type exercisesLister interface {
	List(ctx context.Context, userID string) ([]Exercise, error)
}

type ListResponse struct {
	Exercises []Exercise `json:"exercises"`
}

type Handler struct {
	repo    exercisesLister
	timeout time.Duration
}

func NewHandler(repo exercisesLister, timeout time.Duration) *Handler {
	return &Handler{
		repo:    repo,
		timeout: timeout,
	}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.list")
	defer span.End()

	userID, err := gymlog.UserIDFromContext(ctx)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	exercises, err := h.repo.List(ctx, userID)
	if err != nil {
		log.Errorf("list exercises for user %s: %s", userID, err)
		if errors.Is(err, context.DeadlineExceeded) {
			http.Error(w, "list exercises timed out", http.StatusGatewayTimeout)
			return
		}
		http.Error(w, "list exercises failed", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(ListResponse{Exercises: exercises})
	if err != nil {
		log.Errorf("marshal exercises: %s", err)
		http.Error(w, "marshal exercises failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSONResponseOK(w, string(respJson))
}
