package preferences

import (
	"encoding/json"
	"net/http"

	"github.com/2beens/liftlog/internal/gymlog"
	"github.com/2beens/liftlog/pkg"

	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, err := gymlog.UserIDFromContext(r.Context())
	if err != nil {
		gymlog.WriteError(w, err)
		return
	}

	prefs, err := h.service.Get(r.Context(), userID)
	if err != nil {
		gymlog.WriteError(w, err)
		return
	}
	writePreferences(w, prefs)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, err := gymlog.UserIDFromContext(r.Context())
	if err != nil {
		gymlog.WriteError(w, err)
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		gymlog.WriteError(w, gymlog.NewValidationError("", "malformed JSON body"))
		return
	}

	prefs, err := h.service.Update(r.Context(), userID, req)
	if err != nil {
		gymlog.WriteError(w, err)
		return
	}
	writePreferences(w, prefs)
}

func writePreferences(w http.ResponseWriter, prefs *Preferences) {
	prefsJson, err := json.Marshal(prefs)
	if err != nil {
		log.Errorf("marshal preferences: %s", err)
		http.Error(w, "marshal preferences failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, prefsJson, http.StatusOK)
}
