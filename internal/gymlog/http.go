package gymlog

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/liftlog/pkg"

	log "github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// WriteError maps an error from the workout services to a status code and a
// JSON body. Store failures are logged and reported without their cause.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	resp := ErrorResponse{Error: "internal error"}

	var validationErr *ValidationError
	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
		resp = ErrorResponse{Error: validationErr.Message, Field: validationErr.Field}
	case errors.Is(err, ErrUnauthorized):
		status = http.StatusUnauthorized
		resp.Error = "unauthorized"
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
		resp.Error = "not found"
	default:
		log.Errorf("request failed: %s", err)
	}

	respJson, marshalErr := json.Marshal(resp)
	if marshalErr != nil {
		http.Error(w, resp.Error, status)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, status)
}
