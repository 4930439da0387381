package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/2beens/liftlog/internal/telemetry/metrics"
	"github.com/2beens/liftlog/pkg"

	log "github.com/sirupsen/logrus"
)

var panicResponse = []byte(`{"error":"internal error"}`)

// PanicRecovery turns a handler panic into a 500 with the same JSON error
// body the workout handlers use. http.ErrAbortHandler is re-raised so the
// server still aborts the response.
func PanicRecovery(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if err, ok := r.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(r)
				}

				log.WithFields(log.Fields{
					"method": req.Method,
					"path":   req.URL.Path,
				}).Errorf("panic serving request: %v\n%s", r, debug.Stack())
				if metricsManager != nil {
					metricsManager.CounterHandleRequestPanic.Inc()
				}
				pkg.WriteResponseBytes(w, pkg.ContentType.JSON, panicResponse, http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, req)
		})
	}
}
