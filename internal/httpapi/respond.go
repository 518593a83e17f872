package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/roach88/auditlens/internal/service"
)

type envelope struct {
	Status  string     `json:"status"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
	TraceID string     `json:"trace_id"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handlerFunc computes the data payload of one operation.
type handlerFunc func(r *http.Request) (any, error)

// operation wraps fn with the envelope, status mapping and latency metric.
func (s *Server) operation(name string, fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		data, err := fn(r)
		outcome := "ok"
		if err != nil {
			outcome = service.Classify(err).String()
			s.respondError(w, err)
		} else {
			respondJSON(w, http.StatusOK, envelope{Status: "ok", Data: data, TraceID: s.ids.Generate()})
		}
		s.latency.WithLabelValues(name, outcome).Observe(time.Since(start).Seconds())
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	class := service.Classify(err)
	status := statusFor(class)
	if status >= http.StatusInternalServerError {
		s.log.Warn().Err(err).Str("class", class.String()).Msg("operation failed")
	}
	respondJSON(w, status, envelope{
		Status:  "error",
		Error:   &errorBody{Code: class.Code(), Message: err.Error()},
		TraceID: s.ids.Generate(),
	})
}

func statusFor(c service.ErrorClass) int {
	switch c {
	case service.ClassInvalidInput:
		return http.StatusBadRequest
	case service.ClassUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
