package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/okian/silentdrop/pkg/metrics"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// MetricsMiddleware records request count and latency for endpoint, plus an
// error sample for every 4xx and 5xx answer.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		elapsedMs := float64(time.Since(start).Microseconds()) / 1000
		metrics.RecordHTTPRequest(endpoint, r.Method, strconv.Itoa(sw.status), elapsedMs)
		if sw.status >= http.StatusBadRequest {
			kind, severity := classifyStatus(sw.status)
			metrics.RecordError(endpoint, r.Method, kind, severity)
		}
	}
}

// RequestID echoes X-Request-ID from the request or assigns a new UUID.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// classifyStatus maps an error status onto the error_type and severity labels.
func classifyStatus(status int) (kind, severity string) {
	switch status {
	case http.StatusMethodNotAllowed:
		return "method_not_allowed", "low"
	case http.StatusRequestEntityTooLarge:
		return "too_large", "medium"
	case http.StatusServiceUnavailable:
		return "unavailable", "high"
	}
	if status >= http.StatusInternalServerError {
		return "server_error", "high"
	}
	return "client_error", "medium"
}

// statusWriter remembers the status code written by the handler.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	n, err := sw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}
