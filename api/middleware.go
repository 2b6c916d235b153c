package api

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"TreasuryDash/api/constants"
	"TreasuryDash/internal/logger"

	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

// responseWriter wraps http.ResponseWriter to capture status code and the
// start of error bodies
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

const maxLoggedBody = 512

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.statusCode >= 400 && rw.body.Len() < maxLoggedBody {
		rw.body.Write(b)
	}
	return rw.ResponseWriter.Write(b)
}

// Flush keeps event streams working through the wrapper.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// RequestLogger tags every request with an id and logs method, path, status
// and latency once the handler returns.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(HeaderRequestID, id)

		// Get client IP (prefer X-Forwarded-For)
		clientIP := r.RemoteAddr
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			clientIP = strings.TrimSpace(strings.Split(xff, ",")[0])
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		log := logger.WithRequestID(id)
		ev := log.Info()
		if rw.statusCode >= 400 {
			ev = log.Warn().Str("body", strings.TrimSpace(rw.body.String()))
		}
		ev.Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("client", clientIP).
			Int("status", rw.statusCode).
			Dur("latency", time.Since(start)).
			Msg("Request handled")
	})
}

// CORS allows the dashboard front end to call the API from another origin.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(constants.HeaderAccessControlAllowOrigin, "*")
		w.Header().Set(constants.HeaderAccessControlAllowHeaders, "Content-Type, "+HeaderRequestID)
		w.Header().Set(constants.HeaderAccessControlAllowMethods, "GET, PUT, DELETE, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
