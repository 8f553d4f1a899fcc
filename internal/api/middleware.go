package api

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"fjacquet/pdf-ledger/internal/logging"
)

// RequestLogger logs one line per completed request.
func RequestLogger(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.Info("Request completed",
				logging.F(logging.FieldMethod, r.Method),
				logging.F(logging.FieldPath, r.URL.Path),
				logging.F(logging.FieldStatus, status),
				logging.F(logging.FieldDuration, time.Since(start).Milliseconds()),
				logging.F(logging.FieldRequestID, chimiddleware.GetReqID(r.Context())),
				logging.F("remote_addr", r.RemoteAddr))
		})
	}
}

// Recovery turns a handler panic into a 500 JSON error.
func Recovery(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error("Panic recovered",
					logging.F(logging.FieldError, fmt.Sprint(rec)),
					logging.F("stack", string(debug.Stack())),
					logging.F(logging.FieldMethod, r.Method),
					logging.F(logging.FieldPath, r.URL.Path))
				writeError(w, http.StatusInternalServerError, "internal server error", "")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
