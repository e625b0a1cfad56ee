package services

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ctxKeyRequestID struct{}

const requestIDHeader = "X-Request-Id"

// RequestID returns the id assigned to the request, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID{}).(string)
	return id
}

func requestIDMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		h.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID{}, id)))
	})
}

type responseRecorder struct {
	http.ResponseWriter
	status int
	b      int
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.status = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *responseRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(p)
	r.b += n
	return n, err
}

func logMiddleware(log logrus.FieldLogger, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rr := &responseRecorder{ResponseWriter: w}
		reqLog := log.WithFields(logrus.Fields{
			"http.req.path":   r.URL.Path,
			"http.req.method": r.Method,
			"http.req.id":     RequestID(r.Context()),
			"remoteAddr":      r.RemoteAddr,
			"userAgent":       r.UserAgent(),
		})
		reqLog.Debug("request started")
		defer func() {
			reqLog.WithFields(logrus.Fields{
				"http.resp.took_ms": int64(time.Since(start) / time.Millisecond),
				"http.resp.status":  rr.status,
				"http.resp.bytes":   rr.b,
			}).Info("request complete")
		}()
		h.ServeHTTP(rr, r)
	})
}
