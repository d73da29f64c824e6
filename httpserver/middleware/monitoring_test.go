package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pure-golang/resume-mailer/logger"
)

func TestMonitoring_AttachesLoggerAndRequestID(t *testing.T) {
	var captured *slog.Logger
	handler := Monitoring(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = logger.FromContext(r.Context())
		w.WriteHeader(http.StatusCreated)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.NotEmpty(t, rr.Header().Get(RequestIDHeader))
	require.NotNil(t, captured)
}

func TestMonitoring_KeepsIncomingRequestID(t *testing.T) {
	handler := Monitoring(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, "req-42", rr.Header().Get(RequestIDHeader))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMonitoring_BodyReachesHandlerUntouched(t *testing.T) {
	payload := "app_password=abcd&subject=hi"
	var got string
	handler := Monitoring(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got = string(b)
		_, _ = w.Write([]byte("done"))
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/send-email", strings.NewReader(payload)))

	assert.Equal(t, payload, got)
	assert.Equal(t, "done", rr.Body.String())
}

func TestMonitoring_DoesNotLogSecrets(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	handler := Monitoring(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/send-email", strings.NewReader("app_password=topsecret"))
	req.Header.Set("Authorization", "Basic c2VjcmV0")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, buf.String(), "request served")
	assert.NotContains(t, buf.String(), "topsecret")
	assert.NotContains(t, buf.String(), "c2VjcmV0")
}

func TestMonitoring_ChiRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Monitoring)
	var pattern string
	r.Get("/api/drafts/{id}", func(w http.ResponseWriter, r *http.Request) {
		pattern = chi.RouteContext(r.Context()).RoutePattern()
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/drafts/7", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "/api/drafts/{id}", pattern)
}

func TestStatefulRespWriter(t *testing.T) {
	rr := httptest.NewRecorder()
	w := newStatefulRespWriter(rr)

	w.WriteHeader(http.StatusAccepted)
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte("abc"))
	_, _ = w.Write([]byte("de"))
	w.Flush()

	assert.Equal(t, http.StatusAccepted, w.status)
	assert.Equal(t, 5, w.size)
	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Same(t, http.ResponseWriter(rr), w.Unwrap())
}
