// Package api exposes the mailer over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pure-golang/resume-mailer/compose"
	"github.com/pure-golang/resume-mailer/dispatch"
	"github.com/pure-golang/resume-mailer/history"
	"github.com/pure-golang/resume-mailer/httpserver/middleware"
)

// Sender runs one send request.
type Sender interface {
	Send(ctx context.Context, req compose.Request) (dispatch.Result, error)
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

var _ Sender = (*dispatch.Service)(nil)

// formOverhead is allowed on top of the attachment ceiling for text fields
// and multipart framing.
const formOverhead int64 = 1 << 20

// Handler serves the mailer HTTP endpoints.
type Handler struct {
	sender  Sender
	history *history.Store
	drafts  *history.Drafts
	store   Pinger
	limits  compose.Limits
}

// NewHandler creates a Handler. Zero limits fall back to compose.DefaultLimits.
func NewHandler(sender Sender, hist *history.Store, drafts *history.Drafts, store Pinger, limits compose.Limits) *Handler {
	if limits.MaxAttachmentBytes <= 0 {
		limits = compose.DefaultLimits()
	}
	return &Handler{
		sender:  sender,
		history: hist,
		drafts:  drafts,
		store:   store,
		limits:  limits,
	}
}

// Routes returns the router with monitoring and panic recovery installed.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Monitoring, middleware.Recovery)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/healthz", h.health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/send-email", h.sendEmail)

		r.Get("/send-history", h.listHistory)
		r.Delete("/send-history", h.clearHistory)
		r.Post("/send-history/conflicts", h.conflicts)

		r.Get("/drafts", h.getDraft)
		r.Put("/drafts", h.saveDraft)
		r.Delete("/drafts", h.clearDraft)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		if err := h.store.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
