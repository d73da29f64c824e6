package api

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/pure-golang/resume-mailer/history"
	"github.com/pure-golang/resume-mailer/logger"
)

type conflictsRequest struct {
	Account    string   `json:"account"`
	Recipients []string `json:"recipients"`
}

func (h *Handler) listHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	o, err := owner(w, r, q.Get("account"), false)
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	records, err := h.history.List(r.Context(), o, q.Get("q"))
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) clearHistory(w http.ResponseWriter, r *http.Request) {
	o, err := owner(w, r, r.URL.Query().Get("account"), false)
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	if err := h.history.Clear(r.Context(), o); err != nil {
		h.storeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) conflicts(w http.ResponseWriter, r *http.Request) {
	var body conflictsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, formOverhead)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	o, err := owner(w, r, body.Account, false)
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	records, err := h.history.Conflicts(r.Context(), o, body.Recipients)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) getDraft(w http.ResponseWriter, r *http.Request) {
	o, err := owner(w, r, r.URL.Query().Get("account"), false)
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	draft, err := h.drafts.Get(r.Context(), o)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (h *Handler) saveDraft(w http.ResponseWriter, r *http.Request) {
	o, err := owner(w, r, r.URL.Query().Get("account"), true)
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	// Drafts carry files as data URLs, a third larger than the raw bytes.
	limit := 2*h.limits.MaxAttachmentBytes + formOverhead

	var draft history.Draft
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit)).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if _, err := h.drafts.Save(r.Context(), o, draft); err != nil {
		h.storeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) clearDraft(w http.ResponseWriter, r *http.Request) {
	o, err := owner(w, r, r.URL.Query().Get("account"), false)
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	if err := h.drafts.Clear(r.Context(), o); err != nil {
		h.storeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) storeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, history.ErrNoClient):
		writeError(w, http.StatusUnauthorized, "Client key is required")
	case errors.Is(err, errInvalidClientKey):
		writeError(w, http.StatusBadRequest, "Invalid client key")
	case errors.Is(err, history.ErrNoAccount):
		writeError(w, http.StatusBadRequest, "Account is required")
	case errors.Is(err, history.ErrDraftNotFound):
		writeError(w, http.StatusNotFound, "Draft not found")
	default:
		logger.FromContextWithErr(r.Context(), err).Error("history store failed")
		writeFailure(w, "Internal server error", 0)
	}
}
