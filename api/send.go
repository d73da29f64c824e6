package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/pure-golang/resume-mailer/compose"
	"github.com/pure-golang/resume-mailer/dispatch"
	"github.com/pure-golang/resume-mailer/history"
	"github.com/pure-golang/resume-mailer/logger"
)

// maxFormMemory is kept in memory while parsing; larger parts spill to disk.
const maxFormMemory = 32 << 20

type sendSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

type sendResponse struct {
	Status   string             `json:"status"`
	Message  string             `json:"message"`
	Results  []dispatch.Outcome `json:"results"`
	Summary  sendSummary        `json:"summary"`
	Duration string             `json:"duration"`
}

func (h *Handler) sendEmail(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	client, err := clientKey(w, r, true)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid client key")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.limits.MaxAttachmentBytes+formOverhead)
	err = r.ParseMultipartForm(maxFormMemory)
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	var tooLarge *http.MaxBytesError
	switch {
	case err == nil, errors.Is(err, http.ErrNotMultipart):
	case errors.As(err, &tooLarge), strings.Contains(err.Error(), "request body too large"):
		writeError(w, http.StatusBadRequest, compose.ErrAttachmentTooLarge.Message)
		return
	default:
		logger.FromContextWithErr(ctx, err).Info("malformed send request")
		writeError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	req := compose.FromForm(r.MultipartForm)
	log := logger.FromContext(ctx).With("account", logger.Account(req.Sender))
	ctx = logger.NewContext(ctx, log)

	res, err := h.sender.Send(ctx, req)
	if err != nil {
		var ve *compose.ValidationError
		if errors.As(err, &ve) {
			log.Info("send request rejected", "reason", ve.Code)
			writeError(w, http.StatusBadRequest, ve.Message)
			return
		}
		logger.FromContextWithErr(ctx, err).Error("send request failed")
		writeFailure(w, err.Error(), time.Since(start))
		return
	}

	if res.Successful > 0 && h.history != nil {
		if err := h.history.Record(ctx, history.Owner{Client: client, Account: req.Sender}, res.SucceededRecipients(), time.Now()); err != nil {
			logger.FromContextWithErr(ctx, err).Warn("failed to record send history")
		}
	}

	log.Info("batch completed",
		"batch_id", res.ID.String(),
		"total", res.Total,
		"successful", res.Successful,
		"failed", res.Failed,
	)

	writeJSON(w, http.StatusOK, sendResponse{
		Status:  "completed",
		Message: fmt.Sprintf("Sent %d of %d emails", res.Successful, res.Total),
		Results: res.Outcomes,
		Summary: sendSummary{
			Total:      res.Total,
			Successful: res.Successful,
			Failed:     res.Failed,
		},
		Duration: formatDuration(time.Since(start)),
	})
}
