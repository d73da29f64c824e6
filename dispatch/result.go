package dispatch

import (
	"time"

	"github.com/google/uuid"
)

// Status is the result of one recipient's delivery attempt.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Detail messages recorded in outcomes.
const (
	DetailSent          = "Email sent successfully"
	DetailBatchDeadline = "Batch deadline exceeded"
)

// Outcome is the recorded result for one recipient within a batch.
type Outcome struct {
	Recipient string `json:"recipient"`
	Status    Status `json:"status"`
	Detail    string `json:"message"`
}

// Result summarizes one batch. Outcomes are in recipient order.
type Result struct {
	ID         uuid.UUID
	Outcomes   []Outcome
	Total      int
	Successful int
	Failed     int
	Elapsed    time.Duration
}

// Summarize aggregates outcomes into a Result.
func Summarize(outcomes []Outcome, elapsed time.Duration) Result {
	successful := 0
	for _, o := range outcomes {
		if o.Status == StatusSuccess {
			successful++
		}
	}

	return Result{
		ID:         uuid.New(),
		Outcomes:   outcomes,
		Total:      len(outcomes),
		Successful: successful,
		Failed:     len(outcomes) - successful,
		Elapsed:    elapsed,
	}
}

// SucceededRecipients returns the recipients that were delivered, in order.
func (r Result) SucceededRecipients() []string {
	list := make([]string, 0, r.Successful)
	for _, o := range r.Outcomes {
		if o.Status == StatusSuccess {
			list = append(list, o.Recipient)
		}
	}
	return list
}
