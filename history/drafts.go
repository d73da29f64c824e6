package history

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/pure-golang/resume-mailer/kv"
)

const draftKeyPrefix = "email-form-data:"

// Draft is the unsent state of the send form.
type Draft struct {
	Recipients  []string          `json:"recipients,omitempty"`
	Subject     string            `json:"subject,omitempty"`
	Body        string            `json:"body,omitempty"`
	ResumeData  string            `json:"resumeData,omitempty"` // data URL
	ResumeName  string            `json:"resumeName,omitempty"`
	Attachments []DraftAttachment `json:"attachments,omitempty"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type DraftAttachment struct {
	Name string `json:"name"`
	Data string `json:"data"` // data URL
}

type DraftConfig struct {
	TTL time.Duration `envconfig:"HISTORY_DRAFT_TTL" default:"720h"` // 0 keeps drafts forever
}

// Drafts stores one JSON draft per owner.
type Drafts struct {
	kv  kv.Store
	ttl time.Duration
}

func NewDrafts(store kv.Store, cfg DraftConfig) *Drafts {
	return &Drafts{kv: store, ttl: cfg.TTL}
}

func (d *Drafts) Get(ctx context.Context, owner Owner) (Draft, error) {
	if err := owner.validate(); err != nil {
		return Draft{}, err
	}

	raw, err := d.kv.Get(ctx, owner.key(draftKeyPrefix))
	if kv.IsNotFound(err) {
		return Draft{}, ErrDraftNotFound
	}
	if err != nil {
		return Draft{}, errors.Wrap(err, "failed to load draft")
	}

	var draft Draft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return Draft{}, errors.Wrap(err, "failed to decode draft")
	}
	return draft, nil
}

// Save replaces the owner's draft and stamps UpdatedAt.
func (d *Drafts) Save(ctx context.Context, owner Owner, draft Draft) (Draft, error) {
	if err := owner.validate(); err != nil {
		return Draft{}, err
	}

	draft.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(draft)
	if err != nil {
		return Draft{}, errors.Wrap(err, "failed to encode draft")
	}
	if err := d.kv.Set(ctx, owner.key(draftKeyPrefix), raw, d.ttl); err != nil {
		return Draft{}, errors.Wrap(err, "failed to save draft")
	}
	return draft, nil
}

func (d *Drafts) Clear(ctx context.Context, owner Owner) error {
	if err := owner.validate(); err != nil {
		return err
	}
	if err := d.kv.Delete(ctx, owner.key(draftKeyPrefix)); err != nil {
		return errors.Wrap(err, "failed to clear draft")
	}
	return nil
}
