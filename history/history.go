// Package history remembers which recipients an account has already mailed
// and keeps the account's unsent form as a draft.
package history

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/pure-golang/resume-mailer/kv"
)

const historyKeyPrefix = "history:"

// Record is the last successful send from an account to a recipient.
type Record struct {
	Account   string    `json:"account"`
	Recipient string    `json:"recipient"`
	LastSent  time.Time `json:"lastSent"`
}

// Store keeps one hash per owner: recipient -> last send time.
type Store struct {
	kv kv.Store
}

func NewStore(store kv.Store) *Store {
	return &Store{kv: store}
}

// Record sets the last send time of every recipient to at.
func (s *Store) Record(ctx context.Context, owner Owner, recipients []string, at time.Time) error {
	if err := owner.validate(); err != nil {
		return err
	}
	if len(recipients) == 0 {
		return nil
	}

	stamp := at.UTC().Format(time.RFC3339Nano)
	values := make(map[string]interface{}, len(recipients))
	for _, r := range recipients {
		values[r] = stamp
	}

	if err := s.kv.HSetValues(ctx, owner.key(historyKeyPrefix), values); err != nil {
		return errors.Wrap(err, "failed to record send history")
	}
	return nil
}

// List returns the owner's records, most recent first. A non-empty query
// keeps only recipients containing it, case-insensitively.
func (s *Store) List(ctx context.Context, owner Owner, query string) ([]Record, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}

	all, err := s.kv.HGetAll(ctx, owner.key(historyKeyPrefix))
	if err != nil {
		return nil, errors.Wrap(err, "failed to load send history")
	}

	query = strings.ToLower(strings.TrimSpace(query))
	records := make([]Record, 0, len(all))
	for recipient, stamp := range all {
		if query != "" && !strings.Contains(strings.ToLower(recipient), query) {
			continue
		}
		rec, err := parseRecord(owner.Account, recipient, stamp)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].LastSent.Equal(records[j].LastSent) {
			return records[i].LastSent.After(records[j].LastSent)
		}
		return records[i].Recipient < records[j].Recipient
	})
	return records, nil
}

// Conflicts returns the records of recipients the owner has mailed before,
// in the order they were asked for.
func (s *Store) Conflicts(ctx context.Context, owner Owner, recipients []string) ([]Record, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}

	all, err := s.kv.HGetAll(ctx, owner.key(historyKeyPrefix))
	if err != nil {
		return nil, errors.Wrap(err, "failed to load send history")
	}

	seen := make(map[string]struct{}, len(recipients))
	records := make([]Record, 0)
	for _, r := range recipients {
		r = strings.TrimSpace(r)
		stamp, ok := all[r]
		if !ok {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}

		rec, err := parseRecord(owner.Account, r, stamp)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Clear forgets every record of the owner.
func (s *Store) Clear(ctx context.Context, owner Owner) error {
	if err := owner.validate(); err != nil {
		return err
	}
	if err := s.kv.Delete(ctx, owner.key(historyKeyPrefix)); err != nil {
		return errors.Wrap(err, "failed to clear send history")
	}
	return nil
}

func parseRecord(account, recipient, stamp string) (Record, error) {
	at, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return Record{}, errors.Wrapf(err, "corrupt history entry for %q", recipient)
	}
	return Record{Account: account, Recipient: recipient, LastSent: at}, nil
}
