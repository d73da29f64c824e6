package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/pure-golang/resume-mailer/history"
)

// ClientKeyHeader carries the random key that scopes history and drafts to
// one browser. The server issues it on the first send or draft save.
const ClientKeyHeader = "X-Client-Key"

var errInvalidClientKey = errors.New("invalid client key")

// clientKey reads the caller's key. With issue set, a caller without one gets
// a fresh key echoed in the response header.
func clientKey(w http.ResponseWriter, r *http.Request, issue bool) (string, error) {
	key := r.Header.Get(ClientKeyHeader)
	if key == "" {
		if !issue {
			return "", history.ErrNoClient
		}
		key = uuid.NewString()
		w.Header().Set(ClientKeyHeader, key)
		return key, nil
	}

	if _, err := uuid.Parse(key); err != nil {
		return "", errInvalidClientKey
	}
	return key, nil
}

func owner(w http.ResponseWriter, r *http.Request, account string, issue bool) (history.Owner, error) {
	key, err := clientKey(w, r, issue)
	if err != nil {
		return history.Owner{}, err
	}
	return history.Owner{Client: key, Account: account}, nil
}
