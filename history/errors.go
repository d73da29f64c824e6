package history

import "github.com/pkg/errors"

var (
	ErrNoClient      = errors.New("client key is required")
	ErrNoAccount     = errors.New("account is required")
	ErrDraftNotFound = errors.New("draft not found")
)
