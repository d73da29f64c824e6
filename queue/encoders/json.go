package encoders

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// JSON encodes message bodies with encoding/json.
type JSON struct{}

func (JSON) Encode(i any) ([]byte, error) {
	b, err := json.Marshal(i)
	return b, errors.Wrapf(err, "marshal %T", i)
}

func (JSON) ContentType() string {
	return "application/json"
}
