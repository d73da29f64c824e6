package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecipients(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Recipients
	}{
		{
			name: "comma separated",
			raw:  "a@x.com,b@x.com",
			want: Recipients{"a@x.com", "b@x.com"},
		},
		{
			name: "newlines and spaces",
			raw:  " a@x.com \n\n b@x.com\r\nc@x.com ",
			want: Recipients{"a@x.com", "b@x.com", "c@x.com"},
		},
		{
			name: "duplicates keep first occurrence",
			raw:  "b@x.com, a@x.com, b@x.com",
			want: Recipients{"b@x.com", "a@x.com"},
		},
		{
			name: "case sensitive",
			raw:  "A@x.com,a@x.com",
			want: Recipients{"A@x.com", "a@x.com"},
		},
		{
			name: "alias tags are distinct",
			raw:  "a+x@x.com,a@x.com",
			want: Recipients{"a+x@x.com", "a@x.com"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRecipients(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRecipients_Empty(t *testing.T) {
	for _, raw := range []string{"", "   ", ",,,", " , \n ,\r\n"} {
		got, err := ParseRecipients(raw)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, ErrEmptyRecipients, "raw=%q", raw)
		assert.True(t, IsValidation(err))
	}
}
