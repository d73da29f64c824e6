package compose

import (
	"regexp"
	"strings"
)

var recipientSeparator = regexp.MustCompile(`[\r\n,]`)

// Recipients is an ordered list of distinct addresses.
type Recipients []string

// ParseRecipients splits raw on commas and newlines, trims every token and
// drops empty tokens and exact duplicates, keeping the first occurrence.
// Addresses are compared as is: "A@x.com" and "a@x.com" are distinct.
func ParseRecipients(raw string) (Recipients, error) {
	tokens := recipientSeparator.Split(raw, -1)

	seen := make(map[string]struct{}, len(tokens))
	list := make(Recipients, 0, len(tokens))
	for _, token := range tokens {
		addr := strings.TrimSpace(token)
		if addr == "" {
			continue
		}
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		list = append(list, addr)
	}

	if len(list) == 0 {
		return nil, ErrEmptyRecipients
	}
	return list, nil
}
