package helpers

import "strings"

// NilIfEmpty returns nil for blank strings so they are stored as NULL.
func NilIfEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
