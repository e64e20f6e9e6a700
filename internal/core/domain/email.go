package domain

import (
	"net/mail"
	"strings"
)

// CanonicalEmail normalizes an address for use as a store key: trimmed and
// case-folded, so "A@X.com " and "a@x.com" are the same identity.
func CanonicalEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether the address is a plain, syntactically valid
// mailbox (no display name, no group syntax).
func ValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
