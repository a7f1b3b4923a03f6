// Package cache decides whether previously rendered catalog markup may be
// reused. The only freshness signal is the number of books in the catalog:
// a validation token is the decimal form of that count when it was issued.
package cache

import (
	"strconv"
	"time"
)

// FreshnessWindow is the expiration hint handed to the caller when cached
// content is still valid.
const FreshnessWindow = 100 * time.Second

// Token is an opaque validation token. On the wire it is the decimal string
// of the catalog cardinality, e.g. an HTTP ETag.
type Token string

// Validity is the outcome of a token check.
type Validity int

const (
	Invalid Validity = iota
	Valid
)

func (v Validity) String() string {
	if v == Valid {
		return "valid"
	}
	return "invalid"
}

// Check reports Valid iff stored is exactly the decimal string of
// cardinality. An absent token is Invalid.
func Check(stored Token, cardinality int) Validity {
	if stored == "" {
		return Invalid
	}
	if string(stored) == strconv.Itoa(cardinality) {
		return Valid
	}
	return Invalid
}

// Issue returns the token for the current cardinality.
func Issue(cardinality int) Token {
	return Token(strconv.Itoa(cardinality))
}
