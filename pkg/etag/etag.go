// Package etag implements the version tokens used for optimistic concurrency
// control on studio entities. A token is the entity's updatedAt timestamp
// wrapped in double quotes, exactly as it travels in the ETag and If-Match
// headers. Tokens are opaque: they are minted from a timestamp, compared for
// equality, and passed back verbatim, never parsed.
package etag

import (
	"strings"
	"time"
)

// Token is an opaque version token for a single entity revision.
// The zero value means "no token" (new entity, or unconditional write).
type Token string

// None is the absent token.
const None Token = ""

// FromTime mints the token for an entity whose updatedAt is t. Both the
// server (when setting ETag) and the client (when deriving a token from a
// response body) must use this so the two representations stay identical.
func FromTime(t time.Time) Token {
	return Token(`"` + t.UTC().Format(time.RFC3339Nano) + `"`)
}

// FromHeader returns the token carried by an ETag or If-Match header value.
// The header value is taken verbatim; an empty header yields None.
func FromHeader(v string) Token {
	return Token(strings.TrimSpace(v))
}

// IsZero reports whether the token is absent.
func (t Token) IsZero() bool { return t == None }

// String returns the wire form of the token.
func (t Token) String() string { return string(t) }
