// Package intent provides durable correlation tokens for interactive
// effects. A token stands in for the callback a naive design would embed in
// the effect value: tokens are value-comparable, serializable, and safe to
// replay across the UI boundary, where closures are none of those.
package intent

import "github.com/google/uuid"

// Token is an opaque identifier minted when an interactive effect is
// constructed and consumed when its resolution event is processed.
type Token string

// NewToken mints a fresh token.
func NewToken() Token {
	return Token(uuid.New().String())
}

// Correlator tracks the set of tokens still awaiting a user response.
//
// IMPORTANT:
// A Correlator is **intentionally NOT thread-safe**. It is owned by a single
// container's transition scope and must only be touched from transitions,
// which the container already serializes onto one goroutine. Sharing it
// across goroutines is undefined behavior.
type Correlator struct {
	outstanding map[Token]struct{}
}

func NewCorrelator() *Correlator {
	return &Correlator{outstanding: map[Token]struct{}{}}
}

// Issue mints a token and records it as outstanding.
func (c *Correlator) Issue() Token {
	tok := NewToken()
	c.outstanding[tok] = struct{}{}
	return tok
}

// Resolve consumes tok. It reports false when the token is stale or unknown,
// in which case the caller must discard the resolution without mutating
// state. Consuming is what makes duplicate taps idempotent: the second
// resolution of the same dialog finds its token already gone.
func (c *Correlator) Resolve(tok Token) bool {
	if _, ok := c.outstanding[tok]; !ok {
		return false
	}
	delete(c.outstanding, tok)
	return true
}

// Pending reports whether tok is still awaiting resolution.
func (c *Correlator) Pending(tok Token) bool {
	_, ok := c.outstanding[tok]
	return ok
}

// Drop invalidates tok without treating it as resolved, e.g. when a newer
// navigation dismissed the dialog that issued it.
func (c *Correlator) Drop(tok Token) {
	delete(c.outstanding, tok)
}

// Clear invalidates every outstanding token.
func (c *Correlator) Clear() {
	c.outstanding = map[Token]struct{}{}
}
