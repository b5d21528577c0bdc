package ratelimit

import (
	"fmt"
	"time"
)

// Identifier types used to key rate-limit records.
const (
	IdentifierUser = "user"
	IdentifierIP   = "ip"
)

// Key identifies one rate-limited caller for one function.
type Key struct {
	Identifier     string
	IdentifierType string
	Function       string
}

// String renders the key as "function:type:identifier".
func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%s", k.Function, k.IdentifierType, k.Identifier)
}

// Rule is the allowed number of requests inside a trailing window.
type Rule struct {
	Max    int
	Window time.Duration
}

// Record is one admitted request.
type Record struct {
	Key       Key
	Timestamp time.Time
	Metadata  map[string]string
}

// Decision is the outcome of a rate-limit check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
	// FailedOpen is set when the store was unreachable and the request was admitted anyway.
	FailedOpen bool
}
