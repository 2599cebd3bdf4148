// Package verification implements the short-lived numeric code primitive
// shared by email verification and two-factor login: code generation with a
// fixed validity window, and the pure validity check against a stored
// code+expiry pair.
package verification

import (
	"math/rand/v2"
	"strconv"
	"sync"
	"time"
)

// CodeTTL is the validity window for every issued code. The same policy
// constant applies to email-verification and 2FA codes.
const CodeTTL = 5 * time.Minute

const (
	codeMin  = 100000
	codeSpan = 900000
)

// Issuer generates 6-digit decimal codes uniformly drawn from
// [100000, 999999]. Collisions are acceptable for the code space and TTL.
//
// The random source is injected so tests can seed it; Generate is safe for
// concurrent use.
type Issuer struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewIssuer builds an Issuer over the given source.
func NewIssuer(src rand.Source) *Issuer {
	return &Issuer{rnd: rand.New(src)}
}

// NewDefaultIssuer builds an Issuer with a randomly seeded source.
func NewDefaultIssuer() *Issuer {
	return NewIssuer(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Generate returns a new 6-digit code.
func (i *Issuer) Generate() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return strconv.Itoa(codeMin + i.rnd.IntN(codeSpan))
}

// ExpiryFrom returns the expiry timestamp for a code issued at now.
func (i *Issuer) ExpiryFrom(now time.Time) time.Time {
	return now.Add(CodeTTL)
}

// IsValid reports whether provided matches the stored code within its
// validity window.
//
// It is false when any of the three inputs is absent (no code was ever
// issued, or it was already consumed), false when now is strictly after the
// expiry, and otherwise an exact string comparison with no normalization.
//
// The function is pure; callers are responsible for clearing the stored
// code after a successful or exhausted check, atomically with this check.
func IsValid(storedCode *string, storedExpiry *time.Time, providedCode string, now time.Time) bool {
	if storedCode == nil || storedExpiry == nil || providedCode == "" {
		return false
	}
	if now.After(*storedExpiry) {
		return false
	}
	return *storedCode == providedCode
}
