package domain

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// OTPRecord is the unit of state held per identity: one short-lived,
// single-use verification code. Only a bcrypt hash of the code is kept;
// the cleartext value exists solely in the delivery payload.
type OTPRecord struct {
	ID        string // issuance ID (ULID), used for log correlation
	CodeHash  []byte
	IssuedAt  time.Time
	ExpiresAt time.Time
	Attempts  int // failed verification attempts against this record
}

// NewOTPRecord hashes code and builds a record valid for ttl from now.
func NewOTPRecord(id, code string, now time.Time, ttl time.Duration) (*OTPRecord, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &OTPRecord{
		ID:        id,
		CodeHash:  hash,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

// Match reports whether candidate is the code this record was issued for.
// bcrypt's comparison is constant-time with respect to the candidate.
func (r *OTPRecord) Match(candidate string) bool {
	return bcrypt.CompareHashAndPassword(r.CodeHash, []byte(candidate)) == nil
}

// ExpiredAt reports whether the record is past its TTL at the given instant.
func (r *OTPRecord) ExpiredAt(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// VerifyOutcome is the result of checking a candidate code against the store.
// These are expected, frequent branches and travel as values, not errors.
type VerifyOutcome int

const (
	// VerifyValid: the record existed, was live, and the codes matched.
	// The record has been consumed and can never match again.
	VerifyValid VerifyOutcome = iota
	// VerifyNotFound: no live record. Never issued, already consumed,
	// or already swept — deliberately not distinguished.
	VerifyNotFound
	// VerifyExpired: a record existed but its TTL had passed. It has
	// been removed as a side effect of the check.
	VerifyExpired
	// VerifyMismatch: a live record exists but the candidate is wrong.
	// The record stays so the user may retry until expiry.
	VerifyMismatch
)

func (o VerifyOutcome) String() string {
	switch o {
	case VerifyValid:
		return "valid"
	case VerifyNotFound:
		return "not_found"
	case VerifyExpired:
		return "expired"
	case VerifyMismatch:
		return "mismatch"
	default:
		return "unknown"
	}
}
