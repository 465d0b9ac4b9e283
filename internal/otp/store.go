package otp

import (
	"hash/fnv"
	"sync"
	"time"

	"github.com/go-verify-api/internal/domain"
)

// numShards spreads identities over independent mutexes so operations on
// different identities proceed in parallel. 32 is plenty at expected scale.
const numShards = 32

// DefaultMaxAttempts invalidates a record after this many wrong candidates.
const DefaultMaxAttempts = 5

type shard struct {
	mu      sync.Mutex
	records map[string]*domain.OTPRecord
}

// Store is the concurrency-safe in-memory OTP store. It holds at most one
// live record per identity. All per-identity operations run under that
// identity's shard lock, so a candidate is always checked against exactly
// one well-defined record, and two racing consumers of the same code can
// never both win.
type Store struct {
	shards      [numShards]shard
	maxAttempts int

	now func() time.Time // overridable in tests
}

func NewStore(maxAttempts int) *Store {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	s := &Store{maxAttempts: maxAttempts, now: time.Now}
	for i := range s.shards {
		s.shards[i].records = make(map[string]*domain.OTPRecord)
	}
	return s
}

func (s *Store) shardFor(identity string) *shard {
	h := fnv.New32a()
	h.Write([]byte(identity))
	return &s.shards[h.Sum32()%numShards]
}

// Put unconditionally replaces any existing record for identity. A prior
// record becomes permanently invalid even if unexpired — this is the
// "resend" semantics.
func (s *Store) Put(identity string, rec *domain.OTPRecord) {
	sh := s.shardFor(identity)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.records[identity] = rec
}

// ConsumeIfValid checks candidate against the live record for identity as
// a single atomic unit. Outcomes, in priority order: no record → NotFound;
// past TTL → record removed, Expired; wrong code → attempts incremented
// (record removed once the attempt cap is hit), Mismatch; match → record
// removed (single use), Valid.
func (s *Store) ConsumeIfValid(identity, candidate string) domain.VerifyOutcome {
	sh := s.shardFor(identity)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	rec, ok := sh.records[identity]
	if !ok {
		return domain.VerifyNotFound
	}
	if rec.ExpiredAt(s.now()) {
		delete(sh.records, identity)
		return domain.VerifyExpired
	}
	if !rec.Match(candidate) {
		rec.Attempts++
		if rec.Attempts >= s.maxAttempts {
			delete(sh.records, identity)
		}
		return domain.VerifyMismatch
	}
	delete(sh.records, identity)
	return domain.VerifyValid
}

// Sweep removes every record with expiresAt <= now and returns how many it
// removed. Each shard is locked briefly in turn; request-path operations on
// other shards are unaffected.
func (s *Store) Sweep(now time.Time) int {
	removed := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for identity, rec := range sh.records {
			if !rec.ExpiresAt.After(now) {
				delete(sh.records, identity)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}

// Len returns the number of live records across all shards.
func (s *Store) Len() int {
	n := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		n += len(sh.records)
		sh.mu.Unlock()
	}
	return n
}
