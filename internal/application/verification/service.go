// Package verification orchestrates the OTP lifecycle: issue a code, store
// it, hand it to the delivery channel; later check a presented candidate
// and consume the record on success.
package verification

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/go-verify-api/internal/delivery"
	"github.com/go-verify-api/internal/domain"
	"github.com/go-verify-api/internal/pkg/id"
)

// codeFormat gates candidates before they touch the store: exactly six
// ASCII decimal digits. Anything else is a format error, not a mismatch.
var codeFormat = regexp.MustCompile(`^[0-9]{6}$`)

// Store is the minimal interface the service requires from the OTP store.
type Store interface {
	Put(identity string, rec *domain.OTPRecord)
	ConsumeIfValid(identity, candidate string) domain.VerifyOutcome
}

// Generator produces verification code values.
type Generator interface {
	Generate() (string, error)
}

// Gateway hands a code to the out-of-band delivery channel.
type Gateway interface {
	Send(ctx context.Context, identity, code string) (delivery.Outcome, error)
}

// IssueResult reports what happened to an issue request. Code is populated
// only when the service was constructed with EchoCode — a non-production
// convenience for environments without a working delivery channel.
type IssueResult struct {
	Delivered bool
	Code      string
}

type Service interface {
	IssueCode(ctx context.Context, identity string) (IssueResult, error)
	Verify(ctx context.Context, identity, candidate string) (domain.VerifyOutcome, error)
}

// ServiceDeps bundles the collaborators a Service needs.
type ServiceDeps struct {
	Store     Store
	Generator Generator
	Gateway   Gateway
	TTL       time.Duration
	// EchoCode puts the generated code in the IssueResult. Must never be
	// enabled in production; main refuses to turn it on there.
	EchoCode bool
}

type service struct {
	store     Store
	generator Generator
	gateway   Gateway
	ttl       time.Duration
	echoCode  bool
}

func NewService(deps ServiceDeps) Service {
	return &service{
		store:     deps.Store,
		generator: deps.Generator,
		gateway:   deps.Gateway,
		ttl:       deps.TTL,
		echoCode:  deps.EchoCode,
	}
}

// NormalizeIdentity canonicalizes the store key: trimmed and case-folded.
// Format validation beyond non-emptiness belongs to the transport layer.
func NormalizeIdentity(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// IssueCode generates a fresh code for identity, stores it (replacing any
// live record — resend semantics), and attempts delivery. The record is
// kept on delivery failure so a resend request can replace it; the code
// value itself never appears in errors or logs.
func (s *service) IssueCode(ctx context.Context, rawIdentity string) (IssueResult, error) {
	identity := NormalizeIdentity(rawIdentity)
	if identity == "" {
		return IssueResult{}, fmt.Errorf("identity required: %w", domain.ErrBadRequest)
	}

	code, err := s.generator.Generate()
	if err != nil {
		return IssueResult{}, err
	}

	now := time.Now()
	rec, err := domain.NewOTPRecord(id.New(), code, now, s.ttl)
	if err != nil {
		return IssueResult{}, err
	}
	s.store.Put(identity, rec)

	res := IssueResult{}
	if s.echoCode {
		res.Code = code
	}

	outcome, err := s.gateway.Send(ctx, identity, code)
	switch outcome {
	case delivery.Delivered:
		slog.Info("verification code delivered", "issuance_id", rec.ID, "identity", identity)
		res.Delivered = true
		return res, nil
	case delivery.TimedOut:
		slog.Warn("verification code delivery timed out", "issuance_id", rec.ID, "identity", identity)
		return res, fmt.Errorf("send code: %w", domain.ErrDeliveryTimeout)
	default:
		slog.Warn("verification code delivery failed", "issuance_id", rec.ID, "identity", identity, "err", err)
		return res, fmt.Errorf("send code: %w", domain.ErrDeliveryFailed)
	}
}

// Verify checks candidate against the live record for identity. Store
// outcomes are returned as values; only malformed input is an error.
func (s *service) Verify(ctx context.Context, rawIdentity, candidate string) (domain.VerifyOutcome, error) {
	identity := NormalizeIdentity(rawIdentity)
	if identity == "" {
		return 0, fmt.Errorf("identity required: %w", domain.ErrBadRequest)
	}
	if !codeFormat.MatchString(candidate) {
		return 0, fmt.Errorf("code must be exactly 6 digits: %w", domain.ErrBadRequest)
	}

	outcome := s.store.ConsumeIfValid(identity, candidate)
	slog.Info("verification attempt", "identity", identity, "outcome", outcome.String())
	return outcome, nil
}
