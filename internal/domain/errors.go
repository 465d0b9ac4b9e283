package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without
// leaking internal state (NotFound and Expired share one user-facing
// message at the transport layer).
var (
	ErrBadRequest      = errors.New("bad request")
	ErrNotFound        = errors.New("not found")
	ErrExpired         = errors.New("expired")
	ErrMismatch        = errors.New("mismatch")
	ErrDeliveryTimeout = errors.New("delivery timed out")
	ErrDeliveryFailed  = errors.New("delivery failed")
)
