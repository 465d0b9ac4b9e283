package http

import (
	"github.com/go-verify-api/internal/delivery"
	"github.com/go-verify-api/internal/otp"
)

// Deps holds the infrastructure dependencies the router needs to assemble
// the verification service.
type Deps struct {
	Store     *otp.Store
	Generator *otp.CodeGenerator
	Gateway   *delivery.Gateway
}
