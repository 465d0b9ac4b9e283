// Package otp holds the verification-code lifecycle core: code generation,
// the in-memory single-use store, and the background expiry sweeper.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// codeSpace is the number of possible codes: "000000" through "999999".
const codeSpace = 1_000_000

// CodeGenerator produces fixed-format six-digit verification codes.
type CodeGenerator struct{}

func NewCodeGenerator() *CodeGenerator { return &CodeGenerator{} }

// Generate returns a six-ASCII-digit code, uniformly distributed over the
// full 10^6 space. crypto/rand.Int rejects out-of-range draws, so there is
// no modulo bias. The code is a string: a numeric type would drop leading
// zeros.
func (g *CodeGenerator) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpace))
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
