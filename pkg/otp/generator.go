package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
)

// Generator produces one-time verification codes for email confirmation.
type Generator interface {
	RandomCode() (string, error)
}

const (
	codeMin  = 100000
	codeSpan = 900000
)

// CodeGenerator draws a uniformly random 6-digit decimal code in
// [100000, 999999] from crypto/rand.
type CodeGenerator struct{}

func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{}
}

func (g *CodeGenerator) RandomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", fmt.Errorf("random code generation failed: %w", err)
	}

	return strconv.FormatInt(codeMin+n.Int64(), 10), nil
}
