package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
)

const (
	DefaultAccountNumberPrefix   = "1998"
	DefaultAccountNumberDigits   = 7
	DefaultAccountNumberAttempts = 10
)

// AccountNumberLookup reports whether an account of any kind already bears
// number.
type AccountNumberLookup interface {
	AccountNumberExists(ctx context.Context, number string) (bool, error)
}

// AccountNumberGenerator produces prefix + Digits random decimal digits, the
// first of which is non-zero. A returned number is free at the time of the
// lookup but is not reserved; callers persist it under a unique constraint.
type AccountNumberGenerator struct {
	Lookup      AccountNumberLookup
	Prefix      string
	Digits      int
	MaxAttempts int

	// Rand defaults to crypto/rand.Reader.
	Rand io.Reader
}

// Generate returns an unused account number or an *ExhaustedError after
// MaxAttempts collisions.
func (g *AccountNumberGenerator) Generate(ctx context.Context) (string, error) {
	attempts := g.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultAccountNumberAttempts
	}

	for range attempts {
		candidate, err := g.candidate()
		if err != nil {
			return "", err
		}

		exists, err := g.Lookup.AccountNumberExists(ctx, candidate)
		if err != nil {
			return "", storageErr(err)
		}
		if !exists {
			return candidate, nil
		}
	}

	return "", &ExhaustedError{Attempts: attempts}
}

func (g *AccountNumberGenerator) candidate() (string, error) {
	digits := g.Digits
	if digits <= 0 {
		digits = DefaultAccountNumberDigits
	}
	r := g.Rand
	if r == nil {
		r = rand.Reader
	}

	var sb strings.Builder
	sb.WriteString(g.Prefix)
	for i := range digits {
		// First digit 1-9 keeps the numeric part a fixed width.
		lo, span := int64(0), int64(10)
		if i == 0 {
			lo, span = 1, 9
		}
		n, err := rand.Int(r, big.NewInt(span))
		if err != nil {
			return "", fmt.Errorf("generate account number: %w", err)
		}
		sb.WriteByte(byte('0' + lo + n.Int64()))
	}
	return sb.String(), nil
}
