// Package code generates and validates registration codes.
//
// A registration code is exactly [Length] characters drawn uniformly from
// [Alphabet] (upper-case ASCII letters and digits). Codes are the payload of
// the pass QR, the lookup key for check-in and the suffix of delivered
// attachment names, so the format is fixed.
//
// Uniqueness is not a property of a single draw. Use [Unique] to retry
// generation against a store until an unused code is found.
package code

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/eventpass/pkg/errors"
)

const (
	// Alphabet is the symbol set codes are drawn from.
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// Length is the number of symbols in a code.
	Length = 12

	// DefaultMaxAttempts bounds the collision retry loop in Unique.
	DefaultMaxAttempts = 8
)

// rejection threshold: the largest multiple of len(Alphabet) that fits in a byte.
// Bytes at or above it are discarded so every symbol is equally likely.
const cutoff = 256 - 256%len(Alphabet)

// Generator draws codes from a byte source.
type Generator struct {
	src io.Reader
}

// NewGenerator returns a generator reading randomness from r.
// A nil reader selects crypto/rand.
func NewGenerator(r io.Reader) *Generator {
	if r == nil {
		r = rand.Reader
	}
	return &Generator{src: r}
}

// Next returns a fresh code.
func (g *Generator) Next() (string, error) {
	out := make([]byte, 0, Length)
	buf := make([]byte, Length*2)
	for len(out) < Length {
		if _, err := io.ReadFull(g.src, buf); err != nil {
			return "", errors.Wrap(errors.ErrCodeInternal, err, "read random bytes")
		}
		for _, b := range buf {
			if int(b) >= cutoff {
				continue
			}
			out = append(out, Alphabet[int(b)%len(Alphabet)])
			if len(out) == Length {
				break
			}
		}
	}
	return string(out), nil
}

var defaultGenerator = NewGenerator(nil)

// Generate returns a fresh code from the system CSPRNG.
// It panics only if the operating system entropy source fails.
func Generate() string {
	c, err := defaultGenerator.Next()
	if err != nil {
		panic(fmt.Sprintf("code: %v", err))
	}
	return c
}

// Valid reports whether s is a well-formed code.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(Alphabet, rune(s[i])) {
			return false
		}
	}
	return true
}

// Normalize trims surrounding whitespace and upper-cases user-entered codes.
// Scanners and manual entry routinely add trailing newlines or lower-case input.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ExistsFunc reports whether a code is already allocated.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// Unique draws codes from g until exists reports an unused one.
// After maxAttempts collisions it returns an error with code CODE_EXHAUSTED.
// A maxAttempts of zero or less uses DefaultMaxAttempts.
func Unique(ctx context.Context, g *Generator, exists ExistsFunc, maxAttempts int) (string, error) {
	if g == nil {
		g = defaultGenerator
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	for range maxAttempts {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		c, err := g.Next()
		if err != nil {
			return "", err
		}
		taken, err := exists(ctx, c)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeInternal, err, "check code availability")
		}
		if !taken {
			return c, nil
		}
	}
	return "", errors.New(errors.ErrCodeCodeExhausted, "no unused code after %d attempts", maxAttempts)
}
