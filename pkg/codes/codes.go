// Package codes generates and classifies the opaque identifiers used at check-in:
// 32 character session codes and numeric staff badges.
package codes

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
)

const (
	letterCount = 16
	digitCount  = 16
	groupSize   = 4

	// Length is the size of a raw session code.
	Length = letterCount + digitCount
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// ErrWeakCode is returned by ValidateStrength for codes that do not match the generator shape.
var ErrWeakCode = errors.New("codes: code does not have 16 letters and 16 digits")

// Generator mints session codes: 16 letters and 16 digits shuffled together.
type Generator struct {
	random io.Reader
}

// NewGenerator builds a generator on top of the provided random source (crypto/rand when nil).
func NewGenerator(random io.Reader) *Generator {
	if random == nil {
		random = rand.Reader
	}
	return &Generator{random: random}
}

// Next returns a fresh raw code.
func (g *Generator) Next() (string, error) {
	out := make([]byte, Length)
	for i := 0; i < letterCount; i++ {
		n, err := g.intn(len(alphabet))
		if err != nil {
			return "", err
		}
		out[i] = alphabet[n]
	}
	for i := letterCount; i < Length; i++ {
		n, err := g.intn(10)
		if err != nil {
			return "", err
		}
		out[i] = byte('0' + n)
	}
	for i := Length - 1; i > 0; i-- {
		j, err := g.intn(i + 1)
		if err != nil {
			return "", err
		}
		out[i], out[j] = out[j], out[i]
	}
	return string(out), nil
}

func (g *Generator) intn(max int) (int, error) {
	n, err := rand.Int(g.random, big.NewInt(int64(max)))
	if err != nil {
		return 0, fmt.Errorf("read random: %w", err)
	}
	return int(n.Int64()), nil
}

// FormatForDisplay splits a raw code into dash separated groups of four.
// Values that are not raw session codes are returned unchanged.
func FormatForDisplay(code string) string {
	if len(code) != Length {
		return code
	}
	groups := make([]string, 0, Length/groupSize)
	for i := 0; i < Length; i += groupSize {
		groups = append(groups, code[i:i+groupSize])
	}
	return strings.Join(groups, "-")
}

// StripDisplayFormat reverses FormatForDisplay. Anything else is returned unchanged.
func StripDisplayFormat(code string) string {
	if len(code) != Length+Length/groupSize-1 || strings.Count(code, "-") != Length/groupSize-1 {
		return code
	}
	raw := strings.ReplaceAll(code, "-", "")
	if len(raw) != Length {
		return code
	}
	return raw
}

// ValidateStrength checks that a code has the generator's shape.
func ValidateStrength(code string) error {
	if len(code) != Length {
		return ErrWeakCode
	}
	var letters, digits int
	for _, r := range code {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			letters++
		}
	}
	if letters < letterCount || digits < digitCount {
		return ErrWeakCode
	}
	return nil
}
