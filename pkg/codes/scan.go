package codes

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// BadgeOffset separates staff badges from member numbers on the shared scanner stream.
const BadgeOffset int64 = 100000000

// ScanKind classifies raw scanner input.
type ScanKind string

const (
	ScanKindStaff      ScanKind = "staff"
	ScanKindClientCode ScanKind = "client_code"
)

// ErrMalformed is returned for input that is empty after trimming.
var ErrMalformed = errors.New("codes: empty scan input")

// Scan is the classified form of a raw scan.
type Scan struct {
	Kind        ScanKind
	Key         string
	StaffNumber int
}

// ResolveScan classifies raw scanner or keyboard input. Digit-only values at or above
// BadgeOffset are staff badges and normalise to their staff code; everything else is a
// client code used verbatim after trimming.
func ResolveScan(raw string) (Scan, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Scan{}, ErrMalformed
	}
	if isDigits(trimmed) {
		value, err := strconv.ParseInt(trimmed, 10, 64)
		if err == nil && value >= BadgeOffset {
			number := int(value - BadgeOffset)
			return Scan{Kind: ScanKindStaff, Key: StaffCode(number), StaffNumber: number}, nil
		}
	}
	return Scan{Kind: ScanKindClientCode, Key: StripDisplayFormat(trimmed)}, nil
}

// StaffCode renders the canonical staff code: "s" plus the number zero padded to at least
// three digits. Larger numbers keep every digit.
func StaffCode(number int) string {
	return fmt.Sprintf("s%03d", number)
}

// BadgeNumber encodes a staff number as its scannable badge value.
func BadgeNumber(number int) int64 {
	return BadgeOffset + int64(number)
}

// ParseStaffCode accepts "s022", "S22" or "22" and returns the staff number.
func ParseStaffCode(code string) (int, error) {
	trimmed := strings.TrimSpace(code)
	trimmed = strings.TrimPrefix(strings.TrimPrefix(trimmed, "s"), "S")
	if trimmed == "" || !isDigits(trimmed) {
		return 0, fmt.Errorf("invalid staff code %q", code)
	}
	number, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid staff code %q: %w", code, err)
	}
	return number, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
