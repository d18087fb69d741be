package repository

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// Property codes are CodePrefix followed by a fixed width sequence number.
const (
	CodePrefix = "DP"
	codeDigits = 5
	maxCode    = 99999
)

var codePattern = regexp.MustCompile(`^` + CodePrefix + `(\d{5})$`)

// ErrCodeSpaceExhausted is returned once DP99999 has been issued.
var ErrCodeSpaceExhausted = errors.New("property code sequence exhausted")

// ErrReservedCode rejects a caller supplied code in the generated shape.
// Only the server issues DP##### codes, so the sequence cannot be skipped
// ahead or collided with from outside.
var ErrReservedCode = errors.New("property code is reserved for generated codes")

// NextPropertyCode returns the code following latest, or the first code
// when latest is empty.
func NextPropertyCode(latest string) (string, error) {
	if latest == "" {
		return formatCode(1), nil
	}
	m := codePattern.FindStringSubmatch(latest)
	if m == nil {
		return "", fmt.Errorf("malformed property code %q", latest)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return "", fmt.Errorf("malformed property code %q: %w", latest, err)
	}
	if n >= maxCode {
		return "", ErrCodeSpaceExhausted
	}
	return formatCode(n + 1), nil
}

// IsGeneratedCode reports whether code has the generated shape.
func IsGeneratedCode(code string) bool {
	return codePattern.MatchString(code)
}

func formatCode(n int) string {
	return fmt.Sprintf("%s%0*d", CodePrefix, codeDigits, n)
}
