package anychargen

import (
	"strconv"
	"strings"

	"github.com/ygrebnov/errorc"
)

// ParseLength converts textual input into a combination length.
// Non-numeric or non-positive text returns ErrInvalidInput.
func ParseLength(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, errorc.With(ErrInvalidInput, errorc.String("length", s))
	}
	return n, nil
}
