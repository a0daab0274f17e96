package staticmap

import (
	"fmt"
	"strconv"
	"strings"
)

const scaleSeparator = " - "

// ParseScale extracts the numeric scale from an option label of the form
// "<number> - <description>". A bare number is accepted as well.
func ParseScale(option string) (string, error) {
	token := option
	if i := strings.Index(option, scaleSeparator); i >= 0 {
		token = option[:i]
	}
	token = strings.TrimSpace(token)

	// Digits only: ParseFloat alone would accept "Inf", "NaN" and exponents.
	if token == "" || strings.Trim(token, "0123456789.") != "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidScale, option)
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil || v <= 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidScale, option)
	}
	return token, nil
}

// ScaleOption formats a scale and its description as a dropdown label.
func ScaleOption(scale int, description string) string {
	return strconv.Itoa(scale) + scaleSeparator + description
}
