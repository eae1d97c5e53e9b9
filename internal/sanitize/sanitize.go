// Package sanitize strips markup from user-supplied text before it is stored.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy    = bluemonday.StrictPolicy()
	formattedPolicy = bluemonday.NewPolicy().AllowElements("b", "i", "em", "strong")
)

// Text removes every HTML element and trims surrounding space.
func Text(input string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(strings.TrimSpace(input)))
}

// Formatted keeps b, i, em and strong without attributes and removes everything else.
func Formatted(input string) string {
	return strings.TrimSpace(formattedPolicy.Sanitize(strings.TrimSpace(input)))
}

// OptionalText sanitizes a nullable field. Blank results become nil.
func OptionalText(input *string) *string {
	if input == nil {
		return nil
	}
	cleaned := Text(*input)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

// OptionalFormatted is OptionalText with the formatted policy.
func OptionalFormatted(input *string) *string {
	if input == nil {
		return nil
	}
	cleaned := Formatted(*input)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
