package element

import (
	"fmt"
	"strings"
)

const (
	maxNameLength = 100

	// reservedChars delimit the persistence strings and connection names.
	reservedChars = ":;,[](){}="
)

// ValidateName checks an element name.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: %q exceeds %d characters", ErrInvalidName, name, maxNameLength)
	}
	if strings.ContainsAny(name, reservedChars) {
		return fmt.Errorf("%w: %q contains one of %q", ErrInvalidName, name, reservedChars)
	}
	return nil
}
