package utils

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxReasonLength bounds strike and exile reasons. It keeps a reason inside one
// mod-log embed field.
const MaxReasonLength = 1000

var (
	ErrEmptyReason   = errors.New("A reason is required, no action will be taken")
	ErrReasonTooLong = fmt.Errorf("Reason is too long (above %d characters), no action will be taken", MaxReasonLength)
)

// ValidateReason applies the same limits the slash command options enforce.
func ValidateReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return ErrEmptyReason
	}
	if utf8.RuneCountInString(reason) > MaxReasonLength {
		return ErrReasonTooLong
	}
	return nil
}
