package validation

import (
	"fmt"

	dErrors "claimchain/pkg/domain-errors"
)

// HTTP body limits
const (
	// MaxBodySize bounds JSON API bodies.
	MaxBodySize = 64 * 1024

	// MaxUploadSize bounds POST /file/upload bodies (base64 inflates by ~4/3).
	MaxUploadSize = 8 * 1024 * 1024
)

// String element length limits
const (
	MaxDIDLength        = 512
	MaxReasonLength     = 1024
	MaxCIDLength        = 128
	MaxFilenameLength   = 255
	MaxDetailsEntries   = 64
	MaxPrivateKeyLength = 66
)

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s must be at most %d characters", fieldName, max))
	}
	return nil
}

// CheckMapSize validates that a map does not exceed the maximum number of entries.
func CheckMapSize(fieldName string, size, max int) error {
	if size > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s must have at most %d entries", fieldName, max))
	}
	return nil
}
