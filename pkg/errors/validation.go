package errors

import (
	"strings"
	"unicode"
)

// maxModuleIDLength bounds module identifiers accepted from catalogs and API
// requests.
const maxModuleIDLength = 128

// ValidateModuleID validates a module identifier for safety and correctness.
//
// The validation rules are intentionally conservative:
//   - No empty IDs
//   - No control characters or whitespace
//   - No path separators (IDs end up in cache keys and file names)
//   - Maximum length of 128 characters
func ValidateModuleID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidCatalog, "module id cannot be empty")
	}

	if len(id) > maxModuleIDLength {
		return New(ErrCodeInvalidCatalog, "module id too long (max %d characters)", maxModuleIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidCatalog, "module id %q contains whitespace or control characters", id)
		}
	}

	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidCatalog, "module id %q cannot contain path separators", id)
	}

	return nil
}

// ValidateDimensions checks that a width/height pair describes a non-empty
// rectangle.
func ValidateDimensions(id string, width, height int) error {
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidCatalog, "module %q has non-positive geometry %dx%d", id, width, height)
	}
	return nil
}

// ValidatePath validates a file path supplied to the CLI or server for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}

	return nil
}
