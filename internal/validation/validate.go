// Package validation provides centralized input validation logic.
// This includes container name validation, object key validation, and
// content-hash checks.
//
// All caller-supplied values are validated before being sent to the backend
// to prevent injection attacks and ensure compliance with S3 naming rules.
package validation

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/flownative/go-blobsync/errors"
)

// ValidateContainerName validates that a container name is DNS-compliant
// according to AWS S3 bucket naming rules.
// Returns ErrInvalidContainerName if the name is invalid.
func ValidateContainerName(container string) error {
	if err := validateContainerNameBasics(container); err != nil {
		return err
	}

	if err := validateContainerNameCharacters(container); err != nil {
		return err
	}

	return validateContainerNameStructure(container)
}

// ValidateObjectKey validates that an object key is valid according to S3 rules.
// This includes preventing path traversal attacks and ensuring valid characters.
func ValidateObjectKey(key string) error {
	if key == "" {
		return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("object key cannot be empty")
	}

	// Check for path traversal attempts
	if hasPathTraversal(key) {
		return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("object key cannot contain path traversal sequences")
	}

	// Validate key length (S3 supports up to 1024 bytes)
	if len(key) > 1024 {
		return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("object key cannot exceed 1024 characters")
	}

	// S3 keys can contain any UTF-8 character but we reject control characters
	if hasControlCharacters(key) {
		return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("object key cannot contain control characters")
	}

	return nil
}

// contentHashPattern matches a lowercase hex SHA-1 digest.
var contentHashPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

// ValidateContentHash validates that a resource content hash is a
// 40-character lowercase hexadecimal SHA-1 digest.
func ValidateContentHash(hash string) error {
	if !contentHashPattern.MatchString(hash) {
		return errors.NewError("validateContentHash", errors.ErrInvalidContentHash).
			WithMessage("content hash must be a 40-character lowercase hex digest")
	}
	return nil
}

// mediaTypePattern matches a basic MIME type, optionally with parameters.
var mediaTypePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9\-+.]*\/[a-zA-Z0-9][a-zA-Z0-9\-+.]*(\s*;.*)?$`)

// ValidateMediaType validates that a media type is a well-formed MIME type.
// An empty media type is allowed; the source layer fills it in by sniffing.
func ValidateMediaType(mediaType string) error {
	if mediaType == "" {
		return nil
	}

	if !mediaTypePattern.MatchString(mediaType) {
		return errors.NewError("validateMediaType", errors.ErrInvalidInput).
			WithMessage("media type must be a valid MIME type")
	}

	return nil
}

// validateContainerNameBasics validates basic container name requirements
func validateContainerNameBasics(container string) error {
	if container == "" {
		return errors.NewError("validateContainerName", errors.ErrInvalidContainerName).
			WithContainer(container).
			WithMessage("container name cannot be empty")
	}

	// Container names must be between 3 and 63 characters long
	if len(container) < 3 || len(container) > 63 {
		return errors.NewError("validateContainerName", errors.ErrInvalidContainerName).
			WithContainer(container).
			WithMessage("container name must be between 3 and 63 characters long")
	}

	return nil
}

// validateContainerNameCharacters validates allowed characters in container names
func validateContainerNameCharacters(container string) error {
	// Container names can consist only of lowercase letters, numbers, dots (.), and hyphens (-)
	for _, char := range container {
		if !isValidContainerChar(char) {
			return errors.NewError("validateContainerName", errors.ErrInvalidContainerName).
				WithContainer(container).
				WithMessage("container name can only contain lowercase letters, numbers, dots, and hyphens")
		}
	}

	return nil
}

// validateContainerNameStructure validates container name structural requirements
func validateContainerNameStructure(container string) error {
	// Container names must not start or end with a hyphen or dot
	if container[0] == '-' || container[0] == '.' ||
		container[len(container)-1] == '-' || container[len(container)-1] == '.' {
		return errors.NewError("validateContainerName", errors.ErrInvalidContainerName).
			WithContainer(container).
			WithMessage("container name cannot start or end with a hyphen or dot")
	}

	// Container names cannot be formatted as an IP address
	if isIPAddress(container) {
		return errors.NewError("validateContainerName", errors.ErrInvalidContainerName).
			WithContainer(container).
			WithMessage("container name cannot be formatted as an IP address")
	}

	// Container names cannot contain two adjacent periods or hyphens
	if hasAdjacentSpecialChars(container) {
		return errors.NewError("validateContainerName", errors.ErrInvalidContainerName).
			WithContainer(container).
			WithMessage("container name cannot contain two adjacent periods or hyphens")
	}

	return nil
}

// isValidContainerChar checks if a character is valid in a container name
func isValidContainerChar(char rune) bool {
	return (char >= '0' && char <= '9') || (char >= 'a' && char <= 'z') || char == '.' || char == '-'
}

// hasAdjacentSpecialChars checks for adjacent special characters
func hasAdjacentSpecialChars(container string) bool {
	for i := 0; i < len(container)-1; i++ {
		if (container[i] == '.' && container[i+1] == '.') || (container[i] == '-' && container[i+1] == '-') {
			return true
		}
	}
	return false
}

// isIPAddress checks if a string is formatted as an IP address
func isIPAddress(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return false
	}

	for _, part := range parts {
		if len(part) == 0 {
			return true
		}
		num := 0
		for _, char := range part {
			if char < '0' || char > '9' {
				return false
			}
			num = num*10 + int(char-'0')
		}
		if num > 255 {
			return false
		}
	}

	return true
}

// hasPathTraversal checks for path traversal attempts in object keys
func hasPathTraversal(key string) bool {
	if strings.Contains(key, "..") {
		return true
	}

	cleaned := filepath.Clean(key)

	if strings.HasPrefix(cleaned, "..") {
		return true
	}

	if strings.HasPrefix(cleaned, "/") {
		return true
	}

	// Windows-style absolute paths
	if len(cleaned) >= 3 && cleaned[1] == ':' && (cleaned[2] == '\\' || cleaned[2] == '/') {
		return true
	}

	return false
}

// hasControlCharacters checks for control characters in the key
func hasControlCharacters(key string) bool {
	for _, char := range key {
		if unicode.IsControl(char) {
			return true
		}
	}
	return false
}
