package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateNodeName validates a node display name from an incoming snapshot.
// It rejects names that could be used for path traversal or injection when
// the name later ends up in cache keys or rendered output.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No null bytes
//   - Maximum length of 256 characters
func ValidateNodeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidSnapshot, "node name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidSnapshot, "node name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidSnapshot, "node name contains invalid control characters")
		}
	}

	return nil
}

// ValidatePath validates an output file path for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// mapIDRegex matches stored map identifiers: UUIDs or short hex ids.
var mapIDRegex = regexp.MustCompile(`^[a-fA-F0-9-]{8,36}$`)

// ValidateMapID validates an identifier used to look up a saved map.
func ValidateMapID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "map id cannot be empty")
	}

	if !mapIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid map id: %q", id)
	}

	return nil
}

// renderFormats lists the output formats the renderer understands.
var renderFormats = map[string]bool{
	"svg":  true,
	"png":  true,
	"dot":  true,
	"json": true,
}

// ValidateRenderFormat validates a requested output format.
func ValidateRenderFormat(format string) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}

	if !renderFormats[strings.ToLower(format)] {
		return New(ErrCodeInvalidFormat, "unsupported format: %q (want svg, png, dot, or json)", format)
	}

	return nil
}

// ValidateViewport validates viewport dimensions supplied by an API caller.
// The engine itself tolerates degenerate viewports by skipping frames; this
// check is for surfaces that should reject them up front.
func ValidateViewport(w, h float64) error {
	if w <= 0 || h <= 0 {
		return New(ErrCodeInvalidViewport, "viewport must have positive dimensions, got %gx%g", w, h)
	}

	const maxDimension = 100_000
	if w > maxDimension || h > maxDimension {
		return New(ErrCodeInvalidViewport, "viewport too large (max %d per side)", maxDimension)
	}

	return nil
}
