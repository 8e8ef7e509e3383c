package middleware

import (
	"fmt"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

var projectNamePattern = regexp.MustCompile(`^[\p{L}\p{N} ._-]{1,100}$`)

// ValidateProjectName rejects names that would not survive the file-based
// store (path separators, control characters, absurd lengths).
func ValidateProjectName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("project name cannot be empty")
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("project name cannot contain path separators")
	}
	if !projectNamePattern.MatchString(name) {
		return fmt.Errorf("invalid project name (letters, digits, spaces, ._- only, max 100 chars)")
	}
	return nil
}

// ValidateReportID validates report id format (uuid or short slug)
func ValidateReportID(id string) error {
	if id == "" {
		return fmt.Errorf("report id cannot be empty")
	}
	pattern := `^[a-zA-Z0-9-]{1,64}$`
	matched, _ := regexp.MatchString(pattern, id)
	if !matched {
		return fmt.Errorf("invalid report id format")
	}
	return nil
}

// ValidateReportDate accepts YYYY-MM-DD or empty (defaulted by the service)
func ValidateReportDate(date string) error {
	if date == "" {
		return nil
	}
	matched, _ := regexp.MatchString(`^\d{4}-\d{2}-\d{2}$`, date)
	if !matched {
		return fmt.Errorf("invalid report date, expected YYYY-MM-DD")
	}
	return nil
}

// ValidateUploadFilename blocks traversal and shell noise in upload names
func ValidateUploadFilename(name string) error {
	if name == "" {
		return fmt.Errorf("filename cannot be empty")
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid filename")
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}
