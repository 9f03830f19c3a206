package models

import (
	"fmt"
	"regexp"
)

var (
	// Category names: letters, digits, "+", "_", ".", "-"; may not start with "-", "." or "+"
	categoryPattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9+_.-]*$`)

	// Package names: letters, digits, "+", "_", "-"; may not start with "-" or "+"
	packageNamePattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9+_-]*$`)

	// A package name may not end in something that looks like a version
	versionLikeSuffix = regexp.MustCompile(`-[0-9]+[a-z]?(\.[0-9]+[a-z]?)*(-r[0-9]+)?$`)
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ValidateCategory validates a category name such as "dev-libs"
func ValidateCategory(category string) error {
	if len(category) == 0 {
		return &ValidationError{Field: "category", Message: "category is required"}
	}
	if !categoryPattern.MatchString(category) {
		return &ValidationError{Field: "category", Message: "category must match pattern ^[A-Za-z0-9_][A-Za-z0-9+_.-]*$"}
	}
	return nil
}

// ValidatePackageName validates a package name without category or version
func ValidatePackageName(name string) error {
	if len(name) == 0 {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if !packageNamePattern.MatchString(name) {
		return &ValidationError{Field: "name", Message: "name must match pattern ^[A-Za-z0-9_][A-Za-z0-9+_-]*$"}
	}
	if versionLikeSuffix.MatchString(name) {
		return &ValidationError{Field: "name", Message: "name must not end in a version"}
	}
	return nil
}
