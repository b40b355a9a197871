package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/K-vibe-sat-canh/autoscaling/pkg/models"
)

var (
	// ErrInvalidInput indicates the input failed validation
	ErrInvalidInput = errors.New("invalid input")

	// Fleet name must be alphanumeric with hyphens/underscores, 3-100 chars
	fleetNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]{2,99}$`)
)

// SanitizeString removes potentially dangerous characters and trims whitespace
func SanitizeString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters except newline and tab
	var builder strings.Builder
	for _, r := range input {
		if !unicode.IsControl(r) || r == '\n' || r == '\t' {
			builder.WriteRune(r)
		}
	}

	return builder.String()
}

// ValidateFleetName checks if a fleet name is valid
func ValidateFleetName(name string) error {
	name = SanitizeString(name)

	if name == "" {
		return errors.New("fleet name cannot be empty")
	}

	if len(name) < 3 {
		return errors.New("fleet name must be at least 3 characters")
	}

	if len(name) > 100 {
		return errors.New("fleet name must not exceed 100 characters")
	}

	if !fleetNameRegex.MatchString(name) {
		return errors.New("fleet name must start with alphanumeric and contain only letters, numbers, hyphens, and underscores")
	}

	reserved := []string{"admin", "root", "system", "default", "test"}
	lowerName := strings.ToLower(name)
	for _, r := range reserved {
		if lowerName == r {
			return errors.New("fleet name is reserved")
		}
	}

	return nil
}

// ValidateUsername checks if a username is valid
func ValidateUsername(username string) error {
	username = SanitizeString(username)

	if username == "" {
		return errors.New("username cannot be empty")
	}

	if len(username) < 3 {
		return errors.New("username must be at least 3 characters")
	}

	if len(username) > 50 {
		return errors.New("username must not exceed 50 characters")
	}

	return nil
}

// ValidatePassword checks if a password meets security requirements
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	if len(password) > 128 {
		return errors.New("password must not exceed 128 characters")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		}
	}

	if !hasUpper {
		return errors.New("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return errors.New("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return errors.New("password must contain at least one number")
	}

	return nil
}

// ValidateServerCount checks if min/max server counts are valid
func ValidateServerCount(min, max int) error {
	if min < 1 {
		return errors.New("minimum servers must be at least 1")
	}

	if max < min {
		return errors.New("maximum servers must be greater than or equal to minimum servers")
	}

	if max > 1000 {
		return errors.New("maximum servers cannot exceed 1000")
	}

	return nil
}

// ValidateSamples checks a simulation load series before it reaches the
// simulator: non-empty, strictly increasing timestamps, non-negative loads.
func ValidateSamples(samples []models.LoadSample) error {
	if len(samples) == 0 {
		return errors.New("load series cannot be empty")
	}

	for i, s := range samples {
		if s.PredictedLoad < 0 {
			return errors.New("load values must not be negative")
		}
		if i > 0 && !samples[i-1].Timestamp.Before(s.Timestamp) {
			return errors.New("sample timestamps must be strictly increasing")
		}
	}

	return nil
}
