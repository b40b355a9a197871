package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/K-vibe-sat-canh/autoscaling/pkg/models"
)

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"trims whitespace", "  hello  ", "hello"},
		{"removes null bytes", "hel\x00lo", "hello"},
		{"removes control characters", "hel\x01\x02lo", "hello"},
		{"keeps newline and tab", "a\nb\tc", "a\nb\tc"},
		{"plain string unchanged", "fleet-1", "fleet-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeString(tt.input))
		})
	}
}

func TestValidateFleetName(t *testing.T) {
	tests := []struct {
		name      string
		fleetName string
		expectErr bool
	}{
		{"valid name", "production-fleet", false},
		{"valid with underscores", "us_east_1", false},
		{"too short", "ab", true},
		{"empty", "", true},
		{"starts with hyphen", "-fleet", true},
		{"contains spaces", "my fleet", true},
		{"reserved name", "admin", true},
		{"reserved name case insensitive", "ADMIN", true},
		{"too long", strings.Repeat("a", 101), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFleetName(tt.fleetName)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name      string
		password  string
		expectErr bool
	}{
		{"valid password", "Secure123", false},
		{"too short", "Ab1", true},
		{"no uppercase", "secure123", true},
		{"no lowercase", "SECURE123", true},
		{"no number", "SecurePass", true},
		{"too long", strings.Repeat("Aa1", 50), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateServerCount(t *testing.T) {
	assert.NoError(t, ValidateServerCount(1, 20))
	assert.Error(t, ValidateServerCount(0, 20))
	assert.Error(t, ValidateServerCount(10, 5))
	assert.Error(t, ValidateServerCount(1, 1001))
}

func TestValidateSamples(t *testing.T) {
	base := time.Now()

	valid := []models.LoadSample{
		{Timestamp: base, PredictedLoad: 100},
		{Timestamp: base.Add(time.Minute), PredictedLoad: 200},
	}
	assert.NoError(t, ValidateSamples(valid))

	assert.Error(t, ValidateSamples(nil))

	negative := []models.LoadSample{{Timestamp: base, PredictedLoad: -1}}
	assert.Error(t, ValidateSamples(negative))

	duplicate := []models.LoadSample{
		{Timestamp: base, PredictedLoad: 100},
		{Timestamp: base, PredictedLoad: 200},
	}
	assert.Error(t, ValidateSamples(duplicate))

	backwards := []models.LoadSample{
		{Timestamp: base.Add(time.Minute), PredictedLoad: 100},
		{Timestamp: base, PredictedLoad: 200},
	}
	assert.Error(t, ValidateSamples(backwards))
}
