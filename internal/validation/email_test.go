package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		message  string
	}{
		{name: "Lowercased and trimmed", input: "  Jane@Example.COM ", expected: "jane@example.com"},
		{name: "Empty", input: "   ", message: "is required"},
		{name: "Too long", input: strings.Repeat("a", 250) + "@x.io", message: "must be at most 254 characters"},
		{name: "Missing domain", input: "jane@", message: "must be a valid email address"},
		{name: "Display name", input: "Jane <jane@example.com>", message: "must be a valid email address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeEmail("email", tt.input)
			if tt.message == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, got)
				return
			}

			var fe *FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, "email", fe.Field)
			assert.Equal(t, tt.message, fe.Message)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}
