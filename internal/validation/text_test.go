package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	tests := []struct {
		a, b string
	}{
		{"Café", "CAFÉ"},
		{"Solar Panel", "  solar panel "},
		{"Café", "café"},
	}

	for _, tt := range tests {
		t.Run(tt.a, func(t *testing.T) {
			assert.Equal(t, Key(tt.a), Key(tt.b))
		})
	}

	assert.NotEqual(t, Key("Café"), Key("Cafe"))
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Solar Panel", "solar-panel"},
		{"  Crème Brûlée!  ", "creme-brulee"},
		{"Roof -- Repair & Paint", "roof-repair-paint"},
		{"2024 Projects", "2024-projects"},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestValidateSlug(t *testing.T) {
	assert.NoError(t, ValidateSlug("solar-panel-2"))
	assert.Error(t, ValidateSlug(""))
	assert.Error(t, ValidateSlug("Solar-Panel"))
	assert.Error(t, ValidateSlug("double--dash"))
	assert.Error(t, ValidateSlug("-leading"))
}

func TestValidateTitle(t *testing.T) {
	assert.NoError(t, ValidateTitle("Heat Pump"))
	assert.Error(t, ValidateTitle("   "))
	assert.Error(t, ValidateTitle(string(make([]rune, 201))))
}
