package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email string   `json:"email" validate:"required,email"`
	Tags  []string `json:"tags" validate:"max=2"`
}

func TestStruct(t *testing.T) {
	require.NoError(t, Struct(sample{Email: "a@example.com"}))

	err := Struct(sample{})
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Equal(t, "email", fe.Field)
	assert.Equal(t, "is required", fe.Message)

	err = Struct(sample{Email: "a@example.com", Tags: []string{"a", "b", "c"}})
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "tags", fe.Field)
	assert.Equal(t, "must contain at most 2 items", fe.Message)
}
