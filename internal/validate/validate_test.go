package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"full_name,omitempty" validate:"min=2"`
	Note  string `validate:"max=3"`
}

var messages = map[string]string{
	"email.required": "Email is required",
	"email.email":    "Enter a valid email",
	"full_name.min":  "Name is too short",
}

func TestStruct(t *testing.T) {
	v := New()

	require.NoError(t, Struct(v, signup{Email: "a@example.com", Name: "Al"}, messages))

	err := Struct(v, signup{Name: "A", Note: "long"}, messages)
	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, map[string]string{
		"email":     "Email is required",
		"full_name": "Name is too short",
		"Note":      "Invalid value",
	}, verr.Fields)
	assert.Equal(t, "validation failed: Note: Invalid value; email: Email is required; full_name: Name is too short", err.Error())
}
