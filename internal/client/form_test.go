package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormState_IsImmutable(t *testing.T) {
	empty := NewSignupFormState()
	filled := empty.With(FieldName, "Ann")

	assert.Empty(t, empty.Value(FieldName))
	assert.False(t, empty.Touched(FieldName))
	assert.Equal(t, "Ann", filled.Value(FieldName))
	assert.True(t, filled.Touched(FieldName))
}

func TestFormState_VisibleErrorsOnlyForTouchedFields(t *testing.T) {
	state := NewSignupFormState().With(FieldContactNumber, "12345")

	assert.Equal(t, map[string]string{
		FieldContactNumber: "Must be a valid 10-digit phone number",
	}, state.VisibleErrors())
	assert.NotEmpty(t, state.Validate())

	submitted := state.TouchAll()
	visible := submitted.VisibleErrors()
	assert.Equal(t, "Name is required", visible[FieldName])
	assert.Equal(t, "Email is required", visible[FieldEmail])
	assert.Equal(t, "Password is required", visible[FieldPassword])
	assert.Equal(t, "You must accept the Terms of Service", visible[FieldTermsAccepted])
}

func TestFormState_RevalidatesOnChange(t *testing.T) {
	state := NewSignupFormState().
		With(FieldPassword, "secret1").
		With(FieldConfirmPassword, "secret2")
	assert.Equal(t, "Passwords must match", state.VisibleErrors()[FieldConfirmPassword])

	state = state.With(FieldConfirmPassword, "secret1")
	assert.NotContains(t, state.VisibleErrors(), FieldConfirmPassword)
}

func TestFormState_ValidSignup(t *testing.T) {
	state := NewSignupFormState().
		With(FieldName, "Ann").
		With(FieldEmail, "ann@x.com").
		With(FieldContactNumber, "5551234567").
		With(FieldPassword, "secret1").
		With(FieldConfirmPassword, "secret1").
		With(FieldTermsAccepted, "true")

	assert.Empty(t, state.Validate())
	form := state.Signup()
	assert.True(t, form.TermsAccepted)
	assert.Equal(t, "5551234567", form.ContactNumber)
}

func TestFormState_Login(t *testing.T) {
	state := NewLoginFormState()
	assert.Equal(t, []string{FieldEmail, FieldPassword}, state.Fields())

	state = state.With(FieldEmail, "bad").TouchAll()
	visible := state.VisibleErrors()
	assert.Equal(t, "Invalid email address", visible[FieldEmail])
	assert.Equal(t, "Password is required", visible[FieldPassword])
	assert.Len(t, visible, 2)
}
