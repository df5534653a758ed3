package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nestedAddress struct {
	City string `json:"city" validate:"required"`
}

type testSignup struct {
	Email    string        `json:"email" validate:"required,email"`
	Password string        `json:"password" validate:"required,min=8"`
	Address  nestedAddress `json:"address"`
}

func TestValidateStructValid(t *testing.T) {
	err := ValidateStruct(&testSignup{
		Email:    "dev@example.com",
		Password: "longenough",
		Address:  nestedAddress{City: "Berlin"},
	})
	assert.NoError(t, err)
}

func TestValidateStructUsesJSONNames(t *testing.T) {
	err := ValidateStruct(&testSignup{Password: "longenough", Address: nestedAddress{City: "x"}})
	require.Error(t, err)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.FieldErrors, 1)
	assert.Equal(t, "email", verr.FieldErrors[0].Property)
	assert.Equal(t, "testSignup", verr.FieldErrors[0].Target)
	require.Len(t, verr.FieldErrors[0].Constraints, 1)
	assert.Equal(t, "required", verr.FieldErrors[0].Constraints[0].Name)
	assert.Equal(t, 1, verr.FieldErrors[0].Constraints[0].Priority)
}

func TestValidateStructNestedBecomesChild(t *testing.T) {
	err := ValidateStruct(&testSignup{Email: "dev@example.com", Password: "longenough"})
	require.Error(t, err)

	var verr *Error
	require.ErrorAs(t, err, &verr)

	res := Normalize(verr.FieldErrors)
	assert.Equal(t, "City should not be empty", res.Errors["address.city"])
}

func TestValidateStructNormalizedMessages(t *testing.T) {
	err := ValidateStruct(&testSignup{
		Email:    "not-an-email",
		Password: "short",
		Address:  nestedAddress{City: "x"},
	})
	require.Error(t, err)

	var verr *Error
	require.ErrorAs(t, err, &verr)

	res := Normalize(verr.FieldErrors)
	assert.Equal(t, "Email must be an email", res.Errors["email"])
	assert.Equal(t, "Password must be longer than or equal to 8 characters", res.Errors["password"])
}
