package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmptyTree(t *testing.T) {
	res := Normalize(nil)
	assert.Equal(t, "Request failed.", res.ErrorMessage)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.TargetDto)
}

func TestNormalizePicksLowestPriority(t *testing.T) {
	res := Normalize([]*FieldError{{
		Property: "name",
		Target:   "OfficeRequest",
		Constraints: []Constraint{
			{Name: "minLength", Message: "name must be longer than or equal to 2 characters", Priority: 2},
			{Name: "isNotEmpty", Message: "name should not be empty", Priority: 1},
		},
	}})

	require.Len(t, res.Errors, 1)
	assert.Equal(t, "Name should not be empty", res.Errors["name"])
	assert.Equal(t, "Name should not be empty", res.ErrorMessage)
	assert.Equal(t, "OfficeRequest", res.TargetDto)
}

func TestNormalizeUnsetPriorityLoses(t *testing.T) {
	res := Normalize([]*FieldError{{
		Property: "email",
		Constraints: []Constraint{
			{Name: "isEmail", Message: "email must be an email"},
			{Name: "isNotEmpty", Message: "email should not be empty", Priority: 5},
		},
	}})
	assert.Equal(t, "Email should not be empty", res.Errors["email"])
}

func TestNormalizeFallsBackToInsertionOrder(t *testing.T) {
	res := Normalize([]*FieldError{{
		Property: "email",
		Constraints: []Constraint{
			{Name: "isEmail", Message: "email must be an email"},
			{Name: "isNotEmpty", Message: "email should not be empty"},
		},
	}})
	assert.Equal(t, "Email must be an email", res.Errors["email"])
}

func TestNormalizeNoConstraints(t *testing.T) {
	res := Normalize([]*FieldError{{Property: "email"}})
	assert.Equal(t, "Validation failed", res.Errors["email"])
}

func TestNormalizeNestedPaths(t *testing.T) {
	res := Normalize([]*FieldError{{
		Property: "office",
		Target:   "RegisterRequest",
		Children: []*FieldError{
			{
				Property: "address",
				Constraints: []Constraint{
					{Name: "isNotEmpty", Message: "address should not be empty", Priority: 1},
				},
			},
		},
	}})

	require.Len(t, res.Errors, 1)
	assert.Equal(t, "Address should not be empty", res.Errors["office.address"])
	assert.Equal(t, "RegisterRequest", res.TargetDto)
}

// A child whose property is a substring of the accumulated path does not get
// appended; its constraints land on the parent path instead.
func TestNormalizeCollapsesSubstringSegments(t *testing.T) {
	res := Normalize([]*FieldError{{
		Property: "officeName",
		Children: []*FieldError{
			{
				Property: "Name",
				Constraints: []Constraint{
					{Name: "isNotEmpty", Message: "name should not be empty", Priority: 1},
				},
			},
		},
	}})

	require.Len(t, res.Errors, 1)
	_, hasNested := res.Errors["officeName.Name"]
	assert.False(t, hasNested)
	assert.Equal(t, "Name should not be empty", res.Errors["officeName"])
}

// The headline message is the first-seen path's FINAL value: a later write to
// the same path replaces both the map entry and the headline.
func TestNormalizeHeadlineTracksFirstPathFinalValue(t *testing.T) {
	res := Normalize([]*FieldError{
		{
			Property: "name",
			Constraints: []Constraint{
				{Name: "isNotEmpty", Message: "name should not be empty", Priority: 1},
			},
		},
		{
			Property: "name",
			Constraints: []Constraint{
				{Name: "minLength", Message: "name must be longer than or equal to 2 characters", Priority: 1},
			},
		},
	})

	require.Len(t, res.Errors, 1)
	assert.Equal(t, "Name must be longer than or equal to 2 characters", res.ErrorMessage)
}

func TestCapitalizeFirstRuneOnly(t *testing.T) {
	assert.Equal(t, "", capitalize(""))
	assert.Equal(t, "Name is required", capitalize("name is required"))
	assert.Equal(t, "Épuisé", capitalize("épuisé"))
}
