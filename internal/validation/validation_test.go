package validation

import (
	"errors"
	"reflect"
	"testing"

	"github.com/gogofit/backend/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerPayload struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8,eqfield=PasswordConfirmation"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type patchPayload struct {
	Name     *string `json:"name" validate:"omitempty,filled,max=10"`
	Duration *int    `json:"duration_minutes" validate:"omitempty,min=1"`
}

type mealType string

func (m mealType) Valid() bool { return m == "lunch" || m == "dinner" }

type mealPayload struct {
	Meal *mealType `json:"meal_type" validate:"omitempty,enum"`
	Note string    `json:"note" validate:"required"`
}

func fieldsOf(t *testing.T, err error) apperr.Fields {
	t.Helper()
	var e *apperr.Error
	require.True(t, errors.As(err, &e), "expected *apperr.Error, got %v", err)
	require.Equal(t, apperr.KindValidation, e.Kind)
	return e.Fields
}

func TestStructValid(t *testing.T) {
	err := Struct(registerPayload{Name: "A", Email: "a@x.com", Password: "password1", PasswordConfirmation: "password1"})
	assert.NoError(t, err)
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	err := Struct(registerPayload{Email: "nope", Password: "short", PasswordConfirmation: "other"})

	fields := fieldsOf(t, err)
	assert.Equal(t, []string{"The name field is required."}, fields["name"])
	assert.Equal(t, []string{"The email field must be a valid email address."}, fields["email"])
	assert.Equal(t, []string{"The password field must be at least 8 characters."}, fields["password"])
}

func TestStructConfirmationMismatch(t *testing.T) {
	err := Struct(registerPayload{Name: "A", Email: "a@x.com", Password: "password1", PasswordConfirmation: "password2"})

	fields := fieldsOf(t, err)
	assert.Equal(t, []string{"The password field confirmation does not match."}, fields["password"])
}

func TestStructPartialSemantics(t *testing.T) {
	assert.NoError(t, Struct(patchPayload{}))

	zero := 0
	blank := "   "
	fields := fieldsOf(t, Struct(patchPayload{Name: &blank, Duration: &zero}))
	assert.Equal(t, []string{"The name field is required."}, fields["name"])
	assert.Equal(t, []string{"The duration minutes field must be at least 1."}, fields["duration_minutes"])
}

func TestMerge(t *testing.T) {
	err := Merge(nil, apperr.Fields{"email": {"The email has already been taken."}})
	fields := fieldsOf(t, err)
	assert.Len(t, fields, 1)

	err = Merge(Struct(registerPayload{}), apperr.Fields{"email": {"The email has already been taken."}})
	fields = fieldsOf(t, err)
	assert.Contains(t, fields["email"], "The email has already been taken.")
	assert.Contains(t, fields, "name")

	assert.NoError(t, Merge(nil, nil))
}

func TestTypeMessage(t *testing.T) {
	assert.Equal(t, "The calories field must be a number.", TypeMessage("calories", reflect.TypeOf(0.0)))
	assert.Equal(t, "The calories burned field must be an integer.", TypeMessage("calories_burned", reflect.TypeOf(new(int))))
	assert.Equal(t, "The name field must be a string.", TypeMessage("name", reflect.TypeOf("")))
}

func TestEnumErrorMessage(t *testing.T) {
	err := &EnumError{Field: "activity_level", Value: "couch"}
	assert.Equal(t, "The selected activity level is invalid.", err.Message())
}

func TestEnumTagReportsWithOtherFields(t *testing.T) {
	assert.NoError(t, Struct(mealPayload{Note: "x"}))

	lunch := mealType("lunch")
	assert.NoError(t, Struct(mealPayload{Meal: &lunch, Note: "x"}))

	brunch := mealType("brunch")
	fields := fieldsOf(t, Struct(mealPayload{Meal: &brunch}))
	assert.Equal(t, []string{"The selected meal type is invalid."}, fields["meal_type"])
	assert.Equal(t, []string{"The note field is required."}, fields["note"])

	empty := mealType("")
	fields = fieldsOf(t, Struct(mealPayload{Meal: &empty, Note: "x"}))
	assert.Contains(t, fields, "meal_type")
}
