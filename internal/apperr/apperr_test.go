package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:         http.StatusUnprocessableEntity,
		KindInvalidCredentials: http.StatusUnprocessableEntity,
		KindUnauthenticated:    http.StatusUnauthorized,
		KindForbidden:          http.StatusForbidden,
		KindNotFound:           http.StatusNotFound,
		KindInvalidFormat:      http.StatusBadRequest,
		KindInternal:           http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.Status(), kind.String())
	}
}

func TestValidationMessageIsFirstFieldInKeyOrder(t *testing.T) {
	err := Validation(Fields{
		"password": {"The password field must be at least 8 characters."},
		"email":    {"The email has already been taken."},
	})
	assert.Equal(t, KindValidation, err.Kind)
	assert.Equal(t, "The email has already been taken.", err.Message)
}

func TestValidationWithoutFields(t *testing.T) {
	assert.Equal(t, "The given data was invalid.", Validation(Fields{}).Message)
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("loading log: %w", Forbidden())
	assert.Equal(t, KindForbidden, KindOf(err))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestInternalUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("Failed to create food log", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Failed to create food log: connection reset", err.Error())
}

func TestInvalidCredentialsIsKeyed(t *testing.T) {
	err := InvalidCredentials("email")
	assert.Equal(t, []string{"Invalid credentials."}, err.Fields["email"])
}
