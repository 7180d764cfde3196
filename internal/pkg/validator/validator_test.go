package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/survey-reachability/internal/pkg/errors"
)

type sample struct {
	Lat   float64 `validate:"latitude"`
	Limit int     `validate:"omitempty,min=1,max=10"`
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(&sample{Lat: 47.6, Limit: 5}))

	err := Validate(&sample{Lat: 123, Limit: 50})
	require.Error(t, err)

	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, "INVALID_REQUEST", appErr.Code)
	assert.Equal(t, "latitude", appErr.Details["sample.Lat"])
	assert.Equal(t, "max", appErr.Details["sample.Limit"])

	// sentinel не должен изменяться
	assert.Empty(t, errors.ErrInvalidRequest.Details)
}
