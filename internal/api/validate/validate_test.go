package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestFirst_ReturnsFirstFailure(t *testing.T) {
	err := First(
		Required("name", "Ann", "name is required"),
		NonNegative("wpm", ptr(-1), "WPM must be a non-negative number"),
		Between("accuracy", ptr(120), 0, 100, "accuracy out of range"),
	)
	require.Error(t, err)

	var errs Errs
	require.True(t, errors.As(err, &errs))
	assert.Len(t, errs, 1)
	assert.Equal(t, "WPM must be a non-negative number", errs.Message())
	assert.Equal(t, "wpm: WPM must be a non-negative number", err.Error())
}

func TestFirst_AllPass(t *testing.T) {
	assert.NoError(t, First(
		Required("name", "Ann", "x"),
		NonNegative("cpm", ptr(0), "x"),
		Between("accuracy", ptr(100), 0, 100, "x"),
		Email("email", "ann@example.com", "x"),
	))
}

func TestHelpers(t *testing.T) {
	assert.NotNil(t, Required("f", "   ", "m"))
	assert.NotNil(t, NonNegative("f", nil, "m"))
	assert.NotNil(t, Between("f", nil, 0, 1, "m"))
	assert.NotNil(t, Between("f", ptr(-0.5), 0, 1, "m"))
	assert.NotNil(t, Email("f", "no-at-sign", "m"))
	assert.NotNil(t, Email("f", "@example.com", "m"))
	assert.NotNil(t, Email("f", "ann@", "m"))
	assert.Nil(t, Email("f", " ann@example.com ", "m"))
	assert.Equal(t, "", Errs{}.Message())
}
