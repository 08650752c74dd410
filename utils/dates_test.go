package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateDate(t *testing.T) {
	assert.NoError(t, ValidateDate(""))
	assert.NoError(t, ValidateDate("1950-03-14"))
	assert.NoError(t, ValidateDate("2000-02-29")) // leap day

	assert.Error(t, ValidateDate("1950-13-01"))
	assert.Error(t, ValidateDate("1950-02-30"))
	assert.Error(t, ValidateDate("14/03/1950"))
	assert.Error(t, ValidateDate("1950"))
}

func TestValidateLifespan(t *testing.T) {
	assert.NoError(t, ValidateLifespan("", ""))
	assert.NoError(t, ValidateLifespan("1950-03-14", ""))
	assert.NoError(t, ValidateLifespan("", "2020-01-01"))
	assert.NoError(t, ValidateLifespan("1950-03-14", "2020-01-01"))

	assert.Error(t, ValidateLifespan("2020-01-01", "1950-03-14"), "birth after death")
	assert.Error(t, ValidateLifespan("2020-01-01", "2020-01-01"), "birth must be strictly before death")
	assert.Error(t, ValidateLifespan("bogus", "2020-01-01"))
	assert.Error(t, ValidateLifespan("1950-03-14", "bogus"))
}
