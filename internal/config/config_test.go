package config_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s739/s739/internal/codecerr"
	"github.com/s739/s739/internal/config"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, config.Default().Validate())
}

func TestDepthPlusBitsOverflow(t *testing.T) {
	c := config.EmbedConfig{Depth: 2, Bits: 7}
	err := c.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, codecerr.ErrInvalidParameters))
}

func TestBitsOutOfRange(t *testing.T) {
	for _, bits := range []int{0, -1, 9} {
		c := config.EmbedConfig{Depth: 0, Bits: bits}
		assert.Error(t, c.Validate())
	}
}

func TestDepthOutOfRange(t *testing.T) {
	for _, depth := range []int{-1, 8} {
		c := config.EmbedConfig{Depth: depth, Bits: 1}
		assert.Error(t, c.Validate())
	}
}

func TestMaxStepMustBePositive(t *testing.T) {
	bad := 0
	c := config.EmbedConfig{Depth: 0, Bits: 1, MaxStep: &bad}
	assert.Error(t, c.Validate())

	good := 4
	c.MaxStep = &good
	assert.NoError(t, c.Validate())
}
