package capacity_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s739/s739/internal/capacity"
	"github.com/s739/s739/internal/codecerr"
)

func TestPlanRejectsEmptyPayload(t *testing.T) {
	_, err := capacity.Plan(capacity.Encode, 1000, 1, 0, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, codecerr.ErrInvalidParameters))
}

func TestPlanEncodeTooMuchData(t *testing.T) {
	// 128x128x3 PNG bit capacity at bits=1 is (128*128*3-32) bits = 6140 bytes.
	total := 128 * 128 * 3
	payload := (total-32)/8 + 1
	_, err := capacity.Plan(capacity.Encode, total, 1, payload, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, codecerr.ErrTooMuchData))
}

func TestPlanDecodeInvalidDataSizeSentinel(t *testing.T) {
	total := 128 * 128 * 3
	payload := (total-32)/8 + 1
	_, err := capacity.Plan(capacity.Decode, total, 1, payload, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, codecerr.ErrInvalidDataSize))
}

func TestPlanExactBoundarySucceeds(t *testing.T) {
	total := 128 * 128 * 3
	payload := (total - 32) / 8
	stride, err := capacity.Plan(capacity.Encode, total, 1, payload, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stride, 1)
}

func TestPlanMaxStepOverride(t *testing.T) {
	total := 10000
	maxStep := 4
	stride, err := capacity.Plan(capacity.Encode, total, 1, 100, &maxStep)
	require.NoError(t, err)
	assert.Equal(t, maxStep, stride)
}

func TestPlanMaxStepTooBig(t *testing.T) {
	total := 1000
	maxStep := 1000
	_, err := capacity.Plan(capacity.Encode, total, 1, 100, &maxStep)
	require.Error(t, err)
	assert.True(t, errors.Is(err, codecerr.ErrTooBigStep))
}

func TestDeriveLength(t *testing.T) {
	assert.Equal(t, 125, capacity.DeriveLength(1000, 1))
	assert.Equal(t, 62, capacity.DeriveLength(1000, 2))
}
