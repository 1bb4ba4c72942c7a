package types

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFromCode(t *testing.T) {
	e, ok := ErrorFromCode(6013)
	require.True(t, ok)
	assert.Equal(t, ErrBondingCurveComplete, e)

	_, ok = ErrorFromCode(5999)
	assert.False(t, ok)
}

func TestCodeOf(t *testing.T) {
	code, ok := CodeOf(ErrMinBuy)
	require.True(t, ok)
	assert.Equal(t, uint32(6007), code)

	// Wrapped errors still resolve.
	code, ok = CodeOf(fmt.Errorf("apply trade: %w", ErrMaxSOLCostExceeded))
	require.True(t, ok)
	assert.Equal(t, ErrMaxSOLCostExceeded.Code, code)

	_, ok = CodeOf(fmt.Errorf("plain"))
	assert.False(t, ok)
}

func TestErrorStringsCarryNameAndCode(t *testing.T) {
	assert.Contains(t, ErrInvalidAuthority.Error(), "InvalidAuthority")
	assert.Contains(t, ErrInvalidAuthority.Error(), "6002")
}
