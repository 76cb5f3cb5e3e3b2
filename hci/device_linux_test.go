//go:build linux

package hci

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestUpResult(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, upResult(ctx, 0, 0))
	assert.NoError(t, upResult(ctx, 0, unix.EALREADY), "an already running device is up")

	err := upResult(ctx, 1, unix.ENODEV)
	require.Error(t, err)
	assert.ErrorIs(t, err, unix.ENODEV)
	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "HCIDEVUP", ioErr.Op)
	assert.Equal(t, 1, ioErr.DeviceID)
}
