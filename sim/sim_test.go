package sim_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/btpower"
	"github.com/xaionaro-go/btpower/power"
	"github.com/xaionaro-go/btpower/sim"
	"github.com/xaionaro-go/btpower/supervisor"
)

func newRadio(t *testing.T, p *sim.Platform, opts ...btpower.Option) *btpower.Radio {
	t.Helper()
	opts = append([]btpower.Option{
		btpower.SettleDelays(time.Millisecond, time.Millisecond),
	}, opts...)
	return btpower.New(p.Power(), p.Prober(), p.Supervisor(), opts...)
}

func TestEnableDisableOnSimulatedBoard(t *testing.T) {
	ctx := context.Background()
	p, err := sim.New(t.TempDir(), sim.FirmwareLoadTime(30*time.Millisecond))
	require.NoError(t, err)
	radio := newRadio(t, p)

	assert.Equal(t, btpower.StatusDisabled, radio.IsEnabled(ctx))

	require.NoError(t, radio.Enable(ctx))
	assert.Equal(t, btpower.StatusEnabled, radio.IsEnabled(ctx))
	assert.True(t, p.Running("hciattach"))
	assert.True(t, p.Running("hcid"))
	assert.True(t, p.DeviceUp())
	assert.Greater(t, p.TotalOpens(), 1, "the device should need a few attempts")
	assert.Zero(t, p.OpenHandles())

	require.NoError(t, radio.Disable(ctx))
	assert.Equal(t, btpower.StatusDisabled, radio.IsEnabled(ctx))
	assert.False(t, p.Running("hciattach"))
	assert.False(t, p.Running("hcid"))
	assert.False(t, p.DeviceUp())
	assert.Zero(t, p.OpenHandles())

	st, err := p.Power().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, power.StateOff, st)
}

func TestDeviceTimeoutOnSimulatedBoard(t *testing.T) {
	ctx := context.Background()
	p, err := sim.New(t.TempDir(), sim.FirmwareLoadTime(time.Hour))
	require.NoError(t, err)
	radio := newRadio(t, p, btpower.RetryBudget(5, time.Millisecond))

	err = radio.Enable(ctx)
	assert.ErrorIs(t, err, btpower.ErrDeviceTimeout)
	assert.ErrorIs(t, err, sim.ErrNotReady)
	assert.Equal(t, 5, p.TotalOpens())
	assert.Zero(t, p.OpenHandles())

	// powered, but the device is not there
	assert.Equal(t, btpower.StatusDisabled, radio.IsEnabled(ctx))
	assert.True(t, p.Running("hciattach"))
	assert.False(t, p.Running("hcid"))

	// teardown still works after a partial enable
	require.NoError(t, radio.Disable(ctx))
	assert.False(t, p.Running("hciattach"))
}

func TestRejectedStart(t *testing.T) {
	ctx := context.Background()
	p, err := sim.New(t.TempDir())
	require.NoError(t, err)
	p.Reject("hcid", sim.ErrRejected)
	radio := newRadio(t, p)

	err = radio.Enable(ctx)
	var svErr *supervisor.Error
	require.ErrorAs(t, err, &svErr)
	assert.Equal(t, "hcid", svErr.Service)
	assert.True(t, errors.Is(err, sim.ErrRejected))

	p.Reject("hcid", nil)
	require.NoError(t, radio.Enable(ctx))
	assert.Equal(t, btpower.StatusEnabled, radio.IsEnabled(ctx))
}

func TestFirmwareNeedsPower(t *testing.T) {
	ctx := context.Background()
	p, err := sim.New(t.TempDir(), sim.FirmwareLoadTime(time.Millisecond))
	require.NoError(t, err)

	require.NoError(t, p.Supervisor().Start(ctx, "hciattach"))
	time.Sleep(20 * time.Millisecond)

	h, err := p.Prober().Open(ctx)
	require.NoError(t, err)
	defer h.Close()
	assert.ErrorIs(t, h.Up(ctx), sim.ErrNotReady)
	_, err = h.Flags(ctx)
	assert.ErrorIs(t, err, sim.ErrNoDevice)
}

func TestPowerFileSurvivesNew(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	p, err := sim.New(dir)
	require.NoError(t, err)
	require.NoError(t, p.Power().Set(ctx, true))

	p2, err := sim.New(dir)
	require.NoError(t, err)
	st, err := p2.Power().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, power.StateOn, st)
}

func TestBoardSharedBetweenPlatforms(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	p, err := sim.New(dir, sim.FirmwareLoadTime(time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, newRadio(t, p).Enable(ctx))

	// a later invocation of the CLI builds a fresh Platform on the same dir
	p2, err := sim.New(dir)
	require.NoError(t, err)
	radio2 := newRadio(t, p2)
	assert.Equal(t, btpower.StatusEnabled, radio2.IsEnabled(ctx))
	assert.True(t, p2.Running("hciattach"))
	assert.True(t, p2.Running("hcid"))
	assert.True(t, p2.DeviceUp())

	require.NoError(t, radio2.Disable(ctx))
	assert.False(t, p2.Running("hciattach"))
	assert.False(t, p2.Running("hcid"))
	assert.False(t, p2.DeviceUp())

	p3, err := sim.New(dir)
	require.NoError(t, err)
	assert.Equal(t, btpower.StatusDisabled, newRadio(t, p3).IsEnabled(ctx))
	assert.False(t, p.DeviceUp())
}

func TestCorruptStateFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, sim.StateFileName), []byte("deviceUp: [\n"), 0o644))
	_, err := sim.New(dir)
	assert.Error(t, err)
}
