package btpower

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/btpower/power"
)

func TestDisableHappyPath(t *testing.T) {
	r := newRig()
	r.power.state = power.StateOn

	require.NoError(t, r.radio.Disable(context.Background()))

	assert.Equal(t, []string{
		"stop(hcid)",
		"sleep(500ms)",
		"hci.Down",
		"stop(hciattach)",
		"power.Set(false)",
	}, r.j.calls)
	assert.Equal(t, 1, r.hci.opens)
	assert.Equal(t, 1, r.hci.closes)
	assert.Equal(t, power.StateOff, r.power.state)
}

func TestDisableIgnoresDownFailure(t *testing.T) {
	r := newRig()
	r.power.state = power.StateOn
	r.hci.downErr = errors.New("no such device")

	require.NoError(t, r.radio.Disable(context.Background()))
	assert.Equal(t, 1, r.hci.downs)
	assert.Equal(t, []string{DefaultStackService, DefaultAttachService}, r.sv.stopped)
	assert.Equal(t, power.StateOff, r.power.state)
	assert.Equal(t, r.hci.opens, r.hci.closes)
}

func TestDisableStopStackFailure(t *testing.T) {
	r := newRig()
	r.power.state = power.StateOn
	rejected := errors.New("rejected")
	r.sv.failOn["stop hcid"] = rejected

	err := r.radio.Disable(context.Background())
	assert.ErrorIs(t, err, rejected)
	assert.Equal(t, []string{"stop(hcid)"}, r.j.calls)
	assert.Zero(t, r.hci.opens)
	assert.Equal(t, power.StateOn, r.power.state)
}

func TestDisableOpenFailure(t *testing.T) {
	r := newRig()
	r.power.state = power.StateOn
	noSocket := errors.New("address family not supported")
	r.hci.openErr = noSocket

	err := r.radio.Disable(context.Background())
	assert.ErrorIs(t, err, noSocket)
	assert.Equal(t, []string{DefaultStackService}, r.sv.stopped)
	assert.Equal(t, power.StateOn, r.power.state)
}

func TestDisableStopAttachFailure(t *testing.T) {
	r := newRig()
	r.power.state = power.StateOn
	rejected := errors.New("rejected")
	r.sv.failOn["stop hciattach"] = rejected

	err := r.radio.Disable(context.Background())
	assert.ErrorIs(t, err, rejected)
	assert.NotContains(t, r.j.calls, "power.Set(false)")
	assert.Equal(t, power.StateOn, r.power.state)
}

func TestDisablePowerOffFailure(t *testing.T) {
	r := newRig()
	r.power.state = power.StateOn
	r.power.setErr = errors.New("read-only file system")

	err := r.radio.Disable(context.Background())
	assert.ErrorIs(t, err, r.power.setErr)
	assert.Equal(t, -1, ResultCode(err))
}

func TestDisableCancelledWhileSettling(t *testing.T) {
	r := newRig()
	r.sleep.err = context.DeadlineExceeded

	err := r.radio.Disable(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, r.hci.opens)
}
