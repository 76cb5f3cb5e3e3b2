package supervisor

import (
	"context"
	"errors"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeManager struct {
	methods []string
	args    [][]interface{}
	err     error
}

func (m *fakeManager) CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call {
	m.methods = append(m.methods, method)
	m.args = append(m.args, args)
	if m.err != nil {
		return &dbus.Call{Err: m.err}
	}
	return &dbus.Call{Body: []interface{}{dbus.ObjectPath("/org/freedesktop/systemd1/job/42")}}
}

func TestSystemdStartStop(t *testing.T) {
	ctx := context.Background()
	m := &fakeManager{}
	s := &Systemd{manager: m, mode: JobModeReplace}

	require.NoError(t, s.Start(ctx, "hciattach"))
	require.NoError(t, s.Stop(ctx, "hcid.service"))

	assert.Equal(t, []string{
		"org.freedesktop.systemd1.Manager.StartUnit",
		"org.freedesktop.systemd1.Manager.StopUnit",
	}, m.methods)
	assert.Equal(t, []interface{}{"hciattach.service", "replace"}, m.args[0])
	assert.Equal(t, []interface{}{"hcid.service", "replace"}, m.args[1])
}

func TestSystemdRejected(t *testing.T) {
	rejected := errors.New("Unit hcid.service not found.")
	s := &Systemd{manager: &fakeManager{err: rejected}, mode: JobModeReplace}

	err := s.Start(context.Background(), "hcid")
	var svErr *Error
	require.ErrorAs(t, err, &svErr)
	assert.Equal(t, "StartUnit", svErr.Op)
	assert.Equal(t, "hcid.service", svErr.Service)
	assert.ErrorIs(t, err, rejected)
}

func TestSystemdCloseWithoutConn(t *testing.T) {
	assert.NoError(t, (&Systemd{}).Close())
}

func TestPropertyStartStop(t *testing.T) {
	ctx := context.Background()
	var got [][]string
	p := NewProperty("")
	p.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		got = append(got, append([]string{name}, args...))
		return nil, nil
	}

	require.NoError(t, p.Start(ctx, "hciattach"))
	require.NoError(t, p.Stop(ctx, "hcid"))
	assert.Equal(t, [][]string{
		{"setprop", "ctl.start", "hciattach"},
		{"setprop", "ctl.stop", "hcid"},
	}, got)
}

func TestPropertyFailure(t *testing.T) {
	exitErr := errors.New("exit status 1")
	p := NewProperty("/system/bin/setprop")
	p.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte("permission denied\n"), exitErr
	}

	err := p.Start(context.Background(), "hciattach")
	var svErr *Error
	require.ErrorAs(t, err, &svErr)
	assert.Equal(t, "ctl.start", svErr.Op)
	assert.Equal(t, "hciattach", svErr.Service)
	assert.ErrorIs(t, err, exitErr)
	assert.Contains(t, err.Error(), "permission denied")
}
