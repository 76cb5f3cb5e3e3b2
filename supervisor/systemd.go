package supervisor

import (
	"context"
	"strings"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/godbus/dbus/v5"
)

const (
	systemdDest    = "org.freedesktop.systemd1"
	systemdPath    = dbus.ObjectPath("/org/freedesktop/systemd1")
	systemdManager = "org.freedesktop.systemd1.Manager"

	// JobModeReplace queues the job, replacing conflicting pending jobs.
	JobModeReplace = "replace"
)

type unitCaller interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// Systemd drives units through the systemd manager on the system bus.
type Systemd struct {
	conn    *dbus.Conn
	manager unitCaller
	mode    string
}

var _ Supervisor = (*Systemd)(nil)

// NewSystemd connects to the system bus. The connection is owned by the
// returned value; release it with Close.
func NewSystemd(ctx context.Context) (*Systemd, error) {
	conn, err := dbus.ConnectSystemBus(dbus.WithContext(ctx))
	if err != nil {
		logger.Errorf(ctx, "unable to connect to the system bus: %v", err)
		return nil, err
	}
	return &Systemd{
		conn:    conn,
		manager: conn.Object(systemdDest, systemdPath),
		mode:    JobModeReplace,
	}, nil
}

func (s *Systemd) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *Systemd) Start(ctx context.Context, name string) error {
	return s.call(ctx, "StartUnit", name)
}

func (s *Systemd) Stop(ctx context.Context, name string) error {
	return s.call(ctx, "StopUnit", name)
}

func (s *Systemd) call(ctx context.Context, method, name string) error {
	unit := unitName(name)
	var job dbus.ObjectPath
	err := s.manager.CallWithContext(ctx, systemdManager+"."+method, 0, unit, s.mode).Store(&job)
	if err != nil {
		logger.Errorf(ctx, "%s(%s) failed: %v", method, unit, err)
		return &Error{Op: method, Service: unit, Err: err}
	}
	logger.Debugf(ctx, "%s(%s) queued as %s", method, unit, job)
	return nil
}

// unitName turns a bare daemon name into a service unit name.
func unitName(name string) string {
	if strings.Contains(name, ".") {
		return name
	}
	return name + ".service"
}
