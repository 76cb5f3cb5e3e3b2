package sim

import (
	"context"
	"sync"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/btpower/supervisor"
	"github.com/xaionaro-go/ctxflow"
)

type serviceManager struct {
	p *Platform
}

func (m *serviceManager) Start(ctx context.Context, name string) error {
	if err, ok := m.p.reject.Load(name); ok {
		return &supervisor.Error{Op: "start", Service: name, Err: err}
	}
	d, _ := m.p.daemons.LoadOrCompute(name, func() *daemon {
		return m.p.newDaemon(name)
	})
	if d.isRunning() {
		return nil
	}
	if err := d.loop.Start(ctx); err != nil {
		return &supervisor.Error{Op: "start", Service: name, Err: err}
	}
	return nil
}

func (m *serviceManager) Stop(ctx context.Context, name string) error {
	if err, ok := m.p.reject.Load(name); ok {
		return &supervisor.Error{Op: "stop", Service: name, Err: err}
	}
	d, ok := m.p.daemons.Load(name)
	if !ok || !d.isRunning() {
		// possibly started by another Platform on the same board
		if m.p.Running(name) {
			logger.Debugf(ctx, "sim: %s stopped", name)
			m.p.setRunning(ctx, name, false)
		}
		return nil
	}
	if err := d.loop.Stop(); err != nil {
		return &supervisor.Error{Op: "stop", Service: name, Err: err}
	}
	return nil
}

// daemon is a simulated background process.
type daemon struct {
	name string
	p    *Platform
	loop ctxflow.StartStopper[ctxflow.StartStopperBackendFuncs]

	mu      sync.Mutex
	running bool
	attach  *time.Timer
}

func (p *Platform) newDaemon(name string) *daemon {
	d := &daemon{name: name, p: p}
	d.loop = ctxflow.StartStopper[ctxflow.StartStopperBackendFuncs]{
		StartStopper: ctxflow.StartStopperBackendFuncs{
			StartFunc: d.doStart,
			StopFunc:  d.doStop,
		},
	}
	return d
}

func (d *daemon) isRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

func (d *daemon) doStart(ctx context.Context, args ...any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	logger.Debugf(ctx, "sim: %s started", d.name)
	d.running = true
	d.p.setRunning(ctx, d.name, true)
	if d.name != d.p.AttachService {
		return nil
	}
	// the firmware upload only succeeds on a powered radio; like the real
	// daemon, a failed upload does not make the start request fail
	loadCtx := context.WithoutCancel(ctx)
	d.attach = time.AfterFunc(d.p.FirmwareLoadTime, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.running {
			d.p.loadFirmware(loadCtx)
		}
	})
	return nil
}

func (d *daemon) doStop(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	logger.Debugf(ctx, "sim: %s stopped", d.name)
	d.running = false
	if d.attach != nil {
		d.attach.Stop()
		d.attach = nil
	}
	d.p.setRunning(ctx, d.name, false)
	return nil
}
