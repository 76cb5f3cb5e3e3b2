// Package sim simulates the platform a Radio drives: a power rail backed by a
// control file, an HCI device, and a service manager whose firmware attach
// daemon makes the device usable a little while after it starts.
//
// The board lives in a directory: the power control file and a state file
// with the device and daemon state. Platforms created on the same directory,
// in one process or several, see the same board.
package sim

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/xaionaro-go/btpower/hci"
	"github.com/xaionaro-go/btpower/power"
	"github.com/xaionaro-go/btpower/supervisor"
)

const (
	DefaultFirmwareLoadTime = 50 * time.Millisecond
	PowerFileName           = "bluetooth_power_on"
	StateFileName           = "board.yaml"
)

var (
	ErrNoDevice = errors.New("no such device")
	ErrNotReady = errors.New("device not ready")
	ErrRejected = errors.New("request rejected")
	errClosed   = errors.New("handle is closed")
)

// Platform is a simulated board. It is safe for concurrent use.
type Platform struct {
	PowerPath        string
	StatePath        string
	AttachService    string
	StackService     string
	FirmwareLoadTime time.Duration

	power   *power.Direct
	daemons *xsync.MapOf[string, *daemon]
	reject  *xsync.MapOf[string, error]

	// mu guards the state file and the handle counters.
	mu          sync.Mutex
	openHandles int
	totalOpens  int
}

// An Option is a self-referential function, which sets the option specified.
type Option func(*Platform)

func FirmwareLoadTime(d time.Duration) Option {
	return func(p *Platform) { p.FirmwareLoadTime = d }
}

func Services(attach, stack string) Option {
	return func(p *Platform) {
		p.AttachService = attach
		p.StackService = stack
	}
}

// New creates a powered-off platform whose files live in dir. Existing files
// are kept as is, so New attaches to a board left behind by another Platform.
func New(dir string, opts ...Option) (*Platform, error) {
	p := &Platform{
		PowerPath:        filepath.Join(dir, PowerFileName),
		StatePath:        filepath.Join(dir, StateFileName),
		AttachService:    "hciattach",
		StackService:     "hcid",
		FirmwareLoadTime: DefaultFirmwareLoadTime,

		daemons: xsync.NewMapOf[string, *daemon](),
		reject:  xsync.NewMapOf[string, error](),
	}
	for _, opt := range opts {
		opt(p)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if _, err := os.Stat(p.PowerPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(p.PowerPath, []byte{'N'}, 0o644); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	if _, err := p.view(); err != nil {
		return nil, err
	}
	p.power = power.NewDirect(p.PowerPath)
	return p, nil
}

// Power returns the power control of the platform.
func (p *Platform) Power() power.Control {
	return p.power
}

// Prober returns the HCI prober of the platform's only device.
func (p *Platform) Prober() hci.Prober {
	return &prober{p: p}
}

// Supervisor returns the platform's service manager.
func (p *Platform) Supervisor() supervisor.Supervisor {
	return &serviceManager{p: p}
}

// Reject makes the next start or stop requests for name fail with err;
// a nil err clears it.
func (p *Platform) Reject(name string, err error) {
	if err == nil {
		p.reject.Delete(name)
		return
	}
	p.reject.Store(name, err)
}

// Running reports whether the named daemon is running.
func (p *Platform) Running(name string) bool {
	st, err := p.view()
	return err == nil && st.isRunning(name)
}

// DeviceUp reports whether the HCI device is up.
func (p *Platform) DeviceUp() bool {
	st, err := p.view()
	return err == nil && st.DeviceUp && st.FirmwareLoaded
}

// OpenHandles returns the number of HCI handles currently open.
func (p *Platform) OpenHandles() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.openHandles
}

// TotalOpens returns how many HCI handles were ever opened.
func (p *Platform) TotalOpens() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalOpens
}

func (p *Platform) powered(ctx context.Context) bool {
	st, err := p.power.Get(ctx)
	return err == nil && st == power.StateOn
}

func (p *Platform) loadFirmware(ctx context.Context) {
	if !p.powered(ctx) {
		return
	}
	err := p.update(func(st *boardState) {
		st.FirmwareLoaded = true
	})
	if err != nil {
		logger.Errorf(ctx, "sim: unable to record the loaded firmware: %v", err)
	}
}

// setRunning records a daemon start or stop; stopping the attach daemon
// takes the device away.
func (p *Platform) setRunning(ctx context.Context, name string, running bool) {
	err := p.update(func(st *boardState) {
		st.setRunning(name, running)
		if !running && name == p.AttachService {
			st.FirmwareLoaded = false
			st.DeviceUp = false
		}
	})
	if err != nil {
		logger.Errorf(ctx, "sim: unable to record the state of %s: %v", name, err)
	}
}
