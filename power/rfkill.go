package power

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/facebookincubator/go-belt/tool/logger"
)

// DefaultClassPath is where the kernel exposes rfkill switches.
const DefaultClassPath = "/sys/class/rfkill"

const (
	rfkillTypeBluetooth = "bluetooth"
	rfkillOn            = '1'
	rfkillOff           = '0'
)

// RFKill drives the power rail through the state file of the first rfkill
// entry whose type is "bluetooth".
//
// The entry is looked up on first use and remembered for the lifetime of the
// instance. A failed lookup is remembered too: the instance stays unusable.
type RFKill struct {
	ClassPath string

	once      sync.Once
	index     int
	statePath string
	scanErr   error

	readType func(path string) ([]byte, error)
}

var _ Control = (*RFKill)(nil)

// NewRFKill returns an RFKill backend scanning classPath; an empty classPath
// selects DefaultClassPath.
func NewRFKill(classPath string) *RFKill {
	if classPath == "" {
		classPath = DefaultClassPath
	}
	return &RFKill{
		ClassPath: classPath,
		index:     -1,
		readType:  readPrefix,
	}
}

// Index returns the index N of the rfkill<N> entry in use, scanning for it on
// the first call.
func (r *RFKill) Index(ctx context.Context) (int, error) {
	r.once.Do(func() {
		r.index, r.scanErr = r.scan(ctx)
		if r.scanErr == nil {
			r.statePath = r.entryPath(r.index, "state")
		}
	})
	return r.index, r.scanErr
}

func (r *RFKill) entryPath(index int, file string) string {
	return filepath.Join(r.ClassPath, fmt.Sprintf("rfkill%d", index), file)
}

func (r *RFKill) scan(ctx context.Context) (int, error) {
	for id := 0; ; id++ {
		path := r.entryPath(id, "type")
		buf, err := r.readType(path)
		if err != nil {
			logger.Warnf(ctx, "open(%s) failed: %v", path, err)
			return -1, &IOError{Op: "scan", Path: r.ClassPath, Err: fmt.Errorf("%w: %w", ErrNoBluetoothEntry, err)}
		}
		if len(buf) >= len(rfkillTypeBluetooth) && string(buf[:len(rfkillTypeBluetooth)]) == rfkillTypeBluetooth {
			logger.Debugf(ctx, "found bluetooth rfkill entry %d", id)
			return id, nil
		}
	}
}

func (r *RFKill) Get(ctx context.Context) (State, error) {
	if _, err := r.Index(ctx); err != nil {
		return StateUnknown, err
	}
	b, err := readByte(r.statePath)
	if err != nil {
		logger.Errorf(ctx, "unable to read the rfkill state: %v", err)
		return StateUnknown, err
	}
	switch b {
	case rfkillOn:
		return StateOn, nil
	case rfkillOff:
		return StateOff, nil
	}
	logger.Debugf(ctx, "unexpected rfkill state byte %q in %s", b, r.statePath)
	return StateUnknown, nil
}

func (r *RFKill) Set(ctx context.Context, on bool) error {
	if _, err := r.Index(ctx); err != nil {
		return err
	}
	b := byte(rfkillOff)
	if on {
		b = rfkillOn
	}
	logger.Debugf(ctx, "writing %q to %s", b, r.statePath)
	if err := writeByte(r.statePath, b); err != nil {
		logger.Errorf(ctx, "unable to set the rfkill state: %v", err)
		return err
	}
	return nil
}

// readPrefix reads at most 16 bytes; rfkill type names are shorter than that.
func readPrefix(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, 16)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return buf[:n], nil
}
