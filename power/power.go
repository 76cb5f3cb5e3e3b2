// Package power toggles the power rail of the Bluetooth radio.
//
// Two interchangeable backends are provided: Direct, a single control file
// (typically a board module parameter), and RFKill, which locates the
// bluetooth entry of the kernel's rfkill class and uses its state file.
package power

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

type State int

const (
	StateUnknown State = 0
	StateOff     State = 1
	StateOn      State = 2
)

func (s State) String() string {
	str := []string{
		"Unknown",
		"Off",
		"On",
	}
	if int(s) < 0 || int(s) >= len(str) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return str[int(s)]
}

// Control reads and writes the power state of the radio.
//
// Get never caches: every call consults the backend. StateUnknown with a nil
// error means the backend answered with something that is neither on nor off.
type Control interface {
	Get(ctx context.Context) (State, error)
	Set(ctx context.Context, on bool) error
}

var (
	// ErrShortIO is reported when fewer bytes than requested were transferred.
	ErrShortIO = errors.New("short read/write")

	// ErrNoBluetoothEntry is reported when no rfkill entry of type "bluetooth" exists.
	ErrNoBluetoothEntry = errors.New("no bluetooth rfkill entry found")
)

// IOError describes a failed access to a power control file. The underlying
// OS error (and its errno) is reachable with errors.Is/errors.As.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("power: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func readByte(path string) (byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	var b [1]byte
	n, err := f.Read(b[:])
	if n != 1 {
		if err == nil || err == io.EOF {
			err = ErrShortIO
		}
		return 0, &IOError{Op: "read", Path: path, Err: err}
	}
	return b[0], nil
}

// openForWrite opens a control file for a single one-byte write.
var openForWrite = func(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_WRONLY, 0)
}

func writeByte(path string, b byte) error {
	f, err := openForWrite(path)
	if err != nil {
		return &IOError{Op: "open", Path: path, Err: err}
	}

	n, err := f.Write([]byte{b})
	if err == nil && n != 1 {
		err = ErrShortIO
	}
	if err != nil {
		f.Close()
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &IOError{Op: "close", Path: path, Err: err}
	}
	return nil
}
