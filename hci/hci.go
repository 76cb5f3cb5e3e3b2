// Package hci opens the kernel's Bluetooth HCI control socket and uses it to
// bring a controller up or down and to read its flags.
package hci

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DefaultDeviceID is hci0.
const DefaultDeviceID = 0

var ErrNotSupported = errors.New("hci control sockets are not supported on this platform")

// Prober opens handles to the control interface of one HCI device.
type Prober interface {
	Open(ctx context.Context) (Handle, error)
}

// Handle is a short-lived, exclusively owned handle to the control interface.
// It must be closed by whoever opened it.
type Handle interface {
	// Up asks the kernel to bring the device up, once. An already running
	// device is not an error: EALREADY from HCIDEVUP counts as success and
	// does not use up an attempt of a caller's retry loop.
	Up(ctx context.Context) error

	// Down asks the kernel to bring the device down.
	Down(ctx context.Context) error

	// Flags returns the current device flags.
	Flags(ctx context.Context) (DeviceFlags, error)

	Close() error
}

// IOError describes a failed socket or ioctl call on an HCI device.
type IOError struct {
	Op       string
	DeviceID int
	Err      error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("hci%d: %s: %v", e.DeviceID, e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// DeviceFlags mirrors the flags word of struct hci_dev_info.
type DeviceFlags uint32

// Bits of DeviceFlags, see HCI_UP and friends in the kernel headers.
const (
	FlagUp DeviceFlags = 1 << iota
	FlagInit
	FlagRunning
	FlagPageScan
	FlagInquiryScan
	FlagAuth
	FlagEncrypt
	FlagInquiry
	FlagRaw
)

var flagNames = []string{
	"UP",
	"INIT",
	"RUNNING",
	"PSCAN",
	"ISCAN",
	"AUTH",
	"ENCRYPT",
	"INQUIRY",
	"RAW",
}

// IsUp reports whether the HCI_UP bit is set.
func (f DeviceFlags) IsUp() bool {
	return f&FlagUp != 0
}

func (f DeviceFlags) String() string {
	var names []string
	for i, name := range flagNames {
		if f&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	if rest := f &^ (1<<len(flagNames) - 1); rest != 0 {
		names = append(names, fmt.Sprintf("0x%x", uint32(rest)))
	}
	if len(names) == 0 {
		return "DOWN"
	}
	return strings.Join(names, "|")
}

// SocketProber opens raw HCI sockets for a fixed device index.
type SocketProber struct {
	DeviceID int
}

var _ Prober = (*SocketProber)(nil)

func NewSocketProber(deviceID int) *SocketProber {
	return &SocketProber{DeviceID: deviceID}
}
