//go:build linux

package hci

import (
	"context"
	"strings"
	"unsafe"

	"github.com/facebookincubator/go-belt/tool/logger"
	"golang.org/x/sys/unix"
)

type socketHandle struct {
	fd int
	id int
}

// Open creates a fresh AF_BLUETOOTH raw socket bound to nothing; the ioctls
// used here address the device by index.
func (p *SocketProber) Open(ctx context.Context) (Handle, error) {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_RAW|unix.SOCK_CLOEXEC, unix.BTPROTO_HCI)
	if err != nil {
		logger.Errorf(ctx, "failed to create bluetooth hci socket: %v", err)
		return nil, &IOError{Op: "socket", DeviceID: p.DeviceID, Err: err}
	}
	return &socketHandle{fd: fd, id: p.DeviceID}, nil
}

func (h *socketHandle) Up(ctx context.Context) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(h.fd), hciUpDevice, uintptr(h.id))
	return upResult(ctx, h.id, errno)
}

func upResult(ctx context.Context, id int, errno unix.Errno) error {
	switch errno {
	case 0:
		return nil
	case unix.EALREADY:
		logger.Debugf(ctx, "hci%d is already up", id)
		return nil
	}
	return &IOError{Op: "HCIDEVUP", DeviceID: id, Err: errno}
}

func (h *socketHandle) Down(ctx context.Context) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(h.fd), hciDownDevice, uintptr(h.id))
	if errno != 0 {
		return &IOError{Op: "HCIDEVDOWN", DeviceID: h.id, Err: errno}
	}
	return nil
}

func (h *socketHandle) Flags(ctx context.Context) (DeviceFlags, error) {
	i := hciDevInfo{id: uint16(h.id)}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(h.fd), hciGetDeviceInfo, uintptr(unsafe.Pointer(&i)))
	if errno != 0 {
		logger.Debugf(ctx, "hciGetDeviceInfo failed: %v", errno)
		return 0, &IOError{Op: "HCIGETDEVINFO", DeviceID: h.id, Err: errno}
	}
	logger.Tracef(ctx, "dev: %s flags: %s", strings.Trim(string(i.name[:]), "\000"), DeviceFlags(i.flags))
	return DeviceFlags(i.flags), nil
}

func (h *socketHandle) Close() error {
	if h.fd < 0 {
		return nil
	}
	fd := h.fd
	h.fd = -1
	return unix.Close(fd)
}
