//go:build !linux

package hci

import (
	"context"
)

func (p *SocketProber) Open(ctx context.Context) (Handle, error) {
	return nil, &IOError{Op: "socket", DeviceID: p.DeviceID, Err: ErrNotSupported}
}
