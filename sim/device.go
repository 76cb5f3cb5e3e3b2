package sim

import (
	"context"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/btpower/hci"
)

const simDeviceID = 0

type prober struct {
	p *Platform
}

func (pr *prober) Open(ctx context.Context) (hci.Handle, error) {
	pr.p.mu.Lock()
	defer pr.p.mu.Unlock()
	pr.p.openHandles++
	pr.p.totalOpens++
	return &handle{p: pr.p}, nil
}

type handle struct {
	p      *Platform
	closed bool
}

func (h *handle) Up(ctx context.Context) error {
	// power is read outside of the lock: it goes through the control file
	powered := h.p.powered(ctx)

	h.p.mu.Lock()
	defer h.p.mu.Unlock()
	st, err := h.state("HCIDEVUP")
	if err != nil {
		return err
	}
	if !powered || !st.FirmwareLoaded {
		return &hci.IOError{Op: "HCIDEVUP", DeviceID: simDeviceID, Err: ErrNotReady}
	}
	if st.DeviceUp {
		return nil
	}
	logger.Debugf(ctx, "sim: hci%d up", simDeviceID)
	st.DeviceUp = true
	return h.save("HCIDEVUP", st)
}

func (h *handle) Down(ctx context.Context) error {
	h.p.mu.Lock()
	defer h.p.mu.Unlock()
	st, err := h.state("HCIDEVDOWN")
	if err != nil {
		return err
	}
	if !st.FirmwareLoaded {
		return &hci.IOError{Op: "HCIDEVDOWN", DeviceID: simDeviceID, Err: ErrNoDevice}
	}
	logger.Debugf(ctx, "sim: hci%d down", simDeviceID)
	st.DeviceUp = false
	return h.save("HCIDEVDOWN", st)
}

func (h *handle) Flags(ctx context.Context) (hci.DeviceFlags, error) {
	h.p.mu.Lock()
	defer h.p.mu.Unlock()
	st, err := h.state("HCIGETDEVINFO")
	if err != nil {
		return 0, err
	}
	if !st.FirmwareLoaded {
		return 0, &hci.IOError{Op: "HCIGETDEVINFO", DeviceID: simDeviceID, Err: ErrNoDevice}
	}
	if st.DeviceUp {
		return hci.FlagUp | hci.FlagRunning, nil
	}
	return 0, nil
}

// state must be called with h.p.mu held.
func (h *handle) state(op string) (boardState, error) {
	if h.closed {
		return boardState{}, &hci.IOError{Op: op, DeviceID: simDeviceID, Err: errClosed}
	}
	st, err := h.p.readState()
	if err != nil {
		return st, &hci.IOError{Op: op, DeviceID: simDeviceID, Err: err}
	}
	return st, nil
}

func (h *handle) save(op string, st boardState) error {
	if err := h.p.writeState(st); err != nil {
		return &hci.IOError{Op: op, DeviceID: simDeviceID, Err: err}
	}
	return nil
}

func (h *handle) Close() error {
	h.p.mu.Lock()
	defer h.p.mu.Unlock()
	if h.closed {
		return errClosed
	}
	h.closed = true
	h.p.openHandles--
	return nil
}
