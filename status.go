package btpower

import (
	"context"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/btpower/hci"
	"github.com/xaionaro-go/btpower/power"
)

// IsEnabled reports whether the radio is powered and its HCI device is up.
//
// StatusUnknown is returned only when the power state cannot be read. A
// powered radio whose device cannot be queried is StatusDisabled.
func (r *Radio) IsEnabled(ctx context.Context) (_ret Status) {
	logger.Tracef(ctx, "IsEnabled")
	defer func() { logger.Tracef(ctx, "/IsEnabled: %s", _ret) }()

	st, err := r.power.Get(ctx)
	if err != nil {
		logger.Debugf(ctx, "unable to read the power state: %v", err)
		return StatusUnknown
	}
	switch st {
	case power.StateOff:
		return StatusDisabled
	case power.StateOn:
	default:
		return StatusUnknown
	}

	h, err := r.prober.Open(ctx)
	if err != nil {
		logger.Debugf(ctx, "unable to open the HCI control socket: %v", err)
		return StatusDisabled
	}
	defer closeHandle(ctx, h)

	return deviceStatus(ctx, h)
}

func deviceStatus(ctx context.Context, h hci.Handle) Status {
	flags, err := h.Flags(ctx)
	if err != nil {
		logger.Debugf(ctx, "unable to read the HCI device flags: %v", err)
		return StatusDisabled
	}
	if !flags.IsUp() {
		return StatusDisabled
	}
	return StatusEnabled
}
