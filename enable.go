package btpower

import (
	"context"
	"errors"
	"fmt"

	"github.com/Southclaws/fault/ftag"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/btpower/hci"
)

// Enable powers the radio on, starts the firmware attach daemon, waits for
// the HCI device to come up, starts the protocol stack daemon and lets it
// settle.
//
// On failure nothing already done is undone. The power
// rail stays on and started daemons keep running, so Enable may simply be
// called again, or Disable may be used to clean up.
func (r *Radio) Enable(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "Enable")
	defer func() { logger.Debugf(ctx, "/Enable: %v", _err) }()

	s := r.newSequence(OperationEnable)

	s.enter(ctx, StatePoweringOn)
	if err := r.power.Set(ctx, true); err != nil {
		return s.fail(ctx, wrapStep(ctx, err, s.id, s.state, ftag.Internal, "cannot power the radio on"))
	}

	s.enter(ctx, StateStartingAttach)
	logger.Infof(ctx, "starting %s daemon", r.attachService)
	if err := r.supervisor.Start(ctx, r.attachService); err != nil {
		return s.fail(ctx, wrapStep(ctx, err, s.id, s.state, ftag.Internal, "cannot start the firmware attach daemon"))
	}

	s.enter(ctx, StateWaitingForDevice)
	if err := r.waitForDevice(ctx); err != nil {
		return s.fail(ctx, wrapStep(ctx, err, s.id, s.state, kindOf(err), "HCI device did not come up"))
	}

	s.enter(ctx, StateStartingStack)
	logger.Infof(ctx, "starting %s daemon", r.stackService)
	if err := r.supervisor.Start(ctx, r.stackService); err != nil {
		return s.fail(ctx, wrapStep(ctx, err, s.id, s.state, ftag.Internal, "cannot start the protocol stack daemon"))
	}

	s.enter(ctx, StateSettlingUp)
	if err := r.sleep(ctx, r.settleUpDelay); err != nil {
		return s.fail(ctx, wrapStep(ctx, err, s.id, s.state, kindOf(err), "interrupted while the stack settles"))
	}

	s.enter(ctx, StateEnabled)
	return nil
}

// waitForDevice tries to bring the device up until it succeeds or the retry
// budget is spent. Every attempt uses its own handle, released before the
// pause. Failing to open a handle at all is not retried.
func (r *Radio) waitForDevice(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= r.retryAttempts; attempt++ {
		h, err := r.prober.Open(ctx)
		if err != nil {
			return err
		}
		lastErr = bringUp(ctx, h)
		if lastErr == nil {
			logger.Debugf(ctx, "HCI device is up after %d attempt(s)", attempt)
			return nil
		}
		logger.Tracef(ctx, "attempt %d/%d: %v", attempt, r.retryAttempts, lastErr)
		if err := r.sleep(ctx, r.retryInterval); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrDeviceTimeout, r.retryAttempts, lastErr)
}

func bringUp(ctx context.Context, h hci.Handle) error {
	defer closeHandle(ctx, h)
	return h.Up(ctx)
}

func kindOf(err error) ftag.Kind {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ftag.Cancelled
	}
	return ftag.Internal
}
