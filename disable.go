package btpower

import (
	"context"

	"github.com/Southclaws/fault/ftag"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/btpower/hci"
)

// Disable stops the protocol stack daemon, lets it release the device,
// brings the HCI device down, stops the firmware attach daemon and powers the
// radio off. Bringing the device down is best-effort; any other failure
// aborts the sequence.
func (r *Radio) Disable(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "Disable")
	defer func() { logger.Debugf(ctx, "/Disable: %v", _err) }()

	s := r.newSequence(OperationDisable)

	s.enter(ctx, StateStoppingStack)
	logger.Infof(ctx, "stopping %s daemon", r.stackService)
	if err := r.supervisor.Stop(ctx, r.stackService); err != nil {
		return s.fail(ctx, wrapStep(ctx, err, s.id, s.state, ftag.Internal, "cannot stop the protocol stack daemon"))
	}

	s.enter(ctx, StateSettlingDown)
	if err := r.sleep(ctx, r.settleDownDelay); err != nil {
		return s.fail(ctx, wrapStep(ctx, err, s.id, s.state, kindOf(err), "interrupted while the stack releases the device"))
	}

	s.enter(ctx, StateBringingDown)
	h, err := r.prober.Open(ctx)
	if err != nil {
		return s.fail(ctx, wrapStep(ctx, err, s.id, s.state, ftag.Internal, "cannot open the HCI control socket"))
	}
	bringDown(ctx, h)

	s.enter(ctx, StateStoppingAttach)
	logger.Infof(ctx, "stopping %s daemon", r.attachService)
	if err := r.supervisor.Stop(ctx, r.attachService); err != nil {
		return s.fail(ctx, wrapStep(ctx, err, s.id, s.state, ftag.Internal, "cannot stop the firmware attach daemon"))
	}

	s.enter(ctx, StatePoweringOff)
	if err := r.power.Set(ctx, false); err != nil {
		return s.fail(ctx, wrapStep(ctx, err, s.id, s.state, ftag.Internal, "cannot power the radio off"))
	}

	s.enter(ctx, StateDisabled)
	return nil
}

// bringDown ignores the result of HCIDEVDOWN: the attach daemon is about to
// be stopped and the rail cut anyway.
func bringDown(ctx context.Context, h hci.Handle) {
	defer closeHandle(ctx, h)
	if err := h.Down(ctx); err != nil {
		logger.Debugf(ctx, "ignoring failure to bring the HCI device down: %v", err)
	}
}
