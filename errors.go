package btpower

import (
	"context"
	"errors"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fctx"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

// ErrDeviceTimeout is returned by Enable when the HCI device did not come up
// within the retry budget. The firmware attach daemon is expected to have
// loaded the firmware and switched the device to ready by then.
var ErrDeviceTimeout = errors.New("timeout waiting for HCI device to come up")

// ResultCode collapses the result of Enable or Disable into 0 (success) or
// -1 (failure).
func ResultCode(err error) int {
	if err != nil {
		return -1
	}
	return 0
}

func wrapStep(
	ctx context.Context,
	err error,
	opID string,
	step SequenceState,
	kind ftag.Kind,
	msg string,
) error {
	return fault.Wrap(err,
		fctx.With(ctx, "op_id", opID, "error_at", step.String()),
		ftag.With(kind),
		fmsg.With(msg),
	)
}
