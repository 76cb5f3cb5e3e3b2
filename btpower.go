// Package btpower sequences the power-up and power-down of a Bluetooth radio
// on embedded Linux: it toggles the power rail, starts the firmware attach
// daemon, waits for the HCI device to come up, starts the protocol stack
// daemon, and answers whether the radio is usable.
//
// A Radio performs no locking. Enable, Disable and IsEnabled mutate or read
// shared platform state (the power rail, the daemons, the HCI device) and
// must be serialized by the caller.
package btpower

import (
	"context"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/google/uuid"
	"github.com/xaionaro-go/btpower/hci"
	"github.com/xaionaro-go/btpower/power"
	"github.com/xaionaro-go/btpower/supervisor"
)

// Radio drives one Bluetooth radio.
type Radio struct {
	power      power.Control
	prober     hci.Prober
	supervisor supervisor.Supervisor

	attachService string
	stackService  string

	retryAttempts   int
	retryInterval   time.Duration
	settleUpDelay   time.Duration
	settleDownDelay time.Duration

	sleep  SleepFunc
	events *Events
}

// New returns a Radio using the given power backend, HCI prober and service
// supervisor.
func New(
	pc power.Control,
	prober hci.Prober,
	sv supervisor.Supervisor,
	opts ...Option,
) *Radio {
	r := &Radio{
		power:      pc,
		prober:     prober,
		supervisor: sv,

		attachService: DefaultAttachService,
		stackService:  DefaultStackService,

		retryAttempts:   DefaultRetryAttempts,
		retryInterval:   DefaultRetryInterval,
		settleUpDelay:   DefaultSettleUpDelay,
		settleDownDelay: DefaultSettleDownDelay,

		sleep: Sleep,
	}
	r.Option(opts...)
	return r
}

// Option applies the options specified.
func (r *Radio) Option(opts ...Option) {
	for _, opt := range opts {
		opt(r)
	}
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// sequence tracks one run of Enable or Disable.
type sequence struct {
	r     *Radio
	op    Operation
	id    string
	state SequenceState
}

func (r *Radio) newSequence(op Operation) *sequence {
	return &sequence{
		r:     r,
		op:    op,
		id:    uuid.NewString(),
		state: StateIdle,
	}
}

func (s *sequence) enter(ctx context.Context, state SequenceState) {
	logger.Debugf(ctx, "%s[%s]: %s -> %s", s.op, s.id, s.state, state)
	s.state = state
	s.publish(state, nil)
}

func (s *sequence) fail(ctx context.Context, err error) error {
	logger.Errorf(ctx, "%s[%s] failed in state %s: %v", s.op, s.id, s.state, err)
	s.state = StateFailed
	s.publish(StateFailed, err)
	return err
}

func (s *sequence) publish(state SequenceState, err error) {
	if s.r.events == nil {
		return
	}
	s.r.events.publish(Event{
		OpID:      s.id,
		Operation: s.op,
		State:     state,
		Err:       err,
		Time:      time.Now(),
	})
}

func closeHandle(ctx context.Context, h hci.Handle) {
	if err := h.Close(); err != nil {
		logger.Warnf(ctx, "unable to close the HCI handle: %v", err)
	}
}
