package btpower

import (
	"context"
	"time"
)

const (
	// DefaultAttachService loads the firmware and attaches the UART to the
	// HCI layer.
	DefaultAttachService = "hciattach"

	// DefaultStackService runs the Bluetooth protocol stack.
	DefaultStackService = "hcid"

	DefaultRetryAttempts   = 1000
	DefaultRetryInterval   = 10 * time.Millisecond
	DefaultSettleUpDelay   = 5 * time.Second
	DefaultSettleDownDelay = 500 * time.Millisecond
)

// SleepFunc waits for d, or less if ctx is done, in which case it returns
// ctx.Err().
type SleepFunc func(ctx context.Context, d time.Duration) error

// An Option is a self-referential function, which sets the option specified.
type Option func(*Radio)

// Services sets the names of the firmware attach and protocol stack daemons.
func Services(attach, stack string) Option {
	return func(r *Radio) {
		r.attachService = attach
		r.stackService = stack
	}
}

// RetryBudget sets how many times, and how often, Enable tries to bring the
// HCI device up before giving up. Non-positive attempts are treated as one.
func RetryBudget(attempts int, interval time.Duration) Option {
	return func(r *Radio) {
		if attempts < 1 {
			attempts = 1
		}
		r.retryAttempts = attempts
		r.retryInterval = interval
	}
}

// SettleDelays sets the pause after starting the stack daemon (up) and after
// stopping it (down).
func SettleDelays(up, down time.Duration) Option {
	return func(r *Radio) {
		r.settleUpDelay = up
		r.settleDownDelay = down
	}
}

// WithSleep replaces the function used for every delay of the sequences.
func WithSleep(f SleepFunc) Option {
	return func(r *Radio) {
		r.sleep = f
	}
}

// WithEvents makes the Radio publish its sequence transitions to e.
func WithEvents(e *Events) Option {
	return func(r *Radio) {
		r.events = e
	}
}
