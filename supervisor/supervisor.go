// Package supervisor asks the platform's service manager to start or stop
// named daemons.
//
// Requests are fire-and-confirm: a call returns once the service manager has
// accepted the request, not once the daemon is ready.
package supervisor

import (
	"context"
	"fmt"
)

type Supervisor interface {
	Start(ctx context.Context, name string) error
	Stop(ctx context.Context, name string) error
}

// Error reports a start or stop request the service manager rejected.
type Error struct {
	Op      string
	Service string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("supervisor: %s %s: %v", e.Op, e.Service, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
