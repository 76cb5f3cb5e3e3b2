package supervisor

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/facebookincubator/go-belt/tool/logger"
)

// DefaultSetprop is the Android property tool.
const DefaultSetprop = "setprop"

const (
	propStart = "ctl.start"
	propStop  = "ctl.stop"
)

// Property controls services of an Android-style init through the
// ctl.start and ctl.stop properties.
type Property struct {
	Setprop string

	run func(ctx context.Context, name string, args ...string) ([]byte, error)
}

var _ Supervisor = (*Property)(nil)

func NewProperty(setprop string) *Property {
	if setprop == "" {
		setprop = DefaultSetprop
	}
	return &Property{
		Setprop: setprop,
		run:     runCommand,
	}
}

func (p *Property) Start(ctx context.Context, name string) error {
	return p.set(ctx, propStart, name)
}

func (p *Property) Stop(ctx context.Context, name string) error {
	return p.set(ctx, propStop, name)
}

func (p *Property) set(ctx context.Context, key, name string) error {
	logger.Debugf(ctx, "%s %s %s", p.Setprop, key, name)
	out, err := p.run(ctx, p.Setprop, key, name)
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		logger.Errorf(ctx, "unable to set %s=%s: %v", key, name, err)
		return &Error{Op: key, Service: name, Err: err}
	}
	return nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}
