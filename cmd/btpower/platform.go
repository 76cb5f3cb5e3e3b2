package main

import (
	"context"
	"fmt"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/btpower"
	"github.com/xaionaro-go/btpower/config"
	"github.com/xaionaro-go/btpower/hci"
	"github.com/xaionaro-go/btpower/power"
	"github.com/xaionaro-go/btpower/sim"
	"github.com/xaionaro-go/btpower/supervisor"
)

// newRadio builds a Radio out of the backends selected in cfg. The returned
// function releases what the backends hold.
func newRadio(
	ctx context.Context,
	cfg *config.Config,
	opts ...btpower.Option,
) (*btpower.Radio, func(), error) {
	var (
		board    *sim.Platform
		closers  []func() error
		pc       power.Control
		prober   hci.Prober
		sv       supervisor.Supervisor
		boardErr error
	)
	cleanup := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warnf(ctx, "cleanup: %v", err)
			}
		}
	}
	simBoard := func() (*sim.Platform, error) {
		if board == nil && boardErr == nil {
			board, boardErr = sim.New(
				cfg.Sim.Dir,
				sim.FirmwareLoadTime(cfg.Sim.FirmwareLoad()),
				sim.Services(cfg.Supervisor.Attach, cfg.Supervisor.Stack),
			)
		}
		return board, boardErr
	}

	switch cfg.Power.Backend {
	case config.PowerDirect:
		pc = power.NewDirect(cfg.Power.Path)
	case config.PowerRFKill:
		pc = power.NewRFKill(cfg.Power.ClassPath)
	case config.PowerSim:
		b, err := simBoard()
		if err != nil {
			return nil, cleanup, fmt.Errorf("unable to set up the simulated board: %w", err)
		}
		pc = b.Power()
	default:
		return nil, cleanup, fmt.Errorf("unknown power backend %q", cfg.Power.Backend)
	}

	switch cfg.HCI.Backend {
	case config.HCISocket:
		prober = hci.NewSocketProber(cfg.HCI.Device)
	case config.HCISim:
		b, err := simBoard()
		if err != nil {
			return nil, cleanup, fmt.Errorf("unable to set up the simulated board: %w", err)
		}
		prober = b.Prober()
	default:
		return nil, cleanup, fmt.Errorf("unknown hci backend %q", cfg.HCI.Backend)
	}

	switch cfg.Supervisor.Backend {
	case config.SupervisorSystemd:
		s, err := supervisor.NewSystemd(ctx)
		if err != nil {
			return nil, cleanup, fmt.Errorf("unable to reach systemd: %w", err)
		}
		closers = append(closers, s.Close)
		sv = s
	case config.SupervisorProperty:
		sv = supervisor.NewProperty(cfg.Supervisor.Setprop)
	case config.SupervisorSim:
		b, err := simBoard()
		if err != nil {
			return nil, cleanup, fmt.Errorf("unable to set up the simulated board: %w", err)
		}
		sv = b.Supervisor()
	default:
		return nil, cleanup, fmt.Errorf("unknown supervisor backend %q", cfg.Supervisor.Backend)
	}

	opts = append([]btpower.Option{
		btpower.Services(cfg.Supervisor.Attach, cfg.Supervisor.Stack),
		btpower.RetryBudget(cfg.Timing.RetryAttempts, cfg.Timing.RetryInterval()),
		btpower.SettleDelays(cfg.Timing.SettleUp(), cfg.Timing.SettleDown()),
	}, opts...)
	return btpower.New(pc, prober, sv, opts...), cleanup, nil
}
