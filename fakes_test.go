package btpower

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xaionaro-go/btpower/hci"
	"github.com/xaionaro-go/btpower/power"
)

// journal records the calls made on the fakes, in order.
type journal struct {
	calls []string
}

func (j *journal) add(format string, args ...any) {
	j.calls = append(j.calls, fmt.Sprintf(format, args...))
}

type fakePower struct {
	j      *journal
	state  power.State
	getErr error
	setErr error
	gets   int
}

func (p *fakePower) Get(ctx context.Context) (power.State, error) {
	p.gets++
	if p.getErr != nil {
		return power.StateUnknown, p.getErr
	}
	return p.state, nil
}

func (p *fakePower) Set(ctx context.Context, on bool) error {
	p.j.add("power.Set(%t)", on)
	if p.setErr != nil {
		return p.setErr
	}
	if on {
		p.state = power.StateOn
	} else {
		p.state = power.StateOff
	}
	return nil
}

var errNotReady = errors.New("device not ready")

type fakeProber struct {
	j       *journal
	openErr error

	// upAt is the attempt on which Up starts to succeed; 0 never succeeds.
	upAt    int
	downErr error
	flags   hci.DeviceFlags
	flagErr error

	opens  int
	closes int
	ups    int
	downs  int
	// maxOpen is the largest number of simultaneously open handles.
	maxOpen int
}

func (p *fakeProber) Open(ctx context.Context) (hci.Handle, error) {
	if p.openErr != nil {
		return nil, p.openErr
	}
	p.opens++
	if open := p.opens - p.closes; open > p.maxOpen {
		p.maxOpen = open
	}
	return &fakeHandle{p: p}, nil
}

type fakeHandle struct {
	p      *fakeProber
	closed bool
}

func (h *fakeHandle) Up(ctx context.Context) error {
	if h.closed {
		panic("Up on a closed handle")
	}
	h.p.ups++
	if h.p.upAt == 0 || h.p.ups < h.p.upAt {
		return errNotReady
	}
	h.p.j.add("hci.Up")
	return nil
}

func (h *fakeHandle) Down(ctx context.Context) error {
	h.p.downs++
	h.p.j.add("hci.Down")
	return h.p.downErr
}

func (h *fakeHandle) Flags(ctx context.Context) (hci.DeviceFlags, error) {
	return h.p.flags, h.p.flagErr
}

func (h *fakeHandle) Close() error {
	if h.closed {
		panic("double close")
	}
	h.closed = true
	h.p.closes++
	return nil
}

type fakeSupervisor struct {
	j       *journal
	failOn  map[string]error
	started []string
	stopped []string
}

func (s *fakeSupervisor) Start(ctx context.Context, name string) error {
	s.j.add("start(%s)", name)
	if err := s.failOn["start "+name]; err != nil {
		return err
	}
	s.started = append(s.started, name)
	return nil
}

func (s *fakeSupervisor) Stop(ctx context.Context, name string) error {
	s.j.add("stop(%s)", name)
	if err := s.failOn["stop "+name]; err != nil {
		return err
	}
	s.stopped = append(s.stopped, name)
	return nil
}

// sleepLog records requested delays without sleeping.
type sleepLog struct {
	j      *journal
	delays []time.Duration
	err    error
}

func (s *sleepLog) sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	if d != DefaultRetryInterval {
		s.j.add("sleep(%s)", d)
	}
	return s.err
}

func (s *sleepLog) count(d time.Duration) int {
	n := 0
	for _, v := range s.delays {
		if v == d {
			n++
		}
	}
	return n
}

type rig struct {
	j     *journal
	power *fakePower
	hci   *fakeProber
	sv    *fakeSupervisor
	sleep *sleepLog
	radio *Radio
}

func newRig(opts ...Option) *rig {
	j := &journal{}
	r := &rig{
		j:     j,
		power: &fakePower{j: j, state: power.StateOff},
		hci:   &fakeProber{j: j, upAt: 1},
		sv:    &fakeSupervisor{j: j, failOn: map[string]error{}},
		sleep: &sleepLog{j: j},
	}
	r.radio = New(r.power, r.hci, r.sv, append([]Option{WithSleep(r.sleep.sleep)}, opts...)...)
	return r
}
