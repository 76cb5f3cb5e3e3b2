package sim

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v2"
)

// boardState is what the state file holds.
type boardState struct {
	FirmwareLoaded bool     `yaml:"firmwareLoaded"`
	DeviceUp       bool     `yaml:"deviceUp"`
	Running        []string `yaml:"running,omitempty"`
}

func (st *boardState) isRunning(name string) bool {
	return slices.Contains(st.Running, name)
}

func (st *boardState) setRunning(name string, running bool) {
	idx := slices.Index(st.Running, name)
	switch {
	case running && idx < 0:
		st.Running = append(st.Running, name)
	case !running && idx >= 0:
		st.Running = slices.Delete(st.Running, idx, idx+1)
	}
}

// readState must be called with p.mu held. A missing file is a fresh board.
func (p *Platform) readState() (boardState, error) {
	var st boardState
	b, err := os.ReadFile(p.StatePath)
	if errors.Is(err, os.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, err
	}
	if err := yaml.UnmarshalStrict(b, &st); err != nil {
		return st, fmt.Errorf("unable to parse %s: %w", p.StatePath, err)
	}
	return st, nil
}

// writeState must be called with p.mu held.
func (p *Platform) writeState(st boardState) error {
	b, err := yaml.Marshal(st)
	if err != nil {
		return err
	}
	return os.WriteFile(p.StatePath, b, 0o644)
}

func (p *Platform) view() (boardState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.readState()
}

func (p *Platform) update(fn func(st *boardState)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, err := p.readState()
	if err != nil {
		return err
	}
	fn(&st)
	return p.writeState(st)
}
