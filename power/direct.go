package power

import (
	"context"

	"github.com/facebookincubator/go-belt/tool/logger"
)

// DefaultDirectPath is the board parameter that gates the radio on the
// reference hardware.
const DefaultDirectPath = "/sys/module/board_trout/parameters/bluetooth_power_on"

const (
	directOn  = 'Y'
	directOff = 'N'
)

// Direct drives the power rail through a single-byte control file using
// 'Y' and 'N'.
type Direct struct {
	Path string
}

var _ Control = (*Direct)(nil)

// NewDirect returns a Direct backend for path; an empty path selects
// DefaultDirectPath.
func NewDirect(path string) *Direct {
	if path == "" {
		path = DefaultDirectPath
	}
	return &Direct{Path: path}
}

func (d *Direct) Get(ctx context.Context) (State, error) {
	b, err := readByte(d.Path)
	if err != nil {
		logger.Errorf(ctx, "unable to read the power state: %v", err)
		return StateUnknown, err
	}
	switch b {
	case directOn:
		return StateOn, nil
	case directOff:
		return StateOff, nil
	}
	logger.Debugf(ctx, "unexpected power state byte %q in %s", b, d.Path)
	return StateUnknown, nil
}

func (d *Direct) Set(ctx context.Context, on bool) error {
	b := byte(directOff)
	if on {
		b = directOn
	}
	logger.Debugf(ctx, "writing %q to %s", b, d.Path)
	if err := writeByte(d.Path, b); err != nil {
		logger.Errorf(ctx, "unable to set the power state: %v", err)
		return err
	}
	return nil
}
