package btpower

import "fmt"

// Status is the answer of IsEnabled.
type Status int

const (
	StatusUnknown  Status = -1
	StatusDisabled Status = 0
	StatusEnabled  Status = 1
)

func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return "Unknown"
	case StatusDisabled:
		return "Disabled"
	case StatusEnabled:
		return "Enabled"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Int returns 1 for enabled, 0 for disabled and -1 when the state cannot be
// determined.
func (s Status) Int() int {
	return int(s)
}

// Operation names a sequence run by Radio.
type Operation int

const (
	OperationEnable Operation = iota
	OperationDisable
)

func (op Operation) String() string {
	switch op {
	case OperationEnable:
		return "enable"
	case OperationDisable:
		return "disable"
	}
	return fmt.Sprintf("Operation(%d)", int(op))
}

// SequenceState is a step of the enable or disable sequence.
type SequenceState int

const (
	StateIdle SequenceState = iota

	StatePoweringOn
	StateStartingAttach
	StateWaitingForDevice
	StateStartingStack
	StateSettlingUp
	StateEnabled

	StateStoppingStack
	StateSettlingDown
	StateBringingDown
	StateStoppingAttach
	StatePoweringOff
	StateDisabled

	StateFailed
)

func (s SequenceState) String() string {
	str := []string{
		"Idle",
		"PoweringOn",
		"StartingAttach",
		"WaitingForDevice",
		"StartingStack",
		"SettlingUp",
		"Enabled",
		"StoppingStack",
		"SettlingDown",
		"BringingDown",
		"StoppingAttach",
		"PoweringOff",
		"Disabled",
		"Failed",
	}
	if int(s) < 0 || int(s) >= len(str) {
		return fmt.Sprintf("SequenceState(%d)", int(s))
	}
	return str[int(s)]
}

// Terminal reports whether no further transition follows s.
func (s SequenceState) Terminal() bool {
	switch s {
	case StateEnabled, StateDisabled, StateFailed:
		return true
	}
	return false
}
