package n2cmu

import "fmt"

// Topology is the shape of the network configured on the device.
type Topology struct {
	Input  uint8
	Hidden uint8
	Output uint8
}

// IsEmpty indicates no layer has any neuron.
func (t Topology) IsEmpty() bool {
	return t.Input == 0 && t.Hidden == 0 && t.Output == 0
}

// String implements fmt.Stringer.
func (t Topology) String() string {
	return fmt.Sprintf("%d-%d-%d", t.Input, t.Hidden, t.Output)
}

// Count selects one of the device counts.
type Count int

// Counts.
const (
	InputCount Count = iota
	HiddenCount
	OutputCount
)

var countCmds = [...]struct {
	name     string
	set, get Command
}{
	InputCount:  {"input", CmdSetInputCount, CmdGetInputCount},
	HiddenCount: {"hidden", CmdSetHiddenCount, CmdGetHiddenCount},
	OutputCount: {"output", CmdSetOutputCount, CmdGetOutputCount},
}

// IsValid checks if the count is known.
func (c Count) IsValid() bool {
	return c >= InputCount && c <= OutputCount
}

// String implements fmt.Stringer.
func (c Count) String() string {
	if c.IsValid() {
		return countCmds[c].name
	}
	return fmt.Sprintf("count(%d)", int(c))
}

// Of picks the count from a topology.
func (c Count) Of(t Topology) int {
	switch c {
	case InputCount:
		return int(t.Input)
	case HiddenCount:
		return int(t.Hidden)
	case OutputCount:
		return int(t.Output)
	}
	return 0
}
