package msgs

import (
	"fmt"

	"github.com/robotalks/n2cmu.go/pkg/n2cmu"
	pb "github.com/robotalks/n2cmu.go/pkg/proto/n2cmu/v1"
)

// Counts addressed by SetCount/GetCount.
const (
	CountInput  uint32 = 0
	CountHidden uint32 = 1
	CountOutput uint32 = 2
	CountEpoch  uint32 = 3
)

// CountNames maps names used by tools to counts.
var CountNames = map[string]uint32{
	"input":  CountInput,
	"hidden": CountHidden,
	"output": CountOutput,
	"epoch":  CountEpoch,
}

// NewCommandOK creates a CommandOK.
func NewCommandOK() *CommandOK {
	return &CommandOK{}
}

// NewCommandErr creates a CommandErr from an error.
func NewCommandErr(err error) *CommandErr {
	return NewCommandErrFromMsg(err.Error())
}

// NewCommandErrFromMsg creates a CommandErr.
func NewCommandErrFromMsg(message string) *CommandErr {
	return &CommandErr{CommandErr: pb.CommandErr{Message: message}}
}

// Error implements error.
func (m *CommandErr) Error() string { return m.Message }

// NewStatus creates a Status.
func NewStatus(ok bool) *Status {
	return &Status{Status: pb.Status{Ok: ok}}
}

// NewTopology converts a topology.
func NewTopology(t n2cmu.Topology) *Topology {
	return &Topology{Topology: *TopologyFrom(t)}
}

// TopologyFrom converts a topology to its wire form.
func TopologyFrom(t n2cmu.Topology) *pb.Topology {
	return &pb.Topology{Input: uint32(t.Input), Hidden: uint32(t.Hidden), Output: uint32(t.Output)}
}

// ToTopology converts and validates a wire topology.
func ToTopology(t *pb.Topology) (n2cmu.Topology, error) {
	if t == nil {
		return n2cmu.Topology{}, fmt.Errorf("topology required")
	}
	if t.Input > 0xff || t.Hidden > 0xff || t.Output > 0xff {
		return n2cmu.Topology{}, fmt.Errorf("count out of range: %d-%d-%d", t.Input, t.Hidden, t.Output)
	}
	return n2cmu.Topology{Input: uint8(t.Input), Hidden: uint8(t.Hidden), Output: uint8(t.Output)}, nil
}
