package n2cmu

import "fmt"

// Param selects a parameter vector stored on the device.
type Param int

// Parameter vectors.
const (
	HiddenNeuron Param = iota
	OutputNeuron
	HiddenWeights
	OutputWeights
	HiddenBias
	OutputBias
	HiddenGradient
	OutputGradient

	numParams
)

type paramInfo struct {
	name     string
	set, get Command
	// counts are queried in this order and multiplied.
	counts []Count
}

var paramInfos = [numParams]paramInfo{
	HiddenNeuron:   {"hidden-neuron", CmdSetHiddenNeuron, CmdGetHiddenNeuron, []Count{HiddenCount}},
	OutputNeuron:   {"output-neuron", CmdSetOutputNeuron, CmdGetOutputNeuron, []Count{OutputCount}},
	HiddenWeights:  {"hidden-weights", CmdSetHiddenWeights, CmdGetHiddenWeights, []Count{InputCount, HiddenCount}},
	OutputWeights:  {"output-weights", CmdSetOutputWeights, CmdGetOutputWeights, []Count{HiddenCount, OutputCount}},
	HiddenBias:     {"hidden-bias", CmdSetHiddenBias, CmdGetHiddenBias, []Count{HiddenCount}},
	OutputBias:     {"output-bias", CmdSetOutputBias, CmdGetOutputBias, []Count{OutputCount}},
	HiddenGradient: {"hidden-gradient", CmdSetHiddenGrad, CmdGetHiddenGrad, []Count{HiddenCount}},
	OutputGradient: {"output-gradient", CmdSetOutputGrad, CmdGetOutputGrad, []Count{OutputCount}},
}

// Params lists all parameter vectors.
func Params() []Param {
	params := make([]Param, numParams)
	for n := range params {
		params[n] = Param(n)
	}
	return params
}

// ParseParam finds a Param by name.
func ParseParam(name string) (Param, error) {
	for n, info := range paramInfos {
		if info.name == name {
			return Param(n), nil
		}
	}
	return 0, fmt.Errorf("unknown param %q", name)
}

// IsValid checks if the param is known.
func (p Param) IsValid() bool {
	return p >= 0 && p < numParams
}

// String implements fmt.Stringer.
func (p Param) String() string {
	if p.IsValid() {
		return paramInfos[p].name
	}
	return fmt.Sprintf("param(%d)", int(p))
}

// SetCommand returns the opcode writing the vector.
func (p Param) SetCommand() Command {
	return paramInfos[p].set
}

// GetCommand returns the opcode reading the vector.
func (p Param) GetCommand() Command {
	return paramInfos[p].get
}

// Len derives the vector length from a topology.
func (p Param) Len(t Topology) int {
	size := 1
	for _, c := range paramInfos[p].counts {
		size *= c.Of(t)
	}
	return size
}
