package n2cmu

import "fmt"

// Command is the opcode selecting a coprocessor operation.
type Command byte

// Opcodes, in firmware order.
const (
	CmdHandshake Command = iota
	CmdCPUReset
	CmdNetCreate
	CmdNetReset
	CmdNetTrain
	CmdNetInfer
	CmdSetInputCount
	CmdSetHiddenCount
	CmdSetOutputCount
	CmdSetHiddenNeuron
	CmdSetOutputNeuron
	CmdSetHiddenWeights
	CmdSetOutputWeights
	CmdSetHiddenBias
	CmdSetOutputBias
	CmdSetHiddenGrad
	CmdSetOutputGrad
	CmdSetEpochCount
	CmdGetInputCount
	CmdGetHiddenCount
	CmdGetOutputCount
	CmdGetHiddenNeuron
	CmdGetOutputNeuron
	CmdGetHiddenWeights
	CmdGetOutputWeights
	CmdGetHiddenBias
	CmdGetOutputBias
	CmdGetHiddenGrad
	CmdGetOutputGrad
	CmdGetEpochCount

	numCommands
)

var commandNames = [numCommands]string{
	CmdHandshake:        "handshake",
	CmdCPUReset:         "cpu-reset",
	CmdNetCreate:        "net-create",
	CmdNetReset:         "net-reset",
	CmdNetTrain:         "net-train",
	CmdNetInfer:         "net-infer",
	CmdSetInputCount:    "set-input-count",
	CmdSetHiddenCount:   "set-hidden-count",
	CmdSetOutputCount:   "set-output-count",
	CmdSetHiddenNeuron:  "set-hidden-neuron",
	CmdSetOutputNeuron:  "set-output-neuron",
	CmdSetHiddenWeights: "set-hidden-weights",
	CmdSetOutputWeights: "set-output-weights",
	CmdSetHiddenBias:    "set-hidden-bias",
	CmdSetOutputBias:    "set-output-bias",
	CmdSetHiddenGrad:    "set-hidden-grad",
	CmdSetOutputGrad:    "set-output-grad",
	CmdSetEpochCount:    "set-epoch-count",
	CmdGetInputCount:    "get-input-count",
	CmdGetHiddenCount:   "get-hidden-count",
	CmdGetOutputCount:   "get-output-count",
	CmdGetHiddenNeuron:  "get-hidden-neuron",
	CmdGetOutputNeuron:  "get-output-neuron",
	CmdGetHiddenWeights: "get-hidden-weights",
	CmdGetOutputWeights: "get-output-weights",
	CmdGetHiddenBias:    "get-hidden-bias",
	CmdGetOutputBias:    "get-output-bias",
	CmdGetHiddenGrad:    "get-hidden-grad",
	CmdGetOutputGrad:    "get-output-grad",
	CmdGetEpochCount:    "get-epoch-count",
}

// IsValid checks if the opcode is known.
func (c Command) IsValid() bool {
	return c < numCommands
}

// String implements fmt.Stringer.
func (c Command) String() string {
	if c.IsValid() {
		return commandNames[c]
	}
	return fmt.Sprintf("command(%d)", byte(c))
}
