// Package device provides shell commands operating a coprocessor.
package device

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/n2cmu.go/pkg/cli/sh"
	"github.com/robotalks/n2cmu.go/pkg/n2cmu"
	pb "github.com/robotalks/n2cmu.go/pkg/proto/n2cmu/v1"
	"github.com/robotalks/n2cmu.go/pkg/remote/msgs"
)

var (
	// HandshakeCmd checks the device responds.
	HandshakeCmd = ishell.Cmd{
		Name:    "handshake",
		Aliases: []string{"hs"},
		Help:    "check the device responds",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.Handshake{})
		}),
	}

	// ResetCmd restarts the device.
	ResetCmd = ishell.Cmd{
		Name: "reset",
		Help: "restart the device, clearing the network",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.CPUReset{})
		}),
	}

	// CreateCmd creates a network.
	CreateCmd = ishell.Cmd{
		Name: "create",
		Help: "INPUT HIDDEN OUTPUT",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) != 3 {
				c.Err(fmt.Errorf("INPUT HIDDEN OUTPUT required"))
				return
			}
			var counts [3]uint32
			for n, name := range []string{"INPUT", "HIDDEN", "OUTPUT"} {
				val, err := parseUint(c.Args[n], name, 0xff)
				if err != nil {
					c.Err(err)
					return
				}
				counts[n] = val
			}
			var msg msgs.CreateNetwork
			msg.Topology = &pb.Topology{Input: counts[0], Hidden: counts[1], Output: counts[2]}
			sh.DoCommand(c, &msg)
		}),
	}

	// NetResetCmd resets the network.
	NetResetCmd = ishell.Cmd{
		Name: "netreset",
		Help: "reset the network",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.ResetNetwork{})
		}),
	}

	// TopologyCmd queries the topology.
	TopologyCmd = ishell.Cmd{
		Name:    "topology",
		Aliases: []string{"topo"},
		Help:    "show input, hidden and output counts",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.TopologyQuery{})
		}),
	}

	// CountCmd gets or sets a count.
	CountCmd = ishell.Cmd{
		Name: "count",
		Help: "input|hidden|output|epoch [VALUE]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("count name required"))
				return
			}
			doCount(c, c.Args[0], c.Args[1:])
		}),
	}

	// EpochCmd gets or sets the epoch count.
	EpochCmd = ishell.Cmd{
		Name: "epoch",
		Help: "[VALUE]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			doCount(c, "epoch", c.Args)
		}),
	}

	// ParamCmd gets or sets a parameter vector.
	ParamCmd = ishell.Cmd{
		Name:    "param",
		Aliases: []string{"p"},
		Help:    "NAME [VALUES...], NAME is one of " + strings.Join(paramNames(), ", "),
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("NAME required"))
				return
			}
			param, err := n2cmu.ParseParam(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			if len(c.Args) == 1 {
				var msg msgs.GetParam
				msg.Param = uint32(param)
				sh.DoCommand(c, &msg)
				return
			}
			vals, err := parseFloats(c.Args[1:])
			if err != nil {
				c.Err(err)
				return
			}
			var msg msgs.SetParam
			msg.Param, msg.Values = uint32(param), vals
			sh.DoCommand(c, &msg)
		}),
	}

	// InferCmd runs the network.
	InferCmd = ishell.Cmd{
		Name:    "infer",
		Aliases: []string{"i"},
		Help:    "INPUTS...",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			vals, err := parseFloats(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			var msg msgs.Infer
			msg.Input = vals
			sh.DoCommand(c, &msg)
		}),
	}

	// TrainCmd trains the network with rows from a CSV file.
	TrainCmd = ishell.Cmd{
		Name:    "train",
		Aliases: []string{"t"},
		Help:    "FILE.csv [LEARNING-RATE], each row holds inputs followed by outputs",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("FILE required"))
				return
			}
			learningRate := float32(0.1)
			if len(c.Args) > 1 {
				val, err := strconv.ParseFloat(c.Args[1], 32)
				if err != nil {
					c.Err(fmt.Errorf("invalid LEARNING-RATE: %v", err))
					return
				}
				learningRate = float32(val)
			}
			reply, err := sh.ShellFrom(c).Do(&msgs.TopologyQuery{})
			if err != nil {
				c.Err(err)
				return
			}
			topo := reply.(*msgs.Topology)
			f, err := os.Open(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			defer f.Close()
			inputs, outputs, rows, err := readTrainingSet(f, int(topo.Input), int(topo.Output))
			if err != nil {
				c.Err(err)
				return
			}
			if rows > 0xffff {
				c.Err(n2cmu.ErrBatchTooLarge)
				return
			}
			var msg msgs.Train
			msg.Rows, msg.Inputs, msg.Outputs, msg.LearningRate = uint32(rows), inputs, outputs, learningRate
			sh.DoCommand(c, &msg)
		}),
	}
)

func doCount(c *ishell.Context, name string, args []string) {
	count, ok := msgs.CountNames[name]
	if !ok {
		c.Err(fmt.Errorf("unknown count %q", name))
		return
	}
	if len(args) == 0 {
		var msg msgs.GetCount
		msg.Count = count
		sh.DoCommand(c, &msg)
		return
	}
	max := uint64(0xff)
	if count == msgs.CountEpoch {
		max = 0xffff
	}
	val, err := parseUint(args[0], "VALUE", max)
	if err != nil {
		c.Err(err)
		return
	}
	var msg msgs.SetCount
	msg.Count, msg.Value = count, val
	sh.DoCommand(c, &msg)
}

func paramNames() []string {
	params := n2cmu.Params()
	names := make([]string, len(params))
	for n, p := range params {
		names[n] = p.String()
	}
	return names
}

func init() {
	sh.AddCmds(
		&HandshakeCmd,
		&ResetCmd,
		&CreateCmd,
		&NetResetCmd,
		&TopologyCmd,
		&CountCmd,
		&EpochCmd,
		&ParamCmd,
		&InferCmd,
		&TrainCmd,
	)
}
