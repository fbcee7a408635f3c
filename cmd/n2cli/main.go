package main

import (
	"context"
	"flag"

	"github.com/robotalks/n2cmu.go/pkg/cli/sh"
	"github.com/robotalks/n2cmu.go/pkg/env"
	connector "github.com/robotalks/n2cmu.go/pkg/env/connector"
	"github.com/robotalks/n2cmu.go/pkg/remote"

	_ "github.com/robotalks/n2cmu.go/pkg/cli/cmds/device"
)

var local bool

func init() {
	connector.SetupFlags()
	env.SetupDeviceFlags()
	flag.BoolVar(&local, "local", local, "Open the coprocessor in process instead of connecting to n2cmud.")
}

func main() {
	flag.Parse()
	var open func() (remote.Conn, error)
	if local || env.DefaultDevice().Sim {
		open = func() (remote.Conn, error) {
			dev, closer, err := env.DefaultDevice().Open(context.Background())
			if err != nil {
				return nil, err
			}
			return &remote.LocalConn{Server: remote.NewServer(dev), Closer: closer}, nil
		}
	}
	sh.Main(open)
}
