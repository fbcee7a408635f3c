package main

import (
	"context"
	"flag"

	"github.com/golang/glog"

	"github.com/robotalks/n2cmu.go/pkg/env"
	"github.com/robotalks/n2cmu.go/pkg/env/daemon"
	fx "github.com/robotalks/n2cmu.go/pkg/framework"
	"github.com/robotalks/n2cmu.go/pkg/remote"
)

func init() {
	env.SetupDeviceFlags()
	daemon.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	devConf := env.DefaultDevice()
	dev, closer, err := devConf.Open(context.Background())
	if err != nil {
		glog.Exit(err)
	}
	defer closer.Close()

	conf := daemon.Default()
	conf.Info.Meta.Port = devConf.Port()
	e := conf.MustNewEnv(remote.NewServer(dev))
	glog.Infof("serving %s", conf.Info.Ref.Name())
	if err := fx.NewRunner().HandleSignals().Go(e).Wait(); err != nil {
		glog.Error(err)
	}
}
