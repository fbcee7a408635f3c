package env

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/golang/glog"

	"github.com/robotalks/n2cmu.go/pkg/n2cmu"
	"github.com/robotalks/n2cmu.go/pkg/n2cmu/serial"
	"github.com/robotalks/n2cmu.go/pkg/n2cmu/sim"
)

// DeviceConfig selects the coprocessor attached to this process.
type DeviceConfig struct {
	Link   *n2cmu.Config
	Serial *serial.Config
	// Sim uses the software device instead of the serial port.
	Sim bool
}

var defaultDeviceConfig = DeviceConfig{
	Link:   n2cmu.Default(),
	Serial: serial.Default(),
}

// SetupDeviceFlags sets command line flags of the link, port and simulation.
func SetupDeviceFlags() {
	n2cmu.SetupFlags()
	serial.SetupFlags()
	flag.BoolVar(&defaultDeviceConfig.Sim, "sim", defaultDeviceConfig.Sim, "Use a simulated coprocessor.")
}

// DefaultDevice gets the default device config.
func DefaultDevice() *DeviceConfig {
	return &defaultDeviceConfig
}

// Port describes the link for display.
func (c *DeviceConfig) Port() string {
	if c.Sim {
		return "sim"
	}
	return c.Serial.Device
}

// Open opens the link and handshakes. The returned Closer closes the link.
func (c *DeviceConfig) Open(ctx context.Context) (*n2cmu.Coprocessor, io.Closer, error) {
	var (
		ch     n2cmu.Channel
		closer io.Closer
	)
	if c.Sim {
		dev := sim.New()
		ch, closer = dev, dev
	} else {
		port := c.Serial.NewPort()
		ch, closer = port, port
	}
	p := c.Link.NewCoprocessor(ch)
	ok, err := p.Begin(ctx)
	if err != nil {
		closer.Close()
		return nil, nil, fmt.Errorf("open %s: %w", c.Port(), err)
	}
	if !ok {
		glog.Warningf("%s: handshake rejected", c.Port())
	}
	glog.V(1).Infof("%s: opened at %d baud", c.Port(), p.Baud)
	return p, closer, nil
}
