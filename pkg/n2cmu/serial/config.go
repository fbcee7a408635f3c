package serial

import (
	"flag"
	"os"
)

// Config defines the serial device to use.
type Config struct {
	Device string
}

var defaultConfig = Config{
	Device: "/dev/ttyUSB0",
}

func init() {
	if val := os.Getenv("N2CMU_PORT"); val != "" {
		defaultConfig.Device = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Device, "port", defaultConfig.Device, "Serial device connected to the coprocessor.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewPort creates a Port for the configured device, opened by Open.
func (c *Config) NewPort() *Port {
	return NewDevice(c.Device)
}
