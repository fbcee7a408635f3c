// Package connector sets up Connectors reaching served coprocessors.
package connector

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/n2cmu.go/pkg/remote"
	"github.com/robotalks/n2cmu.go/pkg/remote/mqtt"
	"github.com/robotalks/n2cmu.go/pkg/remote/stream"
	"github.com/robotalks/n2cmu.go/pkg/remote/websocket"
)

// Config provides common options to setup Connectors.
type Config struct {
	Ref remote.DeviceRef

	// URL specifies where devices are served.
	// mqtt://host:port/topic-prefix, ws://host:port/path or tcp://host:port
	URL string
}

var defaultConfig = Config{
	Ref: remote.DeviceRef{Type: "n2cmu"},
	URL: "mqtt://localhost:1883/",
}

func init() {
	if val := os.Getenv("N2CMU_URL"); val != "" {
		defaultConfig.URL = val
	}
	if val := os.Getenv("N2CMU_ID"); val != "" {
		defaultConfig.Ref.ID = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Ref.ID, "device-id", defaultConfig.Ref.ID, "Device ID to connect.")
	flag.StringVar(&defaultConfig.URL, "url", defaultConfig.URL, "URL of served devices.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewConnector creates a Connector by the scheme of URL.
func (c *Config) NewConnector() (remote.Connector, error) {
	parsedURL, err := url.Parse(c.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	switch parsedURL.Scheme {
	case "mqtt", "mqtts":
		return mqtt.NewConnector(c.URL)
	case "ws", "wss":
		return websocket.NewConnector(c.URL)
	case "tcp":
		return stream.NewConnector(c.URL)
	default:
		return nil, fmt.Errorf("unknown URL scheme: %q", parsedURL.Scheme)
	}
}

// MustNewConnector creates a Connector and fails on error.
func (c *Config) MustNewConnector() remote.Connector {
	conn, err := c.NewConnector()
	if err != nil {
		glog.Exit(err)
	}
	return conn
}

// Connect directly connects to the configured device.
func (c *Config) Connect(ctx context.Context) (remote.Conn, error) {
	connector, err := c.NewConnector()
	if err != nil {
		return nil, err
	}
	ref := c.Ref
	if ref.ID == "" {
		if ref, err = pickDevice(ctx, connector, ref.Type); err != nil {
			return nil, err
		}
	}
	return connector.Connect(ctx, ref)
}

// pickDevice selects the only device of the type when no ID is configured.
func pickDevice(ctx context.Context, connector remote.Connector, typ string) (remote.DeviceRef, error) {
	infos, err := connector.Discover(ctx)
	if err != nil {
		return remote.DeviceRef{}, err
	}
	var found []remote.DeviceRef
	for _, info := range infos {
		if info.Ref.Type == typ {
			found = append(found, info.Ref)
		}
	}
	switch len(found) {
	case 0:
		return remote.DeviceRef{}, fmt.Errorf("no %s device found", typ)
	case 1:
		return found[0], nil
	default:
		return remote.DeviceRef{}, fmt.Errorf("%d %s devices found, device id must be specified", len(found), typ)
	}
}
