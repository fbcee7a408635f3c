// Package daemon sets up the transports serving a coprocessor.
package daemon

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/n2cmu.go/pkg/env"
	fx "github.com/robotalks/n2cmu.go/pkg/framework"
	"github.com/robotalks/n2cmu.go/pkg/remote"
	"github.com/robotalks/n2cmu.go/pkg/remote/mqtt"
	"github.com/robotalks/n2cmu.go/pkg/remote/stream"
	"github.com/robotalks/n2cmu.go/pkg/remote/websocket"
)

// DeviceType is the type under which coprocessors are published.
const DeviceType = "n2cmu"

// Config provides options of the transports.
type Config struct {
	Info remote.DeviceInfo

	// MQTTBrokerURL specifies the MQTT broker to register with.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
	// WebsocketAddr is the listen address of the websocket endpoint.
	WebsocketAddr string
	// WebsocketPath is the HTTP path of the websocket endpoint.
	WebsocketPath string
	// TCPAddr is the listen address of the length-prefixed TCP endpoint.
	TCPAddr string
}

var defaultConfig = Config{
	Info:          remote.DeviceInfo{Ref: remote.DeviceRef{Type: DeviceType}},
	MQTTBrokerURL: "mqtt://localhost:1883/",
	WebsocketPath: "/n2cmu",
}

func init() {
	if val := os.Getenv("N2CMU_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("N2CMU_ID"); val != "" {
		defaultConfig.Info.Ref.ID = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Info.Ref.ID, "id", defaultConfig.Info.Ref.ID, "Device ID, defaults to machine ID")
	flag.StringVar(&defaultConfig.Info.Meta.Description, "desc", defaultConfig.Info.Meta.Description, "Device description")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL, empty to disable")
	flag.StringVar(&defaultConfig.WebsocketAddr, "ws", defaultConfig.WebsocketAddr, "Websocket listen address, e.g. :8080")
	flag.StringVar(&defaultConfig.WebsocketPath, "ws-path", defaultConfig.WebsocketPath, "Websocket endpoint path")
	flag.StringVar(&defaultConfig.TCPAddr, "tcp", defaultConfig.TCPAddr, "TCP listen address, e.g. :7531")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Env is the set of transports serving a device.
type Env struct {
	Config     *Config
	Server     *remote.Server
	Transports []fx.Runnable
}

// NewEnv creates the transports enabled in config.
func (c *Config) NewEnv(server *remote.Server) (*Env, error) {
	if c.Info.Ref.ID == "" {
		c.Info.Ref.ID = env.MachineID()
	}
	if !c.Info.Ref.IsValid() {
		return nil, fmt.Errorf("device type and id must be specified")
	}
	e := &Env{Config: c, Server: server}
	if c.MQTTBrokerURL != "" {
		reg, err := mqtt.NewRegistrar(c.MQTTBrokerURL, c.Info, server)
		if err != nil {
			return nil, fmt.Errorf("create MQTT registrar error: %w", err)
		}
		e.Transports = append(e.Transports, fx.NamedRun("mqtt", reg))
	}
	if c.WebsocketAddr != "" {
		e.Transports = append(e.Transports, fx.NamedRun("websocket", fx.RunFunc(e.serveWebsocket)))
	}
	if c.TCPAddr != "" {
		e.Transports = append(e.Transports, fx.NamedRun("tcp", &stream.Listener{Addr: c.TCPAddr, Server: server}))
	}
	if len(e.Transports) == 0 {
		return nil, fmt.Errorf("at least one transport is required")
	}
	return e, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv(server *remote.Server) *Env {
	e, err := c.NewEnv(server)
	if err != nil {
		glog.Exit(err)
	}
	return e
}

// Run implements Runnable.
func (e *Env) Run(ctx context.Context) error {
	return fx.NewRunnerWith(ctx).Go(e.Transports...).Wait()
}

func (e *Env) serveWebsocket(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle(e.Config.WebsocketPath, websocket.Handler(ctx, e.Server))
	srv := &http.Server{Addr: e.Config.WebsocketAddr, Handler: mux}
	glog.Infof("serving websocket on %s%s", e.Config.WebsocketAddr, e.Config.WebsocketPath)
	return fx.RunWithContextCancel(ctx, func() { srv.Close() }, srv.ListenAndServe)
}
