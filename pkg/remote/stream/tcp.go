package stream

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"github.com/golang/glog"

	"github.com/robotalks/n2cmu.go/pkg/remote"
)

// Listener accepts TCP connections and serves each with a remote.Server.
type Listener struct {
	Addr   string
	Server *remote.Server
}

// Run implements Runnable.
func (l *Listener) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", l.Addr)
	if err != nil {
		return err
	}
	glog.Infof("serving TCP on %s", ln.Addr())
	return l.Serve(ctx, ln)
}

// Serve serves connections accepted from ln until ctx is canceled.
func (l *Listener) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		go l.serveConn(ctx, conn)
	}
}

func (l *Listener) serveConn(ctx context.Context, conn net.Conn) {
	glog.V(1).Infof("TCP client %s connected", conn.RemoteAddr())
	err := l.Server.Serve(ctx, New(conn))
	glog.V(1).Infof("TCP client %s disconnected: %v", conn.RemoteAddr(), err)
}

// Connector connects to a daemon serving a single device over TCP.
type Connector struct {
	Addr string
	Ref  remote.DeviceRef
}

// NewConnector creates a Connector from tcp://host:port.
func NewConnector(serverURL string) (*Connector, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, err
	}
	if u.Host == "" {
		return nil, fmt.Errorf("missing host in %q", serverURL)
	}
	return &Connector{Addr: u.Host, Ref: remote.DeviceRef{Type: "n2cmu", ID: u.Host}}, nil
}

// Discover implements Connector.
func (c *Connector) Discover(context.Context) ([]remote.DeviceInfo, error) {
	return []remote.DeviceInfo{{Ref: c.Ref, Meta: remote.DeviceMeta{Port: c.Addr}}}, nil
}

// Connect implements Connector. ref is ignored as the daemon serves one device.
func (c *Connector) Connect(ctx context.Context, ref remote.DeviceRef) (remote.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.Addr)
	if err != nil {
		return nil, err
	}
	return remote.Start(remote.NewClient(New(conn))), nil
}
