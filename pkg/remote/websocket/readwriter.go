// Package websocket carries packets as binary websocket messages.
package websocket

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/n2cmu.go/pkg/remote"
)

// ReadWriter implements PacketReadWriter.
type ReadWriter websocket.Conn

// New wraps websocket.Conn.
func New(conn *websocket.Conn) *ReadWriter {
	return (*ReadWriter)(conn)
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() (pkt []byte, err error) {
	err = websocket.Message.Receive((*websocket.Conn)(p), &pkt)
	return
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	return websocket.Message.Send((*websocket.Conn)(p), pkt)
}

// Close implements io.Closer.
func (p *ReadWriter) Close() error {
	return (*websocket.Conn)(p).Close()
}

// Handler serves each websocket connection with a remote.Server.
func Handler(ctx context.Context, server *remote.Server) http.Handler {
	return websocket.Handler(func(conn *websocket.Conn) {
		glog.V(1).Infof("websocket client %s connected", conn.Request().RemoteAddr)
		err := server.Serve(ctx, New(conn))
		glog.V(1).Infof("websocket client %s disconnected: %v", conn.Request().RemoteAddr, err)
	})
}

// Connector connects to a daemon over websocket.
type Connector struct {
	URL    string
	Origin string
	Ref    remote.DeviceRef
}

// NewConnector creates a Connector from ws://host:port/path.
func NewConnector(serverURL string) (*Connector, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, err
	}
	if u.Host == "" {
		return nil, fmt.Errorf("missing host in %q", serverURL)
	}
	origin := "http://" + u.Host
	if u.Scheme == "wss" {
		origin = "https://" + u.Host
	}
	return &Connector{
		URL:    serverURL,
		Origin: origin,
		Ref:    remote.DeviceRef{Type: "n2cmu", ID: u.Host},
	}, nil
}

// Discover implements Connector.
func (c *Connector) Discover(context.Context) ([]remote.DeviceInfo, error) {
	return []remote.DeviceInfo{{Ref: c.Ref, Meta: remote.DeviceMeta{Port: c.URL}}}, nil
}

// Connect implements Connector.
func (c *Connector) Connect(ctx context.Context, ref remote.DeviceRef) (remote.Conn, error) {
	conf, err := websocket.NewConfig(c.URL, c.Origin)
	if err != nil {
		return nil, err
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	conn, err := websocket.DialConfig(conf)
	if err != nil {
		return nil, err
	}
	return remote.Start(remote.NewClient(New(conn))), nil
}
