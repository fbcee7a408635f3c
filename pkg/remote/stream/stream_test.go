package stream

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/n2cmu.go/pkg/n2cmu"
	"github.com/robotalks/n2cmu.go/pkg/n2cmu/sim"
	"github.com/robotalks/n2cmu.go/pkg/remote"
	"github.com/robotalks/n2cmu.go/pkg/remote/msgs"
)

func TestPacketFraming(t *testing.T) {
	var buf bytes.Buffer
	rw := New(&buf)
	require.NoError(t, rw.WritePacket([]byte{1, 2, 3}))
	require.NoError(t, rw.WritePacket(nil))
	assert.Equal(t, []byte{3, 0, 0, 0, 1, 2, 3, 0, 0, 0, 0}, buf.Bytes())

	pkt, err := rw.ReadPacket()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, pkt)
	pkt, err = rw.ReadPacket()
	require.NoError(t, err)
	assert.Empty(t, pkt)
}

func TestPacketTooLarge(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0xff, 0xff, 0xff, 0xff})
	_, err := New(buf).ReadPacket()
	assert.Error(t, err)
}

func TestTCPListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	p := n2cmu.New(sim.New())
	p.Codec.Timeout = 200 * time.Millisecond
	l := &Listener{Server: remote.NewServer(p)}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Serve(ctx, ln)

	connector, err := NewConnector("tcp://" + ln.Addr().String())
	require.NoError(t, err)
	infos, err := connector.Discover(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)

	conn, err := connector.Connect(ctx, infos[0].Ref)
	require.NoError(t, err)
	defer conn.Close()
	reply, err := conn.Do(ctx, &msgs.Handshake{})
	require.NoError(t, err)
	require.IsType(t, &msgs.Status{}, reply)
	assert.True(t, reply.(*msgs.Status).Ok)
}

func TestNewConnectorInvalid(t *testing.T) {
	_, err := NewConnector("tcp://")
	assert.Error(t, err)
}
