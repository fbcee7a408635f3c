package remote

import (
	"context"
	"io"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/n2cmu.go/pkg/framework"
	"github.com/robotalks/n2cmu.go/pkg/remote/msgs"
)

// Pipe is a bi-directional pipe for typed messages.
type Pipe struct {
	ReadWriter PacketReadWriter
	Handler    msgs.TypedMsgHandler

	sendLock sync.Mutex
}

// NewPipe creates a Pipe with given PacketReadWriter.
func NewPipe(rw PacketReadWriter, handler msgs.TypedMsgHandler) *Pipe {
	return &Pipe{ReadWriter: rw, Handler: handler}
}

// Send sends a message with the sequence number.
func (p *Pipe) Send(msg fx.Message, seq uint32) error {
	typed, err := msgs.TypedFrom(msg, seq)
	if err != nil {
		return err
	}
	pkt, err := typed.Encode()
	if err != nil {
		return err
	}
	p.sendLock.Lock()
	defer p.sendLock.Unlock()
	return p.ReadWriter.WritePacket(pkt)
}

// Run receives messages until the transport fails or ctx is canceled.
// A transport implementing io.Closer is closed when Run returns.
func (p *Pipe) Run(ctx context.Context) error {
	closer, ok := p.ReadWriter.(io.Closer)
	if !ok {
		return fx.RunWithContext(ctx, func() error { return p.receiveLoop(ctx) })
	}
	return fx.RunWithContextCloser(ctx, closer, func() error { return p.receiveLoop(ctx) })
}

// Close implements Closer.
func (p *Pipe) Close() error {
	if closer, ok := p.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (p *Pipe) receiveLoop(ctx context.Context) error {
	for {
		pkt, err := p.ReadWriter.ReadPacket()
		if err != nil {
			return err
		}
		typed, err := msgs.DecodeTyped(pkt)
		if err != nil {
			glog.Warningf("bad packet: %v", err)
			continue
		}
		msg, err := typed.Decode()
		if err != nil {
			// requests get an error reply, bad replies are dropped.
			if !typed.IsReply() {
				if err = p.Send(msgs.NewCommandErr(err), typed.Sequence); err != nil {
					return err
				}
			}
			continue
		}
		if h := p.Handler; h != nil {
			err = h.HandleTypedMsg(ctx, msg, typed)
		}
		if err != nil {
			return err
		}
	}
}
