package mqtt

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/robotalks/n2cmu.go/pkg/remote"
)

const subscribePoll = 50 * time.Millisecond

// ReadWriter implements PacketReadWriter over a pair of topics.
type ReadWriter struct {
	Queue    *Queue
	SubTopic string
	PubTopic string

	packetCh chan []byte
	done     chan struct{}
	once     sync.Once
	sub      *Subscription
}

// NewPacketReadWriter creates the ReadWriter.
func NewPacketReadWriter(q *Queue) *ReadWriter {
	return &ReadWriter{
		Queue:    q,
		packetCh: make(chan []byte, 16),
		done:     make(chan struct{}),
	}
}

// WithTopics specifies the topics.
func (p *ReadWriter) WithTopics(sub, pub string) *ReadWriter {
	p.SubTopic, p.PubTopic = sub, pub
	return p
}

// ForClient sets topics using the convention for a client:
// SubTopic = <type>/<id>/rep/<client-id>
// PubTopic = <type>/<id>/req/<client-id>
func (p *ReadWriter) ForClient(ref remote.DeviceRef, clientID string) *ReadWriter {
	prefix := ref.Name()
	return p.WithTopics(prefix+"/rep/"+clientID, prefix+"/req/"+clientID)
}

// Subscribe subscribes SubTopic and waits for the broker to confirm.
func (p *ReadWriter) Subscribe(ctx context.Context) error {
	p.sub = p.Queue.Sub(p.SubTopic, p.handleMsg)
	for !p.sub.Token.WaitTimeout(subscribePoll) {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return p.sub.Token.Error()
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-p.packetCh:
		return pkt, nil
	case <-p.done:
		return nil, io.EOF
	}
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	select {
	case <-p.done:
		return io.ErrClosedPipe
	default:
	}
	token := p.Queue.Pub(p.PubTopic, pkt)
	token.Wait()
	return token.Error()
}

// Close implements io.Closer.
func (p *ReadWriter) Close() error {
	var err error
	p.once.Do(func() {
		close(p.done)
		if p.sub != nil {
			err = p.sub.Close()
		}
	})
	return err
}

func (p *ReadWriter) handleMsg(_ string, payload []byte) {
	p.deliver(payload)
}

// deliver queues a packet, dropping it once closed.
func (p *ReadWriter) deliver(pkt []byte) {
	select {
	case p.packetCh <- pkt:
	case <-p.done:
	}
}
