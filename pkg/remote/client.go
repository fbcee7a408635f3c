package remote

import (
	"container/list"
	"context"
	"errors"
	"sync"
	"time"

	fx "github.com/robotalks/n2cmu.go/pkg/framework"
	"github.com/robotalks/n2cmu.go/pkg/remote/msgs"
)

// DefaultExpiration is the default expiration expecting a reply.
const DefaultExpiration = 5 * time.Second

// ErrClosed indicates the client is closed.
var ErrClosed = errors.New("client closed")

// Client sends requests through a Pipe and matches replies by sequence.
type Client struct {
	Expiration time.Duration

	pipe     Pipe
	seq      uint32
	requests list.List
	seqMap   map[uint32]*pending
	closed   bool
	lock     sync.Mutex
}

type pending struct {
	seq      uint32
	expireAt time.Time
	elem     *list.Element
	result   chan result
}

type result struct {
	msg fx.Message
	err error
}

// NewClient creates a Client over rw. Run must be running to receive replies.
func NewClient(rw PacketReadWriter) *Client {
	c := &Client{
		Expiration: DefaultExpiration,
		seqMap:     make(map[uint32]*pending),
	}
	c.pipe.ReadWriter = rw
	c.pipe.Handler = msgs.HandleTypedMsgFunc(c.handleTypedMsg)
	return c
}

// Do implements Conn.
// A CommandErr reply is returned as the error.
func (c *Client) Do(ctx context.Context, msg fx.Message) (fx.Message, error) {
	p, err := c.send(msg)
	if err != nil {
		return nil, err
	}
	select {
	case <-ctx.Done():
		c.cancel(p)
		return nil, ctx.Err()
	case r := <-p.result:
		return r.msg, r.err
	}
}

// Run receives replies and expires requests without replies.
func (c *Client) Run(ctx context.Context) error {
	return fx.NewRunnerWith(ctx).Go(
		fx.NamedRun("pipe", fx.RunFunc(func(ctx context.Context) error {
			err := c.pipe.Run(ctx)
			c.failAll(ErrClosed)
			return err
		})),
		fx.NamedRun("expire", fx.RunFunc(c.expireLoop)),
	).Wait()
}

// Close implements Conn.
func (c *Client) Close() error {
	c.lock.Lock()
	c.closed = true
	c.lock.Unlock()
	c.failAll(ErrClosed)
	return c.pipe.Close()
}

func (c *Client) send(msg fx.Message) (*pending, error) {
	c.lock.Lock()
	if c.closed {
		c.lock.Unlock()
		return nil, ErrClosed
	}
	c.seq++
	if c.seq == 0 {
		c.seq++
	}
	p := &pending{
		seq:      c.seq,
		expireAt: time.Now().Add(c.Expiration),
		result:   make(chan result, 1),
	}
	p.elem = c.requests.PushBack(p)
	c.seqMap[p.seq] = p
	c.lock.Unlock()

	// sent unlocked, MQTT publishing blocks until acknowledged.
	if err := c.pipe.Send(msg, p.seq); err != nil {
		c.cancel(p)
		return nil, err
	}
	return p, nil
}

func (c *Client) handleTypedMsg(ctx context.Context, msg fx.Message, typed *msgs.Typed) error {
	if !typed.IsReply() {
		return nil
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	p := c.seqMap[typed.Sequence]
	if p == nil {
		return nil
	}
	c.remove(p)
	r := result{msg: msg}
	if cmdErr, ok := msg.(*msgs.CommandErr); ok {
		r.msg, r.err = nil, cmdErr
	}
	p.result <- r
	return nil
}

func (c *Client) cancel(p *pending) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.seqMap[p.seq] == p {
		c.remove(p)
	}
}

func (c *Client) remove(p *pending) {
	c.requests.Remove(p.elem)
	delete(c.seqMap, p.seq)
}

func (c *Client) expireLoop(ctx context.Context) error {
	interval := c.Expiration / 4
	if interval <= 0 {
		interval = DefaultExpiration / 4
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			c.purgeExpired(now)
		}
	}
}

func (c *Client) purgeExpired(now time.Time) {
	c.lock.Lock()
	defer c.lock.Unlock()
	for c.requests.Len() > 0 {
		p := c.requests.Front().Value.(*pending)
		if p.expireAt.After(now) {
			break
		}
		c.remove(p)
		p.result <- result{err: context.DeadlineExceeded}
	}
}

func (c *Client) failAll(err error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	for c.requests.Len() > 0 {
		p := c.requests.Front().Value.(*pending)
		c.remove(p)
		p.result <- result{err: err}
	}
}

// RunningClient is a Client running in background.
type RunningClient struct {
	*Client

	cancel func()
	done   chan struct{}
	err    error
}

// Start runs the client in background until closed.
func Start(c *Client) *RunningClient {
	ctx, cancel := context.WithCancel(context.Background())
	r := &RunningClient{Client: c, cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(r.done)
		r.err = c.Run(ctx)
	}()
	return r
}

// Close implements Conn.
func (r *RunningClient) Close() error {
	r.cancel()
	err := r.Client.Close()
	<-r.done
	return err
}

// Err returns the error that stopped the client, valid after Close.
func (r *RunningClient) Err() error {
	return r.err
}
