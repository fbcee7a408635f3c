package remote

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/n2cmu.go/pkg/framework"
	"github.com/robotalks/n2cmu.go/pkg/n2cmu"
	"github.com/robotalks/n2cmu.go/pkg/remote/msgs"
)

// Server executes requests on a single coprocessor.
// Requests from any number of transports are serialized, so the link is
// never shared by two operations.
type Server struct {
	Device *n2cmu.Coprocessor

	lock sync.Mutex
}

// NewServer creates a Server.
func NewServer(dev *n2cmu.Coprocessor) *Server {
	return &Server{Device: dev}
}

// Serve answers requests received from rw until it fails or ctx is canceled.
func (s *Server) Serve(ctx context.Context, rw PacketReadWriter) error {
	pipe := &Pipe{ReadWriter: rw}
	pipe.Handler = msgs.HandleTypedMsgFunc(func(ctx context.Context, msg fx.Message, typed *msgs.Typed) error {
		if typed.IsReply() {
			return nil
		}
		return pipe.Send(s.Handle(ctx, msg), typed.Sequence)
	})
	return pipe.Run(ctx)
}

// Handle executes one request and returns the reply.
func (s *Server) Handle(ctx context.Context, msg fx.Message) fx.Message {
	s.lock.Lock()
	defer s.lock.Unlock()
	reply, err := s.handle(ctx, msg)
	if err != nil {
		glog.V(1).Infof("request %T failed: %v", msg, err)
		return msgs.NewCommandErr(err)
	}
	return reply
}

func (s *Server) handle(ctx context.Context, msg fx.Message) (fx.Message, error) {
	dev := s.Device
	switch m := msg.(type) {
	case *msgs.Handshake:
		return statusReply(dev.Handshake(ctx))
	case *msgs.CPUReset:
		return statusReply(dev.CPUReset(ctx))
	case *msgs.CreateNetwork:
		topo, err := msgs.ToTopology(m.Topology)
		if err != nil {
			return nil, err
		}
		return okReply(dev.CreateNetwork(topo))
	case *msgs.ResetNetwork:
		return okReply(dev.ResetNetwork())
	case *msgs.TopologyQuery:
		topo, err := dev.Topology(ctx)
		if err != nil {
			return nil, err
		}
		return msgs.NewTopology(topo), nil
	case *msgs.SetCount:
		return okReply(s.setCount(m.Count, m.Value))
	case *msgs.GetCount:
		value, err := s.getCount(ctx, m.Count)
		if err != nil {
			return nil, err
		}
		reply := &msgs.CountValue{}
		reply.Count, reply.Value = m.Count, value
		return reply, nil
	case *msgs.SetParam:
		param, err := toParam(m.Param)
		if err != nil {
			return nil, err
		}
		return statusReply(dev.SetParam(ctx, param, m.Values))
	case *msgs.GetParam:
		param, err := toParam(m.Param)
		if err != nil {
			return nil, err
		}
		vals, err := dev.ReadParam(ctx, param)
		if err != nil {
			return nil, err
		}
		reply := &msgs.ParamValues{}
		reply.Param, reply.Values = m.Param, vals
		return reply, nil
	case *msgs.Infer:
		output, ok, err := dev.Predict(ctx, m.Input)
		if err != nil {
			return nil, err
		}
		reply := &msgs.InferResult{}
		reply.Output, reply.Ok = output, ok
		return reply, nil
	case *msgs.Train:
		return statusReply(dev.Train(ctx, m.Inputs, m.Outputs, int(m.Rows), m.LearningRate))
	}
	return nil, msgs.ErrUnsupportedCommand
}

func (s *Server) setCount(count, value uint32) error {
	if count == msgs.CountEpoch {
		if value > 0xffff {
			return fmt.Errorf("epoch out of range: %d", value)
		}
		return s.Device.SetEpochCount(uint16(value))
	}
	c, err := toCount(count)
	if err != nil {
		return err
	}
	if value > 0xff {
		return fmt.Errorf("%s count out of range: %d", c, value)
	}
	return s.Device.SetCount(c, uint8(value))
}

func (s *Server) getCount(ctx context.Context, count uint32) (uint32, error) {
	if count == msgs.CountEpoch {
		epoch, err := s.Device.GetEpochCount(ctx)
		return uint32(epoch), err
	}
	c, err := toCount(count)
	if err != nil {
		return 0, err
	}
	value, err := s.Device.GetCount(ctx, c)
	return uint32(value), err
}

func toCount(count uint32) (n2cmu.Count, error) {
	if c := n2cmu.Count(count); c.IsValid() {
		return c, nil
	}
	return 0, fmt.Errorf("unknown count %d", count)
}

func toParam(param uint32) (n2cmu.Param, error) {
	if p := n2cmu.Param(param); p.IsValid() {
		return p, nil
	}
	return 0, fmt.Errorf("unknown param %d", param)
}

func statusReply(ok bool, err error) (fx.Message, error) {
	if err != nil {
		return nil, err
	}
	return msgs.NewStatus(ok), nil
}

func okReply(err error) (fx.Message, error) {
	if err != nil {
		return nil, err
	}
	return msgs.NewCommandOK(), nil
}

// LocalConn implements Conn by calling Server in process.
type LocalConn struct {
	Server *Server
	// Closer is closed with the connection, usually the serial port.
	Closer io.Closer
}

// Do implements Conn.
func (c *LocalConn) Do(ctx context.Context, msg fx.Message) (fx.Message, error) {
	reply := c.Server.Handle(ctx, msg)
	if cmdErr, ok := reply.(*msgs.CommandErr); ok {
		return nil, cmdErr
	}
	return reply, nil
}

// Close implements Conn.
func (c *LocalConn) Close() error {
	if c.Closer != nil {
		return c.Closer.Close()
	}
	return nil
}
