// Package serial provides n2cmu.Channel over a serial port.
package serial

import (
	"errors"
	"io"
	"sync"

	"github.com/golang/glog"
	bugserial "go.bug.st/serial"
)

// ErrNotOpen indicates the port is used before Open.
var ErrNotOpen = errors.New("port not open")

var openDevice = func(name string, mode *bugserial.Mode) (io.ReadWriteCloser, error) {
	return bugserial.Open(name, mode)
}

// Port buffers received bytes in the background so the availability
// can be polled like a UART receive buffer.
type Port struct {
	// Name is the OS device opened by Open when no stream is attached.
	Name string

	stream  io.ReadWriteCloser
	opened  bool // stream was opened from Name
	lock    sync.Mutex
	buf     []byte
	running bool
	closed  bool
	err     error
	done    chan struct{}
}

// New wraps an already opened stream.
func New(stream io.ReadWriteCloser) *Port {
	return &Port{stream: stream}
}

// NewDevice creates a Port opening the named device on Open.
func NewDevice(name string) *Port {
	return &Port{Name: name}
}

// Mode returns the 8N1 serial mode at baud.
func Mode(baud int) *bugserial.Mode {
	return &bugserial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   bugserial.NoParity,
		StopBits: bugserial.OneStopBit,
	}
}

// Open implements n2cmu.Opener and starts receiving.
func (p *Port) Open(baud int) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.running {
		return nil
	}
	if p.stream == nil {
		if p.Name == "" {
			return ErrNotOpen
		}
		port, err := openDevice(p.Name, Mode(baud))
		if err != nil {
			return err
		}
		glog.Infof("serial %s opened at %d", p.Name, baud)
		p.stream, p.opened = port, true
	} else if port, ok := p.stream.(bugserial.Port); ok {
		if err := port.SetMode(Mode(baud)); err != nil {
			return err
		}
	}
	p.running, p.closed, p.err = true, false, nil
	p.done = make(chan struct{})
	go p.readLoop(p.stream, p.done)
	return nil
}

// Err returns the error which stopped receiving.
func (p *Port) Err() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.err
}

// Ready implements n2cmu.Channel.
func (p *Port) Ready() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.running
}

// Buffered implements n2cmu.Channel.
func (p *Port) Buffered() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return len(p.buf)
}

// ReadByte implements n2cmu.Channel.
func (p *Port) ReadByte() (byte, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if len(p.buf) == 0 {
		if p.err != nil {
			return 0, p.err
		}
		return 0, io.EOF
	}
	b := p.buf[0]
	p.buf = p.buf[1:]
	return b, nil
}

// Write implements n2cmu.Channel.
func (p *Port) Write(data []byte) (int, error) {
	p.lock.Lock()
	stream, running := p.stream, p.running
	p.lock.Unlock()
	if !running {
		return 0, ErrNotOpen
	}
	return stream.Write(data)
}

// Close stops receiving and closes the stream. A port opened from Name
// reopens the device on the next Open.
func (p *Port) Close() error {
	p.lock.Lock()
	stream, done := p.stream, p.done
	p.closed = true
	if p.opened {
		p.stream, p.opened = nil, false
	}
	p.lock.Unlock()
	if stream == nil {
		return nil
	}
	err := stream.Close()
	if done != nil {
		<-done
	}
	return err
}

func (p *Port) readLoop(stream io.Reader, done chan struct{}) {
	defer close(done)
	buf := make([]byte, 64)
	for {
		n, err := stream.Read(buf)
		p.lock.Lock()
		if n > 0 {
			p.buf = append(p.buf, buf[:n]...)
		}
		if err != nil {
			p.running, p.err = false, err
			if !p.closed {
				glog.Warningf("serial read error: %v", err)
			}
		}
		p.lock.Unlock()
		if err != nil {
			return
		}
	}
}
