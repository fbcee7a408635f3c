package n2cmu

import (
	"context"
	"encoding/binary"
	"io"
	"math"
	"time"

	"github.com/golang/glog"
)

// SyncMode selects how reads detect that a value has fully arrived.
type SyncMode int

const (
	// SyncAtLeast waits until at least the value size is buffered.
	SyncAtLeast SyncMode = iota
	// SyncExact waits until exactly the value size is buffered, which is
	// what the firmware reference driver does. A device sending ahead of
	// the reads stalls the link in this mode.
	SyncExact
)

// String implements fmt.Stringer.
func (m SyncMode) String() string {
	if m == SyncExact {
		return "exact"
	}
	return "at-least"
}

// Default timing values.
const (
	DefaultTimeout      = 2 * time.Second
	DefaultPollInterval = time.Millisecond
)

// Codec reads and writes the wire values over a Channel.
type Codec struct {
	Channel Channel
	// Timeout bounds every blocking read, 0 waits forever.
	Timeout      time.Duration
	PollInterval time.Duration
	Sync         SyncMode

	// set when a read gave up, the reply may still arrive.
	desync bool
}

// NewCodec creates a Codec with default timing.
func NewCodec(ch Channel) *Codec {
	return &Codec{
		Channel:      ch,
		Timeout:      DefaultTimeout,
		PollInterval: DefaultPollInterval,
	}
}

// EncodeU16 encodes v in little-endian.
func EncodeU16(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

// DecodeU16 decodes little-endian bytes, b must hold at least 2 bytes.
func DecodeU16(b []byte) uint16 {
	return binary.LittleEndian.Uint16(b)
}

// EncodeF32 encodes v as binary32 in little-endian.
func EncodeF32(v float32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
	return b
}

// DecodeF32 decodes a little-endian binary32, b must hold at least 4 bytes.
func DecodeF32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

// WriteBytes writes the buffer as-is, without any framing.
func (c *Codec) WriteBytes(p []byte) error {
	n, err := c.Channel.Write(p)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	return err
}

// WriteCommand writes the opcode followed by an optional payload.
// After an abandoned read, bytes received since are discarded first so a
// late reply is not taken as the answer to this command.
func (c *Codec) WriteCommand(cmd Command, payload ...byte) error {
	if c.desync {
		c.Discard()
	}
	b := make([]byte, 0, len(payload)+1)
	b = append(b, byte(cmd))
	return c.WriteBytes(append(b, payload...))
}

// WriteU8 writes a single byte.
func (c *Codec) WriteU8(v byte) error {
	return c.WriteBytes([]byte{v})
}

// WriteU16 writes v in little-endian.
func (c *Codec) WriteU16(v uint16) error {
	return c.WriteBytes(EncodeU16(v))
}

// WriteF32 writes v as a little-endian binary32.
func (c *Codec) WriteF32(v float32) error {
	return c.WriteBytes(EncodeF32(v))
}

// WriteF32s writes all values back to back.
func (c *Codec) WriteF32s(vals []float32) error {
	if len(vals) == 0 {
		return nil
	}
	b := make([]byte, len(vals)*4)
	for n, v := range vals {
		binary.LittleEndian.PutUint32(b[n*4:], math.Float32bits(v))
	}
	return c.WriteBytes(b)
}

// ReadU8 waits for one byte and consumes it.
func (c *Codec) ReadU8(ctx context.Context) (byte, error) {
	if err := c.wait(ctx, 1, c.Sync == SyncExact, c.Timeout); err != nil {
		return 0, err
	}
	return c.Channel.ReadByte()
}

// ReadU16 waits for two bytes and decodes them little-endian.
func (c *Codec) ReadU16(ctx context.Context) (uint16, error) {
	var b [2]byte
	if err := c.readFull(ctx, b[:]); err != nil {
		return 0, err
	}
	return DecodeU16(b[:]), nil
}

// ReadF32 waits for four bytes and decodes them as a binary32.
func (c *Codec) ReadF32(ctx context.Context) (float32, error) {
	var b [4]byte
	if err := c.readFull(ctx, b[:]); err != nil {
		return 0, err
	}
	return DecodeF32(b[:]), nil
}

// ReadF32s fills dst with consecutive floats.
func (c *Codec) ReadF32s(ctx context.Context, dst []float32) error {
	for n := range dst {
		v, err := c.ReadF32(ctx)
		if err != nil {
			return err
		}
		dst[n] = v
	}
	return nil
}

// Discard drops all buffered bytes and returns the count dropped.
func (c *Codec) Discard() int {
	c.desync = false
	var n int
	for ; c.Channel.Buffered() > 0; n++ {
		if _, err := c.Channel.ReadByte(); err != nil {
			break
		}
	}
	if n > 0 {
		glog.Warningf("discarded %d stale bytes", n)
	}
	return n
}

// ReadStatus waits for any byte and reports whether it is the success
// status (1).
func (c *Codec) ReadStatus(ctx context.Context) (bool, error) {
	return c.ReadStatusTimeout(ctx, c.Timeout)
}

// ReadStatusTimeout is ReadStatus with its own timeout, 0 waits forever.
func (c *Codec) ReadStatusTimeout(ctx context.Context, timeout time.Duration) (bool, error) {
	if err := c.wait(ctx, 1, false, timeout); err != nil {
		return false, err
	}
	b, err := c.Channel.ReadByte()
	if err != nil {
		return false, err
	}
	return b == 1, nil
}

// SendCommand writes an opcode without payload and reads the status.
func (c *Codec) SendCommand(ctx context.Context, cmd Command) (bool, error) {
	if err := c.WriteCommand(cmd); err != nil {
		return false, err
	}
	return c.ReadStatus(ctx)
}

func (c *Codec) readFull(ctx context.Context, b []byte) (err error) {
	if err = c.wait(ctx, len(b), c.Sync == SyncExact, c.Timeout); err != nil {
		return
	}
	for n := range b {
		if b[n], err = c.Channel.ReadByte(); err != nil {
			return
		}
	}
	return
}

func (c *Codec) wait(ctx context.Context, size int, exact bool, timeout time.Duration) error {
	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}
	interval := c.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	for {
		avail := c.Channel.Buffered()
		if avail == size || (!exact && avail > size) {
			return nil
		}
		if avail < size && !c.Channel.Ready() {
			return ErrNotReady
		}
		select {
		case <-ctx.Done():
			c.desync = true
			return ctx.Err()
		case <-deadline:
			c.desync = true
			return ErrTimeout
		case <-time.After(interval):
		}
	}
}
