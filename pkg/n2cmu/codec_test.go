package n2cmu

import (
	"context"
	"io"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bufChannel is a scripted channel: bytes to read are injected by the test.
type bufChannel struct {
	lock    sync.Mutex
	rx      []byte
	written []byte
	down    bool
	// onWrite plays the device side, it is called after each write.
	onWrite func(p []byte)
}

func (c *bufChannel) inject(bs ...byte) {
	c.lock.Lock()
	c.rx = append(c.rx, bs...)
	c.lock.Unlock()
}

func (c *bufChannel) Write(p []byte) (int, error) {
	c.lock.Lock()
	c.written = append(c.written, p...)
	onWrite := c.onWrite
	c.lock.Unlock()
	if onWrite != nil {
		onWrite(p)
	}
	return len(p), nil
}

func (c *bufChannel) ReadByte() (byte, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if len(c.rx) == 0 {
		return 0, io.EOF
	}
	b := c.rx[0]
	c.rx = c.rx[1:]
	return b, nil
}

func (c *bufChannel) Buffered() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.rx)
}

func (c *bufChannel) Ready() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return !c.down
}

func newTestCodec() (*Codec, *bufChannel) {
	ch := &bufChannel{}
	c := NewCodec(ch)
	c.Timeout = 50 * time.Millisecond
	return c, ch
}

func TestU16RoundTrip(t *testing.T) {
	for _, v := range []uint16{0, 1, 0xff, 0x100, 0x1234, 0x7fff, 0x8000, 0xfffe, 0xffff} {
		assert.Equal(t, v, DecodeU16(EncodeU16(v)))
	}
	assert.Equal(t, []byte{0x34, 0x12}, EncodeU16(0x1234))
}

func TestF32BitPatterns(t *testing.T) {
	patterns := []uint32{
		0x00000000, // +0
		0x80000000, // -0
		0x00000001, // smallest subnormal
		0x807fffff, // negative subnormal
		0x3f800000, // 1
		0x7f800000, // +inf
		0xff800000, // -inf
		0x7fc00000, // quiet NaN
		0x7fa00001, // signalling NaN payload
		0xffffffff, // NaN, all bits
	}
	for _, bits := range patterns {
		f := math.Float32frombits(bits)
		assert.Equalf(t, bits, math.Float32bits(DecodeF32(EncodeF32(f))), "pattern %08x", bits)
	}
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3f}, EncodeF32(1))
}

func TestCodecWrites(t *testing.T) {
	c, ch := newTestCodec()
	require.NoError(t, c.WriteCommand(CmdNetCreate, 2, 3, 1))
	require.NoError(t, c.WriteU16(0x0102))
	require.NoError(t, c.WriteF32s([]float32{1, -2}))
	require.NoError(t, c.WriteF32s(nil))
	assert.Equal(t, []byte{
		byte(CmdNetCreate), 2, 3, 1,
		0x02, 0x01,
		0x00, 0x00, 0x80, 0x3f,
		0x00, 0x00, 0x00, 0xc0,
	}, ch.written)
}

func TestCodecReads(t *testing.T) {
	c, ch := newTestCodec()
	ctx := context.Background()
	ch.inject(7)
	v8, err := c.ReadU8(ctx)
	require.NoError(t, err)
	assert.Equal(t, byte(7), v8)

	ch.inject(0x34, 0x12)
	v16, err := c.ReadU16(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), v16)

	ch.inject(EncodeF32(-1.5)...)
	f, err := c.ReadF32(ctx)
	require.NoError(t, err)
	assert.Equal(t, float32(-1.5), f)
}

func TestCodecWaitsForAllBytes(t *testing.T) {
	c, ch := newTestCodec()
	c.Timeout = time.Second
	ch.inject(0x01)
	go func() {
		time.Sleep(10 * time.Millisecond)
		ch.inject(0x02)
	}()
	v, err := c.ReadU16(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0201), v)
}

func TestCodecSyncModes(t *testing.T) {
	testCases := []struct {
		name string
		sync SyncMode
		err  error
	}{
		{"at-least reads ahead of extra bytes", SyncAtLeast, nil},
		{"exact stalls on extra bytes", SyncExact, ErrTimeout},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, ch := newTestCodec()
			c.Sync = tc.sync
			ch.inject(EncodeF32(2)...)
			ch.inject(1)
			f, err := c.ReadF32(context.Background())
			if tc.err != nil {
				assert.Equal(t, tc.err, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, float32(2), f)
		})
	}
}

func TestCodecStatus(t *testing.T) {
	testCases := []struct {
		status byte
		ok     bool
	}{
		{1, true},
		{0, false},
		{2, false},
		{255, false},
	}
	for _, tc := range testCases {
		c, ch := newTestCodec()
		ch.inject(tc.status)
		ok, err := c.SendCommand(context.Background(), CmdHandshake)
		require.NoError(t, err)
		assert.Equalf(t, tc.ok, ok, "status %d", tc.status)
		assert.Equal(t, []byte{byte(CmdHandshake)}, ch.written)
	}
}

func TestCodecStatusIgnoresSyncMode(t *testing.T) {
	c, ch := newTestCodec()
	c.Sync = SyncExact
	ch.inject(1, 0xaa)
	ok, err := c.ReadStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCodecTimeout(t *testing.T) {
	c, _ := newTestCodec()
	start := time.Now()
	_, err := c.ReadU8(context.Background())
	assert.Equal(t, ErrTimeout, err)
	assert.True(t, time.Since(start) >= c.Timeout)
}

func TestCodecCancel(t *testing.T) {
	c, _ := newTestCodec()
	c.Timeout = 0
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := c.ReadStatus(ctx)
	assert.Equal(t, context.Canceled, err)
}

func TestCodecDiscardsLateReply(t *testing.T) {
	testCases := []struct {
		name     string
		sync     SyncMode
		canceled bool
	}{
		{"timeout at-least", SyncAtLeast, false},
		{"timeout exact", SyncExact, false},
		{"canceled", SyncAtLeast, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ch := &bufChannel{}
			p := New(ch)
			p.Codec.Timeout = 20 * time.Millisecond
			p.Codec.Sync = tc.sync

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			expected := ErrTimeout
			if tc.canceled {
				expected = context.Canceled
				cancel()
			}
			_, err := p.GetInputCount(ctx)
			require.Equal(t, expected, err)

			// the reply to get-input-count shows up late.
			ch.inject(5)
			ch.onWrite = func(b []byte) {
				if Command(b[0]) == CmdGetHiddenCount {
					ch.inject(3)
				}
			}
			count, err := p.GetHiddenCount(context.Background())
			require.NoError(t, err)
			assert.Equal(t, uint8(3), count)
			assert.Equal(t, 0, ch.Buffered())
		})
	}
}

func TestCodecDiscard(t *testing.T) {
	c, ch := newTestCodec()
	ch.inject(1, 2, 3)
	// nothing is dropped while in sync.
	require.NoError(t, c.WriteCommand(CmdHandshake))
	assert.Equal(t, 3, ch.Buffered())
	assert.Equal(t, 3, c.Discard())
	assert.Equal(t, 0, c.Discard())
}

func TestCodecChannelDown(t *testing.T) {
	c, ch := newTestCodec()
	ch.down = true
	_, err := c.ReadU16(context.Background())
	assert.Equal(t, ErrNotReady, err)
}

func TestCommandNames(t *testing.T) {
	assert.Equal(t, Command(0), CmdHandshake)
	assert.Equal(t, Command(29), CmdGetEpochCount)
	assert.Equal(t, "net-infer", CmdNetInfer.String())
	assert.Equal(t, "command(200)", Command(200).String())
	for c := Command(0); c < numCommands; c++ {
		assert.NotEmptyf(t, c.String(), "command %d", byte(c))
	}
}

func TestParamLen(t *testing.T) {
	topo := Topology{Input: 4, Hidden: 3, Output: 2}
	testCases := []struct {
		param Param
		size  int
	}{
		{HiddenNeuron, 3},
		{OutputNeuron, 2},
		{HiddenWeights, 12},
		{OutputWeights, 6},
		{HiddenBias, 3},
		{OutputBias, 2},
		{HiddenGradient, 3},
		{OutputGradient, 2},
	}
	for _, tc := range testCases {
		assert.Equalf(t, tc.size, tc.param.Len(topo), "%s", tc.param)
		p, err := ParseParam(tc.param.String())
		require.NoError(t, err)
		assert.Equal(t, tc.param, p)
	}
	_, err := ParseParam("nope")
	assert.Error(t, err)
}
