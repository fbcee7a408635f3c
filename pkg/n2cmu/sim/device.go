// Package sim provides a software N2 coprocessor speaking the wire protocol.
package sim

import (
	"io"
	"math"
	"sync"

	"github.com/golang/glog"
	"gonum.org/v1/gonum/mat"

	"github.com/robotalks/n2cmu.go/pkg/n2cmu"
)

// Batch is a training batch received by the device.
type Batch struct {
	Rows         int
	Inputs       []float32
	Outputs      []float32
	LearningRate float32
}

// maxWritten bounds the bytes kept for Written.
const maxWritten = 1 << 20

// Device implements n2cmu.Channel by emulating the firmware framing.
// Replies become readable as soon as the request is complete.
type Device struct {
	// Framed exposes one reply value at a time, the next value is only
	// buffered once the previous one is consumed. This is required by
	// n2cmu.SyncExact.
	Framed bool

	lock    sync.Mutex
	baud    int
	closed  bool
	written []byte
	rx      [][]byte

	topo   n2cmu.Topology
	epoch  uint16
	params map[n2cmu.Param][]float32

	cmd     n2cmu.Command
	active  bool
	need    int
	rows    int
	payload []byte

	batches int
	last    *Batch
}

// New creates a Device without a network.
func New() *Device {
	d := &Device{}
	d.resetParams()
	return d
}

// Open implements n2cmu.Opener.
func (d *Device) Open(baud int) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.baud, d.closed = baud, false
	return nil
}

// Close stops the link, pending reads fail afterwards.
func (d *Device) Close() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.closed = true
	return nil
}

// Baud returns the rate passed to Open.
func (d *Device) Baud() int {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.baud
}

// Ready implements n2cmu.Channel.
func (d *Device) Ready() bool {
	d.lock.Lock()
	defer d.lock.Unlock()
	return !d.closed
}

// Write implements n2cmu.Channel.
func (d *Device) Write(p []byte) (int, error) {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.closed {
		return 0, io.ErrClosedPipe
	}
	d.written = append(d.written, p...)
	if over := len(d.written) - maxWritten; over > 0 {
		d.written = append(d.written[:0], d.written[over:]...)
	}
	for _, b := range p {
		d.feed(b)
	}
	return len(p), nil
}

// Buffered implements n2cmu.Channel.
func (d *Device) Buffered() int {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.Framed {
		if len(d.rx) == 0 {
			return 0
		}
		return len(d.rx[0])
	}
	var size int
	for _, frame := range d.rx {
		size += len(frame)
	}
	return size
}

// ReadByte implements n2cmu.Channel.
func (d *Device) ReadByte() (byte, error) {
	d.lock.Lock()
	defer d.lock.Unlock()
	if len(d.rx) == 0 {
		return 0, io.EOF
	}
	b := d.rx[0][0]
	if d.rx[0] = d.rx[0][1:]; len(d.rx[0]) == 0 {
		d.rx = d.rx[1:]
	}
	return b, nil
}

// Written returns the bytes received from the host, the most recent 1MiB.
func (d *Device) Written() []byte {
	d.lock.Lock()
	defer d.lock.Unlock()
	return append([]byte(nil), d.written...)
}

// ClearWritten forgets the bytes received so far.
func (d *Device) ClearWritten() {
	d.lock.Lock()
	d.written = nil
	d.lock.Unlock()
}

// Topology returns the configured topology.
func (d *Device) Topology() n2cmu.Topology {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.topo
}

// Epoch returns the configured epoch count.
func (d *Device) Epoch() uint16 {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.epoch
}

// Param returns a copy of a parameter vector.
func (d *Device) Param(p n2cmu.Param) []float32 {
	d.lock.Lock()
	defer d.lock.Unlock()
	return append([]float32(nil), d.params[p]...)
}

// LastBatch returns the last training batch and the count of batches.
func (d *Device) LastBatch() (*Batch, int) {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.last, d.batches
}

func (d *Device) feed(b byte) {
	if !d.active {
		d.cmd, d.active, d.rows = n2cmu.Command(b), true, -1
		d.payload = d.payload[:0]
		d.need = d.payloadLen()
	} else {
		d.payload = append(d.payload, b)
	}
	if len(d.payload) < d.need {
		return
	}
	if d.cmd == n2cmu.CmdNetTrain && d.rows < 0 {
		d.rows = int(n2cmu.DecodeU16(d.payload))
		d.need = 2 + d.rows*(int(d.topo.Input)+int(d.topo.Output))*4 + 4
		if len(d.payload) < d.need {
			return
		}
	}
	d.active = false
	d.execute()
}

func (d *Device) payloadLen() int {
	switch d.cmd {
	case n2cmu.CmdNetCreate:
		return 3
	case n2cmu.CmdSetInputCount, n2cmu.CmdSetHiddenCount, n2cmu.CmdSetOutputCount:
		return 1
	case n2cmu.CmdSetEpochCount, n2cmu.CmdNetTrain:
		return 2
	case n2cmu.CmdNetInfer:
		return int(d.topo.Input) * 4
	}
	if p, ok := paramBySet(d.cmd); ok {
		return p.Len(d.topo) * 4
	}
	return 0
}

func (d *Device) execute() {
	if glog.V(4) {
		glog.Infof("sim: %s (%d bytes)", d.cmd, len(d.payload))
	}
	switch d.cmd {
	case n2cmu.CmdHandshake:
		d.replyStatus(true)
	case n2cmu.CmdCPUReset:
		d.topo, d.epoch, d.rx = n2cmu.Topology{}, 0, nil
		d.resetParams()
	case n2cmu.CmdNetCreate:
		d.topo = n2cmu.Topology{Input: d.payload[0], Hidden: d.payload[1], Output: d.payload[2]}
		d.resetParams()
	case n2cmu.CmdNetReset:
		d.topo = n2cmu.Topology{}
		d.resetParams()
	case n2cmu.CmdSetInputCount:
		d.topo.Input = d.payload[0]
		d.resetParams()
	case n2cmu.CmdSetHiddenCount:
		d.topo.Hidden = d.payload[0]
		d.resetParams()
	case n2cmu.CmdSetOutputCount:
		d.topo.Output = d.payload[0]
		d.resetParams()
	case n2cmu.CmdSetEpochCount:
		d.epoch = n2cmu.DecodeU16(d.payload)
	case n2cmu.CmdGetInputCount:
		d.reply([]byte{d.topo.Input})
	case n2cmu.CmdGetHiddenCount:
		d.reply([]byte{d.topo.Hidden})
	case n2cmu.CmdGetOutputCount:
		d.reply([]byte{d.topo.Output})
	case n2cmu.CmdGetEpochCount:
		d.reply(n2cmu.EncodeU16(d.epoch))
	case n2cmu.CmdNetInfer:
		d.infer()
	case n2cmu.CmdNetTrain:
		d.train()
	default:
		if p, ok := paramBySet(d.cmd); ok {
			d.params[p] = decodeF32s(d.payload)
			d.replyStatus(true)
		} else if p, ok := paramByGet(d.cmd); ok {
			d.replyF32s(d.params[p])
		} else {
			glog.Warningf("sim: unknown command %s", d.cmd)
		}
	}
}

func (d *Device) resetParams() {
	d.params = make(map[n2cmu.Param][]float32)
	for _, p := range n2cmu.Params() {
		d.params[p] = make([]float32, p.Len(d.topo))
	}
}

// infer runs a sigmoid forward pass. Hidden weights are laid out
// input-major (input x hidden), output weights hidden-major.
func (d *Device) infer() {
	in, hid, out := int(d.topo.Input), int(d.topo.Hidden), int(d.topo.Output)
	if in == 0 || hid == 0 || out == 0 {
		d.replyF32s(make([]float32, out))
		d.replyStatus(false)
		return
	}
	x := mat.NewVecDense(in, toF64(decodeF32s(d.payload)))
	w1 := mat.NewDense(in, hid, toF64(d.params[n2cmu.HiddenWeights]))
	w2 := mat.NewDense(hid, out, toF64(d.params[n2cmu.OutputWeights]))

	h := mat.NewVecDense(hid, nil)
	h.MulVec(w1.T(), x)
	h.AddVec(h, mat.NewVecDense(hid, toF64(d.params[n2cmu.HiddenBias])))
	activate(h)

	y := mat.NewVecDense(out, nil)
	y.MulVec(w2.T(), h)
	y.AddVec(y, mat.NewVecDense(out, toF64(d.params[n2cmu.OutputBias])))
	activate(y)

	d.params[n2cmu.HiddenNeuron] = toF32(h.RawVector().Data)
	d.params[n2cmu.OutputNeuron] = toF32(y.RawVector().Data)
	d.replyF32s(d.params[n2cmu.OutputNeuron])
	d.replyStatus(true)
}

// train records the batch. The weights are left as-is.
func (d *Device) train() {
	inLen := d.rows * int(d.topo.Input) * 4
	outLen := d.rows * int(d.topo.Output) * 4
	data := d.payload[2:]
	d.last = &Batch{
		Rows:         d.rows,
		Inputs:       decodeF32s(data[:inLen]),
		Outputs:      decodeF32s(data[inLen : inLen+outLen]),
		LearningRate: n2cmu.DecodeF32(data[inLen+outLen:]),
	}
	d.batches++
	d.replyStatus(d.epoch > 0 && !d.topo.IsEmpty())
}

func (d *Device) reply(b []byte) {
	d.rx = append(d.rx, append([]byte(nil), b...))
}

func (d *Device) replyStatus(ok bool) {
	if ok {
		d.reply([]byte{1})
	} else {
		d.reply([]byte{0})
	}
}

func (d *Device) replyF32s(vals []float32) {
	for _, v := range vals {
		d.reply(n2cmu.EncodeF32(v))
	}
}

func paramBySet(cmd n2cmu.Command) (n2cmu.Param, bool) {
	for _, p := range n2cmu.Params() {
		if p.SetCommand() == cmd {
			return p, true
		}
	}
	return 0, false
}

func paramByGet(cmd n2cmu.Command) (n2cmu.Param, bool) {
	for _, p := range n2cmu.Params() {
		if p.GetCommand() == cmd {
			return p, true
		}
	}
	return 0, false
}

func activate(v *mat.VecDense) {
	for i := 0; i < v.Len(); i++ {
		v.SetVec(i, 1/(1+math.Exp(-v.AtVec(i))))
	}
}

func decodeF32s(b []byte) []float32 {
	vals := make([]float32, len(b)/4)
	for n := range vals {
		vals[n] = n2cmu.DecodeF32(b[n*4:])
	}
	return vals
}

func toF64(vals []float32) []float64 {
	out := make([]float64, len(vals))
	for n, v := range vals {
		out[n] = float64(v)
	}
	return out
}

func toF32(vals []float64) []float32 {
	out := make([]float32, len(vals))
	for n, v := range vals {
		out[n] = float32(v)
	}
	return out
}
