package n2cmu

import (
	"context"
	"time"

	"github.com/golang/glog"
)

// Defaults of the firmware link.
const (
	DefaultBaud       = 31250
	DefaultResetDelay = 4558 * time.Microsecond
)

// Coprocessor is the host side client of an N2 coprocessor.
// It never caches device state: every operation needing a count queries
// the device first. It is not safe for concurrent use.
type Coprocessor struct {
	Codec      *Codec
	Baud       int
	ResetDelay time.Duration
	// TrainTimeout bounds the wait for the training status, which the
	// device only sends after all epochs ran. 0 waits forever.
	TrainTimeout time.Duration
}

// New creates a Coprocessor over the channel with default settings.
func New(ch Channel) *Coprocessor {
	return &Coprocessor{
		Codec:      NewCodec(ch),
		Baud:       DefaultBaud,
		ResetDelay: DefaultResetDelay,
	}
}

// Channel gets the wrapped channel.
func (p *Coprocessor) Channel() Channel {
	return p.Codec.Channel
}

// Begin opens the channel, waits until it is ready and performs a handshake.
func (p *Coprocessor) Begin(ctx context.Context) (bool, error) {
	ch := p.Codec.Channel
	if opener, ok := ch.(Opener); ok {
		if err := opener.Open(p.Baud); err != nil {
			return false, err
		}
	}
	if err := p.waitReady(ctx); err != nil {
		return false, err
	}
	return p.Handshake(ctx)
}

// Handshake checks the device is responding.
func (p *Coprocessor) Handshake(ctx context.Context) (bool, error) {
	p.trace(CmdHandshake)
	return p.Codec.SendCommand(ctx, CmdHandshake)
}

// CPUReset reboots the device and handshakes once it settled.
// The reset opcode itself is not acknowledged.
func (p *Coprocessor) CPUReset(ctx context.Context) (bool, error) {
	if err := p.send(CmdCPUReset); err != nil {
		return false, err
	}
	if err := sleep(ctx, p.ResetDelay); err != nil {
		return false, err
	}
	return p.Handshake(ctx)
}

// CreateNetwork configures all three counts at once. Unacknowledged.
func (p *Coprocessor) CreateNetwork(t Topology) error {
	return p.send(CmdNetCreate, t.Input, t.Hidden, t.Output)
}

// ResetNetwork clears the network on the device. Unacknowledged.
func (p *Coprocessor) ResetNetwork() error {
	return p.send(CmdNetReset)
}

// SetCount sets one count. The device zeroes all weights, biases and
// gradients as a side effect. Unacknowledged.
func (p *Coprocessor) SetCount(c Count, value uint8) error {
	return p.send(countCmds[c].set, value)
}

// GetCount queries one count from the device.
func (p *Coprocessor) GetCount(ctx context.Context, c Count) (uint8, error) {
	if err := p.send(countCmds[c].get); err != nil {
		return 0, err
	}
	return p.Codec.ReadU8(ctx)
}

// SetInputCount sets the input neuron count. Unacknowledged.
func (p *Coprocessor) SetInputCount(count uint8) error { return p.SetCount(InputCount, count) }

// SetHiddenCount sets the hidden neuron count. Unacknowledged.
func (p *Coprocessor) SetHiddenCount(count uint8) error { return p.SetCount(HiddenCount, count) }

// SetOutputCount sets the output neuron count. Unacknowledged.
func (p *Coprocessor) SetOutputCount(count uint8) error { return p.SetCount(OutputCount, count) }

// GetInputCount queries the input neuron count.
func (p *Coprocessor) GetInputCount(ctx context.Context) (uint8, error) {
	return p.GetCount(ctx, InputCount)
}

// GetHiddenCount queries the hidden neuron count.
func (p *Coprocessor) GetHiddenCount(ctx context.Context) (uint8, error) {
	return p.GetCount(ctx, HiddenCount)
}

// GetOutputCount queries the output neuron count.
func (p *Coprocessor) GetOutputCount(ctx context.Context) (uint8, error) {
	return p.GetCount(ctx, OutputCount)
}

// SetEpochCount sets the epochs used by Train. Unacknowledged.
func (p *Coprocessor) SetEpochCount(epoch uint16) error {
	return p.send(CmdSetEpochCount, EncodeU16(epoch)...)
}

// GetEpochCount queries the epochs used by Train.
func (p *Coprocessor) GetEpochCount(ctx context.Context) (uint16, error) {
	if err := p.send(CmdGetEpochCount); err != nil {
		return 0, err
	}
	return p.Codec.ReadU16(ctx)
}

// Topology queries all three counts.
func (p *Coprocessor) Topology(ctx context.Context) (t Topology, err error) {
	if t.Input, err = p.GetInputCount(ctx); err != nil {
		return
	}
	if t.Hidden, err = p.GetHiddenCount(ctx); err != nil {
		return
	}
	t.Output, err = p.GetOutputCount(ctx)
	return
}

// Infer runs the network on input and stores the result in output.
// Both are sized by the counts queried from the device.
func (p *Coprocessor) Infer(ctx context.Context, input, output []float32) (bool, error) {
	inputCount, err := p.GetInputCount(ctx)
	if err != nil {
		return false, err
	}
	outputCount, err := p.GetOutputCount(ctx)
	if err != nil {
		return false, err
	}
	if err = checkLen("input", input, int(inputCount)); err != nil {
		return false, err
	}
	if err = checkLen("output", output, int(outputCount)); err != nil {
		return false, err
	}
	if err = p.send(CmdNetInfer); err != nil {
		return false, err
	}
	if err = p.Codec.WriteF32s(input[:inputCount]); err != nil {
		return false, err
	}
	if err = p.Codec.ReadF32s(ctx, output[:outputCount]); err != nil {
		return false, err
	}
	return p.Codec.ReadStatus(ctx)
}

// Predict is like Infer but allocates the output.
func (p *Coprocessor) Predict(ctx context.Context, input []float32) ([]float32, bool, error) {
	outputCount, err := p.GetOutputCount(ctx)
	if err != nil {
		return nil, false, err
	}
	output := make([]float32, outputCount)
	ok, err := p.Infer(ctx, input, output)
	if err != nil {
		return nil, false, err
	}
	return output, ok, nil
}

// Train sends a batch of rows to the device. inputs and outputs are
// row-major, each row is as wide as the input and output counts.
// It fails with ErrTrainingNotConfigured when the device reports 0 epochs,
// in that case the epoch query is the only byte sent.
func (p *Coprocessor) Train(ctx context.Context, inputs, outputs []float32, rows int, learningRate float32) (bool, error) {
	if rows < 0 || rows > 0xffff {
		return false, ErrBatchTooLarge
	}
	epoch, err := p.GetEpochCount(ctx)
	if err != nil {
		return false, err
	}
	if epoch == 0 {
		return false, ErrTrainingNotConfigured
	}
	inputCount, err := p.GetInputCount(ctx)
	if err != nil {
		return false, err
	}
	outputCount, err := p.GetOutputCount(ctx)
	if err != nil {
		return false, err
	}
	inputLen, outputLen := rows*int(inputCount), rows*int(outputCount)
	if err = checkLen("training input", inputs, inputLen); err != nil {
		return false, err
	}
	if err = checkLen("training output", outputs, outputLen); err != nil {
		return false, err
	}
	if err = p.send(CmdNetTrain, EncodeU16(uint16(rows))...); err != nil {
		return false, err
	}
	glog.V(4).Infof("train: %d rows, %d+%d values", rows, inputLen, outputLen)
	if err = p.Codec.WriteF32s(inputs[:inputLen]); err != nil {
		return false, err
	}
	if err = p.Codec.WriteF32s(outputs[:outputLen]); err != nil {
		return false, err
	}
	if err = p.Codec.WriteF32(learningRate); err != nil {
		return false, err
	}
	return p.Codec.ReadStatusTimeout(ctx, p.TrainTimeout)
}

func (p *Coprocessor) send(cmd Command, payload ...byte) error {
	p.trace(cmd)
	return p.Codec.WriteCommand(cmd, payload...)
}

func (p *Coprocessor) trace(cmd Command) {
	if glog.V(3) {
		glog.Infof("CMD %s", cmd)
	}
}

func (p *Coprocessor) waitReady(ctx context.Context) error {
	ch := p.Codec.Channel
	if ch.Ready() {
		return nil
	}
	if timeout := p.Codec.Timeout; timeout > 0 {
		var cancel func()
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	for !ch.Ready() {
		if err := sleep(ctx, p.Codec.PollInterval); err != nil {
			if err == context.DeadlineExceeded {
				return ErrNotReady
			}
			return err
		}
	}
	return nil
}

func checkLen(name string, vals []float32, want int) error {
	if len(vals) < want {
		return &ShortBufferError{Name: name, Want: want, Got: len(vals)}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		d = DefaultPollInterval
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
