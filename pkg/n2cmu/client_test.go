package n2cmu_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/n2cmu.go/pkg/n2cmu"
	"github.com/robotalks/n2cmu.go/pkg/n2cmu/sim"
)

func newTestCoprocessor(t *testing.T, topo n2cmu.Topology) (*n2cmu.Coprocessor, *sim.Device) {
	dev := sim.New()
	p := n2cmu.New(dev)
	p.Codec.Timeout = 200 * time.Millisecond
	p.ResetDelay = time.Millisecond
	if !topo.IsEmpty() {
		require.NoError(t, p.CreateNetwork(topo))
	}
	dev.ClearWritten()
	return p, dev
}

func cmds(cs ...n2cmu.Command) []byte {
	b := make([]byte, len(cs))
	for n, c := range cs {
		b[n] = byte(c)
	}
	return b
}

func f32s(vals ...float32) []byte {
	var b []byte
	for _, v := range vals {
		b = append(b, n2cmu.EncodeF32(v)...)
	}
	return b
}

func TestBegin(t *testing.T) {
	p, dev := newTestCoprocessor(t, n2cmu.Topology{})
	ok, err := p.Begin(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, n2cmu.DefaultBaud, dev.Baud())
	assert.Equal(t, cmds(n2cmu.CmdHandshake), dev.Written())
}

func TestCPUReset(t *testing.T) {
	p, dev := newTestCoprocessor(t, n2cmu.Topology{Input: 2, Hidden: 2, Output: 1})
	ok, err := p.CPUReset(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, cmds(n2cmu.CmdCPUReset, n2cmu.CmdHandshake), dev.Written())
	assert.True(t, dev.Topology().IsEmpty())
}

func TestCountsAreQueriedFromDevice(t *testing.T) {
	p, dev := newTestCoprocessor(t, n2cmu.Topology{})
	ctx := context.Background()

	require.NoError(t, p.SetInputCount(7))
	count, err := p.GetInputCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint8(7), count)

	require.NoError(t, p.SetHiddenCount(5))
	require.NoError(t, p.SetOutputCount(3))
	topo, err := p.Topology(ctx)
	require.NoError(t, err)
	assert.Equal(t, n2cmu.Topology{Input: 7, Hidden: 5, Output: 3}, topo)

	// no cache: a second query costs the same round trips.
	dev.ClearWritten()
	_, err = p.Topology(ctx)
	require.NoError(t, err)
	assert.Equal(t, cmds(n2cmu.CmdGetInputCount, n2cmu.CmdGetHiddenCount, n2cmu.CmdGetOutputCount), dev.Written())
}

func TestUnacknowledgedCommands(t *testing.T) {
	p, dev := newTestCoprocessor(t, n2cmu.Topology{})
	require.NoError(t, p.CreateNetwork(n2cmu.Topology{Input: 2, Hidden: 3, Output: 1}))
	require.NoError(t, p.SetHiddenCount(4))
	require.NoError(t, p.SetEpochCount(0x0102))
	require.NoError(t, p.ResetNetwork())
	assert.Equal(t, []byte{
		byte(n2cmu.CmdNetCreate), 2, 3, 1,
		byte(n2cmu.CmdSetHiddenCount), 4,
		byte(n2cmu.CmdSetEpochCount), 0x02, 0x01,
		byte(n2cmu.CmdNetReset),
	}, dev.Written())
	assert.Equal(t, 0, dev.Buffered())
	assert.Equal(t, uint16(0x0102), dev.Epoch())
}

func TestEpochCount(t *testing.T) {
	p, _ := newTestCoprocessor(t, n2cmu.Topology{})
	require.NoError(t, p.SetEpochCount(1000))
	epoch, err := p.GetEpochCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint16(1000), epoch)
}

func TestInferWireSequence(t *testing.T) {
	p, dev := newTestCoprocessor(t, n2cmu.Topology{Input: 2, Hidden: 2, Output: 1})
	output := make([]float32, 1)
	ok, err := p.Infer(context.Background(), []float32{0.25, -4}, output)
	require.NoError(t, err)
	assert.True(t, ok)

	expected := cmds(n2cmu.CmdGetInputCount, n2cmu.CmdGetOutputCount, n2cmu.CmdNetInfer)
	expected = append(expected, f32s(0.25, -4)...)
	assert.Equal(t, expected, dev.Written())
	// zero weights and biases: sigmoid(0) everywhere.
	assert.InDelta(t, 0.5, output[0], 1e-6)
	assert.Equal(t, 0, dev.Buffered())
}

func TestInferForwardPass(t *testing.T) {
	p, _ := newTestCoprocessor(t, n2cmu.Topology{Input: 1, Hidden: 1, Output: 1})
	ctx := context.Background()
	for _, param := range []n2cmu.Param{n2cmu.HiddenWeights, n2cmu.OutputWeights} {
		ok, err := p.SetParam(ctx, param, []float32{100})
		require.NoError(t, err)
		require.True(t, ok)
	}
	ok, err := p.SetOutputBias(ctx, []float32{-50})
	require.NoError(t, err)
	require.True(t, ok)

	output := make([]float32, 1)
	ok, err = p.Infer(ctx, []float32{1}, output)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 1, output[0], 1e-3)

	hidden := make([]float32, 1)
	_, err = p.GetHiddenNeuron(ctx, hidden)
	require.NoError(t, err)
	assert.InDelta(t, 1, hidden[0], 1e-3)
}

func TestInferFramedExactSync(t *testing.T) {
	p, dev := newTestCoprocessor(t, n2cmu.Topology{Input: 2, Hidden: 2, Output: 3})
	dev.Framed = true
	p.Codec.Sync = n2cmu.SyncExact
	output := make([]float32, 3)
	ok, err := p.Infer(context.Background(), []float32{1, 2}, output)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []float32{0.5, 0.5, 0.5}, output)
}

func TestInferShortBuffer(t *testing.T) {
	p, dev := newTestCoprocessor(t, n2cmu.Topology{Input: 3, Hidden: 2, Output: 1})
	_, err := p.Infer(context.Background(), []float32{1}, make([]float32, 1))
	assert.True(t, errors.Is(err, n2cmu.ErrShortBuffer))
	assert.Equal(t, cmds(n2cmu.CmdGetInputCount, n2cmu.CmdGetOutputCount), dev.Written())
}

func TestTrainWithoutEpochs(t *testing.T) {
	p, dev := newTestCoprocessor(t, n2cmu.Topology{Input: 2, Hidden: 2, Output: 1})
	ok, err := p.Train(context.Background(), make([]float32, 6), make([]float32, 3), 3, 0.1)
	assert.False(t, ok)
	assert.Equal(t, n2cmu.ErrTrainingNotConfigured, err)
	// only the epoch query reaches the device.
	assert.Equal(t, cmds(n2cmu.CmdGetEpochCount), dev.Written())
	_, batches := dev.LastBatch()
	assert.Equal(t, 0, batches)
}

func TestTrainWireSequence(t *testing.T) {
	p, dev := newTestCoprocessor(t, n2cmu.Topology{Input: 2, Hidden: 4, Output: 1})
	require.NoError(t, p.SetEpochCount(10))
	dev.ClearWritten()

	inputs := []float32{1, 2, 3, 4, 5, 6}
	outputs := []float32{7, 8, 9}
	ok, err := p.Train(context.Background(), inputs, outputs, 3, 0.5)
	require.NoError(t, err)
	assert.True(t, ok)

	expected := cmds(n2cmu.CmdGetEpochCount, n2cmu.CmdGetInputCount, n2cmu.CmdGetOutputCount, n2cmu.CmdNetTrain)
	expected = append(expected, 3, 0)
	expected = append(expected, f32s(inputs...)...)
	expected = append(expected, f32s(outputs...)...)
	expected = append(expected, f32s(0.5)...)
	assert.Equal(t, expected, dev.Written())

	batch, batches := dev.LastBatch()
	require.NotNil(t, batch)
	assert.Equal(t, 1, batches)
	assert.Equal(t, 3, batch.Rows)
	assert.Equal(t, inputs, batch.Inputs)
	assert.Equal(t, outputs, batch.Outputs)
	assert.Equal(t, float32(0.5), batch.LearningRate)
	assert.Equal(t, 0, dev.Buffered())
}

func TestTrainBatchTooLarge(t *testing.T) {
	p, dev := newTestCoprocessor(t, n2cmu.Topology{Input: 1, Hidden: 1, Output: 1})
	_, err := p.Train(context.Background(), nil, nil, 0x10000, 0.1)
	assert.Equal(t, n2cmu.ErrBatchTooLarge, err)
	assert.Empty(t, dev.Written())
}

func TestSetHiddenWeightsLength(t *testing.T) {
	p, dev := newTestCoprocessor(t, n2cmu.Topology{Input: 4, Hidden: 3, Output: 1})
	weights := make([]float32, 12)
	for n := range weights {
		weights[n] = float32(n) / 10
	}
	ok, err := p.SetHiddenWeights(context.Background(), weights)
	require.NoError(t, err)
	assert.True(t, ok)

	written := dev.Written()
	prefix := cmds(n2cmu.CmdGetInputCount, n2cmu.CmdGetHiddenCount, n2cmu.CmdSetHiddenWeights)
	require.Equal(t, prefix, written[:len(prefix)])
	assert.Len(t, written[len(prefix):], 12*4)
	assert.Equal(t, weights, dev.Param(n2cmu.HiddenWeights))
}

func TestParamRoundTrip(t *testing.T) {
	topo := n2cmu.Topology{Input: 3, Hidden: 2, Output: 2}
	p, _ := newTestCoprocessor(t, topo)
	ctx := context.Background()
	for _, param := range n2cmu.Params() {
		t.Run(param.String(), func(t *testing.T) {
			vals := make([]float32, param.Len(topo))
			for n := range vals {
				vals[n] = float32(n+1) * 0.5
			}
			ok, err := p.SetParam(ctx, param, vals)
			require.NoError(t, err)
			require.True(t, ok)

			dst := make([]float32, len(vals)+2)
			n, err := p.GetParam(ctx, param, dst)
			require.NoError(t, err)
			assert.Equal(t, len(vals), n)
			assert.Equal(t, vals, dst[:n])

			read, err := p.ReadParam(ctx, param)
			require.NoError(t, err)
			assert.Equal(t, vals, read)
		})
	}
}

func TestSetCountClearsParams(t *testing.T) {
	p, dev := newTestCoprocessor(t, n2cmu.Topology{Input: 1, Hidden: 2, Output: 1})
	ctx := context.Background()
	ok, err := p.SetHiddenBias(ctx, []float32{1, 2})
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, p.SetHiddenCount(2))
	assert.Equal(t, []float32{0, 0}, dev.Param(n2cmu.HiddenBias))
}

func TestParamShortBuffer(t *testing.T) {
	p, _ := newTestCoprocessor(t, n2cmu.Topology{Input: 2, Hidden: 2, Output: 1})
	_, err := p.SetOutputWeights(context.Background(), []float32{1})
	var sbErr *n2cmu.ShortBufferError
	require.True(t, errors.As(err, &sbErr))
	assert.Equal(t, 2, sbErr.Want)
	assert.Equal(t, 1, sbErr.Got)
}

func TestStatusRejected(t *testing.T) {
	p, _ := newTestCoprocessor(t, n2cmu.Topology{})
	// an empty network rejects inference.
	ok, err := p.Infer(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLinkDown(t *testing.T) {
	p, dev := newTestCoprocessor(t, n2cmu.Topology{})
	require.NoError(t, dev.Close())
	_, err := p.Handshake(context.Background())
	assert.Error(t, err)
}

func TestConfig(t *testing.T) {
	conf := n2cmu.NewConfig()
	conf.ExactSync = true
	conf.Timeout = time.Second
	p := conf.NewCoprocessor(sim.New())
	assert.Equal(t, n2cmu.SyncExact, p.Codec.Sync)
	assert.Equal(t, time.Second, p.Codec.Timeout)
	assert.Equal(t, n2cmu.DefaultBaud, p.Baud)
}
