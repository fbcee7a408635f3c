package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/n2cmu.go/pkg/n2cmu"
)

func readAll(t *testing.T, d *Device) []byte {
	var out []byte
	for d.Buffered() > 0 {
		b, err := d.ReadByte()
		require.NoError(t, err)
		out = append(out, b)
	}
	return out
}

func TestDeviceSplitWrites(t *testing.T) {
	d := New()
	for _, b := range []byte{byte(n2cmu.CmdNetCreate), 2, 3, 4, byte(n2cmu.CmdGetHiddenCount)} {
		_, err := d.Write([]byte{b})
		require.NoError(t, err)
	}
	assert.Equal(t, n2cmu.Topology{Input: 2, Hidden: 3, Output: 4}, d.Topology())
	assert.Equal(t, []byte{3}, readAll(t, d))
	assert.Len(t, d.Param(n2cmu.OutputWeights), 12)
}

func TestDeviceFramed(t *testing.T) {
	d := New()
	d.Framed = true
	_, err := d.Write([]byte{byte(n2cmu.CmdNetCreate), 1, 1, 2})
	require.NoError(t, err)
	_, err = d.Write([]byte{byte(n2cmu.CmdGetOutputBias)})
	require.NoError(t, err)
	assert.Equal(t, 4, d.Buffered())
	assert.Len(t, readAll(t, d), 8)
}

func TestDeviceTrainRecordsBatch(t *testing.T) {
	d := New()
	msg := []byte{byte(n2cmu.CmdNetCreate), 1, 1, 1, byte(n2cmu.CmdSetEpochCount), 5, 0, byte(n2cmu.CmdNetTrain), 2, 0}
	for _, v := range []float32{1, 2, 3, 4, 0.25} {
		msg = append(msg, n2cmu.EncodeF32(v)...)
	}
	_, err := d.Write(msg)
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, readAll(t, d))
	batch, count := d.LastBatch()
	require.Equal(t, 1, count)
	assert.Equal(t, &Batch{
		Rows:         2,
		Inputs:       []float32{1, 2},
		Outputs:      []float32{3, 4},
		LearningRate: 0.25,
	}, batch)
}

func TestDeviceUnknownCommand(t *testing.T) {
	d := New()
	_, err := d.Write([]byte{0xee, byte(n2cmu.CmdHandshake)})
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, readAll(t, d))
}

func TestDeviceClosed(t *testing.T) {
	d := New()
	require.NoError(t, d.Close())
	assert.False(t, d.Ready())
	_, err := d.Write([]byte{0})
	assert.Error(t, err)
	require.NoError(t, d.Open(n2cmu.DefaultBaud))
	assert.True(t, d.Ready())
}
