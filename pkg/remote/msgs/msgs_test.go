package msgs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/n2cmu.go/pkg/n2cmu"
	pb "github.com/robotalks/n2cmu.go/pkg/proto/n2cmu/v1"
)

func TestTypedEnvelope(t *testing.T) {
	msg := &Train{Train: pb.Train{Rows: 2, Inputs: []float32{1, 2}, Outputs: []float32{3}, LearningRate: 0.1}}
	typed, err := TypedFrom(msg, 42)
	require.NoError(t, err)
	assert.False(t, typed.IsReply())
	data, err := typed.Encode()
	require.NoError(t, err)

	decoded, err := DecodeTyped(data)
	require.NoError(t, err)
	assert.Equal(t, TrainTypeID, decoded.TypeId)
	assert.EqualValues(t, 42, decoded.Sequence)
	out, err := decoded.Decode()
	require.NoError(t, err)
	require.IsType(t, &Train{}, out)
	assert.Equal(t, msg.Train, out.(*Train).Train)
}

func TestTypeIDs(t *testing.T) {
	for id, msg := range MessageTypes {
		assert.Equal(t, id, msg.NewMessage().(SerializableMessage).TypeID())
	}
	replies := []uint32{CommandOKTypeID, CommandErrTypeID, StatusTypeID, TopologyTypeID, CountValueTypeID, ParamValuesTypeID, InferResultTypeID}
	for _, id := range replies {
		typed := &Typed{Typed: pb.Typed{TypeId: id}}
		assert.True(t, typed.IsReply(), "%x", id)
	}
}

func TestUnknownType(t *testing.T) {
	typed := &Typed{Typed: pb.Typed{TypeId: 0x7f0001}}
	_, err := typed.Decode()
	assert.Equal(t, &ErrUnknownType{TypeID: 0x7f0001}, err)
	_, err = TypedFrom(nil, 1)
	assert.Equal(t, ErrNotSerializable, err)
}

func TestTopologyConversion(t *testing.T) {
	topo := n2cmu.Topology{Input: 4, Hidden: 8, Output: 2}
	back, err := ToTopology(TopologyFrom(topo))
	require.NoError(t, err)
	assert.Equal(t, topo, back)

	_, err = ToTopology(nil)
	assert.Error(t, err)
	_, err = ToTopology(&pb.Topology{Input: 256})
	assert.Error(t, err)
}

func TestCommandErr(t *testing.T) {
	err := NewCommandErr(n2cmu.ErrBatchTooLarge)
	assert.EqualError(t, err, n2cmu.ErrBatchTooLarge.Error())
}
