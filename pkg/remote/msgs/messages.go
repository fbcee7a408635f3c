package msgs

import (
	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/n2cmu.go/pkg/framework"
	pb "github.com/robotalks/n2cmu.go/pkg/proto/n2cmu/v1"
)

// CommandOK is the reply of unacknowledged commands.
type CommandOK struct {
	pb.CommandOK
}

// NewMessage implements Message.
func (m *CommandOK) NewMessage() fx.Message { return &CommandOK{} }

// TypeID implements SerializableMessage.
func (m *CommandOK) TypeID() uint32 { return CommandOKTypeID }

// Serializable implements SerializableMessage.
func (m *CommandOK) Serializable() proto.Message { return &m.CommandOK }

// CommandErr is the reply representing a failed request.
type CommandErr struct {
	pb.CommandErr
}

// NewMessage implements Message.
func (m *CommandErr) NewMessage() fx.Message { return &CommandErr{} }

// TypeID implements SerializableMessage.
func (m *CommandErr) TypeID() uint32 { return CommandErrTypeID }

// Serializable implements SerializableMessage.
func (m *CommandErr) Serializable() proto.Message { return &m.CommandErr }

// Status is the reply carrying the device result status.
type Status struct {
	pb.Status
}

// NewMessage implements Message.
func (m *Status) NewMessage() fx.Message { return &Status{} }

// TypeID implements SerializableMessage.
func (m *Status) TypeID() uint32 { return StatusTypeID }

// Serializable implements SerializableMessage.
func (m *Status) Serializable() proto.Message { return &m.Status }

// Handshake request.
type Handshake struct {
	pb.Handshake
}

// NewMessage implements Message.
func (m *Handshake) NewMessage() fx.Message { return &Handshake{} }

// TypeID implements SerializableMessage.
func (m *Handshake) TypeID() uint32 { return HandshakeTypeID }

// Serializable implements SerializableMessage.
func (m *Handshake) Serializable() proto.Message { return &m.Handshake }

// CPUReset request.
type CPUReset struct {
	pb.CPUReset
}

// NewMessage implements Message.
func (m *CPUReset) NewMessage() fx.Message { return &CPUReset{} }

// TypeID implements SerializableMessage.
func (m *CPUReset) TypeID() uint32 { return CPUResetTypeID }

// Serializable implements SerializableMessage.
func (m *CPUReset) Serializable() proto.Message { return &m.CPUReset }

// CreateNetwork request.
type CreateNetwork struct {
	pb.CreateNetwork
}

// NewMessage implements Message.
func (m *CreateNetwork) NewMessage() fx.Message { return &CreateNetwork{} }

// TypeID implements SerializableMessage.
func (m *CreateNetwork) TypeID() uint32 { return CreateNetworkTypeID }

// Serializable implements SerializableMessage.
func (m *CreateNetwork) Serializable() proto.Message { return &m.CreateNetwork }

// ResetNetwork request.
type ResetNetwork struct {
	pb.ResetNetwork
}

// NewMessage implements Message.
func (m *ResetNetwork) NewMessage() fx.Message { return &ResetNetwork{} }

// TypeID implements SerializableMessage.
func (m *ResetNetwork) TypeID() uint32 { return ResetNetworkTypeID }

// Serializable implements SerializableMessage.
func (m *ResetNetwork) Serializable() proto.Message { return &m.ResetNetwork }

// TopologyQuery request.
type TopologyQuery struct {
	pb.TopologyQuery
}

// NewMessage implements Message.
func (m *TopologyQuery) NewMessage() fx.Message { return &TopologyQuery{} }

// TypeID implements SerializableMessage.
func (m *TopologyQuery) TypeID() uint32 { return TopologyQueryTypeID }

// Serializable implements SerializableMessage.
func (m *TopologyQuery) Serializable() proto.Message { return &m.TopologyQuery }

// Topology reply.
type Topology struct {
	pb.Topology
}

// NewMessage implements Message.
func (m *Topology) NewMessage() fx.Message { return &Topology{} }

// TypeID implements SerializableMessage.
func (m *Topology) TypeID() uint32 { return TopologyTypeID }

// Serializable implements SerializableMessage.
func (m *Topology) Serializable() proto.Message { return &m.Topology }

// SetCount request.
type SetCount struct {
	pb.SetCount
}

// NewMessage implements Message.
func (m *SetCount) NewMessage() fx.Message { return &SetCount{} }

// TypeID implements SerializableMessage.
func (m *SetCount) TypeID() uint32 { return SetCountTypeID }

// Serializable implements SerializableMessage.
func (m *SetCount) Serializable() proto.Message { return &m.SetCount }

// GetCount request.
type GetCount struct {
	pb.GetCount
}

// NewMessage implements Message.
func (m *GetCount) NewMessage() fx.Message { return &GetCount{} }

// TypeID implements SerializableMessage.
func (m *GetCount) TypeID() uint32 { return GetCountTypeID }

// Serializable implements SerializableMessage.
func (m *GetCount) Serializable() proto.Message { return &m.GetCount }

// CountValue reply.
type CountValue struct {
	pb.CountValue
}

// NewMessage implements Message.
func (m *CountValue) NewMessage() fx.Message { return &CountValue{} }

// TypeID implements SerializableMessage.
func (m *CountValue) TypeID() uint32 { return CountValueTypeID }

// Serializable implements SerializableMessage.
func (m *CountValue) Serializable() proto.Message { return &m.CountValue }

// SetParam request.
type SetParam struct {
	pb.SetParam
}

// NewMessage implements Message.
func (m *SetParam) NewMessage() fx.Message { return &SetParam{} }

// TypeID implements SerializableMessage.
func (m *SetParam) TypeID() uint32 { return SetParamTypeID }

// Serializable implements SerializableMessage.
func (m *SetParam) Serializable() proto.Message { return &m.SetParam }

// GetParam request.
type GetParam struct {
	pb.GetParam
}

// NewMessage implements Message.
func (m *GetParam) NewMessage() fx.Message { return &GetParam{} }

// TypeID implements SerializableMessage.
func (m *GetParam) TypeID() uint32 { return GetParamTypeID }

// Serializable implements SerializableMessage.
func (m *GetParam) Serializable() proto.Message { return &m.GetParam }

// ParamValues reply.
type ParamValues struct {
	pb.ParamValues
}

// NewMessage implements Message.
func (m *ParamValues) NewMessage() fx.Message { return &ParamValues{} }

// TypeID implements SerializableMessage.
func (m *ParamValues) TypeID() uint32 { return ParamValuesTypeID }

// Serializable implements SerializableMessage.
func (m *ParamValues) Serializable() proto.Message { return &m.ParamValues }

// Infer request.
type Infer struct {
	pb.Infer
}

// NewMessage implements Message.
func (m *Infer) NewMessage() fx.Message { return &Infer{} }

// TypeID implements SerializableMessage.
func (m *Infer) TypeID() uint32 { return InferTypeID }

// Serializable implements SerializableMessage.
func (m *Infer) Serializable() proto.Message { return &m.Infer }

// InferResult reply.
type InferResult struct {
	pb.InferResult
}

// NewMessage implements Message.
func (m *InferResult) NewMessage() fx.Message { return &InferResult{} }

// TypeID implements SerializableMessage.
func (m *InferResult) TypeID() uint32 { return InferResultTypeID }

// Serializable implements SerializableMessage.
func (m *InferResult) Serializable() proto.Message { return &m.InferResult }

// Train request.
type Train struct {
	pb.Train
}

// NewMessage implements Message.
func (m *Train) NewMessage() fx.Message { return &Train{} }

// TypeID implements SerializableMessage.
func (m *Train) TypeID() uint32 { return TrainTypeID }

// Serializable implements SerializableMessage.
func (m *Train) Serializable() proto.Message { return &m.Train }

// TypeID Groups
const (
	GroupCommand uint32 = 0x00000000
	GroupDevice  uint32 = 0x00010000
	GroupNetwork uint32 = 0x00020000
)

// TypeIDs
const (
	CommandOKTypeID     uint32 = GroupCommand | TypeIDMaskReply | 0x0000
	CommandErrTypeID    uint32 = GroupCommand | TypeIDMaskReply | 0x0001
	StatusTypeID        uint32 = GroupCommand | TypeIDMaskReply | 0x0002
	HandshakeTypeID     uint32 = GroupDevice | 0x0000
	CPUResetTypeID      uint32 = GroupDevice | 0x0001
	CreateNetworkTypeID uint32 = GroupNetwork | 0x0000
	ResetNetworkTypeID  uint32 = GroupNetwork | 0x0001
	TopologyQueryTypeID uint32 = GroupNetwork | 0x0002
	TopologyTypeID      uint32 = TopologyQueryTypeID | TypeIDMaskReply
	SetCountTypeID      uint32 = GroupNetwork | 0x0003
	GetCountTypeID      uint32 = GroupNetwork | 0x0004
	CountValueTypeID    uint32 = GetCountTypeID | TypeIDMaskReply
	SetParamTypeID      uint32 = GroupNetwork | 0x0005
	GetParamTypeID      uint32 = GroupNetwork | 0x0006
	ParamValuesTypeID   uint32 = GetParamTypeID | TypeIDMaskReply
	InferTypeID         uint32 = GroupNetwork | 0x0007
	InferResultTypeID   uint32 = InferTypeID | TypeIDMaskReply
	TrainTypeID         uint32 = GroupNetwork | 0x0008
)

// MessageTypes are predefined mapping of type ID to messages.
var MessageTypes = map[uint32]SerializableMessage{
	CommandOKTypeID:     (*CommandOK)(nil),
	CommandErrTypeID:    (*CommandErr)(nil),
	StatusTypeID:        (*Status)(nil),
	HandshakeTypeID:     (*Handshake)(nil),
	CPUResetTypeID:      (*CPUReset)(nil),
	CreateNetworkTypeID: (*CreateNetwork)(nil),
	ResetNetworkTypeID:  (*ResetNetwork)(nil),
	TopologyQueryTypeID: (*TopologyQuery)(nil),
	TopologyTypeID:      (*Topology)(nil),
	SetCountTypeID:      (*SetCount)(nil),
	GetCountTypeID:      (*GetCount)(nil),
	CountValueTypeID:    (*CountValue)(nil),
	SetParamTypeID:      (*SetParam)(nil),
	GetParamTypeID:      (*GetParam)(nil),
	ParamValuesTypeID:   (*ParamValues)(nil),
	InferTypeID:         (*Infer)(nil),
	InferResultTypeID:   (*InferResult)(nil),
	TrainTypeID:         (*Train)(nil),
}
