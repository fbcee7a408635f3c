// Package v1 holds the n2cmu.v1 protobuf messages described in n2cmu.proto.
// The structs carry protobuf struct tags and are marshaled through
// github.com/golang/protobuf reflection, no generated descriptor is needed.
package v1

import "github.com/golang/protobuf/proto"

// Typed is the n2cmu.v1.Typed message.
type Typed struct {
	TypeId   uint32 `protobuf:"varint,1,opt,name=type_id,json=typeId,proto3" json:"type_id,omitempty"`
	Sequence uint32 `protobuf:"varint,2,opt,name=sequence,proto3" json:"sequence,omitempty"`
	Message  []byte `protobuf:"bytes,3,opt,name=message,proto3" json:"message,omitempty"`
}

func (m *Typed) Reset()         { *m = Typed{} }
func (m *Typed) String() string { return proto.CompactTextString(m) }
func (*Typed) ProtoMessage()    {}

// CommandOK is the n2cmu.v1.CommandOK message.
type CommandOK struct {
}

func (m *CommandOK) Reset()         { *m = CommandOK{} }
func (m *CommandOK) String() string { return proto.CompactTextString(m) }
func (*CommandOK) ProtoMessage()    {}

// CommandErr is the n2cmu.v1.CommandErr message.
type CommandErr struct {
	Message string `protobuf:"bytes,1,opt,name=message,proto3" json:"message,omitempty"`
}

func (m *CommandErr) Reset()         { *m = CommandErr{} }
func (m *CommandErr) String() string { return proto.CompactTextString(m) }
func (*CommandErr) ProtoMessage()    {}

// Status is the n2cmu.v1.Status message.
type Status struct {
	Ok bool `protobuf:"varint,1,opt,name=ok,proto3" json:"ok,omitempty"`
}

func (m *Status) Reset()         { *m = Status{} }
func (m *Status) String() string { return proto.CompactTextString(m) }
func (*Status) ProtoMessage()    {}

// Handshake is the n2cmu.v1.Handshake message.
type Handshake struct {
}

func (m *Handshake) Reset()         { *m = Handshake{} }
func (m *Handshake) String() string { return proto.CompactTextString(m) }
func (*Handshake) ProtoMessage()    {}

// CPUReset is the n2cmu.v1.CPUReset message.
type CPUReset struct {
}

func (m *CPUReset) Reset()         { *m = CPUReset{} }
func (m *CPUReset) String() string { return proto.CompactTextString(m) }
func (*CPUReset) ProtoMessage()    {}

// Topology is the n2cmu.v1.Topology message.
type Topology struct {
	Input  uint32 `protobuf:"varint,1,opt,name=input,proto3" json:"input,omitempty"`
	Hidden uint32 `protobuf:"varint,2,opt,name=hidden,proto3" json:"hidden,omitempty"`
	Output uint32 `protobuf:"varint,3,opt,name=output,proto3" json:"output,omitempty"`
}

func (m *Topology) Reset()         { *m = Topology{} }
func (m *Topology) String() string { return proto.CompactTextString(m) }
func (*Topology) ProtoMessage()    {}

// CreateNetwork is the n2cmu.v1.CreateNetwork message.
type CreateNetwork struct {
	Topology *Topology `protobuf:"bytes,1,opt,name=topology,proto3" json:"topology,omitempty"`
}

func (m *CreateNetwork) Reset()         { *m = CreateNetwork{} }
func (m *CreateNetwork) String() string { return proto.CompactTextString(m) }
func (*CreateNetwork) ProtoMessage()    {}

// ResetNetwork is the n2cmu.v1.ResetNetwork message.
type ResetNetwork struct {
}

func (m *ResetNetwork) Reset()         { *m = ResetNetwork{} }
func (m *ResetNetwork) String() string { return proto.CompactTextString(m) }
func (*ResetNetwork) ProtoMessage()    {}

// TopologyQuery is the n2cmu.v1.TopologyQuery message.
type TopologyQuery struct {
}

func (m *TopologyQuery) Reset()         { *m = TopologyQuery{} }
func (m *TopologyQuery) String() string { return proto.CompactTextString(m) }
func (*TopologyQuery) ProtoMessage()    {}

// SetCount is the n2cmu.v1.SetCount message.
type SetCount struct {
	Count uint32 `protobuf:"varint,1,opt,name=count,proto3" json:"count,omitempty"`
	Value uint32 `protobuf:"varint,2,opt,name=value,proto3" json:"value,omitempty"`
}

func (m *SetCount) Reset()         { *m = SetCount{} }
func (m *SetCount) String() string { return proto.CompactTextString(m) }
func (*SetCount) ProtoMessage()    {}

// GetCount is the n2cmu.v1.GetCount message.
type GetCount struct {
	Count uint32 `protobuf:"varint,1,opt,name=count,proto3" json:"count,omitempty"`
}

func (m *GetCount) Reset()         { *m = GetCount{} }
func (m *GetCount) String() string { return proto.CompactTextString(m) }
func (*GetCount) ProtoMessage()    {}

// CountValue is the n2cmu.v1.CountValue message.
type CountValue struct {
	Count uint32 `protobuf:"varint,1,opt,name=count,proto3" json:"count,omitempty"`
	Value uint32 `protobuf:"varint,2,opt,name=value,proto3" json:"value,omitempty"`
}

func (m *CountValue) Reset()         { *m = CountValue{} }
func (m *CountValue) String() string { return proto.CompactTextString(m) }
func (*CountValue) ProtoMessage()    {}

// SetParam is the n2cmu.v1.SetParam message.
type SetParam struct {
	Param  uint32    `protobuf:"varint,1,opt,name=param,proto3" json:"param,omitempty"`
	Values []float32 `protobuf:"fixed32,2,rep,packed,name=values,proto3" json:"values,omitempty"`
}

func (m *SetParam) Reset()         { *m = SetParam{} }
func (m *SetParam) String() string { return proto.CompactTextString(m) }
func (*SetParam) ProtoMessage()    {}

// GetParam is the n2cmu.v1.GetParam message.
type GetParam struct {
	Param uint32 `protobuf:"varint,1,opt,name=param,proto3" json:"param,omitempty"`
}

func (m *GetParam) Reset()         { *m = GetParam{} }
func (m *GetParam) String() string { return proto.CompactTextString(m) }
func (*GetParam) ProtoMessage()    {}

// ParamValues is the n2cmu.v1.ParamValues message.
type ParamValues struct {
	Param  uint32    `protobuf:"varint,1,opt,name=param,proto3" json:"param,omitempty"`
	Values []float32 `protobuf:"fixed32,2,rep,packed,name=values,proto3" json:"values,omitempty"`
}

func (m *ParamValues) Reset()         { *m = ParamValues{} }
func (m *ParamValues) String() string { return proto.CompactTextString(m) }
func (*ParamValues) ProtoMessage()    {}

// Infer is the n2cmu.v1.Infer message.
type Infer struct {
	Input []float32 `protobuf:"fixed32,1,rep,packed,name=input,proto3" json:"input,omitempty"`
}

func (m *Infer) Reset()         { *m = Infer{} }
func (m *Infer) String() string { return proto.CompactTextString(m) }
func (*Infer) ProtoMessage()    {}

// InferResult is the n2cmu.v1.InferResult message.
type InferResult struct {
	Output []float32 `protobuf:"fixed32,1,rep,packed,name=output,proto3" json:"output,omitempty"`
	Ok     bool      `protobuf:"varint,2,opt,name=ok,proto3" json:"ok,omitempty"`
}

func (m *InferResult) Reset()         { *m = InferResult{} }
func (m *InferResult) String() string { return proto.CompactTextString(m) }
func (*InferResult) ProtoMessage()    {}

// Train is the n2cmu.v1.Train message.
type Train struct {
	Rows         uint32    `protobuf:"varint,1,opt,name=rows,proto3" json:"rows,omitempty"`
	Inputs       []float32 `protobuf:"fixed32,2,rep,packed,name=inputs,proto3" json:"inputs,omitempty"`
	Outputs      []float32 `protobuf:"fixed32,3,rep,packed,name=outputs,proto3" json:"outputs,omitempty"`
	LearningRate float32   `protobuf:"fixed32,4,opt,name=learning_rate,json=learningRate,proto3" json:"learning_rate,omitempty"`
}

func (m *Train) Reset()         { *m = Train{} }
func (m *Train) String() string { return proto.CompactTextString(m) }
func (*Train) ProtoMessage()    {}
