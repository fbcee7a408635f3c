// Package remote exposes a coprocessor to other processes.
package remote

import (
	"context"

	fx "github.com/robotalks/n2cmu.go/pkg/framework"
)

// The daemon owning the serial link serves typed protobuf requests over
// packet transports (MQTT, websocket, TCP). Requests from all transports
// are executed one at a time on the single link.

// PacketReader reads packets in bytes.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// PacketWriter writes packets in bytes.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter reads/writes packets in bytes.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
}

// DeviceRef is a reference to a served coprocessor.
type DeviceRef struct {
	// Type is the device type, e.g. "n2cmu".
	Type string
	// ID is unique ID of the device.
	ID string
}

// Name retrieves the name from ref.
func (r DeviceRef) Name() string {
	return r.Type + "/" + r.ID
}

// IsValid indicates DeviceRef is valid.
func (r DeviceRef) IsValid() bool {
	return r.Type != "" && r.ID != ""
}

// DeviceMeta provides metadata published with a device.
type DeviceMeta struct {
	Description string            `json:"description,omitempty"`
	Port        string            `json:"port,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// DeviceInfo provides information of a served device.
type DeviceInfo struct {
	Ref  DeviceRef
	Meta DeviceMeta
}

// Conn is the connection to a device.
type Conn interface {
	// Do executes a request and waits for the reply.
	Do(ctx context.Context, msg fx.Message) (fx.Message, error)
	// Close releases the connection.
	Close() error
}

// Connector is used by clients to reach served devices.
type Connector interface {
	// Discover enumerates served devices.
	Discover(context.Context) ([]DeviceInfo, error)
	// Connect connects to the specified device.
	Connect(context.Context, DeviceRef) (Conn, error)
}
