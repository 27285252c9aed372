package filterchain

import (
	"github.com/SystemBuilders/LineAuth/internal/packet"
)

// ConnID is the identity of one connection. It is stable for the
// lifetime of the connection and usable as a map key.
type ConnID string

// NextAction tells the chain how to continue after a filter has seen
// a packet.
type NextAction int

// These are the possible chain directives.
const (
	// Invoke passes the packet on to the next filter in the chain.
	Invoke NextAction = iota
	// Stop consumes the packet; no further filter sees it.
	Stop
)

// Context carries one packet through the chain on behalf of one
// connection. Filters read the packet, may replace it, and may enqueue
// an outbound write on the same connection.
type Context interface {
	// Connection returns the identity of the connection the packet
	// belongs to.
	Connection() ConnID
	// Packet returns the packet currently travelling through the chain.
	Packet() packet.Packet
	// SetPacket replaces the in-flight packet. Filters that rewrite a
	// packet call this before returning Invoke.
	SetPacket(packet.Packet)
	// Write enqueues an outbound packet on the same connection. The
	// packet passes the chain's write path before it is serialized.
	Write(packet.Packet) error
}

// Filter is one stage of the chain. Read hooks run for every inbound
// packet, write hooks for every outbound packet, and the close hook once
// when the connection goes down.
type Filter interface {
	HandleRead(Context) (NextAction, error)
	HandleWrite(Context) (NextAction, error)
	HandleClose(Context) error
}

// BaseFilter is a Filter that passes everything through. Embed it to
// implement only the hooks a filter cares about.
type BaseFilter struct{}

var _ Filter = BaseFilter{}

// HandleRead forwards the packet unchanged.
func (BaseFilter) HandleRead(Context) (NextAction, error) { return Invoke, nil }

// HandleWrite forwards the packet unchanged.
func (BaseFilter) HandleWrite(Context) (NextAction, error) { return Invoke, nil }

// HandleClose forwards the close notification.
func (BaseFilter) HandleClose(Context) error { return nil }
