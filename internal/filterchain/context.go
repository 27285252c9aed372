package filterchain

import (
	"github.com/SystemBuilders/LineAuth/internal/packet"
)

// WriteFunc delivers an outbound packet for one connection.
type WriteFunc func(packet.Packet) error

var _ Context = (*SimpleContext)(nil)

// SimpleContext implements Context. The transport layer creates one per
// hook invocation; hooks for the same connection never overlap, so the
// context needs no locking of its own.
type SimpleContext struct {
	conn  ConnID
	pkt   packet.Packet
	write WriteFunc
}

// NewContext returns a context for the given connection and packet.
// write may be nil for paths on which filters must not write, such as
// the write path itself.
func NewContext(conn ConnID, pkt packet.Packet, write WriteFunc) *SimpleContext {
	return &SimpleContext{
		conn:  conn,
		pkt:   pkt,
		write: write,
	}
}

// Connection returns the identity of the connection.
func (c *SimpleContext) Connection() ConnID {
	return c.conn
}

// Packet returns the in-flight packet.
func (c *SimpleContext) Packet() packet.Packet {
	return c.pkt
}

// SetPacket replaces the in-flight packet.
func (c *SimpleContext) SetPacket(pkt packet.Packet) {
	c.pkt = pkt
}

// Write enqueues an outbound packet on the connection.
func (c *SimpleContext) Write(pkt packet.Packet) error {
	if c.write == nil {
		return ErrNoWriter
	}
	return c.write(pkt)
}
