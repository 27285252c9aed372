package server

import (
	"github.com/SystemBuilders/LineAuth/internal/filterchain"
	"github.com/SystemBuilders/LineAuth/internal/packet"
	"github.com/rs/zerolog"
)

var _ filterchain.Filter = (*EchoFilter)(nil)

// EchoFilter is the application stage of the demo server. It answers
// every inbound packet with the same lines, which sends the reply back
// down the write path where the auth header gets injected.
type EchoFilter struct {
	filterchain.BaseFilter
	log zerolog.Logger
}

// NewEchoFilter creates the echo stage.
func NewEchoFilter(log zerolog.Logger) *EchoFilter {
	return &EchoFilter{log: log}
}

// HandleRead echoes the packet back on the same connection.
func (f *EchoFilter) HandleRead(ctx filterchain.Context) (filterchain.NextAction, error) {
	pkt := ctx.Packet()
	f.
		log.
		Debug().
		Str("connection", string(ctx.Connection())).
		Str("packet", pkt.String()).
		Msg("server got message")
	if err := ctx.Write(packet.New(pkt.Lines()...)); err != nil {
		return filterchain.Stop, err
	}
	return filterchain.Stop, nil
}
