package client

import (
	"sync"

	"github.com/SystemBuilders/LineAuth/internal/authfilter"
	"github.com/SystemBuilders/LineAuth/internal/filterchain"
	"github.com/SystemBuilders/LineAuth/internal/packet"
	"github.com/rs/zerolog"
)

var _ filterchain.Filter = (*AuthFilter)(nil)

// AuthFilter is the client half of the handshake. Outbound packets
// written before a session exists are held in a pending queue and a
// single authentication request goes out in their place; when the
// response arrives the queue is released down the write path, which by
// then injects the fresh auth header. Once a session exists the filter
// injects the header into outbound packets and strips it from inbound
// ones.
type AuthFilter struct {
	filterchain.BaseFilter
	log zerolog.Logger

	mu        sync.Mutex
	token     string
	requested bool
	pending   []packet.Packet
}

// NewAuthFilter creates the client auth stage.
func NewAuthFilter(log zerolog.Logger) *AuthFilter {
	return &AuthFilter{log: log}
}

// Token returns the session token, or the empty string before the
// handshake completed.
func (f *AuthFilter) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

// HandleWrite injects the auth header, or queues the packet and starts
// the handshake when there is no session yet.
func (f *AuthFilter) HandleWrite(ctx filterchain.Context) (filterchain.NextAction, error) {
	pkt := ctx.Packet()
	if pkt.Len() == 0 {
		return filterchain.Stop, ErrEmptyPacket
	}
	if pkt.Command() == authfilter.CommandAuthRequest {
		return filterchain.Invoke, nil
	}

	f.mu.Lock()
	if f.token == "" {
		f.pending = append(f.pending, pkt)
		requested := f.requested
		f.requested = true
		f.mu.Unlock()
		if requested {
			return filterchain.Stop, nil
		}
		f.log.Debug().Msg("no session, sending authentication request")
		if err := ctx.Write(packet.New(authfilter.CommandAuthRequest)); err != nil {
			return filterchain.Stop, err
		}
		return filterchain.Stop, nil
	}
	token := f.token
	f.mu.Unlock()

	ctx.SetPacket(pkt.WithLineAt(1, authfilter.AuthHeaderKey+": "+token))
	return filterchain.Invoke, nil
}

// HandleRead consumes the handshake response and releases the pending
// queue; steady-state packets have their header checked against the
// session token and removed.
func (f *AuthFilter) HandleRead(ctx filterchain.Context) (filterchain.NextAction, error) {
	pkt := ctx.Packet()

	if pkt.Command() == authfilter.CommandAuthResponse {
		if pkt.Len() < 2 {
			return filterchain.Stop, ErrBadHandshake
		}
		key, token, ok := packet.ParseHeader(pkt.Line(1))
		if !ok || key != authfilter.AuthHeaderKey || token == "" {
			return filterchain.Stop, ErrBadHandshake
		}

		f.mu.Lock()
		f.token = token
		f.requested = false
		pending := f.pending
		f.pending = nil
		f.mu.Unlock()

		f.log.Debug().Msg("handshake complete")
		for _, held := range pending {
			if err := ctx.Write(held); err != nil {
				return filterchain.Stop, err
			}
		}
		return filterchain.Stop, nil
	}

	f.mu.Lock()
	token := f.token
	f.mu.Unlock()
	if token == "" {
		return filterchain.Stop, ErrNoSession
	}
	if pkt.Len() < 2 {
		return filterchain.Stop, ErrBadServerHeader
	}
	key, got, ok := packet.ParseHeader(pkt.Line(1))
	if !ok || key != authfilter.AuthHeaderKey || got != token {
		return filterchain.Stop, ErrBadServerHeader
	}
	ctx.SetPacket(pkt.WithoutLineAt(1))
	return filterchain.Invoke, nil
}
