package authfilter

import (
	"strings"

	"github.com/SystemBuilders/LineAuth/internal/filterchain"
	"github.com/SystemBuilders/LineAuth/internal/packet"
	"github.com/SystemBuilders/LineAuth/internal/session"
	"github.com/rs/zerolog"
)

// Protocol literals of the handshake.
const (
	// CommandAuthRequest marks a client's handshake request.
	CommandAuthRequest = "authentication-request"
	// CommandAuthResponse marks the server's handshake response.
	CommandAuthResponse = "authentication-response"
	// AuthHeaderKey is the key of the header line carrying the session
	// token on steady-state traffic.
	AuthHeaderKey = "auth-id"
)

// headerIndex is the fixed position of the auth header within a packet.
// The framing layer guarantees the header sits directly under the
// command line; the filter never searches for it.
const headerIndex = 1

var _ filterchain.Filter = (*ServerFilter)(nil)

// ServerFilter intercepts client<->server traffic and enforces the
// handshake protocol. An unauthenticated client opens with an
// authentication request; the filter mints a session token, remembers it
// against the connection and answers with it. Every later inbound packet
// on that connection must carry the token in its auth-id header, which
// the filter validates and strips before forwarding. Outbound packets
// get the header injected transparently, except the handshake response
// itself.
//
// One ServerFilter instance is shared by all connections of a server;
// all of its state lives in the session table.
type ServerFilter struct {
	filterchain.BaseFilter
	log      zerolog.Logger
	sessions session.Table
	tokens   TokenSource
}

// NewServerFilter creates the filter around the given session table.
func NewServerFilter(sessions session.Table, log zerolog.Logger) *ServerFilter {
	return &ServerFilter{
		log:      log,
		sessions: sessions,
		tokens:   NewToken,
	}
}

// WithTokenSource replaces the token source. Used by tests that need
// deterministic tokens.
func (f *ServerFilter) WithTokenSource(tokens TokenSource) *ServerFilter {
	f.tokens = tokens
	return f
}

// HandleRead processes one inbound packet. A handshake request is
// consumed here: the response is written back on the same connection
// and the chain is stopped. Anything else must carry a valid auth
// header, which is removed before the packet moves on to the next
// filter.
func (f *ServerFilter) HandleRead(ctx filterchain.Context) (filterchain.NextAction, error) {
	conn := ctx.Connection()
	pkt := ctx.Packet()

	if strings.HasPrefix(pkt.Command(), CommandAuthRequest) {
		resp := f.authenticate(conn)
		if err := ctx.Write(resp); err != nil {
			return filterchain.Stop, err
		}
		return filterchain.Stop, nil
	}

	if pkt.Len() <= headerIndex {
		f.
			log.
			Warn().
			Str("connection", string(conn)).
			Str("command", pkt.Command()).
			Msg("packet without header line")
		return filterchain.Stop, ErrShortPacket
	}

	registered, ok := f.sessions.Get(conn)
	if !ok {
		f.
			log.
			Warn().
			Str("connection", string(conn)).
			Msg("read on unauthenticated connection")
		return filterchain.Stop, ErrNotAuthenticated
	}

	key, token, ok := packet.ParseHeader(pkt.Line(headerIndex))
	if !ok || key != AuthHeaderKey {
		return filterchain.Stop, ErrMissingAuthHeader
	}
	if token != registered {
		f.
			log.
			Warn().
			Str("connection", string(conn)).
			Msg("auth token mismatch")
		return filterchain.Stop, ErrBadToken
	}

	ctx.SetPacket(pkt.WithoutLineAt(headerIndex))
	return filterchain.Invoke, nil
}

// HandleWrite processes one outbound packet. The handshake response
// passes untouched; every other packet gets the connection's auth
// header injected. Writing to a connection without a session is an
// error, the server never emits steady-state traffic to a client that
// has not authenticated.
func (f *ServerFilter) HandleWrite(ctx filterchain.Context) (filterchain.NextAction, error) {
	pkt := ctx.Packet()

	if pkt.Len() == 0 {
		return filterchain.Stop, ErrNoCommand
	}
	if pkt.Command() == CommandAuthResponse {
		return filterchain.Invoke, nil
	}

	token, ok := f.sessions.Get(ctx.Connection())
	if !ok {
		return filterchain.Stop, ErrNotAuthenticated
	}

	ctx.SetPacket(pkt.WithLineAt(headerIndex, AuthHeaderKey+": "+token))
	return filterchain.Invoke, nil
}

// HandleClose drops the connection's session. Closing a connection that
// never authenticated is fine.
func (f *ServerFilter) HandleClose(ctx filterchain.Context) error {
	f.sessions.Remove(ctx.Connection())
	return nil
}

// authenticate mints a token, registers it for the connection and
// builds the handshake response. A repeated handshake on a live
// connection simply replaces the previous token.
func (f *ServerFilter) authenticate(conn filterchain.ConnID) packet.Packet {
	token := f.tokens()
	f.sessions.Put(conn, token)
	f.
		log.
		Debug().
		Str("connection", string(conn)).
		Msg("client authenticated")
	return packet.New(CommandAuthResponse, AuthHeaderKey+": "+token)
}
