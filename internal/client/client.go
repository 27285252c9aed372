package client

import (
	"bufio"
	"net"

	"github.com/SystemBuilders/LineAuth/internal/authfilter"
	"github.com/SystemBuilders/LineAuth/internal/filterchain"
	"github.com/SystemBuilders/LineAuth/internal/packet"
	"github.com/rs/zerolog"
)

// Client drives the client end of one connection. Its filter chain
// mirrors the server's: a wire stage serializing packets onto the
// socket, the auth stage performing the handshake and carrying the
// session token, and a deliver stage handing forwarded packets to the
// caller.
//
// A Client is not safe for concurrent use; it runs one connection from
// one goroutine, the way the transport serializes per-connection hooks
// on the server side.
type Client struct {
	conn    net.Conn
	br      *bufio.Reader
	log     zerolog.Logger
	id      filterchain.ConnID
	auth    *AuthFilter
	deliver *deliverFilter
	chain   *filterchain.Chain
}

// Dial connects to the server at addr. The connection starts out
// unauthenticated; the handshake runs on Authenticate, or transparently
// on the first Send.
func Dial(addr string, log zerolog.Logger) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	c := &Client{
		conn:    conn,
		br:      bufio.NewReader(conn),
		log:     log,
		id:      filterchain.ConnID(conn.LocalAddr().String()),
		auth:    NewAuthFilter(log),
		deliver: &deliverFilter{},
	}
	c.chain = filterchain.NewChain(&wireFilter{conn: conn}, c.auth, c.deliver)
	return c, nil
}

// write pushes one packet down the write path. A packet queued by the
// auth stage does not reach the wire on this call; it follows once the
// handshake response arrives.
func (c *Client) write(pkt packet.Packet) error {
	return c.chain.RunWrite(filterchain.NewContext(c.id, pkt, c.write))
}

// readOne reads the next packet off the wire and runs it through the
// read path.
func (c *Client) readOne() error {
	pkt, err := packet.Read(c.br)
	if err != nil {
		return err
	}
	return c.chain.RunRead(filterchain.NewContext(c.id, pkt, c.write))
}

// Authenticate runs the handshake eagerly: it sends the request and
// reads packets until the session token arrives.
func (c *Client) Authenticate() error {
	if err := c.write(packet.New(authfilter.CommandAuthRequest)); err != nil {
		return err
	}
	for c.auth.Token() == "" {
		if err := c.readOne(); err != nil {
			return err
		}
	}
	return nil
}

// Token returns the session token issued during the handshake, or the
// empty string before it.
func (c *Client) Token() string {
	return c.auth.Token()
}

// Send writes one packet. Without a session the auth stage holds the
// packet back and starts a handshake; the packet follows as soon as
// the response arrives.
func (c *Client) Send(lines ...string) error {
	return c.write(packet.New(lines...))
}

// Recv returns the next packet the chain forwards to the application.
// Handshake responses are consumed on the way.
func (c *Client) Recv() (packet.Packet, error) {
	for {
		if err := c.readOne(); err != nil {
			return packet.Packet{}, err
		}
		if pkt, ok := c.deliver.take(); ok {
			return pkt, nil
		}
	}
}

// Close tears down the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

var _ filterchain.Filter = (*wireFilter)(nil)

// wireFilter is the transport end of the client chain. It serializes
// outbound packets onto the socket; inbound packets pass it untouched.
type wireFilter struct {
	filterchain.BaseFilter
	conn net.Conn
}

func (f *wireFilter) HandleWrite(ctx filterchain.Context) (filterchain.NextAction, error) {
	if _, err := f.conn.Write(ctx.Packet().Bytes()); err != nil {
		return filterchain.Stop, err
	}
	return filterchain.Stop, nil
}

var _ filterchain.Filter = (*deliverFilter)(nil)

// deliverFilter is the application end of the client chain. It captures
// the packet the chain forwards so Recv can hand it to the caller.
type deliverFilter struct {
	filterchain.BaseFilter
	pkt packet.Packet
	got bool
}

func (f *deliverFilter) HandleRead(ctx filterchain.Context) (filterchain.NextAction, error) {
	f.pkt = ctx.Packet()
	f.got = true
	return filterchain.Stop, nil
}

func (f *deliverFilter) take() (packet.Packet, bool) {
	if !f.got {
		return packet.Packet{}, false
	}
	f.got = false
	return f.pkt, true
}
