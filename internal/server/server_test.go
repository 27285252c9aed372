package server

import (
	"bufio"
	"net"
	"reflect"
	"testing"
	"time"

	"github.com/SystemBuilders/LineAuth/internal/authfilter"
	"github.com/SystemBuilders/LineAuth/internal/client"
	"github.com/SystemBuilders/LineAuth/internal/filterchain"
	"github.com/SystemBuilders/LineAuth/internal/packet"
	"github.com/SystemBuilders/LineAuth/internal/session"
	"github.com/rs/zerolog"
)

func startTestServer(t *testing.T) (*Server, session.Table) {
	t.Helper()
	log := zerolog.Nop()

	sessions := session.NewShardedTable(4, log)
	chain := filterchain.NewChain(
		authfilter.NewServerFilter(sessions, log),
		NewEchoFilter(log),
	)

	srv := New(NewSimpleConfig("127.0.0.1", "0"), chain, log)
	if err := srv.Start(); err != nil {
		t.Fatal(err)
	}
	return srv, sessions
}

// waitFor polls cond for up to a second.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestEchoRoundTrip(t *testing.T) {
	srv, sessions := startTestServer(t)
	defer srv.Close()

	c, err := client.Dial(srv.Addr(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.Authenticate(); err != nil {
		t.Fatal(err)
	}
	if c.Token() == "" {
		t.Fatal("no token after handshake")
	}
	if got := sessions.Len(); got != 1 {
		t.Errorf("got %d sessions want 1", got)
	}

	if err := c.Send("echo", "hello world"); err != nil {
		t.Fatal(err)
	}
	reply, err := c.Recv()
	if err != nil {
		t.Fatal(err)
	}
	// The echo comes back without the auth header: the server stripped
	// it on the way in and the client stripped the injected one on the
	// way out.
	want := []string{"echo", "hello world"}
	if got := reply.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v want %v", got, want)
	}

	c.Close()
	waitFor(t, func() bool { return sessions.Len() == 0 },
		"session was not cleaned up after disconnect")
}

func TestSendBeforeHandshakeAuthenticatesTransparently(t *testing.T) {
	srv, sessions := startTestServer(t)
	defer srv.Close()

	c, err := client.Dial(srv.Addr(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	// No explicit handshake: the first send is held back, a handshake
	// runs in its place and the packet follows once the token arrives.
	if err := c.Send("echo", "early"); err != nil {
		t.Fatal(err)
	}
	reply, err := c.Recv()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"echo", "early"}
	if got := reply.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v want %v", got, want)
	}
	if c.Token() == "" {
		t.Error("no token after transparent handshake")
	}
	if got := sessions.Len(); got != 1 {
		t.Errorf("got %d sessions want 1", got)
	}
}

func TestCloseStopsAccepting(t *testing.T) {
	srv, _ := startTestServer(t)
	addr := srv.Addr()

	srv.Close()
	if _, err := net.Dial("tcp", addr); err == nil {
		t.Error("dial succeeded after close")
	}
}

func TestUnauthenticatedTrafficDropsConnection(t *testing.T) {
	srv, sessions := startTestServer(t)
	defer srv.Close()

	conn, err := net.Dial("tcp", srv.Addr())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if _, err := conn.Write(packet.New("cmd", "auth-id: bogus").Bytes()); err != nil {
		t.Fatal(err)
	}

	// The server must drop the connection without answering.
	conn.SetReadDeadline(time.Now().Add(time.Second))
	if _, err := packet.Read(bufio.NewReader(conn)); err == nil {
		t.Fatal("got a reply on an unauthenticated connection")
	}
	if got := sessions.Len(); got != 0 {
		t.Errorf("got %d sessions want 0", got)
	}
}

func TestMalformedPacketDropsConnection(t *testing.T) {
	srv, _ := startTestServer(t)
	defer srv.Close()

	// A single-line packet has no room for the auth header; the server
	// treats it as a protocol violation and drops the connection.
	raw, err := net.Dial("tcp", srv.Addr())
	if err != nil {
		t.Fatal(err)
	}
	defer raw.Close()
	if _, err := raw.Write(packet.New(authfilter.CommandAuthRequest).Bytes()); err != nil {
		t.Fatal(err)
	}
	br := bufio.NewReader(raw)
	if _, err := packet.Read(br); err != nil {
		t.Fatal(err)
	}
	if _, err := raw.Write(packet.New("cmd").Bytes()); err != nil {
		t.Fatal(err)
	}

	raw.SetReadDeadline(time.Now().Add(time.Second))
	if _, err := packet.Read(br); err == nil {
		t.Fatal("got a reply to a malformed packet")
	}
}

func TestConcurrentClients(t *testing.T) {
	srv, _ := startTestServer(t)
	defer srv.Close()

	const clients = 10
	done := make(chan error, clients)
	for i := 0; i < clients; i++ {
		go func() {
			c, err := client.Dial(srv.Addr(), zerolog.Nop())
			if err != nil {
				done <- err
				return
			}
			defer c.Close()

			if err := c.Authenticate(); err != nil {
				done <- err
				return
			}
			for r := 0; r < 10; r++ {
				if err := c.Send("echo", "ping"); err != nil {
					done <- err
					return
				}
				if _, err := c.Recv(); err != nil {
					done <- err
					return
				}
			}
			done <- nil
		}()
	}
	for i := 0; i < clients; i++ {
		if err := <-done; err != nil {
			t.Error(err)
		}
	}
}
