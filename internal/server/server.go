package server

import (
	"bufio"
	"errors"
	"io"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/SystemBuilders/LineAuth/internal/authfilter"
	"github.com/SystemBuilders/LineAuth/internal/filterchain"
	"github.com/SystemBuilders/LineAuth/internal/packet"
	"github.com/oklog/ulid"
	"github.com/rs/zerolog"
)

// Server accepts line-protocol connections and runs every packet of a
// connection through a filter chain. Each accepted connection gets a
// ULID identity and a dedicated goroutine, so hooks for one connection
// never overlap while different connections proceed concurrently.
type Server struct {
	cfg     Config
	chain   *filterchain.Chain
	log     zerolog.Logger
	ln      net.Listener
	entropy io.Reader
}

// New creates a server around the given chain.
func New(cfg Config, chain *filterchain.Chain, log zerolog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		chain:   chain,
		log:     log,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

// Start binds the listener and begins accepting connections. Starting
// is a non-blocking call and returns as soon as the listener is set up.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.IP()+":"+s.cfg.Port())
	if err != nil {
		return err
	}
	s.ln = ln
	s.log.Debug().Str("addr", ln.Addr().String()).Msg("server listening")

	go s.acceptLoop()
	go s.gracefulShutdown()
	return nil
}

// gracefulShutdown closes the listener on getting a ^C signal.
// Connections already accepted run on to their natural end.
func (s *Server) gracefulShutdown() {
	interruptChan := make(chan os.Signal, 1)
	signal.Notify(interruptChan, os.Interrupt, syscall.SIGTERM)

	// Block until we receive our signal.
	<-interruptChan

	s.log.Info().Msg("shutting down listener")
	s.Close()
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Close stops accepting connections.
func (s *Server) Close() {
	s.ln.Close()
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		// The entropy source is not safe for concurrent use, so the
		// identity is minted here before the connection goroutine runs.
		id := filterchain.ConnID(ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String())
		go s.handleConn(id, conn)
	}
}

// handleConn runs the read loop of one connection. All hooks of the
// connection run on this goroutine; writes requested by filters pass
// the chain's write path before hitting the socket.
func (s *Server) handleConn(id filterchain.ConnID, conn net.Conn) {
	defer conn.Close()

	var writeMu sync.Mutex
	write := func(pkt packet.Packet) error {
		wctx := filterchain.NewContext(id, pkt, nil)
		if err := s.chain.RunWrite(wctx); err != nil {
			return err
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		_, err := conn.Write(wctx.Packet().Bytes())
		return err
	}

	br := bufio.NewReader(conn)
	for {
		pkt, err := packet.Read(br)
		if err != nil {
			if err != io.EOF {
				s.
					log.
					Debug().
					Str("connection", string(id)).
					Err(err).
					Msg("read failed")
			}
			break
		}

		ctx := filterchain.NewContext(id, pkt, write)
		if err := s.chain.RunRead(ctx); err != nil {
			s.logChainFailure(id, err)
			break
		}
	}

	closeCtx := filterchain.NewContext(id, packet.Packet{}, nil)
	if err := s.chain.RunClose(closeCtx); err != nil {
		s.
			log.
			Debug().
			Str("connection", string(id)).
			Err(err).
			Msg("close hook failed")
	}
}

// logChainFailure reports why a connection is being dropped. Auth and
// protocol failures are expected operational events and logged as
// warnings; anything else is an error.
func (s *Server) logChainFailure(id filterchain.ConnID, err error) {
	var authErr authfilter.AuthError
	var protoErr authfilter.ProtocolError
	switch {
	case errors.As(err, &authErr):
		s.
			log.
			Warn().
			Str("connection", string(id)).
			Err(err).
			Msg("authentication failed, dropping connection")
	case errors.As(err, &protoErr):
		s.
			log.
			Warn().
			Str("connection", string(id)).
			Err(err).
			Msg("malformed packet, dropping connection")
	default:
		s.
			log.
			Error().
			Str("connection", string(id)).
			Err(err).
			Msg("filter chain failed, dropping connection")
	}
}
