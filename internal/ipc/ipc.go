// Package ipc implements the local `send-cmd` channel (§6.4): a
// `net.Listen("unix", …)` socket framed with `encoding/gob`. One
// request per connection — send-cmd is a one-shot CLI invocation, not
// a persistent session, so there's no hello/attach handshake to model.
package ipc

import (
	"encoding/gob"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Request is one send-cmd invocation's argv, pre-split the way the CLI
// already splits os.Args (§6.4: "joined by spaces on the CLI").
type Request struct {
	Args []string
}

// Response is the daemon's reply to one request, as built by its
// Dispatch; the stripwmd daemon replies once the command has parsed and
// been queued for the core, not after it has run. ExitCode mirrors what
// the CLI process itself should exit with.
type Response struct {
	ExitCode int
	Message  string
}

// Dispatch handles one request's argv and returns the reply; the
// daemon wires this to config.ParseCommand + a send on the scheduler's
// command channel.
type Dispatch func(args []string) Response

// Server accepts send-cmd connections on a unix socket, one request
// per connection.
type Server struct {
	listener net.Listener
	dispatch Dispatch
	logger   *log.Logger
}

// Listen opens the socket at path, removing a stale one left behind by
// a crashed daemon.
func Listen(path string, dispatch Dispatch) (*Server, error) {
	if _, err := os.Stat(path); err == nil {
		if err := probe(path); err != nil {
			if rmErr := os.Remove(path); rmErr != nil {
				return nil, fmt.Errorf("ipc: remove stale socket: %w", rmErr)
			}
		} else {
			return nil, fmt.Errorf("ipc: a daemon is already listening on %s", path)
		}
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("ipc: listen on %s: %w", path, err)
	}
	if err := os.Chmod(path, 0o700); err != nil {
		_ = ln.Close()
		return nil, fmt.Errorf("ipc: chmod socket: %w", err)
	}

	return &Server{listener: ln, dispatch: dispatch, logger: log.Default().With("component", "ipc")}, nil
}

// probe reports nil if something is already listening on path.
func probe(path string) error {
	conn, err := net.DialTimeout("unix", path, time.Second)
	if err != nil {
		return err
	}
	return conn.Close()
}

// Addr returns the socket path the server is bound to.
func (s *Server) Addr() string { return s.listener.Addr().String() }

// Close stops accepting new connections and removes the socket file.
func (s *Server) Close() error {
	err := s.listener.Close()
	_ = os.Remove(s.listener.Addr().String())
	return err
}

// Serve blocks accepting connections and handling each one's single
// request until the listener is closed.
func (s *Server) Serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	clientID := uuid.NewString()
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

	var req Request
	if err := gob.NewDecoder(conn).Decode(&req); err != nil {
		s.logger.Warn("malformed send-cmd request", "client", clientID, "err", err)
		_ = gob.NewEncoder(conn).Encode(Response{ExitCode: 1, Message: "malformed request"})
		return
	}

	resp := s.dispatch(req.Args)
	if err := gob.NewEncoder(conn).Encode(resp); err != nil {
		s.logger.Warn("failed to reply to send-cmd client", "client", clientID, "err", err)
	}
}

// Send opens a one-shot connection to the daemon at path, sends args,
// and returns its Response (the CLI's send-cmd subcommand entry
// point).
func Send(path string, args []string) (Response, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return Response{}, fmt.Errorf("ipc: connect to %s: %w", path, err)
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

	if err := gob.NewEncoder(conn).Encode(Request{Args: args}); err != nil {
		return Response{}, fmt.Errorf("ipc: send request: %w", err)
	}

	var resp Response
	if err := gob.NewDecoder(conn).Decode(&resp); err != nil {
		return Response{}, fmt.Errorf("ipc: read response: %w", err)
	}
	return resp, nil
}
