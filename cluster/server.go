package cluster

import (
	"io"
	"net"
	"net/rpc"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Server serves one set of RPC receivers on a TCP listener. Every Server has
// its own rpc.Server so several can live in one process.
type Server struct {
	name    string
	network string
	address string

	rpc    *rpc.Server
	logger *zap.Logger

	mu       sync.Mutex
	listener net.Listener
}

func newServer(name, address string, logger *zap.Logger) *Server {
	return &Server{
		name:    name,
		network: "tcp",
		address: address,
		rpc:     rpc.NewServer(),
		logger:  logger.With(zap.String("server", name)),
	}
}

func (s *Server) RegisterName(name string, rcvr interface{}) error {
	return errors.Wrapf(s.rpc.RegisterName(name, rcvr), "register %s", name)
}

// Listen binds the address. A port of 0 picks a free one; see Addr.
func (s *Server) Listen() error {
	l, err := net.Listen(s.network, s.address)
	if err != nil {
		return errors.Wrapf(err, "%s server listen", s.name)
	}
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
	s.logger.Info("server listening", zap.String("addr", l.Addr().String()))
	return nil
}

// Addr is the bound address once Listen succeeded, else the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.address
}

// Serve accepts connections until Stop.
func (s *Server) Serve() error {
	s.mu.Lock()
	l := s.listener
	s.mu.Unlock()
	if l == nil {
		return errors.Newf("%s server is not listening", s.name)
	}

	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return errors.Wrap(err, "accept")
		}
		go s.serveConn(conn)
	}
}

func (s *Server) serveConn(conn io.ReadWriteCloser) {
	s.rpc.ServeConn(conn)
}

// Run listens and serves until SIGINT, SIGHUP or SIGTERM.
func (s *Server) Run() error {
	s.mu.Lock()
	listening := s.listener != nil
	s.mu.Unlock()
	if !listening {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	errChan := make(chan error, 1)
	go func() { errChan <- s.Serve() }()

	if err := s.waitSignal(errChan); err != nil {
		s.logger.Error("received error and exit", zap.Error(err))
		return err
	}
	return s.Stop()
}

func (s *Server) waitSignal(errCh chan error) error {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGHUP, syscall.SIGTERM)
	defer signal.Stop(signals)

	select {
	case sig := <-signals:
		s.logger.Info("received signal", zap.Stringer("signal", sig))
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}
