package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"strings"
	"sync"

	"mediajobs/internal/api"
	"mediajobs/internal/daemon"
	"mediajobs/internal/logging"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logging.NewComponentLogger(logger, "ipc"), ctx: serverCtx}
	if err := rpcServer.RegisterName(ServiceName, srv); err != nil {
		cancel()
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	return &Server{
		path:      path,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
		conns:     make(map[net.Conn]struct{}),
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				if errors.Is(err, net.ErrClosed) {
					return
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String("impact", "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "Check socket permissions and restart the daemon if needed"))
				continue
			}
			s.track(conn, true)
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				defer s.track(c, false)
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

func (s *Server) track(conn net.Conn, add bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		s.conns[conn] = struct{}{}
	} else {
		delete(s.conns, conn)
	}
}

// Close stops the server, drops open client connections and removes the
// socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.mu.Lock()
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"),
			logging.String("impact", "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "Remove the socket file manually"))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) Enqueue(req EnqueueRequest, resp *EnqueueResponse) error {
	id, err := s.daemon.Enqueue(s.ctx, req.WorkflowRequest())
	if err != nil {
		return err
	}
	resp.ID = id
	s.logger.Debug("job enqueued via IPC", logging.String(logging.FieldJobID, id))
	return nil
}

func (s *service) Cancel(req CancelRequest, resp *CancelResponse) error {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return errors.New("cancel requires a job id")
	}
	canceled, err := s.daemon.Cancel(s.ctx, id)
	if err != nil {
		return err
	}
	resp.Canceled = canceled
	return nil
}

func (s *service) CancelAll(_ CancelAllRequest, resp *CancelAllResponse) error {
	count, err := s.daemon.CancelAll(s.ctx)
	if err != nil {
		return err
	}
	resp.Canceled = count
	s.logger.Info("jobs canceled via IPC",
		logging.String(logging.FieldEventType, "cancel_all"),
		logging.Int("canceled_count", count))
	return nil
}

func (s *service) List(_ ListRequest, resp *ListResponse) error {
	listing, err := s.daemon.List(s.ctx)
	if err != nil {
		return err
	}
	*resp = api.FromListing(listing)
	return nil
}

func (s *service) Describe(req DescribeRequest, resp *DescribeResponse) error {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return errors.New("describe requires a job id")
	}
	job, err := s.daemon.Job(s.ctx, id)
	if err != nil {
		return err
	}
	if job == nil {
		return fmt.Errorf("job %s not found", id)
	}
	resp.Job = api.FromJob(job)
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	*resp = s.daemon.Status(s.ctx).API()
	return nil
}

func (s *service) SetRoot(req SetRootRequest, resp *SetRootResponse) error {
	root, err := s.daemon.SetRoot(s.ctx, req.Root)
	if err != nil {
		return err
	}
	resp.Root = root
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	sent, message, err := s.daemon.TestNotification(s.ctx)
	resp.Sent = sent
	resp.Message = message
	return err
}
