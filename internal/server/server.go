// internal/server/server.go
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/tamzrod/fault-manager/internal/device"
	"github.com/tamzrod/fault-manager/internal/dispatch"
	"github.com/tamzrod/fault-manager/internal/event"
	"github.com/tamzrod/fault-manager/internal/handler"
	"github.com/tamzrod/fault-manager/internal/protocol"
	"github.com/tamzrod/fault-manager/internal/status"
)

type Config struct {
	// MaxMessage bounds one request body. <= 0 => protocol.DefaultMaxMessage.
	MaxMessage int
}

// Server demultiplexes endpoint frames onto the dispatch loop.
// Connection goroutines only decode and encode; every device call runs
// on the loop.
type Server struct {
	dev        *device.Device
	loop       *dispatch.Loop
	maxMessage int
	logger     *slog.Logger

	wg sync.WaitGroup
}

func New(dev *device.Device, loop *dispatch.Loop, cfg Config, logger *slog.Logger) *Server {
	if cfg.MaxMessage <= 0 {
		cfg.MaxMessage = protocol.DefaultMaxMessage
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		dev:        dev,
		loop:       loop,
		maxMessage: cfg.MaxMessage,
		logger:     logger.With(slog.String("component", "server")),
	}
}

// Deliver queues ev on the dispatch loop. Implements event.Sink.
func (s *Server) Deliver(ctx context.Context, ev event.Event) error {
	return s.loop.Post(ctx, func() { s.dev.Pulse(ev) })
}

var _ event.Sink = (*Server)(nil)

// Serve accepts connections on ln until ctx is cancelled, then closes the
// listener and every open connection and waits for their goroutines.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	s.logger.Info("endpoint listening", slog.String("addr", ln.Addr().String()))

	var err error
	for {
		nc, aerr := ln.Accept()
		if aerr != nil {
			if ctx.Err() == nil && !errors.Is(aerr, net.ErrClosed) {
				err = aerr
			}
			break
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(ctx, nc)
		}()
	}

	cancel()
	s.wg.Wait()
	return err
}

func (s *Server) serveConn(ctx context.Context, nc net.Conn) {
	stop := context.AfterFunc(ctx, func() { _ = nc.Close() })
	defer stop()
	defer nc.Close()

	var conn *device.Conn
	if err := s.loop.Do(ctx, func() { conn = s.dev.Open() }); err != nil {
		return
	}
	defer func() {
		_ = s.loop.Do(context.Background(), conn.Close)
	}()

	logger := s.logger.With(slog.String("conn", conn.ID()))

	for {
		req, err := protocol.ReadRequest(nc, s.maxMessage)
		if err != nil {
			if errors.Is(err, protocol.ErrTooLarge) {
				logger.Warn("request too large", slog.Uint64("nbytes", uint64(req.NBytes)))
				_ = s.reply(nc, protocol.Response{Status: protocol.StatusBadMessage})
			} else if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				logger.Debug("connection dropped", slog.Any("err", err))
			}
			return
		}

		if req.Op == protocol.OpPulse {
			s.pulse(ctx, req, logger)
			continue
		}

		resp, err := s.handle(ctx, conn, req)
		if err != nil {
			return
		}
		if err := s.reply(nc, resp); err != nil {
			logger.Debug("reply failed", slog.Any("err", err))
			return
		}
	}
}

// handle runs one request on the loop. A non-nil error means the loop is
// gone and the connection must be dropped.
func (s *Server) handle(ctx context.Context, conn *device.Conn, req protocol.Request) (protocol.Response, error) {
	var resp protocol.Response

	var fn func()
	switch req.Op {
	case protocol.OpRead:
		fn = func() {
			data, err := conn.Read(int(req.NBytes))
			resp = protocol.Response{Status: statusFor(err), N: uint32(len(data)), Data: data}
		}
	case protocol.OpWrite:
		fn = func() {
			n, err := conn.Write(handler.WriteRequest{
				Payload: req.Body,
				XType:   req.XType,
				NBytes:  int(req.NBytes),
			})
			resp = protocol.Response{Status: statusFor(err), N: uint32(n)}
		}
	case protocol.OpStat:
		fn = func() {
			snap, err := conn.Stat()
			if err != nil {
				resp = protocol.Response{Status: statusFor(err)}
				return
			}
			resp = protocol.Response{Status: protocol.StatusOK, N: uint32(snap.Size), Data: status.Encode(snap)}
		}
	default:
		return protocol.Response{Status: protocol.StatusBadRequest}, nil
	}

	if err := s.loop.Do(ctx, fn); err != nil {
		return protocol.Response{}, err
	}
	return resp, nil
}

func (s *Server) pulse(ctx context.Context, req protocol.Request, logger *slog.Logger) {
	ev, err := protocol.DecodePulse(req.Body)
	if err != nil {
		logger.Warn("malformed pulse dropped", slog.Int("len", len(req.Body)))
		return
	}
	if err := s.Deliver(ctx, ev); err != nil {
		logger.Warn("pulse not queued", slog.Any("err", err))
	}
}

func (s *Server) reply(w io.Writer, resp protocol.Response) error {
	return protocol.WriteAll(w, protocol.AppendResponse(nil, resp))
}

func statusFor(err error) protocol.Status {
	switch {
	case err == nil:
		return protocol.StatusOK
	case errors.Is(err, handler.ErrBadMessage):
		return protocol.StatusBadMessage
	case errors.Is(err, handler.ErrUnsupported):
		return protocol.StatusUnsupported
	case errors.Is(err, handler.ErrOutOfMemory):
		return protocol.StatusNoMemory
	default:
		return protocol.StatusBadRequest
	}
}
