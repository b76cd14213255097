// internal/natsbus/subscriber.go
package natsbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/tamzrod/fault-manager/internal/event"
)

var ErrMissingCode = errors.New("natsbus: message has no code")

type Config struct {
	URL     string
	Subject string
	Name    string // client connection name
}

// wireEvent is the JSON body of a fault notification: {"code":15,"value":68}.
type wireEvent struct {
	Code  *int32 `json:"code"`
	Value int32  `json:"value"`
}

// Decode parses one message body.
func Decode(data []byte) (event.Event, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return event.Event{}, fmt.Errorf("natsbus: decode: %w", err)
	}
	if w.Code == nil {
		return event.Event{}, ErrMissingCode
	}
	return event.Event{Code: *w.Code, Value: w.Value}, nil
}

// Subscriber feeds NATS messages on one subject into a sink.
type Subscriber struct {
	cfg    Config
	sink   event.Sink
	logger *slog.Logger
}

func New(cfg Config, sink event.Sink, logger *slog.Logger) (*Subscriber, error) {
	if cfg.URL == "" {
		return nil, errors.New("natsbus: url required")
	}
	if cfg.Subject == "" {
		return nil, errors.New("natsbus: subject required")
	}
	if sink == nil {
		return nil, errors.New("natsbus: sink required")
	}
	if cfg.Name == "" {
		cfg.Name = "fault_manager"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Subscriber{
		cfg:    cfg,
		sink:   sink,
		logger: logger.With(slog.String("component", "natsbus"), slog.String("subject", cfg.Subject)),
	}, nil
}

// Run connects, subscribes and blocks until ctx is cancelled.
// Reconnects are left to the client library.
func (s *Subscriber) Run(ctx context.Context) error {
	nc, err := nats.Connect(s.cfg.URL,
		nats.Name(s.cfg.Name),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				s.logger.Warn("nats disconnected", slog.Any("err", err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			s.logger.Info("nats reconnected", slog.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return fmt.Errorf("natsbus: connect %s: %w", s.cfg.URL, err)
	}
	defer nc.Close()

	sub, err := nc.Subscribe(s.cfg.Subject, s.handler(ctx))
	if err != nil {
		return fmt.Errorf("natsbus: subscribe %s: %w", s.cfg.Subject, err)
	}

	s.logger.Info("subscribed", slog.String("url", nc.ConnectedUrl()))

	<-ctx.Done()
	_ = sub.Unsubscribe()
	return nil
}

func (s *Subscriber) handler(ctx context.Context) nats.MsgHandler {
	return func(m *nats.Msg) {
		ev, err := Decode(m.Data)
		if err != nil {
			s.logger.Warn("malformed fault message dropped", slog.Any("err", err))
			return
		}
		if err := s.sink.Deliver(ctx, ev); err != nil {
			s.logger.Error("fault event not delivered",
				slog.Int("code", int(ev.Code)),
				slog.Int("value", int(ev.Value)),
				slog.Any("err", err),
			)
		}
	}
}
