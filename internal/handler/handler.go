// internal/handler/handler.go
package handler

import (
	"errors"
	"log/slog"

	"github.com/tamzrod/fault-manager/internal/faultlog"
)

// XType values carried by a write request.
// Only plain data is implemented.
const (
	XTypeNone uint8 = 0
)

var (
	ErrBadMessage  = errors.New("handler: claimed length exceeds supplied payload")
	ErrUnsupported = errors.New("handler: unsupported xtype")
	ErrOutOfMemory = errors.New("handler: payload exceeds allocation limit")
)

// WriteRequest is one inbound write as delivered by the transport.
type WriteRequest struct {
	// Payload holds the bytes actually present in the transport frame.
	Payload []byte
	// XType is the requested I/O extension.
	XType uint8
	// NBytes is the length the caller claims to be writing.
	NBytes int
}

// Config is the handler's immutable runtime config.
type Config struct {
	// MaxWrite bounds the payload buffer. <= 0 means unbounded.
	MaxWrite int
}

// Handler turns write payloads into fault records.
type Handler struct {
	cfg    Config
	log    faultlog.Appender
	logger *slog.Logger
}

func New(cfg Config, log faultlog.Appender, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{cfg: cfg, log: log, logger: logger}
}

// Result describes an accepted write.
type Result struct {
	// N is the number of bytes reported consumed to the caller.
	N       int
	FaultID int64
	// LogErr is the append failure, if any. It never fails the write.
	LogErr error
}

// Handle validates req, parses the fault id and appends it.
// A failed append is reported through the logger and Result.LogErr only.
func (h *Handler) Handle(req WriteRequest) (Result, error) {
	if req.XType != XTypeNone {
		return Result{}, ErrUnsupported
	}
	if req.NBytes < 0 || req.NBytes > len(req.Payload) {
		return Result{}, ErrBadMessage
	}
	if h.cfg.MaxWrite > 0 && req.NBytes > h.cfg.MaxWrite {
		return Result{}, ErrOutOfMemory
	}

	buf := make([]byte, req.NBytes+1)
	copy(buf, req.Payload[:req.NBytes])
	buf[req.NBytes] = 0

	faultID := ParseFaultID(buf)

	h.logger.Debug("write received",
		slog.Int("nbytes", req.NBytes),
		slog.Int64("fault_id", faultID),
	)

	res := Result{N: req.NBytes, FaultID: faultID}
	if res.LogErr = h.log.Append(faultID); res.LogErr != nil {
		h.logger.Error("fault log append failed",
			slog.String("source", "write"),
			slog.Int64("fault_id", faultID),
			slog.Any("err", res.LogErr),
		)
	}

	return res, nil
}
