// internal/protocol/frame.go
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

//
// ---- Endpoint frame v1 (LOCKED) ----
//
// Request (14 bytes header):
// 0–1   Magic "FM"
// 2     Version (0x01)
// 3     Op
// 4     XType
// 5     Reserved (0)
// 6–9   NBytes   requested (read) / claimed (write)
// 10–13 Length   body bytes that follow
// 14+   Body
//
// Response (12 bytes header):
// 0–1   Magic "FM"
// 2     Version (0x01)
// 3     Status
// 4–7   N        bytes produced / consumed
// 8–11  Length   data bytes that follow
// 12+   Data
//
// All integers big-endian. Pulse requests get no response.
//

const (
	magicHi byte = 0x46 // 'F'
	magicLo byte = 0x4D // 'M'

	Version byte = 0x01

	RequestHeaderSize  = 14
	ResponseHeaderSize = 12

	// DefaultMaxMessage bounds a request body unless configured otherwise.
	DefaultMaxMessage = 2048
)

// Op is the request operation.
type Op byte

const (
	OpRead  Op = 1
	OpWrite Op = 2
	OpPulse Op = 3
	OpStat  Op = 4
)

func (o Op) String() string {
	switch o {
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	case OpPulse:
		return "pulse"
	case OpStat:
		return "stat"
	default:
		return fmt.Sprintf("op(%d)", byte(o))
	}
}

// Status is the response outcome.
type Status byte

const (
	StatusOK          Status = 0
	StatusBadMessage  Status = 1
	StatusUnsupported Status = 2
	StatusNoMemory    Status = 3
	StatusBadRequest  Status = 4
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusBadMessage:
		return "bad message"
	case StatusUnsupported:
		return "unsupported"
	case StatusNoMemory:
		return "out of memory"
	case StatusBadRequest:
		return "bad request"
	default:
		return fmt.Sprintf("status(%d)", byte(s))
	}
}

var (
	ErrBadMagic   = errors.New("protocol: bad magic")
	ErrBadVersion = errors.New("protocol: unsupported version")
	ErrTooLarge   = errors.New("protocol: body exceeds max message size")
	ErrBadPulse   = errors.New("protocol: pulse body must be 8 bytes")
)

// Request is one decoded request frame.
type Request struct {
	Op     Op
	XType  uint8
	NBytes uint32
	Body   []byte
}

// Response is one decoded response frame.
type Response struct {
	Status Status
	N      uint32
	Data   []byte
}

// ---- encode ----

// AppendRequest appends the wire form of r to dst.
func AppendRequest(dst []byte, r Request) []byte {
	var h [RequestHeaderSize]byte
	h[0] = magicHi
	h[1] = magicLo
	h[2] = Version
	h[3] = byte(r.Op)
	h[4] = r.XType
	binary.BigEndian.PutUint32(h[6:10], r.NBytes)
	binary.BigEndian.PutUint32(h[10:14], uint32(len(r.Body)))

	dst = append(dst, h[:]...)
	return append(dst, r.Body...)
}

// AppendResponse appends the wire form of r to dst.
func AppendResponse(dst []byte, r Response) []byte {
	var h [ResponseHeaderSize]byte
	h[0] = magicHi
	h[1] = magicLo
	h[2] = Version
	h[3] = byte(r.Status)
	binary.BigEndian.PutUint32(h[4:8], r.N)
	binary.BigEndian.PutUint32(h[8:12], uint32(len(r.Data)))

	dst = append(dst, h[:]...)
	return append(dst, r.Data...)
}

// ---- decode ----

// ReadRequest reads one request frame from r.
// A body longer than maxBody is not read; ErrTooLarge is returned and the
// stream is no longer in sync.
func ReadRequest(r io.Reader, maxBody int) (Request, error) {
	var h [RequestHeaderSize]byte
	if _, err := io.ReadFull(r, h[:]); err != nil {
		return Request{}, err
	}
	if err := checkPreamble(h[:3]); err != nil {
		return Request{}, err
	}

	req := Request{
		Op:     Op(h[3]),
		XType:  h[4],
		NBytes: binary.BigEndian.Uint32(h[6:10]),
	}

	length := binary.BigEndian.Uint32(h[10:14])
	if maxBody > 0 && int64(length) > int64(maxBody) {
		return req, ErrTooLarge
	}

	if length > 0 {
		req.Body = make([]byte, length)
		if _, err := io.ReadFull(r, req.Body); err != nil {
			return Request{}, fmt.Errorf("protocol: short body: %w", err)
		}
	}
	return req, nil
}

// ReadResponse reads one response frame from r.
func ReadResponse(r io.Reader, maxData int) (Response, error) {
	var h [ResponseHeaderSize]byte
	if _, err := io.ReadFull(r, h[:]); err != nil {
		return Response{}, err
	}
	if err := checkPreamble(h[:3]); err != nil {
		return Response{}, err
	}

	resp := Response{
		Status: Status(h[3]),
		N:      binary.BigEndian.Uint32(h[4:8]),
	}

	length := binary.BigEndian.Uint32(h[8:12])
	if maxData > 0 && int64(length) > int64(maxData) {
		return resp, ErrTooLarge
	}

	if length > 0 {
		resp.Data = make([]byte, length)
		if _, err := io.ReadFull(r, resp.Data); err != nil {
			return Response{}, fmt.Errorf("protocol: short data: %w", err)
		}
	}
	return resp, nil
}

func checkPreamble(b []byte) error {
	if b[0] != magicHi || b[1] != magicLo {
		return ErrBadMagic
	}
	if b[2] != Version {
		return ErrBadVersion
	}
	return nil
}

// ---- helpers ----

// WriteAll writes b fully or returns the first error.
func WriteAll(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}
