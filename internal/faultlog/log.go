// internal/faultlog/log.go
package faultlog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Mode selects how the backing file handle is held.
type Mode string

const (
	// ModePerAppend opens and closes the file around every record.
	ModePerAppend Mode = "per_append"

	// ModePersistent keeps one handle open until Close.
	// A failed write drops the handle; the next append reopens it.
	ModePersistent Mode = "persistent"
)

// Op names the failing step of an append.
type Op string

const (
	OpOpen  Op = "open"
	OpWrite Op = "write"
)

var (
	ErrOpenFailed  = errors.New("faultlog: open failed")
	ErrWriteFailed = errors.New("faultlog: write failed")
)

// LogError reports a failed append.
// errors.Is matches ErrOpenFailed or ErrWriteFailed depending on Op.
type LogError struct {
	Op   Op
	Path string
	Err  error
}

func (e *LogError) Error() string {
	return fmt.Sprintf("faultlog: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *LogError) Unwrap() error { return e.Err }

func (e *LogError) Is(target error) bool {
	switch target {
	case ErrOpenFailed:
		return e.Op == OpOpen
	case ErrWriteFailed:
		return e.Op == OpWrite
	}
	return false
}

// Appender is what the write and event paths need from the log.
type Appender interface {
	Append(faultID int64) error
}

// file is the subset of *os.File the log touches.
type file interface {
	io.WriteCloser
	Stat() (os.FileInfo, error)
	Truncate(size int64) error
}

type Config struct {
	Path     string
	Mode     Mode
	Location *time.Location   // nil => time.Local
	Now      func() time.Time // nil => time.Now
}

// Log is an append-only fault record file.
// Safe for concurrent use: physical writes are serialized.
type Log struct {
	mu   sync.Mutex
	path string
	mode Mode
	loc  *time.Location
	now  func() time.Time
	open func(path string) (file, error)

	f file // persistent mode only
}

// New validates cfg. The file itself is opened lazily on first Append.
func New(cfg Config) (*Log, error) {
	if cfg.Path == "" {
		return nil, errors.New("faultlog: path required")
	}

	switch cfg.Mode {
	case "":
		cfg.Mode = ModePerAppend
	case ModePerAppend, ModePersistent:
	default:
		return nil, fmt.Errorf("faultlog: unknown mode %q", cfg.Mode)
	}

	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Log{
		path: cfg.Path,
		mode: cfg.Mode,
		loc:  cfg.Location,
		now:  cfg.Now,
		open: openAppend,
	}, nil
}

func openAppend(path string) (file, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// Path returns the backing file path.
func (l *Log) Path() string { return l.path }

// Append persists one record stamped with the current time.
// The line is fully formatted before the write call; either all of it
// lands in the file or none of it does.
func (l *Log) Append(faultID int64) error {
	line := NewRecord(l.now().In(l.loc), faultID).Line()

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := l.acquire()
	if err != nil {
		return &LogError{Op: OpOpen, Path: l.path, Err: err}
	}

	werr := writeLine(f, line)
	l.release(f, werr != nil)

	if werr != nil {
		return &LogError{Op: OpWrite, Path: l.path, Err: werr}
	}
	return nil
}

// Close releases a persistent handle. No-op in per_append mode.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}

func (l *Log) acquire() (file, error) {
	if l.mode == ModePersistent && l.f != nil {
		return l.f, nil
	}

	f, err := l.open(l.path)
	if err != nil {
		return nil, err
	}

	if l.mode == ModePersistent {
		l.f = f
	}
	return f, nil
}

func (l *Log) release(f file, failed bool) {
	if l.mode == ModePersistent && !failed {
		return
	}
	_ = f.Close()
	if l.mode == ModePersistent {
		l.f = nil
	}
}

// writeLine writes line in one call. A short or failed write is rolled
// back to the pre-write size so no partial line stays in the file.
func writeLine(f file, line []byte) error {
	size := int64(-1)
	if fi, err := f.Stat(); err == nil {
		size = fi.Size()
	}

	n, err := f.Write(line)
	if err == nil && n < len(line) {
		err = io.ErrShortWrite
	}
	if err == nil {
		return nil
	}

	if n > 0 && size >= 0 {
		if terr := f.Truncate(size); terr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", terr))
		}
	}
	return err
}
