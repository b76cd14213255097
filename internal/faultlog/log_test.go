// internal/faultlog/log_test.go
package faultlog

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lineRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} -?\d+$`)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	s := strings.TrimSuffix(string(b), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestRecord_Line(t *testing.T) {
	at := time.Date(2024, 3, 7, 4, 5, 9, 987654321, time.UTC)

	assert.Equal(t, "2024-03-07 04:05:09 42\n", NewRecord(at, 42).String())
	assert.Equal(t, "2024-03-07 04:05:09 -7\n", NewRecord(at, -7).String())
	assert.Equal(t, "2024-03-07 04:05:09 0\n", NewRecord(at, 0).String())
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)

	_, err = New(Config{Path: "x", Mode: "sometimes"})
	require.Error(t, err)

	l, err := New(Config{Path: "x"})
	require.NoError(t, err)
	assert.Equal(t, ModePerAppend, l.mode)
}

func TestAppend_CreatesAndAppends(t *testing.T) {
	for _, mode := range []Mode{ModePerAppend, ModePersistent} {
		t.Run(string(mode), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "fault_log")
			at := time.Date(2025, 12, 31, 23, 59, 58, 0, time.UTC)

			l, err := New(Config{Path: path, Mode: mode, Location: time.UTC, Now: fixedClock(at)})
			require.NoError(t, err)
			defer l.Close()

			require.NoError(t, l.Append(3))
			require.NoError(t, l.Append(-12))
			require.NoError(t, l.Close())

			lines := readLines(t, path)
			require.Len(t, lines, 2)
			assert.Equal(t, "2025-12-31 23:59:58 3", lines[0])
			assert.Equal(t, "2025-12-31 23:59:58 -12", lines[1])
		})
	}
}

func TestAppend_NeverRewritesExistingContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fault_log")
	require.NoError(t, os.WriteFile(path, []byte("2020-01-01 00:00:00 1\n"), 0o644))

	l, err := New(Config{Path: path})
	require.NoError(t, err)
	require.NoError(t, l.Append(2))

	lines := readLines(t, path)
	require.Len(t, lines, 2)
	assert.Equal(t, "2020-01-01 00:00:00 1", lines[0])
	assert.Regexp(t, lineRe, lines[1])
	assert.True(t, strings.HasSuffix(lines[1], " 2"))
}

func TestAppend_UsesLocation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fault_log")
	loc := time.FixedZone("plus2", 2*60*60)
	at := time.Date(2025, 1, 1, 23, 0, 0, 0, time.UTC)

	l, err := New(Config{Path: path, Location: loc, Now: fixedClock(at)})
	require.NoError(t, err)
	require.NoError(t, l.Append(5))

	assert.Equal(t, []string{"2025-01-02 01:00:00 5"}, readLines(t, path))
}

func TestAppend_OpenFailed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "fault_log")

	l, err := New(Config{Path: path})
	require.NoError(t, err)

	err = l.Append(1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOpenFailed))
	assert.False(t, errors.Is(err, ErrWriteFailed))

	var le *LogError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, OpOpen, le.Op)
	assert.Equal(t, path, le.Path)
}

// ---- short write handling ----

type shortFile struct {
	buf       []byte
	limit     int
	writeErr  error
	truncated bool
	closed    int
}

func (f *shortFile) Write(p []byte) (int, error) {
	n := len(p)
	if f.limit >= 0 && n > f.limit {
		n = f.limit
	}
	f.buf = append(f.buf, p[:n]...)
	return n, f.writeErr
}

func (f *shortFile) Close() error { f.closed++; return nil }

func (f *shortFile) Stat() (os.FileInfo, error) {
	return sizeInfo(len(f.buf)), nil
}

func (f *shortFile) Truncate(size int64) error {
	f.buf = f.buf[:size]
	f.truncated = true
	return nil
}

type sizeInfo int64

func (s sizeInfo) Name() string       { return "fake" }
func (s sizeInfo) Size() int64        { return int64(s) }
func (s sizeInfo) Mode() os.FileMode  { return 0o644 }
func (s sizeInfo) ModTime() time.Time { return time.Time{} }
func (s sizeInfo) IsDir() bool        { return false }
func (s sizeInfo) Sys() any           { return nil }

func TestAppend_ShortWriteLeavesNoPartialLine(t *testing.T) {
	f := &shortFile{buf: []byte("2020-01-01 00:00:00 1\n"), limit: 5}

	l, err := New(Config{Path: "fake"})
	require.NoError(t, err)
	l.open = func(string) (file, error) { return f, nil }

	err = l.Append(99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrWriteFailed))
	assert.True(t, f.truncated)
	assert.Equal(t, "2020-01-01 00:00:00 1\n", string(f.buf))
	assert.Equal(t, 1, f.closed)
}

func TestAppend_PersistentReopensAfterFailure(t *testing.T) {
	bad := &shortFile{limit: 0, writeErr: errors.New("disk gone")}
	good := &shortFile{limit: -1}
	opens := 0

	l, err := New(Config{Path: "fake", Mode: ModePersistent})
	require.NoError(t, err)
	l.open = func(string) (file, error) {
		opens++
		if opens == 1 {
			return bad, nil
		}
		return good, nil
	}

	require.Error(t, l.Append(1))
	require.NoError(t, l.Append(2))
	require.NoError(t, l.Append(3))

	assert.Equal(t, 2, opens)
	assert.Equal(t, 1, bad.closed)
	assert.Equal(t, 0, good.closed)
	assert.Equal(t, 2, strings.Count(string(good.buf), "\n"))

	require.NoError(t, l.Close())
	assert.Equal(t, 1, good.closed)
}

func TestAppend_ConcurrentCallersDoNotInterleave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fault_log")

	l, err := New(Config{Path: path, Mode: ModePersistent})
	require.NoError(t, err)

	const workers, per = 8, 50
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < per; i++ {
				assert.NoError(t, l.Append(int64(w*1000+i)))
			}
		}(w)
	}
	wg.Wait()
	require.NoError(t, l.Close())

	lines := readLines(t, path)
	require.Len(t, lines, workers*per)
	for _, ln := range lines {
		assert.Regexp(t, lineRe, ln)
	}
}
