// internal/status/attr.go
package status

import "time"

// Flag marks an attribute time as stale.
type Flag uint8

const (
	FlagATime Flag = 1 << iota
	FlagMTime
	FlagCTime
)

// Attr is the resource attribute block.
// Handlers only mark times stale; Refresh stamps them lazily.
// Not safe for concurrent use; owned by the dispatch loop.
type Attr struct {
	flags Flag
	size  int
	atime time.Time
	mtime time.Time
	ctime time.Time
}

// NewAttr returns attributes with every time set to now.
func NewAttr(size int, now time.Time) *Attr {
	now = now.Truncate(time.Second)
	return &Attr{size: size, atime: now, mtime: now, ctime: now}
}

// Mark flags the given times as stale.
func (a *Attr) Mark(f Flag) { a.flags |= f }

// Stale reports whether any of f is pending refresh.
func (a *Attr) Stale(f Flag) bool { return a.flags&f != 0 }

// Refresh stamps every stale time with now and clears the flags.
func (a *Attr) Refresh(now time.Time) Snapshot {
	now = now.Truncate(time.Second)

	if a.flags&FlagATime != 0 {
		a.atime = now
	}
	if a.flags&FlagMTime != 0 {
		a.mtime = now
	}
	if a.flags&FlagCTime != 0 {
		a.ctime = now
	}
	a.flags = 0

	return Snapshot{Size: a.size, ATime: a.atime, MTime: a.mtime, CTime: a.ctime}
}
