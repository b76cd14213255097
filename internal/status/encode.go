// internal/status/encode.go
package status

import (
	"encoding/binary"
	"errors"
	"time"
)

// Encode converts a Snapshot into the fixed stat block.
// Layout is protocol-locked:
//
//	size(4) atime(8) mtime(8) ctime(8), big-endian, unix seconds
func Encode(s Snapshot) []byte {
	b := make([]byte, StatBlockSize)
	binary.BigEndian.PutUint32(b[0:4], uint32(s.Size))
	binary.BigEndian.PutUint64(b[4:12], uint64(s.ATime.Unix()))
	binary.BigEndian.PutUint64(b[12:20], uint64(s.MTime.Unix()))
	binary.BigEndian.PutUint64(b[20:28], uint64(s.CTime.Unix()))
	return b
}

// Decode is the inverse of Encode.
func Decode(b []byte) (Snapshot, error) {
	if len(b) != StatBlockSize {
		return Snapshot{}, errors.New("status: bad stat block size")
	}
	return Snapshot{
		Size:  int(binary.BigEndian.Uint32(b[0:4])),
		ATime: time.Unix(int64(binary.BigEndian.Uint64(b[4:12])), 0),
		MTime: time.Unix(int64(binary.BigEndian.Uint64(b[12:20])), 0),
		CTime: time.Unix(int64(binary.BigEndian.Uint64(b[20:28])), 0),
	}, nil
}
