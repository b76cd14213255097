// internal/faultlog/record.go
package faultlog

import (
	"strconv"
	"time"
)

// TimeLayout is the timestamp prefix of every log line.
// Fixed width, zero padded, no locale.
const TimeLayout = "2006-01-02 15:04:05"

// Record is one persisted fault.
// Immutable once built.
type Record struct {
	Time    time.Time
	FaultID int64
}

// NewRecord truncates t to second resolution.
func NewRecord(t time.Time, faultID int64) Record {
	return Record{Time: t.Truncate(time.Second), FaultID: faultID}
}

// AppendLine appends "YYYY-MM-DD HH:MM:SS <id>\n" to dst.
func (r Record) AppendLine(dst []byte) []byte {
	dst = r.Time.AppendFormat(dst, TimeLayout)
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, r.FaultID, 10)
	return append(dst, '\n')
}

// Line returns the serialized record including the trailing newline.
func (r Record) Line() []byte {
	return r.AppendLine(make([]byte, 0, len(TimeLayout)+22))
}

func (r Record) String() string {
	return string(r.Line())
}
