// internal/status/snapshot.go
package status

import "time"

// Snapshot is what a stat call reports about the resource.
// Times have second resolution.
type Snapshot struct {
	Size  int
	ATime time.Time
	MTime time.Time
	CTime time.Time
}
