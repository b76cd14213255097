// internal/status/cursor.go
package status

// Cursor is one connection's read position.
// Owned by exactly one connection; never shared.
type Cursor struct {
	offset int
}

// Offset returns the number of bytes already consumed.
func (c *Cursor) Offset() int { return c.offset }
