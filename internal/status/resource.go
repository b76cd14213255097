// internal/status/resource.go
package status

// Resource is the read-only status payload.
// Shared by every connection without locking: nothing ever writes to it.
type Resource struct {
	data []byte
}

// NewResource returns the process status resource (Message + Sentinel).
func NewResource() *Resource {
	data := make([]byte, 0, Length)
	data = append(data, Message...)
	data = append(data, Sentinel)
	return &Resource{data: data}
}

// Len returns the advertised length.
func (r *Resource) Len() int { return len(r.data) }

// Text returns the status message without the sentinel.
func (r *Resource) Text() string { return string(r.data[:len(r.data)-1]) }

// Read returns up to n bytes starting at the cursor and advances it.
// An empty result means end of data, not an error.
// The returned slice aliases the resource and must not be modified.
func (r *Resource) Read(c *Cursor, n int) []byte {
	if n <= 0 {
		return nil
	}

	available := len(r.data) - c.offset
	if available <= 0 {
		return nil
	}
	if n > available {
		n = available
	}

	out := r.data[c.offset : c.offset+n : c.offset+n]
	c.offset += n
	return out
}
