// internal/handler/parse.go
package handler

import "math"

// ParseFaultID parses the leading base-10 integer of b.
//
// Tolerant by contract: leading ASCII whitespace is skipped, one optional
// sign is accepted, parsing stops at the first non-digit and trailing bytes
// are ignored. Input without leading digits yields 0, not an error.
// Values beyond int64 saturate.
//
//	"42" -> 42   "7\n" -> 7   "12xyz" -> 12   "abc" -> 0
func ParseFaultID(b []byte) int64 {
	i := 0
	for i < len(b) && isSpace(b[i]) {
		i++
	}

	neg := false
	if i < len(b) && (b[i] == '+' || b[i] == '-') {
		neg = b[i] == '-'
		i++
	}

	var v uint64
	limit := uint64(math.MaxInt64)
	if neg {
		limit++
	}

	for ; i < len(b); i++ {
		c := b[i]
		if c < '0' || c > '9' {
			break
		}
		if v > (limit-uint64(c-'0'))/10 {
			v = limit
			continue
		}
		v = v*10 + uint64(c-'0')
	}

	if neg {
		return int64(-v)
	}
	return int64(v)
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
