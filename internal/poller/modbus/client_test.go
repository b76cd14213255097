// internal/poller/modbus/client_test.go
package modbus

import "testing"

func TestUnpackRegisters(t *testing.T) {
	got := unpackRegisters([]byte{0x00, 0x0F, 0x12, 0x34, 0xFF, 0xFE})
	want := []uint16{15, 0x1234, 0xFFFE}

	if len(got) != len(want) {
		t.Fatalf("len: got=%d want=%d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("reg %d: got=%#x want=%#x", i, got[i], want[i])
		}
	}
}

func TestNew_RequiresEndpoint(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error for empty endpoint")
	}
}
