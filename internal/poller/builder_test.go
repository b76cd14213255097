// internal/poller/builder_test.go
package poller

import (
	"testing"
	"time"

	cfg "github.com/tamzrod/fault-manager/internal/config"
)

func TestBuild_IsLazy(t *testing.T) {
	// Nothing listens here; Build must not dial.
	p, err := Build(cfg.ModbusConfig{
		ID:         "plc-1",
		Endpoint:   "127.0.0.1:1",
		UnitID:     1,
		TimeoutMs:  50,
		IntervalMs: 250,
		Address:    100,
	})
	if err != nil {
		t.Fatalf("Build() err=%v", err)
	}

	if p.client != nil {
		t.Fatalf("client must be created on first poll")
	}
	if p.cfg.Interval != 250*time.Millisecond || p.cfg.Address != 100 {
		t.Fatalf("config not mapped: %+v", p.cfg)
	}

	if res := p.PollOnce(); res.Err == nil {
		t.Fatalf("expected connect error against closed port")
	}
}
