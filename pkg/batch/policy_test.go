package batch

import (
	"testing"
	"time"
)

func TestPolicy_BootstrapThenSteady(t *testing.T) {
	clock := newClock()
	p := NewPolicy(Steady, WithClock(clock.now))

	if p.Upgraded() {
		t.Fatal("Upgraded() = true before first flush")
	}
	if got := p.Thresholds(); got != Bootstrap {
		t.Errorf("Thresholds() = %+v, want %+v", got, Bootstrap)
	}
	if !p.ShouldUpload(size(1)) {
		t.Error("ShouldUpload() = false for first byte in bootstrap, want true")
	}

	p.AfterFlush()
	if !p.Upgraded() {
		t.Fatal("Upgraded() = false after first flush")
	}
	if got := p.Thresholds(); got != Steady {
		t.Errorf("Thresholds() = %+v, want %+v", got, Steady)
	}
	if p.ShouldUpload(size(1)) {
		t.Error("ShouldUpload() = true for one byte in steady, want false")
	}
}

func TestPolicy_UpgradeHappensOnce(t *testing.T) {
	p := NewPolicy(Steady)
	p.AfterFlush()

	n := 5
	p.UpdateThresholds(&n, nil)
	p.AfterFlush()

	if got := p.Thresholds().Size; got != 5 {
		t.Errorf("Thresholds().Size = %v, want 5", got)
	}
}

func TestPolicy_SetSteady(t *testing.T) {
	custom := Thresholds{Size: 100, Interval: time.Second}

	p := NewPolicy(Steady)
	p.SetSteady(custom)
	if got := p.Thresholds(); got != Bootstrap {
		t.Errorf("Thresholds() = %+v before upgrade, want bootstrap", got)
	}
	p.AfterFlush()
	if got := p.Thresholds(); got != custom {
		t.Errorf("Thresholds() = %+v, want %+v", got, custom)
	}

	later := Thresholds{Size: 200, Interval: 2 * time.Second}
	p.SetSteady(later)
	if got := p.Thresholds(); got != later {
		t.Errorf("Thresholds() = %+v, want %+v", got, later)
	}
	if got := p.Steady(); got != later {
		t.Errorf("Steady() = %+v, want %+v", got, later)
	}
}

func TestPolicy_Reset(t *testing.T) {
	p := NewPolicy(Steady)
	p.AfterFlush()
	p.Reset()

	if p.Upgraded() {
		t.Error("Upgraded() = true after Reset")
	}
	if got := p.Thresholds(); got != Bootstrap {
		t.Errorf("Thresholds() = %+v, want bootstrap", got)
	}
	p.AfterFlush()
	if got := p.Thresholds(); got != Steady {
		t.Errorf("Thresholds() = %+v, want steady", got)
	}
}
