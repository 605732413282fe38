package batch

// Policy starts an UploadHeuristic on Bootstrap thresholds and upgrades it
// to the steady thresholds after the first flush. The upgrade happens once.
type Policy struct {
	*UploadHeuristic
	steady   Thresholds
	upgraded bool
}

// NewPolicy returns a policy in bootstrap mode.
func NewPolicy(steady Thresholds, opts ...Option) *Policy {
	return &Policy{
		UploadHeuristic: NewUploadHeuristic(Bootstrap, opts...),
		steady:          steady,
	}
}

// AfterFlush records a flush and applies the steady thresholds the first
// time it is called.
func (p *Policy) AfterFlush() {
	p.RecordFlush()
	if !p.upgraded {
		p.upgraded = true
		p.UpdateThresholds(&p.steady.Size, &p.steady.Interval)
	}
}

// Upgraded reports whether the steady thresholds are in effect.
func (p *Policy) Upgraded() bool { return p.upgraded }

// Steady returns the configured steady thresholds.
func (p *Policy) Steady() Thresholds { return p.steady }

// SetSteady changes the steady thresholds. They take effect immediately when
// the policy is already upgraded, otherwise at the first flush.
func (p *Policy) SetSteady(t Thresholds) {
	p.steady = t
	if p.upgraded {
		p.UpdateThresholds(&t.Size, &t.Interval)
	}
}

// Reset returns the policy to bootstrap mode, as for a fresh connection.
func (p *Policy) Reset() {
	p.upgraded = false
	b := Bootstrap
	p.UpdateThresholds(&b.Size, &b.Interval)
	p.RecordFlush()
}
