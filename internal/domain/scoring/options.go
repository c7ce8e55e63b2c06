package scoring

// Option applies a configuration option to the RiskScorer.
type Option func(*RiskScorer)

// WithPolicy replaces the whole policy. Missing entries are reported by
// NewRiskScorer rather than filled from defaults.
func WithPolicy(p Policy) Option {
	return func(s *RiskScorer) {
		s.policy = p.Clone()
	}
}

// WithWeights overrides weights for the named fields. Fields not present in
// weights keep their current value.
func WithWeights(weights map[string]float64) Option {
	return func(s *RiskScorer) {
		if s.policy.Weights == nil {
			s.policy.Weights = make(map[Field]float64, len(Fields))
		}
		for name, w := range weights {
			f, err := ParseField(name)
			if err != nil {
				s.errs = append(s.errs, err)
				continue
			}
			s.policy.Weights[f] = w
		}
	}
}

// WithCaps overrides clamp ceilings for the named fields.
func WithCaps(caps map[string]float64) Option {
	return func(s *RiskScorer) {
		if s.policy.Caps == nil {
			s.policy.Caps = make(map[Field]float64, len(Fields))
		}
		for name, c := range caps {
			f, err := ParseField(name)
			if err != nil {
				s.errs = append(s.errs, err)
				continue
			}
			s.policy.Caps[f] = c
		}
	}
}

// WithThresholds sets the MEDIUM and HIGH cutoffs.
func WithThresholds(medium, high float64) Option {
	return func(s *RiskScorer) {
		s.policy.MediumThreshold = medium
		s.policy.HighThreshold = high
	}
}
