package config

// AnalysisConfig defines configuration for the change-point analysis engine
type AnalysisConfig struct {
	// Number of observations sampled per calendar year for window selection
	SnapshotsPerYear int `json:"snapshots_per_year,omitempty" yaml:"snapshots_per_year,omitempty" validate:"omitempty,min=1,max=24"`
	// Upper bound on bisection iterations per window
	BisectionMaxIterations int `json:"bisection_max_iterations,omitempty" yaml:"bisection_max_iterations,omitempty" validate:"omitempty,min=1,max=64"`
	// When true, signature equality also compares participant-ID set sizes per role
	CompareParticipantIDs bool `json:"compare_participant_ids" yaml:"compare_participant_ids"`
	// Provider count considered "high" for exclusivity candidate transitions
	ExclusivityHighCount int `json:"exclusivity_high_count,omitempty" yaml:"exclusivity_high_count,omitempty" validate:"omitempty,min=2"`
	// Minimum elapsed span in days for a persisted exclusivity window
	ExclusivityMinDays int `json:"exclusivity_min_days,omitempty" yaml:"exclusivity_min_days,omitempty" validate:"omitempty,min=1"`
	// Minimum consecutive single-provider observations for a persisted window
	ExclusivityMinRun int `json:"exclusivity_min_run,omitempty" yaml:"exclusivity_min_run,omitempty" validate:"omitempty,min=1"`
	// Absolute byte floor below which an observation is flagged truncated
	TruncationMinBytes int `json:"truncation_min_bytes,omitempty" yaml:"truncation_min_bytes,omitempty" validate:"omitempty,min=1"`
	// Fraction of the domain's median length below which an observation is flagged
	TruncationRelativeRatio float64 `json:"truncation_relative_ratio,omitempty" yaml:"truncation_relative_ratio,omitempty" validate:"omitempty,gt=0,lt=1"`
	// Provider ID the per-domain heuristic score is computed for
	FocusProvider string `json:"focus_provider,omitempty" yaml:"focus_provider,omitempty"`
}

// NewDefaultAnalysisConfig creates default analysis configuration
func NewDefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		SnapshotsPerYear:        DefaultSnapshotsPerYear,
		BisectionMaxIterations:  DefaultBisectionMaxIterations,
		CompareParticipantIDs:   true,
		ExclusivityHighCount:    DefaultExclusivityHighCount,
		ExclusivityMinDays:      DefaultExclusivityMinDays,
		ExclusivityMinRun:       DefaultExclusivityMinRun,
		TruncationMinBytes:      DefaultTruncationMinBytes,
		TruncationRelativeRatio: DefaultTruncationRelativeRatio,
		FocusProvider:           "pubmatic",
	}
}
