package config

// RunnerConfig defines configuration for the per-domain batch loop
type RunnerConfig struct {
	// Default analysis start date (YYYYMMDD) when no run state exists for a domain
	DefaultStartDate string `json:"default_start_date,omitempty" yaml:"default_start_date,omitempty" validate:"omitempty,len=8,numeric"`
	// Optional analysis end date (YYYYMMDD); empty means today
	EndDate string `json:"end_date,omitempty" yaml:"end_date,omitempty" validate:"omitempty,len=8,numeric"`
	// Lower bound of the politeness sleep between outbound fetches, milliseconds
	SleepMinMillis int `json:"sleep_min_millis,omitempty" yaml:"sleep_min_millis,omitempty" validate:"omitempty,min=0"`
	// Upper bound of the politeness sleep between outbound fetches, milliseconds
	SleepMaxMillis int `json:"sleep_max_millis,omitempty" yaml:"sleep_max_millis,omitempty" validate:"omitempty,min=0"`
}

// NewDefaultRunnerConfig creates default runner configuration
func NewDefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		DefaultStartDate: DefaultStartDate,
		SleepMinMillis:   DefaultSleepMinMillis,
		SleepMaxMillis:   DefaultSleepMaxMillis,
	}
}

// ResourceLimiterConfig defines thresholds for the between-domain resource checks
type ResourceLimiterConfig struct {
	// Fraction of system memory above which the runner pauses before the next domain
	SystemMemThreshold float64 `json:"system_mem_threshold,omitempty" yaml:"system_mem_threshold,omitempty" validate:"omitempty,gt=0,lte=1"`
	// Fraction of CPU usage above which the runner pauses before the next domain
	CPUThreshold float64 `json:"cpu_threshold,omitempty" yaml:"cpu_threshold,omitempty" validate:"omitempty,gt=0,lte=1"`
	// Seconds to pause when a threshold is exceeded
	PauseSecs int `json:"pause_secs,omitempty" yaml:"pause_secs,omitempty" validate:"omitempty,min=1"`
	// Disable the checks entirely
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// NewDefaultResourceLimiterConfig creates default resource limiter configuration
func NewDefaultResourceLimiterConfig() ResourceLimiterConfig {
	return ResourceLimiterConfig{
		SystemMemThreshold: 0.9,
		CPUThreshold:       0.9,
		PauseSecs:          30,
		Enabled:            true,
	}
}
