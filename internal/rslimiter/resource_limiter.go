package rslimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aleister1102/adstrace/internal/config"
)

// ResourceLimiter checks system memory and CPU pressure between domains and
// pauses the batch loop while either stays above its threshold.
type ResourceLimiter struct {
	config config.ResourceLimiterConfig
	logger zerolog.Logger
}

// NewResourceLimiter creates a new resource limiter
func NewResourceLimiter(cfg config.ResourceLimiterConfig, logger zerolog.Logger) *ResourceLimiter {
	if cfg.SystemMemThreshold == 0 {
		cfg.SystemMemThreshold = 0.9
	}
	if cfg.CPUThreshold == 0 {
		cfg.CPUThreshold = 0.9
	}
	if cfg.PauseSecs == 0 {
		cfg.PauseSecs = 30
	}

	return &ResourceLimiter{
		config: cfg,
		logger: logger.With().Str("component", "ResourceLimiter").Logger(),
	}
}

// CheckSystemMemoryLimit checks if system memory usage exceeds threshold
func (rl *ResourceLimiter) CheckSystemMemoryLimit() (bool, error) {
	vmStat, err := mem.VirtualMemory()
	if err != nil {
		return false, fmt.Errorf("failed to get system memory stats: %w", err)
	}

	usedPercent := vmStat.UsedPercent / 100.0

	if usedPercent > rl.config.SystemMemThreshold {
		rl.logger.Warn().
			Float64("used_percent", usedPercent*100).
			Float64("threshold_percent", rl.config.SystemMemThreshold*100).
			Uint64("used_mb", vmStat.Used/1024/1024).
			Uint64("total_mb", vmStat.Total/1024/1024).
			Msg("System memory usage exceeded threshold")
		return true, nil
	}

	return false, nil
}

// CheckCPULimit checks if CPU usage exceeds threshold
func (rl *ResourceLimiter) CheckCPULimit() (bool, error) {
	cpuPercents, err := cpu.Percent(time.Second, false)
	if err != nil {
		return false, fmt.Errorf("failed to get CPU usage: %w", err)
	}

	if len(cpuPercents) == 0 {
		return false, fmt.Errorf("no CPU usage data available")
	}

	cpuUsage := cpuPercents[0] / 100.0

	if cpuUsage > rl.config.CPUThreshold {
		rl.logger.Warn().
			Float64("cpu_usage_percent", cpuUsage*100).
			Float64("threshold_percent", rl.config.CPUThreshold*100).
			Msg("CPU usage exceeded threshold")
		return true, nil
	}

	return false, nil
}

// WaitIfOverloaded blocks until both system memory and CPU usage drop back
// under their thresholds, sleeping PauseSecs between checks. Returns early on
// context cancellation. Measurement errors are logged and treated as "not
// overloaded" so a broken stats source never stalls the batch.
func (rl *ResourceLimiter) WaitIfOverloaded(ctx context.Context) error {
	if !rl.config.Enabled {
		return nil
	}

	for {
		memExceeded, err := rl.CheckSystemMemoryLimit()
		if err != nil {
			rl.logger.Error().Err(err).Msg("Failed to check system memory limit")
			memExceeded = false
		}

		cpuExceeded, err := rl.CheckCPULimit()
		if err != nil {
			rl.logger.Error().Err(err).Msg("Failed to check CPU limit")
			cpuExceeded = false
		}

		if !memExceeded && !cpuExceeded {
			return nil
		}

		rl.logger.Info().
			Bool("memory_exceeded", memExceeded).
			Bool("cpu_exceeded", cpuExceeded).
			Int("pause_secs", rl.config.PauseSecs).
			Msg("Resource pressure detected, pausing before next domain")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(rl.config.PauseSecs) * time.Second):
		}
	}
}
