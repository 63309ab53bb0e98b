package health

import (
	"context"
	"fmt"
)

// Sizer is the occupancy surface of the memory tier.
type Sizer interface {
	Len() int
	Cap() int
}

// TierCheckerConfig configures the memory tier checker.
type TierCheckerConfig struct {
	// WarningThreshold is the occupancy ratio that triggers degraded
	// status. Between 0 and 1, default 0.9.
	WarningThreshold float64
}

// TierChecker reports the occupancy of the memory tier. A full tier
// still works (writes evict), so high occupancy degrades rather than
// fails the check.
type TierChecker struct {
	config TierCheckerConfig
	tier   Sizer
}

// NewTierChecker creates a checker over the memory tier.
func NewTierChecker(tier Sizer, config TierCheckerConfig) *TierChecker {
	if config.WarningThreshold <= 0 || config.WarningThreshold > 1 {
		config.WarningThreshold = 0.9
	}
	return &TierChecker{config: config, tier: tier}
}

// Name returns the name of this checker.
func (c *TierChecker) Name() string {
	return "memory-tier"
}

// Check reports the tier occupancy.
func (c *TierChecker) Check(ctx context.Context) Result {
	if c.tier == nil {
		return Healthy("memory tier disabled")
	}

	length, capacity := c.tier.Len(), c.tier.Cap()
	details := map[string]any{
		"entries":  length,
		"capacity": capacity,
	}

	if capacity <= 0 {
		return Healthy("memory tier unbounded").WithDetails(details)
	}

	occupancy := float64(length) / float64(capacity)
	details["occupancy_percent"] = occupancy * 100

	if occupancy >= c.config.WarningThreshold {
		return Degraded(
			fmt.Sprintf("memory tier near capacity: %.1f%%", occupancy*100),
		).WithDetails(details)
	}

	return Healthy(
		fmt.Sprintf("memory tier occupancy: %.1f%%", occupancy*100),
	).WithDetails(details)
}

var _ Checker = (*TierChecker)(nil)
