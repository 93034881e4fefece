package monitor

import "time"

// Config tunes bottleneck thresholds. Zero fields are replaced by
// DefaultConfig's values.
type Config struct {
	// SlowExecutionThreshold: average execution time above this marks a
	// slow_execution bottleneck. Default 15 minutes.
	SlowExecutionThreshold time.Duration

	// MemoryThresholdMB: memory high-water above this marks a
	// memory_pressure bottleneck. Default 512 MB.
	MemoryThresholdMB float64

	// ReliabilityThreshold: retries exceeding this fraction of total
	// attempts marks a reliability bottleneck. Default 0.10.
	ReliabilityThreshold float64
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		SlowExecutionThreshold: 15 * time.Minute,
		MemoryThresholdMB:      512,
		ReliabilityThreshold:   0.10,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SlowExecutionThreshold == 0 {
		c.SlowExecutionThreshold = d.SlowExecutionThreshold
	}
	if c.MemoryThresholdMB == 0 {
		c.MemoryThresholdMB = d.MemoryThresholdMB
	}
	if c.ReliabilityThreshold == 0 {
		c.ReliabilityThreshold = d.ReliabilityThreshold
	}
	return c
}
