// Package depmanager implements the Dependency Manager façade: it owns
// an Analyzer, Scorer, Planner, Optimizer, and Monitor, mediates every
// mutation of the underlying task graph under a single writer lock, and
// caches analyses behind a fingerprint keyed on task-set and
// configuration identity.
package depmanager

import (
	"time"

	"github.com/nexus-automations/taskgraph/internal/analyzer"
	"github.com/nexus-automations/taskgraph/internal/monitor"
	"github.com/nexus-automations/taskgraph/internal/optimizer"
	"github.com/nexus-automations/taskgraph/internal/planner"
	"github.com/nexus-automations/taskgraph/internal/scorer"
)

// Preset names one of the four predefined configuration bundles.
type Preset string

const (
	PresetHighPerformance   Preset = "HIGH_PERFORMANCE"
	PresetComprehensive     Preset = "COMPREHENSIVE"
	PresetResourceOptimized Preset = "RESOURCE_OPTIMIZED"
	PresetQualityFocused    Preset = "QUALITY_FOCUSED"
)

// ManagerConfig bundles the five components' configs plus the façade's
// own knobs (planning strategy/budget, cache size). Zero fields fall
// back to each component's own DefaultConfig.
type ManagerConfig struct {
	AnalyzerConfig  analyzer.Config
	ScorerConfig    scorer.Config
	OptimizerConfig optimizer.Config
	MonitorConfig   monitor.Config

	// PlanStrategy names a planner.Strategy (fifo, priority,
	// critical_path, resource_optimal, dependency_aware).
	PlanStrategy string
	// ResourceBudget caps per-resource demand within a parallel group.
	ResourceBudget planner.ResourceBudget

	// CacheSize bounds the analysis cache's LRU capacity. Default 32.
	CacheSize int

	// ConfigVersion participates in the cache fingerprint: bumping it
	// invalidates every cached analysis without touching the task set.
	ConfigVersion string
}

// DefaultManagerConfig returns the DEPENDENCY_AWARE / throughput-optimizing
// baseline every preset customizes from.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		AnalyzerConfig:  analyzer.DefaultConfig(),
		ScorerConfig:    scorer.DefaultConfig(),
		OptimizerConfig: optimizer.DefaultConfig(),
		MonitorConfig:   monitor.DefaultConfig(),
		PlanStrategy:    "dependency_aware",
		CacheSize:       32,
		ConfigVersion:   "v1",
	}
}

// FromPreset resolves one of the four named bundles. An unrecognized name
// returns DefaultManagerConfig.
func FromPreset(p Preset) ManagerConfig {
	cfg := DefaultManagerConfig()
	switch p {
	case PresetHighPerformance:
		// Cache-heavy, shallow implicit analysis: skip the
		// keyword-overlap pass's looser matches by raising its
		// threshold, and favor a larger cache of prior analyses.
		cfg.AnalyzerConfig.JaccardThreshold = 0.6
		cfg.CacheSize = 128
		cfg.PlanStrategy = "priority"
	case PresetComprehensive:
		// All edge kinds at their most permissive. Validation is the
		// same as in every other preset.
		cfg.AnalyzerConfig.JaccardThreshold = 0.15
		cfg.AnalyzerConfig.TemporalWindow = 2 * time.Hour
		cfg.OptimizerConfig.Strategy = "latency"
		cfg.PlanStrategy = "critical_path"
	case PresetResourceOptimized:
		cfg.PlanStrategy = "resource_optimal"
		cfg.OptimizerConfig.Strategy = "resource_efficiency"
		cfg.OptimizerConfig.BatchingStrategy = "resource_optimization"
	case PresetQualityFocused:
		// Maximum confidence thresholds under deadline optimization.
		// Validation is unchanged: Plan does not run Validate for this
		// preset or any other.
		cfg.AnalyzerConfig.JaccardThreshold = 0.75
		cfg.AnalyzerConfig.MaxRemovalFraction = 0.5
		cfg.OptimizerConfig.Strategy = "deadline"
	}
	return cfg
}

// Metrics bundles the read-only snapshots a caller typically wants
// together: the Monitor's rolling aggregates, its bottleneck scan, its
// health classification, and the Optimizer's learning summary.
type Metrics struct {
	Aggregates  monitor.Aggregates
	Bottlenecks []monitor.Bottleneck
	Health      monitor.SystemHealth
	Learning    optimizer.LearningMetrics
}

// LearningInsights is the result of GetLearningInsights: the Optimizer's
// learning metrics, its average impact, the sorted ids of the current
// task set, and whether a retune is recommended, for a caller deciding
// whether to retune weights.
type LearningInsights struct {
	Learning        optimizer.LearningMetrics
	SampledTaskIDs  []string
	AverageImpact   float64
	RecommendedTune bool
}
