// Package scorer computes the composite Priority Score for a task: a
// weighted sum of base priority, urgency, impact, duration factor,
// resource availability, and historical success rate. It also maintains
// the rolling, commutative (sum + count) execution statistics the
// Execution Monitor feeds back from observed runs.
package scorer

import (
	"math"
	"sync"
	"time"

	"github.com/nexus-automations/taskgraph/internal/taskgraph"
)

// Weights are the per-component multipliers of the final weighted sum.
// Defaults favor priority (3x) over urgency/impact (2x) over the
// remaining three components (1x each), per spec §4.2.
type Weights struct {
	Priority float64
	Urgency  float64
	Impact   float64
	Duration float64
	Resource float64
	Success  float64
}

// DefaultWeights returns the spec's documented defaults.
func DefaultWeights() Weights {
	return Weights{Priority: 3, Urgency: 2, Impact: 2, Duration: 1, Resource: 1, Success: 1}
}

// Config tunes the Scorer's formulas. Zero-valued fields are replaced by
// DefaultConfig's values.
type Config struct {
	Weights Weights

	// AgingWindow is the age at which urgency's age component saturates.
	// Default 24h.
	AgingWindow time.Duration

	// AgeWeight and DeadlineWeight combine to form urgency; spec defaults
	// to equal weighting (0.5 each).
	AgeWeight      float64
	DeadlineWeight float64

	// DependentWeight and CriticalPathWeight combine to form impact.
	DependentWeight    float64
	CriticalPathWeight float64

	// ReferenceDuration is the duration at which durationFactor = 0.5.
	// Default 60s.
	ReferenceDuration time.Duration
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		Weights:            DefaultWeights(),
		AgingWindow:        24 * time.Hour,
		AgeWeight:          0.5,
		DeadlineWeight:     0.5,
		DependentWeight:    1,
		CriticalPathWeight: 1,
		ReferenceDuration:  60 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Weights == (Weights{}) {
		c.Weights = d.Weights
	}
	if c.AgingWindow == 0 {
		c.AgingWindow = d.AgingWindow
	}
	if c.AgeWeight == 0 && c.DeadlineWeight == 0 {
		c.AgeWeight, c.DeadlineWeight = d.AgeWeight, d.DeadlineWeight
	}
	if c.DependentWeight == 0 && c.CriticalPathWeight == 0 {
		c.DependentWeight, c.CriticalPathWeight = d.DependentWeight, d.CriticalPathWeight
	}
	if c.ReferenceDuration == 0 {
		c.ReferenceDuration = d.ReferenceDuration
	}
	return c
}

// ScoreComponents is the per-task breakdown the Scorer produces; Final is
// the weighted sum used for ranking.
type ScoreComponents struct {
	TaskID               string
	BasePriority         float64
	Urgency              float64
	Impact               float64
	DurationFactor       float64
	ResourceAvailability float64
	SuccessRate          float64
	Final                float64
}

type rollingStat struct {
	durationSum   time.Duration
	durationCount int
	successCount  int
	totalCount    int
	agingBoost    float64
}

// Scorer computes priority scores and accumulates rolling execution
// statistics fed back by the Execution Monitor. Safe for concurrent use.
type Scorer struct {
	cfg Config

	mu        sync.Mutex
	available map[string]float64
	rolling   map[string]*rollingStat
}

// New creates a Scorer with cfg, filling zero fields from DefaultConfig.
func New(cfg Config) *Scorer {
	return &Scorer{
		cfg:     cfg.withDefaults(),
		rolling: make(map[string]*rollingStat),
	}
}

// UpdateSystemLoad replaces the currently-available units for each named
// resource, used by ResourceAvailability in subsequent Score calls.
func (s *Scorer) UpdateSystemLoad(available map[string]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.available = available
}

// RecordExecution folds one observed execution into a task's rolling
// statistics. The update is commutative (it only adds to sums and
// counts), so events may be delivered out of order safely.
func (s *Scorer) RecordExecution(taskID string, success bool, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.rollingFor(taskID)
	st.durationSum += duration
	st.durationCount++
	st.totalCount++
	if success {
		st.successCount++
	}
}

// ApplyAgingBoost adds an explicit, manually-triggered boost to a task's
// urgency component (e.g. an operator escalating a stuck task).
func (s *Scorer) ApplyAgingBoost(taskID string, boost float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.rollingFor(taskID)
	st.agingBoost += boost
}

func (s *Scorer) rollingFor(taskID string) *rollingStat {
	st, ok := s.rolling[taskID]
	if !ok {
		st = &rollingStat{}
		s.rolling[taskID] = st
	}
	return st
}

// Score computes the composite priority score for task. transitiveDependents
// and onCriticalPath are supplied by the caller from a DependencyAnalysis,
// since the Scorer has no graph awareness of its own.
func (s *Scorer) Score(task *taskgraph.Task, transitiveDependents int, onCriticalPath bool, now time.Time) ScoreComponents {
	s.mu.Lock()
	st, hasRolling := s.rolling[task.ID]
	available := s.available
	s.mu.Unlock()

	base := task.Priority.BaseScore()
	urgency := s.urgency(task, now)
	impact := s.impact(transitiveDependents, onCriticalPath)
	duration := s.durationFactor(task, st)
	resource := resourceAvailability(task, available)
	success := successRate(task, st, hasRolling)

	w := s.cfg.Weights
	final := base*w.Priority + urgency*w.Urgency + impact*w.Impact +
		duration*w.Duration + resource*w.Resource + success*w.Success

	return ScoreComponents{
		TaskID:               task.ID,
		BasePriority:         base,
		Urgency:              urgency,
		Impact:               impact,
		DurationFactor:       duration,
		ResourceAvailability: resource,
		SuccessRate:          success,
		Final:                round6(final),
	}
}

func (s *Scorer) urgency(task *taskgraph.Task, now time.Time) float64 {
	age := now.Sub(task.CreatedAt)
	ageRatio := clamp(age.Seconds()/s.cfg.AgingWindow.Seconds(), 0, 1)

	var deadlineProximity float64
	if task.Deadline != nil {
		estimated := task.EstimatedDuration
		if estimated <= 0 {
			estimated = s.cfg.ReferenceDuration
		}
		remaining := task.Deadline.Sub(now)
		deadlineProximity = clamp(1-remaining.Seconds()/estimated.Seconds(), 0, 1)
	}

	s.mu.Lock()
	boost := 0.0
	if st, ok := s.rolling[task.ID]; ok {
		boost = st.agingBoost
	}
	s.mu.Unlock()

	return ageRatio*s.cfg.AgeWeight + deadlineProximity*s.cfg.DeadlineWeight + boost
}

func (s *Scorer) impact(transitiveDependents int, onCriticalPath bool) float64 {
	cp := 0.0
	if onCriticalPath {
		cp = 1.0
	}
	return math.Log(1+float64(transitiveDependents))*s.cfg.DependentWeight + cp*s.cfg.CriticalPathWeight
}

func (s *Scorer) durationFactor(task *taskgraph.Task, st *rollingStat) float64 {
	estimated := task.EstimatedDuration
	if st != nil && st.durationCount > 0 {
		estimated = st.durationSum / time.Duration(st.durationCount)
	}
	if estimated <= 0 {
		estimated = s.cfg.ReferenceDuration
	}
	return 1 / (1 + estimated.Seconds()/s.cfg.ReferenceDuration.Seconds())
}

func resourceAvailability(task *taskgraph.Task, available map[string]float64) float64 {
	if len(task.ResourceDemand) == 0 {
		return 1.0
	}
	min := 1.0
	first := true
	for r, demand := range task.ResourceDemand {
		if demand <= 0 {
			continue
		}
		have := available[r]
		ratio := clamp(have/demand, 0, 1)
		if first || ratio < min {
			min = ratio
			first = false
		}
	}
	if first {
		return 1.0
	}
	return min
}

func successRate(task *taskgraph.Task, st *rollingStat, hasRolling bool) float64 {
	if hasRolling && st.totalCount > 0 {
		return float64(st.successCount) / float64(st.totalCount)
	}
	return task.SuccessRate()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
