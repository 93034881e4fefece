package monitor

import (
	"context"
	"testing"
	"time"
)

func TestAggregatesTrackCompletionAndSuccessRate(t *testing.T) {
	m := New(DefaultConfig(), nil, nil, nil)
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if err := m.Record(ctx, Event{TaskID: "A", Kind: EventStarted, Timestamp: now}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := m.Record(ctx, Event{TaskID: "A", Kind: EventCompleted, Timestamp: now.Add(time.Minute), Duration: time.Minute, Category: "feature_build", Priority: "high"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := m.Record(ctx, Event{TaskID: "B", Kind: EventFailed, Timestamp: now, Duration: 2 * time.Minute}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	a := m.Aggregates()
	if a.Completed != 1 || a.Failed != 1 {
		t.Fatalf("expected 1 completed and 1 failed, got %+v", a)
	}
	if a.SuccessRate != 0.5 {
		t.Fatalf("expected success rate 0.5, got %v", a.SuccessRate)
	}
	if a.CategoryHistogram["feature_build"] != 1 {
		t.Fatalf("expected category histogram to count feature_build once, got %+v", a.CategoryHistogram)
	}
}

func TestBottlenecksFlagSlowExecution(t *testing.T) {
	cfg := Config{SlowExecutionThreshold: time.Minute}
	m := New(cfg, nil, nil, nil)
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if err := m.Record(ctx, Event{TaskID: "A", Kind: EventCompleted, Timestamp: now, Duration: 10 * time.Minute}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	var found bool
	for _, b := range m.Bottlenecks() {
		if b.Kind == BottleneckSlowExecution {
			found = true
			if b.Severity != SeverityCritical {
				t.Errorf("expected critical severity for a 10x threshold overrun, got %v", b.Severity)
			}
		}
	}
	if !found {
		t.Fatal("expected a slow_execution bottleneck")
	}
}

func TestHealthDegradesWithReliabilityBottleneck(t *testing.T) {
	cfg := Config{ReliabilityThreshold: 0.05}
	m := New(cfg, nil, nil, nil)
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if err := m.Record(ctx, Event{TaskID: "A", Kind: EventCompleted, Timestamp: now, Duration: time.Second}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := m.Record(ctx, Event{TaskID: "A", Kind: EventRetried, Timestamp: now}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	health := m.Health()
	if health[DimensionReliability] == StatusHealthy {
		t.Fatalf("expected degraded or critical reliability, got %v", health[DimensionReliability])
	}
	if health[DimensionOverall] == StatusHealthy {
		t.Fatalf("expected overall health to reflect the reliability bottleneck, got %v", health[DimensionOverall])
	}
}

func TestHealthStaysHealthyWithNoSignal(t *testing.T) {
	m := New(DefaultConfig(), nil, nil, nil)
	health := m.Health()
	for dim, status := range health {
		if status != StatusHealthy {
			t.Errorf("dimension %v: expected healthy with no recorded events, got %v", dim, status)
		}
	}
}
