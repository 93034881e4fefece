package taskerrors

import (
	"errors"
	"testing"
)

func TestValidationErrorUnwrap(t *testing.T) {
	ve := &ValidationError{TaskID: "t1", Message: "missing title"}
	if !errors.Is(ve, ErrMalformedTask) {
		t.Fatal("expected ValidationError to unwrap to ErrMalformedTask")
	}
}

func TestCycleErrorSeverityAndRetry(t *testing.T) {
	ce := &CycleError{Chain: []string{"a", "b", "a"}}
	if ce.Severity() != SeverityMedium {
		t.Fatalf("expected medium severity, got %s", ce.Severity())
	}
	if ce.IsRetryable() {
		t.Fatal("cycle errors are never retryable")
	}
	if !errors.Is(ce, ErrCycleDetected) {
		t.Fatal("expected CycleError to unwrap to ErrCycleDetected")
	}
}

func TestInvariantViolationIsCritical(t *testing.T) {
	iv := &InvariantViolation{Component: "graph", Detail: "dangling edge"}
	if GetSeverity(iv) != SeverityCritical {
		t.Fatalf("expected critical severity, got %s", GetSeverity(iv))
	}
}

func TestGetSeverityUnclassifiedIsCritical(t *testing.T) {
	if GetSeverity(errors.New("boom")) != SeverityCritical {
		t.Fatal("expected unclassified error to be treated as critical")
	}
	if GetSeverity(nil) != SeverityLow {
		t.Fatal("expected nil error to be low severity")
	}
}

func TestIsRetryableDefaultsFalse(t *testing.T) {
	if IsRetryable(errors.New("boom")) {
		t.Fatal("expected plain errors to be non-retryable")
	}
}
