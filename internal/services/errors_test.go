package services_test

import (
	"errors"
	"strings"
	"testing"

	"shoebox/internal/queue"
	"shoebox/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "resolve", "extract", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"resolve", "extract", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "scan", "walk", "unreadable entry", errors.New("io"))
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker for nil input, got %v", err)
	}
}

func TestFailureStatusMapping(t *testing.T) {
	validationErr := services.Wrap(services.ErrValidation, "match", "prepare", "invalid", nil)
	if status := services.FailureStatus(validationErr); status != queue.StatusReview {
		t.Fatalf("expected review for validation error, got %s", status)
	}

	configErr := services.Wrap(services.ErrConfiguration, "resolve", "prepare", "exiftool missing", nil)
	if status := services.FailureStatus(configErr); status != queue.StatusReview {
		t.Fatalf("expected review for configuration error, got %s", status)
	}

	ledgerErr := services.Wrap(services.ErrLedgerWrite, "resolve", "flush", "temp re-parse failed", errors.New("bad json"))
	if status := services.FailureStatus(ledgerErr); status != queue.StatusFailed {
		t.Fatalf("expected failed for ledger write error, got %s", status)
	}

	transientErr := services.Wrap(services.ErrTransient, "cluster", "report", "write failed", errors.New("io"))
	if status := services.FailureStatus(transientErr); status != queue.StatusFailed {
		t.Fatalf("expected failed for transient error, got %s", status)
	}

	if status := services.FailureStatus(nil); status != queue.StatusFailed {
		t.Fatalf("expected failed for nil error, got %s", status)
	}
}

func TestDomainMarkersAreDistinct(t *testing.T) {
	markers := []error{
		services.ErrRecoverableParse,
		services.ErrConflictingGeotag,
		services.ErrLedgerWrite,
	}
	for i, a := range markers {
		for j, b := range markers {
			if i != j && errors.Is(a, b) {
				t.Fatalf("marker %v unexpectedly matches %v", a, b)
			}
		}
	}
}
