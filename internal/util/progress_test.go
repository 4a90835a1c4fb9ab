package util

import (
	"testing"
	"time"
)

func TestProgressCounter_RateLimitsReports(t *testing.T) {
	p := NewProgressCounter("pages", time.Hour)
	var reports []int64
	p.report = func(message string, keyvals ...any) {
		if message != "pages" {
			t.Fatalf("unexpected message %q", message)
		}
		reports = append(reports, keyvals[1].(int64))
	}

	for range 10 {
		p.Add(3)
	}
	if p.Count() != 30 {
		t.Fatalf("expected count 30, got %d", p.Count())
	}
	if len(reports) != 1 || reports[0] != 3 {
		t.Fatalf("expected a single report after the first add, got %v", reports)
	}

	p.Done()
	if len(reports) != 2 || reports[1] != 30 {
		t.Fatalf("expected final report with 30, got %v", reports)
	}
}
