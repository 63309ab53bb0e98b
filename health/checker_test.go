package health

import (
	"context"
	"errors"
	"testing"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusHealthy, "healthy"},
		{StatusDegraded, "degraded"},
		{StatusUnhealthy, "unhealthy"},
		{Status(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestResultConstructors(t *testing.T) {
	h := Healthy("all good")
	if h.Status != StatusHealthy || h.Message != "all good" || h.Timestamp.IsZero() {
		t.Errorf("Healthy() = %+v", h)
	}

	d := Degraded("slow")
	if d.Status != StatusDegraded {
		t.Errorf("Degraded().Status = %v", d.Status)
	}

	wantErr := errors.New("boom")
	u := Unhealthy("down", wantErr)
	if u.Status != StatusUnhealthy || !errors.Is(u.Error, wantErr) {
		t.Errorf("Unhealthy() = %+v", u)
	}

	withDetails := h.WithDetails(map[string]any{"entries": 3})
	if withDetails.Details["entries"] != 3 {
		t.Errorf("WithDetails lost the details map")
	}
}

func TestCheckerFunc(t *testing.T) {
	called := false
	checker := NewCheckerFunc("custom", func(ctx context.Context) Result {
		called = true
		return Healthy("ok")
	})

	if checker.Name() != "custom" {
		t.Errorf("Name() = %q, want custom", checker.Name())
	}

	result := checker.Check(context.Background())
	if !called {
		t.Error("check function was not invoked")
	}
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", result.Status)
	}
}
