package cancel

import (
	"context"
	"testing"
)

func TestRegisterAndRelease(t *testing.T) {
	r := NewRegistry()
	ctx, release := r.Register(context.Background(), "job-1")

	if r.Active() != 1 {
		t.Fatalf("active = %d, want 1", r.Active())
	}
	select {
	case <-ctx.Done():
		t.Fatal("context cancelled before release")
	default:
	}

	release()
	if r.Active() != 0 {
		t.Errorf("active after release = %d, want 0", r.Active())
	}
	if ctx.Err() == nil {
		t.Error("release did not cancel the context")
	}
}

func TestCancelByToken(t *testing.T) {
	r := NewRegistry()
	ctx, release := r.Register(context.Background(), "job-1")
	defer release()

	if !r.Cancel("job-1") {
		t.Fatal("Cancel = false for a live token")
	}
	if ctx.Err() != context.Canceled {
		t.Errorf("ctx.Err() = %v, want context.Canceled", ctx.Err())
	}
	if r.Cancel("job-1") {
		t.Error("second Cancel = true, want false")
	}
}

func TestReregisterCancelsPrevious(t *testing.T) {
	r := NewRegistry()
	first, releaseFirst := r.Register(context.Background(), "job-1")
	second, releaseSecond := r.Register(context.Background(), "job-1")
	defer releaseSecond()

	if first.Err() != context.Canceled {
		t.Error("first job not cancelled by re-registration")
	}
	if second.Err() != nil {
		t.Error("second job cancelled prematurely")
	}

	// The first job's late release must not unbind the second job.
	releaseFirst()
	if r.Active() != 1 {
		t.Errorf("active = %d, want 1 after stale release", r.Active())
	}
	if second.Err() != nil {
		t.Error("stale release cancelled the wrong context")
	}
}

func TestEmptyToken(t *testing.T) {
	r := NewRegistry()
	parent := context.Background()
	ctx, release := r.Register(parent, "")
	if ctx != parent {
		t.Error("empty token should return the parent context")
	}
	release()
	if r.Active() != 0 {
		t.Errorf("active = %d, want 0", r.Active())
	}
}
