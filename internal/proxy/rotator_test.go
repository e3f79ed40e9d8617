package proxy

import (
	"context"
	"testing"
	"time"
)

func TestNext_RoundRobin(t *testing.T) {
	r := New([]string{"a", "b", "c"}, time.Millisecond, time.Millisecond)

	want := []string{"a", "b", "c", "a", "b", "c"}
	for i, w := range want {
		got, err := r.Next(context.Background())
		if err != nil {
			t.Fatalf("Next #%d: %v", i, err)
		}
		if got != w {
			t.Errorf("Next #%d = %q, want %q", i, got, w)
		}
	}
}

func TestNext_EmptyListMeansDirect(t *testing.T) {
	r := New(nil, time.Millisecond, time.Millisecond)

	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}
	got, err := r.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got != Direct {
		t.Errorf("Next = %q, want the direct sentinel", got)
	}
}

func TestNext_HonorsCooldown(t *testing.T) {
	const cooldown = 60 * time.Millisecond
	r := New([]string{"a"}, cooldown, time.Millisecond)

	if _, err := r.Next(context.Background()); err != nil {
		t.Fatalf("Next: %v", err)
	}
	start := time.Now()
	if _, err := r.Next(context.Background()); err != nil {
		t.Fatalf("Next: %v", err)
	}

	// Small scheduling slack: the reuse must wait out most of the cooldown.
	if elapsed := time.Since(start); elapsed < cooldown-10*time.Millisecond {
		t.Errorf("second use of the same proxy after %v, want >= %v", elapsed, cooldown)
	}
}

func TestNext_HonorsPacing(t *testing.T) {
	const pacing = 40 * time.Millisecond
	r := New([]string{"a", "b", "c"}, time.Millisecond, pacing)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := r.Next(context.Background()); err != nil {
			t.Fatalf("Next #%d: %v", i, err)
		}
	}

	// First call is free, the next two wait a pacing interval each.
	if elapsed := time.Since(start); elapsed < 2*pacing-10*time.Millisecond {
		t.Errorf("three calls took %v, want >= %v", elapsed, 2*pacing)
	}
}

func TestNext_CancelledContext(t *testing.T) {
	r := New([]string{"a"}, time.Minute, time.Millisecond)

	if _, err := r.Next(context.Background()); err != nil {
		t.Fatalf("Next: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := r.Next(ctx); err == nil {
		t.Error("Next with a minute-long cooldown returned before the context expired")
	}
}

func TestExtendCooldown_NeverShrinks(t *testing.T) {
	r := New([]string{"a"}, 5*time.Second, time.Second)

	r.ExtendCooldown(8 * time.Second)
	if got := r.Cooldown(); got != 8*time.Second {
		t.Errorf("Cooldown() = %v, want 8s", got)
	}

	r.ExtendCooldown(2 * time.Second)
	if got := r.Cooldown(); got != 8*time.Second {
		t.Errorf("Cooldown() after shrink attempt = %v, want 8s", got)
	}
}

func TestNew_Defaults(t *testing.T) {
	r := New(nil, 0, 0)
	if got := r.Cooldown(); got != DefaultCooldown {
		t.Errorf("Cooldown() = %v, want %v", got, DefaultCooldown)
	}
}
