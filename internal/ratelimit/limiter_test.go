package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestWait_PausesForInterval(t *testing.T) {
	l := New(20 * time.Millisecond)
	start := time.Now()
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("err=%v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("returned after %v, want at least 20ms", elapsed)
	}
}

func TestWait_ZeroIntervalReturnsImmediately(t *testing.T) {
	l := New(0)
	start := time.Now()
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("err=%v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Millisecond {
		t.Fatalf("zero interval took %v", elapsed)
	}
}

func TestWait_NilLimiterIsNoop(t *testing.T) {
	var l *Limiter
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("err=%v", err)
	}
}

func TestWait_CancelledContext(t *testing.T) {
	l := New(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Wait(ctx); err == nil {
		t.Fatalf("expected context error")
	}
}
