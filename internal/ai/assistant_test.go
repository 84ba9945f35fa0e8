package ai

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBoundedReturnsValue(t *testing.T) {
	got, err := Bounded(context.Background(), time.Second, func(context.Context) (int, error) {
		return 7, nil
	})
	if err != nil || got != 7 {
		t.Fatalf("unexpected result: %d, %v", got, err)
	}
}

func TestBoundedWrapsFailures(t *testing.T) {
	boom := errors.New("boom")
	_, err := Bounded(context.Background(), time.Second, func(context.Context) (string, error) {
		return "", boom
	})
	if !errors.Is(err, ErrUnavailable) || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped failure, got %v", err)
	}
}

func TestBoundedStopsWaitingForStuckCalls(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	_, err := Bounded(context.Background(), 20*time.Millisecond, func(context.Context) (string, error) {
		<-release
		return "late", nil
	})
	if !errors.Is(err, ErrUnavailable) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("call was not bounded, took %v", elapsed)
	}
}
