package cli

import (
	"context"
	"io"
	"testing"
	"time"
)

func quietSpinner(ctx context.Context, message string) *Spinner {
	s := newSpinnerWithContext(ctx, message)
	s.out = io.Discard
	return s
}

func TestSpinnerStartStop(t *testing.T) {
	s := quietSpinner(context.Background(), "working...")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	if s.Cancelled() == false {
		// Stop cancels the internal context, so this is always true after Stop.
		t.Error("spinner context should be cancelled after Stop")
	}
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	s := quietSpinner(context.Background(), "working...")
	// The animation goroutine never ran; Stop must not block.
	close(s.stopped)
	s.Stop()
}

func TestSpinnerParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := quietSpinner(ctx, "working...")
	s.Start()

	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should report cancellation from the parent context")
	}
	s.Stop()
}

func TestSpinnerDoubleStop(t *testing.T) {
	s := quietSpinner(context.Background(), "working...")
	s.Start()
	s.Stop()
	s.Stop() // must be idempotent
}
