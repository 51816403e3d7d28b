package mcp

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestWatchParent_StopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx, cancel := context.WithCancel(context.Background())
	WatchParent(ctx, 10*time.Millisecond, cancel)
	cancel()
	time.Sleep(30 * time.Millisecond)
}

func TestWatchParent_CancelsWhenParentChanges(t *testing.T) {
	defer goleak.VerifyNone(t)
	var pid atomic.Int32
	pid.Store(100)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watchParent(ctx, 5*time.Millisecond, func() int { return int(pid.Load()) }, cancel)
	pid.Store(1)

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not canceled after parent change")
	}
}
