package mcp

import (
	"context"
	"os"
	"time"

	"cbthelper/internal/logging"
)

// DefaultParentPoll is how often WatchParent checks the parent pid.
var DefaultParentPoll = 2 * time.Second

// WatchParent calls cancel when the parent process goes away (the client
// closed or restarted), so a stdio server never outlives its client. It
// polls os.Getppid and never touches stdin, which the stdio transport owns.
// The goroutine exits when ctx is done.
func WatchParent(ctx context.Context, interval time.Duration, cancel context.CancelFunc) {
	if interval <= 0 {
		interval = DefaultParentPoll
	}
	watchParent(ctx, interval, os.Getppid, cancel)
}

func watchParent(ctx context.Context, interval time.Duration, ppid func() int, cancel context.CancelFunc) {
	start := ppid()
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if ppid() != start {
					logging.New("mcp").Warn("parent process exited, shutting down", "parent_pid", start)
					cancel()
					return
				}
			}
		}
	}()
}
