// Package worker runs a serial job loop per key (chat), bounded by a shared
// semaphore. One worker drains one job channel, so jobs for the same chat
// never overlap even when many chats are active.
package worker

import (
	"context"
	"time"
)

type StartOptions[J any] struct {
	Ctx    context.Context
	Sem    chan struct{}
	Jobs   <-chan J
	Handle func(context.Context, J)

	// IdleTimeout, when positive, asks OnIdle whether to stop after the
	// worker has seen no jobs for that long. OnIdle must deregister the
	// job channel before agreeing, or confirm work is still queued by
	// returning false.
	IdleTimeout time.Duration
	OnIdle      func() bool
}

func Start[J any](opts StartOptions[J]) {
	go func() {
		var idle <-chan time.Time
		var timer *time.Timer
		if opts.IdleTimeout > 0 && opts.OnIdle != nil {
			timer = time.NewTimer(opts.IdleTimeout)
			defer timer.Stop()
			idle = timer.C
		}
		for {
			select {
			case <-opts.Ctx.Done():
				return
			case <-idle:
				if opts.OnIdle() {
					return
				}
				timer.Reset(opts.IdleTimeout)
			case job, ok := <-opts.Jobs:
				if !ok {
					return
				}
				select {
				case opts.Sem <- struct{}{}:
				case <-opts.Ctx.Done():
					return
				}
				func() {
					defer func() { <-opts.Sem }()
					opts.Handle(opts.Ctx, job)
				}()
				if timer != nil {
					if !timer.Stop() {
						select {
						case <-timer.C:
						default:
						}
					}
					timer.Reset(opts.IdleTimeout)
				}
			}
		}
	}()
}

func Enqueue[J any](ctx context.Context, jobs chan<- J, job J) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case jobs <- job:
		return nil
	}
}
