package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Deborah-9/PaperPilot/arxiv"
)

// Searcher is the slice of the arXiv client the checker needs.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int, sort arxiv.SortCriterion) ([]arxiv.Paper, error)
}

// Sender delivers a batch of new papers to a chat.
type Sender interface {
	SendDigest(ctx context.Context, chatID int64, papers []arxiv.Paper) error
}

const (
	defaultCheckInterval = time.Hour
	digestMaxPapers      = 5
)

// Checker periodically scans subscriptions and delivers digests of
// newly submitted papers.
type Checker struct {
	Store    *Store
	Search   Searcher
	Send     Sender
	Logger   *slog.Logger
	Interval time.Duration

	now func() time.Time
}

// Run blocks until ctx is cancelled, checking on a fixed interval. One
// failing subscription never stops the loop.
func (c *Checker) Run(ctx context.Context) {
	interval := c.Interval
	if interval <= 0 {
		interval = defaultCheckInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.Logger.Info("notify_checker_start", "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			c.Logger.Info("notify_checker_stop")
			return
		case <-ticker.C:
			c.CheckAll(ctx)
		}
	}
}

// CheckAll runs one pass over every due subscription.
func (c *Checker) CheckAll(ctx context.Context) {
	subs, err := c.Store.All()
	if err != nil {
		c.Logger.Error("notify_list_failed", "error", err.Error())
		return
	}
	now := c.clock()
	for _, sub := range subs {
		if !sub.Due(now) {
			continue
		}
		if err := c.deliver(ctx, sub, now); err != nil {
			c.Logger.Error("notify_deliver_failed", "user_id", sub.UserID, "error", err.Error())
		}
	}
}

func (c *Checker) deliver(ctx context.Context, sub *Subscription, now time.Time) error {
	query := sub.Query()
	if query == "" {
		return nil
	}
	papers, err := c.Search.Search(ctx, query, digestMaxPapers, arxiv.SortSubmittedDesc)
	if errors.Is(err, arxiv.ErrNoResults) {
		// Nothing new; push the window forward so the user is not
		// re-checked every pass.
		sub.LastSent = now
		return c.Store.Save(sub)
	}
	if err != nil {
		return err
	}

	// Only papers submitted since the last delivery.
	fresh := papers[:0:0]
	for _, p := range papers {
		if p.Published.After(sub.LastSent) {
			fresh = append(fresh, p)
		}
	}
	if len(fresh) > 0 {
		if err := c.Send.SendDigest(ctx, sub.ChatID, fresh); err != nil {
			return err
		}
		c.Logger.Info("notify_digest_sent", "user_id", sub.UserID, "papers", len(fresh))
	}
	sub.LastSent = now
	return c.Store.Save(sub)
}

func (c *Checker) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}
