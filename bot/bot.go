// Package bot wires the Telegram transport to the search, comparison,
// preference and document-analysis features.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/Deborah-9/PaperPilot/arxiv"
	"github.com/Deborah-9/PaperPilot/compare"
	"github.com/Deborah-9/PaperPilot/internal/telegramutil"
	"github.com/Deborah-9/PaperPilot/internal/worker"
	"github.com/Deborah-9/PaperPilot/llm"
	"github.com/Deborah-9/PaperPilot/notify"
	"github.com/Deborah-9/PaperPilot/prefs"
	"github.com/Deborah-9/PaperPilot/session"
	"github.com/Deborah-9/PaperPilot/taxonomy"
)

const (
	defaultMaxConcurrent = 8
	updateTimeout        = 30
	jobQueueSize         = 16

	// Telegram allows ~30 messages per second bot-wide.
	sendRatePerSecond = 25

	// Idle chat workers retire after this long, matching the session
	// registry's eviction horizon.
	workerIdleTimeout = 2 * time.Hour
)

// Deps are the collaborators a Bot needs.
type Deps struct {
	API      *tgbotapi.BotAPI
	LLM      llm.Client
	ArXiv    *arxiv.Client
	Taxonomy *taxonomy.Taxonomy
	Prefs    *prefs.Store
	Notify   *notify.Store
	Logger   *slog.Logger
}

// Options tune runtime behavior.
type Options struct {
	Model           string
	RequiredChannel string // empty disables the membership guard
	MaxConcurrent   int
	DocCacheDir     string
}

// Bot is the long-lived update loop plus all per-chat state.
type Bot struct {
	api      *tgbotapi.BotAPI
	logger   *slog.Logger
	llm      llm.Client
	search   *arxiv.Client
	tax      *taxonomy.Taxonomy
	prefs    *prefs.Store
	notify   *notify.Store
	sessions *session.Registry
	reporter *compare.Reporter
	guard    *Guard

	model    string
	docCache string

	sendLimiter *rate.Limiter

	mu      sync.Mutex
	workers map[int64]chan tgbotapi.Update
	sem     chan struct{}
}

// New assembles a Bot. The update loop starts with Run.
func New(d Deps, opts Options) (*Bot, error) {
	if d.API == nil {
		return nil, fmt.Errorf("bot: telegram api is required")
	}
	if d.LLM == nil {
		return nil, fmt.Errorf("bot: llm client is required")
	}
	if d.ArXiv == nil {
		return nil, fmt.Errorf("bot: arxiv client is required")
	}
	maxConcurrent := opts.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	if opts.DocCacheDir != "" {
		if err := telegramutil.EnsureSecureCacheDir(opts.DocCacheDir); err != nil {
			return nil, fmt.Errorf("bot: document cache dir: %w", err)
		}
	}

	b := &Bot{
		api:         d.API,
		logger:      d.Logger,
		llm:         d.LLM,
		search:      d.ArXiv,
		tax:         d.Taxonomy,
		prefs:       d.Prefs,
		notify:      d.Notify,
		sessions:    session.NewRegistry(d.Logger),
		reporter:    &compare.Reporter{LLM: d.LLM, Model: opts.Model},
		model:       opts.Model,
		docCache:    opts.DocCacheDir,
		sendLimiter: rate.NewLimiter(rate.Limit(sendRatePerSecond), sendRatePerSecond),
		workers:     make(map[int64]chan tgbotapi.Update),
		sem:         make(chan struct{}, maxConcurrent),
	}
	if opts.RequiredChannel != "" {
		b.guard = &Guard{API: d.API, Channel: opts.RequiredChannel, Logger: d.Logger}
	}
	return b, nil
}

// Run polls for updates until ctx is cancelled. Each chat's updates
// are handled in order by a dedicated worker; a global semaphore caps
// concurrency across chats.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = updateTimeout
	updates := b.api.GetUpdatesChan(cfg)

	go b.sessions.RunEviction(ctx, 0)
	if b.docCache != "" {
		go b.runCachePrune(ctx)
	}

	b.logger.Info("telegram_start", "username", b.api.Self.UserName)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("telegram_stop")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			chatID := updateChatID(&update)
			if chatID == 0 {
				continue
			}
			if err := b.dispatch(ctx, chatID, update); err != nil {
				b.logger.Warn("update_enqueue_failed", "chat_id", chatID, "error", err.Error())
			}
		}
	}
}

// dispatch hands the update to the chat's worker, starting one when
// needed. The fast path enqueues while still holding the lock so an
// idle worker cannot retire its channel in between; the slow path (full
// queue) blocks outside the lock, safe because a non-empty channel is
// never retired.
func (b *Bot) dispatch(ctx context.Context, chatID int64, update tgbotapi.Update) error {
	b.mu.Lock()
	jobs := b.workerForLocked(ctx, chatID)
	select {
	case jobs <- update:
		b.mu.Unlock()
		return nil
	default:
	}
	b.mu.Unlock()
	return worker.Enqueue(ctx, jobs, update)
}

func (b *Bot) workerForLocked(ctx context.Context, chatID int64) chan tgbotapi.Update {
	if jobs, ok := b.workers[chatID]; ok {
		return jobs
	}
	jobs := make(chan tgbotapi.Update, jobQueueSize)
	b.workers[chatID] = jobs
	worker.Start(worker.StartOptions[tgbotapi.Update]{
		Ctx:  ctx,
		Sem:  b.sem,
		Jobs: jobs,
		Handle: func(workerCtx context.Context, update tgbotapi.Update) {
			if err := b.handleUpdate(workerCtx, &update); err != nil {
				if workerCtx.Err() != nil {
					return
				}
				b.logger.Error("update_failed", "chat_id", chatID, "error", err.Error())
				b.sendPlain(workerCtx, chatID, "Something went wrong, please try again.")
			}
		},
		IdleTimeout: workerIdleTimeout,
		OnIdle:      func() bool { return b.retireWorker(chatID, jobs) },
	})
	return jobs
}

// retireWorker deregisters an idle chat's job channel so its goroutine
// can exit. Declines when an update slipped in after the idle timer
// fired; the channel stays registered and the worker keeps draining it.
func (b *Bot) retireWorker(chatID int64, jobs chan tgbotapi.Update) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(jobs) > 0 {
		return false
	}
	delete(b.workers, chatID)
	return true
}

func (b *Bot) runCachePrune(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			telegramutil.PruneCacheDir(b.docCache, 24*time.Hour, 200)
		}
	}
}

func updateChatID(u *tgbotapi.Update) int64 {
	switch {
	case u.Message != nil:
		return u.Message.Chat.ID
	case u.CallbackQuery != nil && u.CallbackQuery.Message != nil:
		return u.CallbackQuery.Message.Chat.ID
	default:
		return 0
	}
}

// send pushes one message through the bot-wide rate limiter. A
// "message is not modified" response from an edit is a no-op, not an
// error.
func (b *Bot) send(ctx context.Context, c tgbotapi.Chattable) error {
	if err := b.sendLimiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := b.api.Send(c); err != nil {
		if strings.Contains(err.Error(), "message is not modified") {
			return nil
		}
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// sendMarkdown sends MarkdownV2 text, splitting past the length limit.
func (b *Bot) sendMarkdown(ctx context.Context, chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	chunks := telegramutil.SplitMessage(text)
	for i, chunk := range chunks {
		msg := tgbotapi.NewMessage(chatID, chunk)
		msg.ParseMode = tgbotapi.ModeMarkdownV2
		msg.DisableWebPagePreview = true
		if keyboard != nil && i == len(chunks)-1 {
			msg.ReplyMarkup = keyboard
		}
		if err := b.send(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) sendPlain(ctx context.Context, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if err := b.send(ctx, msg); err != nil {
		b.logger.Warn("send_failed", "chat_id", chatID, "error", err.Error())
	}
}

// editMarkdown rewrites a menu message in place.
func (b *Bot) editMarkdown(ctx context.Context, chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	edit.DisableWebPagePreview = true
	if keyboard != nil {
		edit.ReplyMarkup = keyboard
	}
	return b.send(ctx, edit)
}

// SendDigest delivers a notification digest; it satisfies
// notify.Sender.
func (b *Bot) SendDigest(ctx context.Context, chatID int64, papers []arxiv.Paper) error {
	return b.sendMarkdown(ctx, chatID, formatDigest(papers), nil)
}
