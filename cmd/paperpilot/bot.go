package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Deborah-9/PaperPilot/arxiv"
	"github.com/Deborah-9/PaperPilot/bot"
	"github.com/Deborah-9/PaperPilot/internal/logutil"
	"github.com/Deborah-9/PaperPilot/internal/statepaths"
	"github.com/Deborah-9/PaperPilot/notify"
	"github.com/Deborah-9/PaperPilot/prefs"
	"github.com/Deborah-9/PaperPilot/providers/openai"
	"github.com/Deborah-9/PaperPilot/taxonomy"
)

func newBotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd.Context())
		},
	}

	cmd.Flags().String("telegram-bot-token", "", "Telegram bot token.")
	cmd.Flags().String("openai-api-key", "", "OpenAI API key.")
	cmd.Flags().String("openai-endpoint", "", "OpenAI-compatible endpoint (optional).")
	cmd.Flags().String("model", "", "Chat model for summaries and comparisons.")
	cmd.Flags().String("required-channel", "", "Channel users must join before using the bot (optional).")
	cmd.Flags().Int("max-concurrent", 0, "Max chats handled concurrently.")
	cmd.Flags().Duration("notify-interval", time.Hour, "How often to check notification subscriptions.")

	_ = viper.BindPFlag("telegram.bot_token", cmd.Flags().Lookup("telegram-bot-token"))
	_ = viper.BindPFlag("openai.api_key", cmd.Flags().Lookup("openai-api-key"))
	_ = viper.BindPFlag("openai.endpoint", cmd.Flags().Lookup("openai-endpoint"))
	_ = viper.BindPFlag("openai.model", cmd.Flags().Lookup("model"))
	_ = viper.BindPFlag("telegram.required_channel", cmd.Flags().Lookup("required-channel"))
	_ = viper.BindPFlag("bot.max_concurrent", cmd.Flags().Lookup("max-concurrent"))
	_ = viper.BindPFlag("notify.check_interval", cmd.Flags().Lookup("notify-interval"))

	return cmd
}

func runBot(ctx context.Context) error {
	logger, err := logutil.LoggerFromViper()
	if err != nil {
		return err
	}

	token := strings.TrimSpace(viper.GetString("telegram.bot_token"))
	if token == "" {
		return fmt.Errorf("missing telegram.bot_token (set via --telegram-bot-token or %s_TELEGRAM_BOT_TOKEN)", envPrefix)
	}
	apiKey := strings.TrimSpace(viper.GetString("openai.api_key"))
	if apiKey == "" {
		return fmt.Errorf("missing openai.api_key (set via --openai-api-key or %s_OPENAI_API_KEY)", envPrefix)
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return fmt.Errorf("telegram auth: %w", err)
	}

	tax, err := taxonomy.Load()
	if err != nil {
		return err
	}

	prefStore := prefs.NewStore(statepaths.PreferencesDir())
	notifyStore := notify.NewStore(statepaths.NotificationsDir())
	arxivClient := arxiv.NewClient()
	llmClient := openai.New(viper.GetString("openai.endpoint"), apiKey)

	b, err := bot.New(bot.Deps{
		API:      api,
		LLM:      llmClient,
		ArXiv:    arxivClient,
		Taxonomy: tax,
		Prefs:    prefStore,
		Notify:   notifyStore,
		Logger:   logger,
	}, bot.Options{
		Model:           viper.GetString("openai.model"),
		RequiredChannel: viper.GetString("telegram.required_channel"),
		MaxConcurrent:   viper.GetInt("bot.max_concurrent"),
		DocCacheDir:     statepaths.DocumentCacheDir(),
	})
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checker := &notify.Checker{
		Store:    notifyStore,
		Search:   arxivClient,
		Send:     b,
		Logger:   logger,
		Interval: viper.GetDuration("notify.check_interval"),
	}
	go checker.Run(runCtx)

	if err := b.Run(runCtx); err != nil && runCtx.Err() == nil {
		return err
	}
	return nil
}
