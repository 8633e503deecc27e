package commands

// Command to run the Telegram bot
// Sends the balance chart daily at telegram.send_time and answers /balance, /table, /helps
// Implements graceful shutdown for proper termination

import (
	"fmt"
	"sync"
	"time"

	"account-chart/bots_monitor"
	"account-chart/internal/infra/config"
	logging "account-chart/internal/infra/log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot (daily chart + chat commands)",
	Long:  `Run the Telegram bot: the balance chart is posted every day at --send-time and on /balance.`,
	RunE:  runBot,
}

func init() {
	flags := botCmd.Flags()
	addHistoryFlags(flags)
	flags.String("chat-id", "", "Telegram chat to post to (env: TELEGRAM_CHAT_ID)")
	flags.String("send-time", "", "daily send time HH:MM, local (default 10:00)")
	flags.String("out", "", "chart output directory (default etc/charts)")
	flags.String("data-dir", "", "snapshot directory (default data_out)")
	flags.Bool("send-now", false, "send one chart at startup")
}

func runBot(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cmd.Flags())
	if err != nil {
		logging.LogError("Failed to load config", zap.Error(err))
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ValidateHistory(); err != nil {
		return err
	}
	if err := cfg.ValidateTelegram(); err != nil {
		return err
	}
	hour, minute, _ := config.ParseSendTime(cfg.Telegram.SendTime)

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logging.LogError("Failed to initialize bot", zap.Error(err))
		return fmt.Errorf("failed to initialize bot: %w", err)
	}
	logging.LogSuccess("Bot authorized", zap.String("username", api.Self.UserName))

	ctx := cmd.Context()
	p := newPipeline(cfg, newHistoryClient(cfg))
	p.SnapshotDir = cfg.App.DataDir

	if sendNow, _ := cmd.Flags().GetBool("send-now"); sendNow {
		if err := bots_monitor.SendBalanceChart(ctx, api, cfg.Telegram.ChatID, p); err != nil {
			logging.LogWarn("Startup chart failed", zap.Error(err))
		}
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		bots_monitor.RunBalanceMonitor(ctx, api, cfg.Telegram.ChatID, hour, minute, p)
	}()
	go func() {
		defer wg.Done()
		bots_monitor.RunCommandHandler(ctx, api, cfg.Telegram.ChatID, p)
	}()

	logging.LogSuccess("Bot is running", zap.String("sendTime", cfg.Telegram.SendTime))

	<-ctx.Done()
	logging.LogInfo("Shutdown signal received, gracefully stopping...")

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.LogSuccess("Bot stopped gracefully")
	case <-time.After(10 * time.Second):
		logging.LogWarn("Timeout waiting for monitors to stop, forcing shutdown")
	}

	return nil
}
