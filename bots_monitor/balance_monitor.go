package bots_monitor

// Package bots_monitor delivers the account balance chart to a Telegram chat,
// once on demand or every day at a fixed local time

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"time"

	"account-chart/internal/clients_api/history"
	"account-chart/internal/datefmt"
	"account-chart/internal/features/balance_chart"
	"account-chart/internal/features/currency"
	log "account-chart/internal/infra/log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Sender is the part of *tgbotapi.BotAPI the monitor needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// SendBalanceChart runs the pipeline once and posts the chart to chatID.
// A failed run is reported in the chat as text and returned; no older chart is sent instead.
func SendBalanceChart(ctx context.Context, bot Sender, chatID string, p *balance_chart.Pipeline) error {
	id, err := parseChatID(chatID)
	if err != nil {
		return err
	}

	res, err := p.Run(ctx)
	if err != nil {
		log.LogError("Failed to build balance chart", zap.String("chatID", chatID), zap.Error(err))
		msg := tgbotapi.NewMessage(id, "⚠️ Balance chart unavailable: "+html.EscapeString(err.Error()))
		msg.ParseMode = tgbotapi.ModeHTML
		if _, sendErr := bot.Send(msg); sendErr != nil {
			log.LogError("Failed to send chart error message", zap.Error(sendErr))
		}
		return err
	}

	caption, err := formatBalanceCaption(res.History)
	if err != nil {
		return err
	}

	photo := tgbotapi.NewPhoto(id, tgbotapi.FilePath(res.ChartPath))
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeHTML
	if _, err := bot.Send(photo); err != nil {
		log.LogError("Failed to send balance chart", zap.String("chartPath", res.ChartPath), zap.Error(err))
		msg := tgbotapi.NewMessage(id, caption)
		msg.ParseMode = tgbotapi.ModeHTML
		if _, err := bot.Send(msg); err != nil {
			return fmt.Errorf("failed to send balance message: %w", err)
		}
		return nil
	}

	log.LogSuccess("Balance chart sent", zap.String("chatID", chatID), zap.Int("points", res.History.Len()))
	return nil
}

// RunBalanceMonitor sends the chart every day at hour:minute local time until ctx is done.
func RunBalanceMonitor(ctx context.Context, bot Sender, chatID string, hour, minute int, p *balance_chart.Pipeline) {
	if bot == nil || chatID == "" {
		log.LogWarn("Bot or chat ID missing, balance monitor not started")
		return
	}

	log.LogInfo("Starting Balance Monitor...", zap.String("chatID", chatID))

	for {
		next := nextRun(time.Now(), hour, minute)
		delay := time.Until(next)
		log.LogInfo("Balance chart scheduled", zap.Time("nextSend", next), zap.Duration("delay", delay))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.LogInfo("Balance monitor stopped")
			return
		case <-timer.C:
		}

		if err := SendBalanceChart(ctx, bot, chatID, p); err != nil {
			log.LogWarn("Scheduled balance chart failed", zap.Error(err))
		}
	}
}

// nextRun returns the first hour:minute strictly after now, in now's location.
func nextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func formatBalanceCaption(h *history.BalanceHistory) (string, error) {
	label, value, ok := h.Latest()
	if !ok {
		return "", balance_chart.ErrEmptySeries
	}
	date, err := datefmt.Format(label)
	if err != nil {
		return "", err
	}

	caption := fmt.Sprintf("<b>Account balance</b>\n%s: <b>%s</b>", date, currency.FormatUSD(value))
	if h.Len() > 1 {
		first, err := datefmt.Format(h.Labels[0])
		if err != nil {
			return "", err
		}
		delta := value - h.Values[0]
		sign := ""
		if delta > 0 {
			sign = "+"
		}
		caption += fmt.Sprintf("\nChange since %s: %s%s", first, sign, currency.FormatUSD(delta))
	}
	return caption, nil
}

func parseChatID(chatID string) (int64, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid telegram chat id %q: %w", chatID, err)
	}
	return id, nil
}
