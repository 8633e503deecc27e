package bots_monitor

// Telegram chat commands: /balance, /table, /helps
// Only messages from the configured chat are answered

import (
	"bytes"
	"context"
	"html"
	"strconv"

	"account-chart/internal/clients_api/history"
	"account-chart/internal/features/balance_chart"
	"account-chart/internal/features/report"
	log "account-chart/internal/infra/log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// tableRows keeps /table replies under Telegram's 4096 character limit.
const tableRows = 30

const helpText = "" +
	"Commands:\n" +
	"• <code>/balance</code> - balance chart for the account\n" +
	"• <code>/table</code> - latest balances with daily change\n" +
	"• <code>/helps</code> - this message"

// CommandHandler answers chat commands for one account.
type CommandHandler struct {
	Bot      Sender
	ChatID   string
	Pipeline *balance_chart.Pipeline
}

// RunCommandHandler polls updates until ctx is done.
func RunCommandHandler(ctx context.Context, api *tgbotapi.BotAPI, chatID string, p *balance_chart.Pipeline) {
	if api == nil || chatID == "" {
		log.LogWarn("Bot or chat ID missing, command handler not started")
		return
	}

	log.LogInfo("Starting command handler", zap.String("chatID", chatID))

	h := &CommandHandler{Bot: api, ChatID: chatID, Pipeline: p}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			log.LogInfo("Command handler stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				h.Handle(ctx, update.Message)
			}
		}
	}
}

// Handle dispatches one incoming message. Messages from other chats and
// non-command text are ignored.
func (h *CommandHandler) Handle(ctx context.Context, message *tgbotapi.Message) {
	if message.Chat == nil || strconv.FormatInt(message.Chat.ID, 10) != h.ChatID {
		return
	}
	if !message.IsCommand() {
		return
	}

	command := message.Command()
	username := ""
	if message.From != nil {
		username = message.From.UserName
	}
	log.LogDebug("Received command",
		zap.String("command", command),
		zap.String("chatID", h.ChatID),
		zap.String("username", username))

	switch command {
	case "balance", "chart":
		if err := SendBalanceChart(ctx, h.Bot, h.ChatID, h.Pipeline); err != nil {
			log.LogWarn("/balance failed", zap.Error(err))
		}
	case "table":
		h.handleTable(ctx, message)
	case "helps", "help", "start":
		h.reply(message, helpText)
	}
}

func (h *CommandHandler) handleTable(ctx context.Context, message *tgbotapi.Message) {
	hist, err := h.Pipeline.Fetcher.FetchHistory(ctx, h.Pipeline.URL)
	if err != nil {
		log.LogError("Failed to fetch balance history for /table", zap.Error(err))
		h.reply(message, "⚠️ Balance history unavailable: "+html.EscapeString(err.Error()))
		return
	}

	var buf bytes.Buffer
	if err := report.RenderHistoryTable(&buf, tail(hist, tableRows), report.TableOptions{}); err != nil {
		log.LogError("Failed to render balance table", zap.Error(err))
		h.reply(message, "⚠️ "+html.EscapeString(err.Error()))
		return
	}
	h.reply(message, "<pre>"+html.EscapeString(buf.String())+"</pre>")
}

func (h *CommandHandler) reply(message *tgbotapi.Message, text string) {
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyToMessageID = message.MessageID
	if _, err := h.Bot.Send(msg); err != nil {
		log.LogError("Failed to send reply", zap.Error(err))
	}
}

// tail returns the last n points of h, sharing the underlying slices.
func tail(h *history.BalanceHistory, n int) *history.BalanceHistory {
	if h.Len() <= n {
		return h
	}
	start := h.Len() - n
	return &history.BalanceHistory{
		Labels:   h.Labels[start:],
		Values:   h.Values[start:],
		ChartMax: h.ChartMax,
		StepVal:  h.StepVal,
	}
}
