package bots_monitor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"account-chart/internal/clients_api/history"
	"account-chart/internal/features/balance_chart"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type recordingSender struct {
	sent    []tgbotapi.Chattable
	failFor func(tgbotapi.Chattable) bool
}

func (r *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	r.sent = append(r.sent, c)
	if r.failFor != nil && r.failFor(c) {
		return tgbotapi.Message{}, errors.New("telegram: Bad Request")
	}
	return tgbotapi.Message{MessageID: len(r.sent)}, nil
}

type fakeFetcher struct {
	h   *history.BalanceHistory
	err error
}

func (f fakeFetcher) FetchHistory(context.Context, string) (*history.BalanceHistory, error) {
	return f.h, f.err
}

type fakeRenderer struct{}

func (fakeRenderer) RenderLineChart(cfg balance_chart.LineChartConfig) (string, error) {
	return "etc/charts/" + cfg.Canvas + ".png", nil
}

func testHistory() *history.BalanceHistory {
	return &history.BalanceHistory{
		Labels: []string{"01-01-2024", "01-22-2024"},
		Values: []float64{1000, 1325.4},
	}
}

func TestSendBalanceChart_Photo(t *testing.T) {
	sender := &recordingSender{}
	p := &balance_chart.Pipeline{Fetcher: fakeFetcher{h: testHistory()}, Renderer: fakeRenderer{}}

	if err := SendBalanceChart(context.Background(), sender, "-100123", p); err != nil {
		t.Fatalf("SendBalanceChart: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}
	photo, ok := sender.sent[0].(tgbotapi.PhotoConfig)
	if !ok {
		t.Fatalf("sent %T, want PhotoConfig", sender.sent[0])
	}
	if photo.ChatID != -100123 {
		t.Errorf("ChatID = %d", photo.ChatID)
	}
	if photo.File != tgbotapi.FilePath("etc/charts/account_history_chart.png") {
		t.Errorf("File = %v", photo.File)
	}
	for _, want := range []string{"January 22nd, 2024", "$1,325.40", "Change since January 1st, 2024: +$325.40"} {
		if !strings.Contains(photo.Caption, want) {
			t.Errorf("caption %q missing %q", photo.Caption, want)
		}
	}
}

func TestSendBalanceChart_PhotoFailsFallsBackToText(t *testing.T) {
	sender := &recordingSender{failFor: func(c tgbotapi.Chattable) bool {
		_, isPhoto := c.(tgbotapi.PhotoConfig)
		return isPhoto
	}}
	p := &balance_chart.Pipeline{Fetcher: fakeFetcher{h: testHistory()}, Renderer: fakeRenderer{}}

	if err := SendBalanceChart(context.Background(), sender, "42", p); err != nil {
		t.Fatalf("SendBalanceChart: %v", err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("sent %d messages, want 2", len(sender.sent))
	}
	if _, ok := sender.sent[1].(tgbotapi.MessageConfig); !ok {
		t.Errorf("fallback is %T, want MessageConfig", sender.sent[1])
	}
}

func TestSendBalanceChart_FetchErrorReported(t *testing.T) {
	sender := &recordingSender{}
	boom := errors.New("history fetch failed: http error (503)")
	p := &balance_chart.Pipeline{Fetcher: fakeFetcher{err: boom}, Renderer: fakeRenderer{}}

	err := SendBalanceChart(context.Background(), sender, "42", p)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}
	msg, ok := sender.sent[0].(tgbotapi.MessageConfig)
	if !ok || !strings.Contains(msg.Text, "unavailable") {
		t.Errorf("error message = %+v", sender.sent[0])
	}
}

func TestSendBalanceChart_BadChatID(t *testing.T) {
	p := &balance_chart.Pipeline{Fetcher: fakeFetcher{h: testHistory()}, Renderer: fakeRenderer{}}
	if err := SendBalanceChart(context.Background(), &recordingSender{}, "@channel", p); err == nil {
		t.Error("expected error for non-numeric chat id")
	}
}

func TestNextRun(t *testing.T) {
	loc := time.FixedZone("test", 3*3600)
	now := time.Date(2024, 5, 10, 9, 30, 0, 0, loc)

	if got := nextRun(now, 10, 0); !got.Equal(time.Date(2024, 5, 10, 10, 0, 0, 0, loc)) {
		t.Errorf("later today: %v", got)
	}
	if got := nextRun(now, 9, 30); !got.Equal(time.Date(2024, 5, 11, 9, 30, 0, 0, loc)) {
		t.Errorf("same minute rolls to tomorrow: %v", got)
	}
	if got := nextRun(now, 8, 0); !got.Equal(time.Date(2024, 5, 11, 8, 0, 0, 0, loc)) {
		t.Errorf("earlier today rolls to tomorrow: %v", got)
	}
}

func TestRunBalanceMonitor_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p := &balance_chart.Pipeline{Fetcher: fakeFetcher{h: testHistory()}, Renderer: fakeRenderer{}}

	go func() {
		RunBalanceMonitor(ctx, &recordingSender{}, "42", 3, 0, p)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop after cancel")
	}
}
