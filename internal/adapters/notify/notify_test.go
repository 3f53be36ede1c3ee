package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/arbot/internal/domain"
)

func TestConsole_SendAlerts(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf)

	err := c.SendAlerts(context.Background(), []string{
		"drawdown 20.0% exceeds 15.0% threshold",
		"execution success rate 10.0% below 30.0% threshold",
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "ALERT: drawdown 20.0%")
	assert.Contains(t, out, "ALERT: execution success rate")
}

func TestConsole_PrintQueue(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf)

	c.PrintQueue([]domain.QueueItem{{
		ID:     3,
		Status: domain.StatusPending,
		Opportunity: domain.Opportunity{
			Pair:      domain.MarketPair{EventID: "evt-1", A: domain.Market{Question: "Will X win?"}},
			Result:    domain.NewArbitrageResult(0.80),
			ProfitUSD: 20,
		},
		CreatedAt: time.Now().UTC(),
	}})

	out := buf.String()
	assert.Contains(t, out, "Will X win?")
	assert.Contains(t, out, "pending")
	assert.Contains(t, out, "0.8000")
}

func TestConsole_PrintQueueEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleWriter(&buf).PrintQueue(nil)
	assert.Contains(t, buf.String(), "queue is empty")
}

func TestConsole_PrintStatus(t *testing.T) {
	var buf bytes.Buffer
	m := domain.Metrics{OpportunitiesCount: 4, ExecutionsCount: 2, ExecutionsSuccess: 2, TotalPnL: 12.5, PeakPnL: 12.5}
	NewConsoleWriter(&buf).PrintStatus(m, domain.DefaultModeState())

	out := buf.String()
	assert.Contains(t, out, "mode=paper trigger=manual dry_run=true")
	assert.Contains(t, out, "100.0%")
	assert.Contains(t, out, "$12.50")
}

type fakeBot struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func TestTelegram_BatchesIntoSingleMessage(t *testing.T) {
	bot := &fakeBot{}
	tg := &Telegram{bot: bot, chatID: 42}

	err := tg.SendAlerts(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	require.Len(t, bot.sent, 1)

	msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Contains(t, msg.Text, "• first")
	assert.Contains(t, msg.Text, "• second")
}

func TestTelegram_NoMessagesNoSend(t *testing.T) {
	bot := &fakeBot{}
	tg := &Telegram{bot: bot, chatID: 42}

	require.NoError(t, tg.SendAlerts(context.Background(), nil))
	assert.Empty(t, bot.sent)
}

func TestTelegram_SendErrorWrapped(t *testing.T) {
	bot := &fakeBot{err: errors.New("chat not found")}
	tg := &Telegram{bot: bot, chatID: 42}

	err := tg.SendAlerts(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notify.SendAlerts")
}
