package notify

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"jobmate/aggregator-service/internal/ingest"
)

// maxListedJobs bounds the number of postings listed in one message.
const maxListedJobs = 10

// Telegram sends a batch summary to a chat.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram connects to the Bot API with token.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	return NewTelegramWithClient(token, tgbotapi.APIEndpoint, http.DefaultClient, chatID)
}

// NewTelegramWithClient is NewTelegram against a custom endpoint, in the
// tgbotapi.APIEndpoint format.
func NewTelegramWithClient(token, endpoint string, client *http.Client, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

func (t *Telegram) Notify(_ context.Context, report ingest.BatchReport) error {
	msg := tgbotapi.NewMessage(t.chatID, Summary(report))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// Summary renders report as a Telegram HTML message.
func Summary(report ingest.BatchReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🤖 <b>%d new AI jobs in Denmark</b>\n", report.Stored)
	fmt.Fprintf(&b, "received %d · duplicates %d · filtered %d · failed %d\n",
		report.Received, report.Duplicates+report.InBatchDupes, report.Filtered(), report.Failed)

	for i, j := range report.StoredJobs {
		if i == maxListedJobs {
			fmt.Fprintf(&b, "\n… and %d more", len(report.StoredJobs)-maxListedJobs)
			break
		}
		fmt.Fprintf(&b, "\n🔥 <a href=\"%s\">%s</a> · %s (%.2f)",
			html.EscapeString(j.URL), html.EscapeString(j.Title), html.EscapeString(j.Company), j.Score)
	}
	return b.String()
}
