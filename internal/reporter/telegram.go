package reporter

import (
	"fmt"
	"html"
	"strings"

	"remote-jobs-harvester/internal/config"
	"remote-jobs-harvester/internal/scraper"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxSkippedListed keeps the message under Telegram's size limit
const maxSkippedListed = 20

type TelegramReporter struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramReporter(cfg *config.Config) (*TelegramReporter, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}

	//turn this on in case of debug
	//bot.Debug = true

	return &TelegramReporter{
		bot:    bot,
		chatID: cfg.TelegramChatID,
	}, nil
}

func (t *TelegramReporter) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "HTML" //use HTML for bold/italic
	_, err := t.bot.Send(msg)
	return err
}

func (t *TelegramReporter) SendSummary(sum scraper.Summary, outputPath string) error {
	return t.SendMessage(FormatSummary(sum, outputPath))
}

func (t *TelegramReporter) SendError(errReq error) error {
	text := fmt.Sprintf("⚠️ <b>Remote jobs run failed</b>:\n%s", html.EscapeString(errReq.Error()))
	return t.SendMessage(text)
}

// FormatSummary renders the run summary as Telegram HTML
func FormatSummary(sum scraper.Summary, outputPath string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔥 <b>Remote jobs run</b> <code>%s</code>\n", html.EscapeString(sum.RunID))
	fmt.Fprintf(&b, "🔗 Job links: %d\n", sum.Discovered)
	fmt.Fprintf(&b, "🌍 Global remote: %d\n", sum.GlobalRemote)
	fmt.Fprintf(&b, "✅ Extracted: %d\n", sum.Extracted)
	fmt.Fprintf(&b, "📁 Saved to <code>%s</code>\n", html.EscapeString(outputPath))

	if len(sum.Skipped) > 0 {
		fmt.Fprintf(&b, "⚠️ Skipped: %d\n", len(sum.Skipped))
		for i, s := range sum.Skipped {
			if i == maxSkippedListed {
				fmt.Fprintf(&b, "… and %d more\n", len(sum.Skipped)-maxSkippedListed)
				break
			}
			fmt.Fprintf(&b, "• %s\n", html.EscapeString(s.URL))
		}
	}
	return b.String()
}
