package notify

import (
	"os"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier mirrors notifications to a Telegram chat. Delivery is
// best-effort; a quota dashboard is not worth failing over a chat hiccup.
type TelegramNotifier struct {
	token  string
	chatID int64
}

// TelegramFromEnv builds a TelegramNotifier from PISTAT_TELEGRAM_TOKEN and
// PISTAT_TELEGRAM_CHAT. Returns nil when either is unset or unusable.
func TelegramFromEnv() *TelegramNotifier {
	token := strings.TrimSpace(os.Getenv("PISTAT_TELEGRAM_TOKEN"))
	chat := strings.TrimSpace(os.Getenv("PISTAT_TELEGRAM_CHAT"))
	if token == "" || chat == "" {
		return nil
	}
	chatID, err := strconv.ParseInt(chat, 10, 64)
	if err != nil || chatID == 0 {
		return nil
	}
	return &TelegramNotifier{token: token, chatID: chatID}
}

func (t *TelegramNotifier) Notify(severity Severity, message string) {
	if strings.TrimSpace(message) == "" {
		return
	}

	bot, err := tgbotapi.NewBotAPI(t.token)
	if err != nil {
		return
	}

	text := message
	switch severity {
	case SeverityWarning:
		text = "⚠ " + message
	case SeverityError:
		text = "✖ " + message
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	_, _ = bot.Send(msg)
}
