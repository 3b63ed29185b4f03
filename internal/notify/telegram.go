package notify

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sleepleague/sleepleague/internal/leaderboard"
	"github.com/sleepleague/sleepleague/internal/observability"
)

// Notifier announces daily scorecards to a group chat. A nil Notifier is a
// valid no-op, so callers never branch on whether notifications are on.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func New(botToken string, chatID int64) (*Notifier, error) {
	if botToken == "" || chatID == 0 {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &Notifier{bot: bot, chatID: chatID}, nil
}

// DailyScorecard posts one message per rescored day.
func (n *Notifier) DailyScorecard(groupName, day string, rows []leaderboard.ScorecardRow) error {
	if n == nil {
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "😴 %s — %s\n", groupName, day)
	for _, r := range rows {
		marker := "  "
		if r.IsWinner {
			marker = "🏆"
		}
		fmt.Fprintf(&b, "%s %d. %s: %+d pts (%.1fh)\n",
			marker, r.Rank, r.Name, r.Points, float64(r.SleepMinutes)/60.0)
	}
	_, err := send(n.bot, tgbotapi.NewMessage(n.chatID, b.String()))
	return err
}

// Считаем системными: 5xx, 429, timeout. 400-ки и типичные телеграм-валидации
// в Sentry не шлём.
func isSystemErr(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	if strings.Contains(s, "429") || strings.Contains(s, "502") || strings.Contains(s, "503") || strings.Contains(s, "timeout") {
		return true
	}
	return false
}

func send(bot *tgbotapi.BotAPI, msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	m, err := bot.Send(msg)
	if isSystemErr(err) {
		observability.CaptureErr(err)
	}
	return m, err
}
