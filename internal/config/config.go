package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DatabaseURL  string
	HTTPAddr     string
	Location     *time.Location
	LogLevel     string
	Env          string // dev|prod
	SentryDSN    string
	BotToken     string // пусто — уведомления в Telegram выключены
	NotifyChatID int64
	BackupURL    string
	AdminIDs     []string // user ids allowed to hit admin endpoints
}

func Load() (*Config, error) {
	tz := getenv("TZ", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}

	chatID, err := parseChatID(os.Getenv("NOTIFY_CHAT_ID"))
	if err != nil {
		return nil, fmt.Errorf("NOTIFY_CHAT_ID: %w", err)
	}

	cfg := &Config{
		DatabaseURL:  mustEnv("DATABASE_URL"),
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		Location:     loc,
		LogLevel:     getenv("LOG_LEVEL", "info"),
		Env:          getenv("ENV", "dev"),
		SentryDSN:    os.Getenv("SENTRY_DSN"),
		BotToken:     os.Getenv("BOT_TOKEN"),
		NotifyChatID: chatID,
		BackupURL:    os.Getenv("BACKUP_URL"),
		AdminIDs:     parseList(os.Getenv("ADMIN_IDS")),
	}
	return cfg, nil
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("required env " + k + " is empty")
	}
	return v
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func parseChatID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad chat id %q: %w", s, err)
	}
	return n, nil
}

func parseList(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
