// Package telegram hosts the chat dispatch layer: it parses bot commands,
// invokes engine operations, and replies via the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rewired-gh/oddswatch/internal/engine"
	"github.com/rewired-gh/oddswatch/internal/logger"
	"github.com/rewired-gh/oddswatch/internal/models"
)

// HistorySource supplies recent fired alerts for the /history command.
type HistorySource interface {
	RecentAlerts(limit int) ([]models.Alert, error)
}

// Client handles Telegram commands and replies.
type Client struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	engine         *engine.Engine
	history        HistorySource
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a new Telegram client. history may be nil to disable
// the /history command.
func NewClient(botToken, chatID string, eng *engine.Engine, history HistorySource, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Client{
		bot:            bot,
		chatID:         chatIDInt,
		engine:         eng,
		history:        history,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}, nil
}

// ListenForCommands starts a goroutine that polls for Telegram updates and
// handles bot commands. It returns immediately; the goroutine stops when ctx
// is cancelled.
func (c *Client) ListenForCommands(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := c.bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.bot.StopReceivingUpdates()
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				if update.Message != nil && update.Message.IsCommand() {
					c.handleCommand(ctx, update.Message)
				}
			}
		}
	}()
}

func (c *Client) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	args := msg.CommandArguments()

	var reply string
	switch msg.Command() {
	case "ping":
		reply = "Pong"
	case "watch":
		reply = c.engine.Watch(ctx, args)
	case "unwatch":
		reply = c.engine.Unwatch(ctx, args)
	case "watches":
		reply = c.engine.ListWatches()
	case "odds":
		reply = c.engine.Odds(ctx, args)
	case "history":
		reply = c.formatHistory()
	default:
		return
	}

	if err := c.replyTo(msg.Chat.ID, reply); err != nil {
		logger.Warn("Failed to reply to /%s: %v", msg.Command(), err)
	}
}

func (c *Client) formatHistory() string {
	if c.history == nil {
		return "Alert history is disabled."
	}
	alerts, err := c.history.RecentAlerts(5)
	if err != nil {
		logger.Warn("Failed to load alert history: %v", err)
		return "Couldn't load alert history, please try again shortly."
	}
	if len(alerts) == 0 {
		return "No alerts fired yet."
	}
	var b strings.Builder
	b.WriteString("Recent alerts:\n")
	for _, a := range alerts {
		b.WriteString(fmt.Sprintf("%s — %s\n", a.DetectedAt.Format("2006-01-02 15:04"), a.Message))
	}
	return b.String()
}

// replyTo sends an escaped MarkdownV2 message to the originating chat with
// linear-backoff retry.
func (c *Client) replyTo(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, escapeMarkdownV2(text))
	msg.ParseMode = "MarkdownV2"

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		if _, err := c.bot.Send(msg); err == nil {
			return nil
		} else {
			lastErr = err
		}
		time.Sleep(c.retryDelayBase * time.Duration(i+1))
	}
	return fmt.Errorf("failed after %d retries: %w", c.maxRetries, lastErr)
}

// SendError sends a polling error notification to the configured chat.
// Call this only on the first occurrence of a consecutive error sequence.
func (c *Client) SendError(cycleErr error) error {
	return c.replyTo(c.chatID, fmt.Sprintf("⚠️ Watch engine error: %s", cycleErr.Error()))
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2.
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/4) // pre-allocate with room for escapes
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			b.WriteByte('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}
