// Package bot is the Telegram front end: it collects group chat messages
// into storage, handles subscription commands, and posts digests of the
// classified items.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"classdigest/internal/config"
	"classdigest/internal/model"
	"classdigest/internal/pipeline"
	"classdigest/internal/storage"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot handles Telegram updates and digest delivery.
type Bot struct {
	api   telegramAPI
	store storage.Storage
	cfg   *config.Config
	proc  *pipeline.Processor
	log   *slog.Logger
}

// New creates a Bot with the given Telegram token, storage, pipeline, and config.
func New(token string, store storage.Storage, proc *pipeline.Processor, cfg *config.Config, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	return &Bot{
		api:   api,
		store: store,
		cfg:   cfg,
		proc:  proc,
		log:   log,
	}, nil
}

// Run starts the bot's long-polling loop, blocking until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			if update.Message.IsCommand() {
				b.handleCommand(ctx, update.Message)
				continue
			}
			b.collect(ctx, update.Message)
		}
	}
}

// collect stores a plain chat message for the next digest run. Non-text
// updates (photos, stickers, joins) are skipped.
func (b *Bot) collect(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Text == "" || msg.From == nil {
		return
	}

	m := model.Message{
		ChatID:    strconv.FormatInt(msg.Chat.ID, 10),
		SenderID:  strconv.FormatInt(msg.From.ID, 10),
		Timestamp: model.FormatTimestamp(msg.Time()),
		Text:      msg.Text,
	}
	if msg.MessageID != 0 {
		m.Extra = map[string]any{"message_id": strconv.Itoa(msg.MessageID)}
	}

	if err := b.store.AddMessage(ctx, m); err != nil {
		b.log.Error("store message", "chat_id", m.ChatID, "error", err)
	}
}

// SendMessage sends a text message to the given chat.
func (b *Bot) SendMessage(chatID int64, text string) {
	if err := b.send(chatID, text); err != nil {
		b.log.Error("send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) send(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) reply(chatID int64, text string) {
	b.SendMessage(chatID, text)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cmd := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())
	chatID := msg.Chat.ID

	b.log.Debug("command", "cmd", cmd, "args", args, "chat_id", chatID)

	switch cmd {
	case "start":
		b.handleStart(chatID)
	case "help":
		b.handleHelp(chatID)
	case "subscribe":
		b.handleSubscribe(ctx, msg.Chat)
	case "unsubscribe":
		b.handleUnsubscribe(ctx, chatID)
	case "status":
		b.handleStatus(ctx, chatID)
	case "digest":
		b.handleDigest(ctx, chatID)
	default:
		b.reply(chatID, "Unknown command. Use /help for a list of commands.")
	}
}

func (b *Bot) handleStart(chatID int64) {
	b.reply(chatID, `Welcome to Class Digest Bot!

Add me to your class parent chat and I will watch for homework,
schedule changes, and announcements, then post a daily digest.

Quick start:
1. /subscribe — start watching this chat
2. /digest — get the pending digest right now

Use /help for the full command reference.`)
}

func (b *Bot) handleHelp(chatID int64) {
	b.reply(chatID, `Commands:
/subscribe — watch this chat for homework and announcements
/unsubscribe — stop watching this chat
/status — show subscription state and pending messages
/digest — run the digest now instead of waiting for the schedule
/help — this message`)
}

func (b *Bot) handleSubscribe(ctx context.Context, chat *tgbotapi.Chat) {
	id := strconv.FormatInt(chat.ID, 10)
	if err := b.store.Subscribe(ctx, id, chat.Title); err != nil {
		b.reply(chat.ID, fmt.Sprintf("Failed to subscribe: %v", err))
		return
	}
	b.reply(chat.ID, "Subscribed. I will include this chat in the daily digest.")
}

func (b *Bot) handleUnsubscribe(ctx context.Context, chatID int64) {
	id := strconv.FormatInt(chatID, 10)
	if err := b.store.Unsubscribe(ctx, id); err != nil {
		b.reply(chatID, fmt.Sprintf("Failed to unsubscribe: %v", err))
		return
	}
	b.reply(chatID, "Unsubscribed. Messages from this chat will be ignored.")
}

func (b *Bot) handleStatus(ctx context.Context, chatID int64) {
	id := strconv.FormatInt(chatID, 10)
	subscribed, err := b.store.IsSubscribed(ctx, id)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}

	pending := 0
	msgs, err := b.store.ListUnprocessed(ctx)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	for _, m := range msgs {
		if m.Message.ChatID == id {
			pending++
		}
	}

	state := "not subscribed"
	if subscribed {
		state = "subscribed"
	}
	b.reply(chatID, fmt.Sprintf("This chat is %s.\nPending messages for the next digest: %d\nDigest time: %s", state, pending, b.cfg.DigestTime))
}

func (b *Bot) handleDigest(ctx context.Context, chatID int64) {
	if err := b.RunDigest(ctx); err != nil {
		b.reply(chatID, fmt.Sprintf("Digest run failed: %v", err))
	}
}
