package bot

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"classdigest/internal/model"
	"classdigest/internal/pipeline"
	"classdigest/internal/source"
)

// RunDigest processes all collected messages through the pipeline, stores
// the resulting items, and delivers everything not yet sent. It is invoked
// by the daily schedule and by the /digest command.
func (b *Bot) RunDigest(ctx context.Context) error {
	if err := b.processPending(ctx); err != nil {
		return err
	}
	return b.deliver(ctx)
}

// processPending runs the filter and classifier over unprocessed messages
// and saves the actionable items.
func (b *Bot) processPending(ctx context.Context) error {
	stored, err := b.store.ListUnprocessed(ctx)
	if err != nil {
		return fmt.Errorf("list unprocessed: %w", err)
	}
	if len(stored) == 0 {
		b.log.Debug("digest run: no pending messages")
		return nil
	}

	subscribed, err := b.store.ListSubscribed(ctx)
	if err != nil {
		return fmt.Errorf("list subscribed: %w", err)
	}
	// Feed-sourced messages live in virtual chats that are always in scope.
	for _, feed := range b.cfg.RSSFeeds {
		subscribed = append(subscribed, source.ChatID(feed))
	}

	now := time.Now()
	windowStart := now.Add(-time.Duration(b.cfg.WindowHours) * time.Hour)
	req := pipeline.Request{
		SubscribedChats: subscribed,
		Period: model.TimePeriod{
			Start: model.FormatTimestamp(windowStart),
			End:   model.FormatTimestamp(now),
		},
	}
	for _, m := range stored {
		req.Messages = append(req.Messages, m.Message)
	}

	resp, err := b.proc.Process(req)
	if err != nil {
		return fmt.Errorf("process batch: %w", err)
	}

	for _, item := range resp.Items {
		if err := b.store.SaveItem(ctx, item.Item.ChatID, item); err != nil {
			return fmt.Errorf("save item: %w", err)
		}
	}

	// Messages from unsubscribed chats stay pending while still inside the
	// window, so a chat that subscribes later gets them on the next run.
	subs := make(map[string]bool, len(subscribed))
	for _, c := range subscribed {
		subs[c] = true
	}
	ids := make([]int64, 0, len(stored))
	for _, m := range stored {
		if !subs[m.Message.ChatID] {
			if ts, err := model.ParseTimestamp(m.Message.Timestamp); err == nil && !ts.Before(windowStart) {
				continue
			}
		}
		ids = append(ids, m.ID)
	}
	if err := b.store.MarkProcessed(ctx, ids); err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}

	b.log.Info("digest batch processed",
		"messages", resp.Stats.TotalProcessed,
		"kept", resp.Stats.FinalCount,
		"items", len(resp.Items),
	)
	return nil
}

// deliver sends all undelivered items as one digest. With DIGEST_CHAT_ID
// set, the digest goes to that chat; otherwise every subscribed chat gets
// a copy.
func (b *Bot) deliver(ctx context.Context) error {
	items, err := b.store.ListUndelivered(ctx)
	if err != nil {
		return fmt.Errorf("list undelivered: %w", err)
	}
	if len(items) == 0 {
		b.log.Debug("digest run: nothing to deliver")
		return nil
	}

	results := make([]model.ClassificationResult, 0, len(items))
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		results = append(results, it.Result)
		ids = append(ids, it.ID)
	}
	text := FormatDigest(results)

	var targets []int64
	if b.cfg.DigestChatID != 0 {
		targets = []int64{b.cfg.DigestChatID}
	} else {
		subscribed, err := b.store.ListSubscribed(ctx)
		if err != nil {
			return fmt.Errorf("list subscribed: %w", err)
		}
		for _, chat := range subscribed {
			id, err := strconv.ParseInt(chat, 10, 64)
			if err != nil {
				// Virtual feed chats have no Telegram counterpart.
				continue
			}
			targets = append(targets, id)
		}
	}
	if len(targets) == 0 {
		b.log.Warn("digest ready but no chat to deliver to", "items", len(items))
		return nil
	}

	sent := 0
	for _, chatID := range targets {
		if err := b.send(chatID, text); err != nil {
			b.log.Error("send digest", "chat_id", chatID, "error", err)
			continue
		}
		sent++
	}
	// Items stay undelivered when every send failed, so the next run
	// retries them instead of silently dropping the digest.
	if sent == 0 {
		return fmt.Errorf("digest not delivered to any of %d chats", len(targets))
	}

	if err := b.store.MarkDelivered(ctx, ids); err != nil {
		return fmt.Errorf("mark delivered: %w", err)
	}
	b.log.Info("digest delivered", "items", len(items), "chats", sent)
	return nil
}
