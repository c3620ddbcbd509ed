// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"

	"classdigest/internal/model"
)

// StoredMessage is a collected chat message with its database row ID.
type StoredMessage struct {
	ID      int64
	Message model.Message
}

// StoredItem is a classified digest item with its database row ID and the
// chat it came from.
type StoredItem struct {
	ID     int64
	ChatID string
	Result model.ClassificationResult
}

// Storage is the interface for all persistence operations.
type Storage interface {
	Subscribe(ctx context.Context, chatID, title string) error
	Unsubscribe(ctx context.Context, chatID string) error
	ListSubscribed(ctx context.Context) ([]string, error)
	IsSubscribed(ctx context.Context, chatID string) (bool, error)

	AddMessage(ctx context.Context, m model.Message) error
	ListUnprocessed(ctx context.Context) ([]StoredMessage, error)
	MarkProcessed(ctx context.Context, ids []int64) error

	SaveItem(ctx context.Context, chatID string, r model.ClassificationResult) error
	ListUndelivered(ctx context.Context) ([]StoredItem, error)
	MarkDelivered(ctx context.Context, ids []int64) error

	Close() error
}
