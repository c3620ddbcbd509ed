// Package pipeline wires the filter and classifier into the full
// message-to-items flow and keeps the run statistics.
package pipeline

import (
	"log/slog"

	"classdigest/internal/classify"
	"classdigest/internal/filter"
	"classdigest/internal/model"
)

// Request is a batch of messages to process against a subscription set and
// time window.
type Request struct {
	Messages        []model.Message  `json:"messages"`
	SubscribedChats []string         `json:"subscribed_chats"`
	Period          model.TimePeriod `json:"period"`
}

// Response holds the actionable items found in the batch plus the filter
// stage counters.
type Response struct {
	Items []model.ClassificationResult `json:"items"`
	Stats model.FilterStats            `json:"stats"`
}

// Processor runs the filter → classify pipeline over message batches.
type Processor struct {
	filter     *filter.Filter
	classifier *classify.Classifier
	log        *slog.Logger
}

// New creates a Processor.
func New(f *filter.Filter, c *classify.Classifier, log *slog.Logger) *Processor {
	return &Processor{filter: f, classifier: c, log: log}
}

// Process filters the batch and classifies each surviving message. A
// validation failure aborts the whole call; classification failures only
// skip the affected message.
func (p *Processor) Process(req Request) (*Response, error) {
	filtered, err := p.filter.Apply(req.Messages, req.SubscribedChats, req.Period)
	if err != nil {
		return nil, err
	}

	items := p.classifier.ClassifyBatch(filtered.Messages)

	p.log.Debug("batch processed",
		"total", filtered.Stats.TotalProcessed,
		"filtered", filtered.Stats.FinalCount,
		"items", len(items),
	)
	return &Response{Items: items, Stats: filtered.Stats}, nil
}
