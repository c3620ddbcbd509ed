// Package filter reduces a raw message batch to the in-scope, unique subset.
//
// Validation is whole-batch and fail-fast: any malformed input aborts the
// call before filtering starts, with no partial output. Filtering then runs
// three stages in fixed order: subscription membership, half-open time
// window, duplicate removal.
package filter

import (
	"fmt"

	"classdigest/internal/model"
)

// Result is a filter run's output: the surviving messages in their original
// order plus per-stage counters.
type Result struct {
	Messages []model.Message   `json:"messages"`
	Stats    model.FilterStats `json:"stats"`
}

// Filter applies subscription, time-window, and dedup filtering. An optional
// bounded cache remembers dedup keys across calls on the same instance; a
// Filter is not safe for concurrent use.
type Filter struct {
	cacheLimit int
	cache      map[string]struct{}
}

// New creates a Filter. cacheLimit bounds the cross-call dedup cache; zero
// or negative disables it. The cache never evicts: once full, new keys are
// simply not recorded.
func New(cacheLimit int) *Filter {
	f := &Filter{cacheLimit: cacheLimit}
	if cacheLimit > 0 {
		f.cache = make(map[string]struct{}, cacheLimit)
	}
	return f
}

// Apply validates the whole batch, then filters it. Dedup keys are the exact
// tuple chat|sender|timestamp|text; the first occurrence wins.
func (f *Filter) Apply(messages []model.Message, subscribedChats []string, period model.TimePeriod) (*Result, error) {
	start, end, err := period.Bounds()
	if err != nil {
		return nil, err
	}
	for i, m := range messages {
		if m.ChatID == "" {
			return nil, fmt.Errorf("message %d: missing chat_id", i)
		}
		if m.SenderID == "" {
			return nil, fmt.Errorf("message %d: missing sender_id", i)
		}
		if _, err := model.ParseTimestamp(m.Timestamp); err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
	}

	subs := make(map[string]bool, len(subscribedChats))
	for _, c := range subscribedChats {
		subs[c] = true
	}

	res := &Result{Stats: model.FilterStats{TotalProcessed: len(messages)}}
	seen := make(map[string]struct{}, len(messages))
	for _, m := range messages {
		if !subs[m.ChatID] {
			res.Stats.FilteredBySubscription++
			continue
		}
		ts, _ := model.ParseTimestamp(m.Timestamp)
		if ts.Before(start) || !ts.Before(end) {
			res.Stats.FilteredByTimePeriod++
			continue
		}
		key := m.DedupKey()
		if _, dup := seen[key]; dup {
			res.Stats.DuplicatesRemoved++
			continue
		}
		if _, dup := f.cache[key]; dup {
			res.Stats.DuplicatesRemoved++
			continue
		}
		seen[key] = struct{}{}
		f.remember(key)
		res.Messages = append(res.Messages, m)
	}
	res.Stats.FinalCount = len(res.Messages)
	return res, nil
}

// remember records a key in the cross-call cache while capacity remains.
// At capacity the cache stops recording new keys; it never evicts.
func (f *Filter) remember(key string) {
	if f.cache == nil || len(f.cache) >= f.cacheLimit {
		return
	}
	f.cache[key] = struct{}{}
}
