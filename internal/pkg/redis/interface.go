package redis

import (
	"context"
)

// Member is one scored entry of a sorted set.
type Member struct {
	Member string
	Score  float64
}

// Batch groups keys that must be replaced together.
type Batch struct {
	Strings    map[string]string
	Lists      map[string][]string
	SortedSets map[string][]Member
}

// Keys returns every key touched by the batch.
func (b Batch) Keys() []string {
	keys := make([]string, 0, len(b.Strings)+len(b.Lists)+len(b.SortedSets))
	for k := range b.Strings {
		keys = append(keys, k)
	}
	for k := range b.Lists {
		keys = append(keys, k)
	}
	for k := range b.SortedSets {
		keys = append(keys, k)
	}
	return keys
}

type Cache interface {
	// GetString returns Nil when key does not exist.
	GetString(ctx context.Context, key string) (string, error)

	// ReplaceAll deletes every key of the batch and writes the new values
	// inside one MULTI/EXEC transaction.
	ReplaceAll(ctx context.Context, batch Batch) error

	Close() error
}
