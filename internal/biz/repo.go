package biz

import (
	"context"

	"tagcurator/internal/pkg/taggraph"
)

// PostRepo loads raw posts.
type PostRepo interface {
	ListPosts(ctx context.Context) ([]*Post, error)
}

// TagTableRepo loads the tag relation tables and exclusion lists.
type TagTableRepo interface {
	ListAliases(ctx context.Context) ([]taggraph.Alias, error)
	ListImplications(ctx context.Context) ([]taggraph.Implication, error)
	Blacklist(ctx context.Context) ([]string, error)
	Deprecations(ctx context.Context) ([]string, error)
}

// DuplicateRepo loads the externally computed duplicate groups.
type DuplicateRepo interface {
	ListGroups(ctx context.Context) ([]DuplicateGroup, error)
}

// ImageProbe reports whether a post's image can be decoded by the trainer.
type ImageProbe interface {
	Readable(ctx context.Context, post *Post) (bool, error)
}

// Sink receives the finished curation in two phases. Prepare does all the
// work that can fail without making anything visible; the returned
// PendingEmit publishes it.
type Sink interface {
	Name() string
	Prepare(ctx context.Context, c *Curation) (PendingEmit, error)
}

// PendingEmit is prepared sink output. Exactly one of Commit or Abort is
// called. Abort must remove everything Prepare created.
type PendingEmit interface {
	Commit(ctx context.Context) error
	Abort(ctx context.Context)
}

// DeprecationFetcher downloads the list of deprecated tags.
type DeprecationFetcher interface {
	FetchDeprecated(ctx context.Context) ([]string, error)
}

// DeprecationStore persists the deprecated tag list for later runs.
type DeprecationStore interface {
	SaveDeprecations(ctx context.Context, tags []string) error
}

// Progress reports advancement of a long stage.
type Progress interface {
	Add(n int) error
	Finish() error
}

// ProgressFactory creates a progress reporter for total units of work.
type ProgressFactory func(total int, description string) Progress

type nopProgress struct{}

func (nopProgress) Add(int) error { return nil }
func (nopProgress) Finish() error { return nil }

// NopProgress discards progress updates.
func NopProgress(int, string) Progress { return nopProgress{} }
