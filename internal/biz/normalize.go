package biz

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"
	"golang.org/x/sync/errgroup"
)

// progressBatch is how many posts a worker normalizes between progress updates.
const progressBatch = 1024

// Normalizer rewrites post tags: alias resolution, implication expansion,
// then blacklist removal. It holds no mutable state.
type Normalizer struct {
	mappings *TagMappings
	workers  int
	progress ProgressFactory
	log      *log.Helper
}

// NewNormalizer creates a Normalizer running on at most workers goroutines.
func NewNormalizer(mappings *TagMappings, workers int, progress ProgressFactory, logger log.Logger) *Normalizer {
	if workers <= 0 {
		workers = 1
	}
	if progress == nil {
		progress = NopProgress
	}
	return &Normalizer{
		mappings: mappings,
		workers:  workers,
		progress: progress,
		log:      log.NewHelper(logger),
	}
}

// Normalize returns a new post with a canonical, implication-closed,
// blacklist-clean tag set. The input post is left untouched.
func (n *Normalizer) Normalize(post *Post) *Post {
	out := *post
	expanded := n.mappings.Graph.Expand(post.Tags)
	out.Tags = n.mappings.Blacklist.Apply(expanded)
	return &out
}

// NormalizeAll normalizes posts on the worker pool. Output order matches
// input order. The first error cancels the remaining work.
func (n *Normalizer) NormalizeAll(ctx context.Context, posts []*Post) ([]*Post, error) {
	out := make([]*Post, len(posts))
	bar := n.progress(len(posts), "normalizing")

	g, ctx := errgroup.WithContext(ctx)
	chunk := (len(posts) + n.workers - 1) / n.workers
	for start := 0; start < len(posts); start += chunk {
		start, end := start, min(start+chunk, len(posts))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if (i-start)%progressBatch == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
					if i > start {
						_ = bar.Add(progressBatch)
					}
				}
				out[i] = n.Normalize(posts[i])
			}
			_ = bar.Add((end-start-1)%progressBatch + 1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	_ = bar.Finish()
	n.log.Debugf("normalized %d posts on %d workers", len(posts), n.workers)
	return out, nil
}
