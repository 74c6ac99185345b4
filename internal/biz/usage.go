package biz

import (
	"context"
	"sort"

	"github.com/go-kratos/kratos/v2/log"
	"golang.org/x/sync/errgroup"

	"tagcurator/internal/pkg/hash"
)

// TagUsage maps a canonical tag to the number of records carrying it.
type TagUsage map[string]int

// TagCount is one ranked vocabulary entry.
type TagCount struct {
	Tag   string
	Count int
}

// SelectionPolicy drives SelectTopTags.
type SelectionPolicy struct {
	// Target caps the selection size; 0 means no cap.
	Target int
	// Step is the round number the selection size is a multiple of.
	Step int
	// MinUsage is the smallest count the last selected tag may have.
	MinUsage int
}

// TagStats summarizes tag counts per record.
type TagStats struct {
	Posts int
	Min   int
	Max   int
	Mean  float64
}

// UsageAggregator counts tag usage over the merged records.
type UsageAggregator struct {
	workers int
	log     *log.Helper
}

// NewUsageAggregator creates an aggregator using at most workers goroutines.
func NewUsageAggregator(workers int, logger log.Logger) *UsageAggregator {
	if workers <= 0 {
		workers = 1
	}
	return &UsageAggregator{
		workers: workers,
		log:     log.NewHelper(logger),
	}
}

// Aggregate counts each tag once per record. Workers first count disjoint
// slices of posts into per-shard maps keyed by murmur3(tag); each shard is
// then reduced by a single goroutine, so no map is written concurrently.
func (a *UsageAggregator) Aggregate(ctx context.Context, posts []*Post) (TagUsage, error) {
	shards := a.workers
	partial := make([][]map[string]int, a.workers)

	g, gctx := errgroup.WithContext(ctx)
	chunk := (len(posts) + a.workers - 1) / a.workers
	for w := 0; w < a.workers; w++ {
		w := w
		start := w * chunk
		end := min(start+chunk, len(posts))
		g.Go(func() error {
			local := make([]map[string]int, shards)
			for s := range local {
				local[s] = make(map[string]int)
			}
			for i := start; i < end; i++ {
				if (i-start)%progressBatch == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				for t := range posts[i].Tags {
					local[hash.Shard(t, shards)][t]++
				}
			}
			partial[w] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	reduced := make([]map[string]int, shards)
	g, gctx = errgroup.WithContext(ctx)
	for s := 0; s < shards; s++ {
		s := s
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sum := make(map[string]int)
			for w := range partial {
				for t, c := range partial[w][s] {
					sum[t] += c
				}
			}
			reduced[s] = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	usage := make(TagUsage)
	for _, shard := range reduced {
		for t, c := range shard {
			usage[t] = c
		}
	}
	a.log.Debugf("counted %d distinct tags over %d records", len(usage), len(posts))
	return usage, nil
}

// RankTags orders tags by count descending, ties broken by tag name.
func RankTags(usage TagUsage) []TagCount {
	ranked := make([]TagCount, 0, len(usage))
	for t, c := range usage {
		ranked = append(ranked, TagCount{Tag: t, Count: c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Tag < ranked[j].Tag
	})
	return ranked
}

// SelectTopTags picks the largest multiple of Step, no larger than Target,
// such that the tag at that rank is used at least MinUsage times. When no
// multiple qualifies, every tag reaching MinUsage is selected (still capped
// by Target).
func SelectTopTags(usage TagUsage, policy SelectionPolicy) []TagCount {
	ranked := RankTags(usage)

	limit := len(ranked)
	if policy.Target > 0 && policy.Target < limit {
		limit = policy.Target
	}
	step := policy.Step
	if step <= 0 {
		step = 1
	}

	for k := (limit / step) * step; k >= step; k -= step {
		if ranked[k-1].Count >= policy.MinUsage {
			return ranked[:k]
		}
	}

	n := 0
	for n < limit && ranked[n].Count >= policy.MinUsage {
		n++
	}
	return ranked[:n]
}

// CountAtLeast returns how many ranked tags have at least threshold uses.
func CountAtLeast(ranked []TagCount, threshold int) int {
	return sort.Search(len(ranked), func(i int) bool { return ranked[i].Count < threshold })
}

// ComputeTagStats returns min, max and mean tags per record.
func ComputeTagStats(posts []*Post) TagStats {
	stats := TagStats{Posts: len(posts)}
	if len(posts) == 0 {
		return stats
	}
	stats.Min = len(posts[0].Tags)
	sum := 0
	for _, p := range posts {
		n := len(p.Tags)
		stats.Min = min(stats.Min, n)
		stats.Max = max(stats.Max, n)
		sum += n
	}
	stats.Mean = float64(sum) / float64(len(posts))
	return stats
}
