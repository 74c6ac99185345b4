package biz

import (
	"context"
	"sort"
	"strings"

	"github.com/go-kratos/kratos/v2/log"

	"tagcurator/internal/conf"
	"tagcurator/internal/pkg/filter"
	"tagcurator/internal/pkg/hash"
	"tagcurator/internal/pkg/taggraph"
)

// Pipeline stage names reported in StageError.
const (
	StageTagGraph   = "build tag graph"
	StageLoadPosts  = "load posts"
	StageProbe      = "probe images"
	StageNormalize  = "normalize"
	StageDuplicates = "load duplicates"
	StageMerge      = "merge duplicates"
	StageAggregate  = "aggregate"
	StageSelect     = "select vocabulary"
	StageEmit       = "emit"
)

// Summary reports what a run did.
type Summary struct {
	PostsLoaded     int      `yaml:"posts_loaded"`
	PostsUnreadable int      `yaml:"posts_unreadable"`
	PostsNormalized int      `yaml:"posts_normalized"`
	RecordsOut      int      `yaml:"records_out"`
	GroupsMerged    int      `yaml:"groups_merged"`
	GroupsEmpty     int      `yaml:"groups_empty"`
	MembersMissing  int      `yaml:"members_missing"`
	DistinctTags    int      `yaml:"distinct_tags"`
	SelectedTags    int      `yaml:"selected_tags"`
	TagsOver1000    int      `yaml:"tags_over_1000"`
	TagsOver10000   int      `yaml:"tags_over_10000"`
	TagStats        TagStats `yaml:"tag_stats"`
	Digest          string   `yaml:"vocabulary_digest"`
}

// Curation is the finished output handed to the sinks.
type Curation struct {
	Vocabulary []TagCount
	Posts      []*Post
	Usage      TagUsage
	Summary    *Summary
}

// VocabularyTags returns the selected tags, most used first.
func (c *Curation) VocabularyTags() []string {
	tags := make([]string, len(c.Vocabulary))
	for i, tc := range c.Vocabulary {
		tags[i] = tc.Tag
	}
	return tags
}

// CurationOptions tunes the pipeline.
type CurationOptions struct {
	Workers        int
	Policy         SelectionPolicy
	MustExclude    []string
	VocabularyOnly bool
}

// NewCurationOptions reads CurationOptions from the bootstrap config.
func NewCurationOptions(bc *conf.Bootstrap) CurationOptions {
	return CurationOptions{
		Workers: bc.Pipeline.Workers,
		Policy: SelectionPolicy{
			Target:   *bc.Vocabulary.Target,
			Step:     bc.Vocabulary.Step,
			MinUsage: bc.Vocabulary.MinUsage,
		},
		MustExclude:    bc.Vocabulary.MustExclude,
		VocabularyOnly: bc.Output.VocabularyOnly,
	}
}

// CurationUsecase runs the whole pipeline: load, probe, normalize, merge,
// aggregate, select, emit.
type CurationUsecase struct {
	posts      PostRepo
	mappings   *TagMappingUsecase
	duplicates DuplicateRepo
	probe      ImageProbe
	sinks      []Sink
	opts       CurationOptions
	progress   ProgressFactory
	merger     *Merger
	aggregator *UsageAggregator
	logger     log.Logger
	log        *log.Helper
}

// NewCurationUsecase creates a new CurationUsecase.
func NewCurationUsecase(
	posts PostRepo,
	mappings *TagMappingUsecase,
	duplicates DuplicateRepo,
	probe ImageProbe,
	sinks []Sink,
	opts CurationOptions,
	progress ProgressFactory,
	logger log.Logger,
) *CurationUsecase {
	if progress == nil {
		progress = NopProgress
	}
	return &CurationUsecase{
		posts:      posts,
		mappings:   mappings,
		duplicates: duplicates,
		probe:      probe,
		sinks:      sinks,
		opts:       opts,
		progress:   progress,
		merger:     NewMerger(logger),
		aggregator: NewUsageAggregator(opts.Workers, logger),
		logger:     logger,
		log:        log.NewHelper(logger),
	}
}

func stageErr(stage string, err error) error {
	return &StageError{Stage: stage, Err: err}
}

// Run executes the pipeline once. Any stage error aborts the run before
// anything is emitted; unreadable images and empty duplicate groups are
// excluded and counted instead.
func (uc *CurationUsecase) Run(ctx context.Context) (*Curation, error) {
	sum := &Summary{}

	mappings, err := uc.mappings.Build(ctx)
	if err != nil {
		return nil, stageErr(StageTagGraph, err)
	}

	raw, err := uc.posts.ListPosts(ctx)
	if err != nil {
		return nil, stageErr(StageLoadPosts, err)
	}
	sum.PostsLoaded = len(raw)
	uc.log.Infof("loaded %d posts", len(raw))

	readable, err := uc.filterReadable(ctx, raw)
	if err != nil {
		return nil, stageErr(StageProbe, err)
	}
	sum.PostsUnreadable = len(raw) - len(readable)

	normalizer := NewNormalizer(mappings, uc.opts.Workers, uc.progress, uc.logger)
	normalized, err := normalizer.NormalizeAll(ctx, readable)
	if err != nil {
		return nil, stageErr(StageNormalize, err)
	}
	sum.PostsNormalized = len(normalized)

	groups, err := uc.duplicates.ListGroups(ctx)
	if err != nil {
		return nil, stageErr(StageDuplicates, err)
	}
	resolved, err := ResolveGroups(groups, raw)
	if err != nil {
		return nil, stageErr(StageMerge, err)
	}
	merged, err := uc.merger.Merge(normalized, resolved)
	if err != nil {
		return nil, stageErr(StageMerge, err)
	}
	sum.GroupsMerged = merged.GroupsMerged
	sum.GroupsEmpty = merged.GroupsEmpty
	sum.MembersMissing = merged.MembersMissing
	uc.log.Infof("%d duplicate posts removed (%d groups merged, %d groups without surviving member)",
		merged.PostsAbsorbed, merged.GroupsMerged, merged.GroupsEmpty)

	usage, err := uc.aggregator.Aggregate(ctx, merged.Posts)
	if err != nil {
		return nil, stageErr(StageAggregate, err)
	}
	ranked := RankTags(usage)
	sum.DistinctTags = len(ranked)
	sum.TagsOver1000 = CountAtLeast(ranked, 1000)
	sum.TagsOver10000 = CountAtLeast(ranked, 10000)
	sum.TagStats = ComputeTagStats(merged.Posts)
	uc.log.Infof("found %d tags, %d with at least 10,000 uses, %d with at least 1,000 uses",
		sum.DistinctTags, sum.TagsOver10000, sum.TagsOver1000)
	uc.log.Infof("tags per record: min=%d max=%d mean=%.2f",
		sum.TagStats.Min, sum.TagStats.Max, sum.TagStats.Mean)

	vocabulary := SelectTopTags(usage, uc.opts.Policy)
	if err := CheckVocabulary(vocabulary, uc.opts.MustExclude); err != nil {
		return nil, stageErr(StageSelect, err)
	}
	sum.SelectedTags = len(vocabulary)

	rows := merged.Posts
	if uc.opts.VocabularyOnly {
		rows = RestrictToVocabulary(rows, vocabulary)
	}
	sum.RecordsOut = len(rows)

	curation := &Curation{
		Vocabulary: vocabulary,
		Posts:      rows,
		Usage:      usage,
		Summary:    sum,
	}
	sum.Digest = hash.Digest(curation.VocabularyTags())

	if err := EmitAll(ctx, uc.sinks, curation); err != nil {
		return nil, err
	}
	uc.log.Infof("emitted curation to %d sinks", len(uc.sinks))

	uc.log.Infof("done: records in=%d records out=%d tags selected=%d digest=%s",
		sum.PostsLoaded, sum.RecordsOut, sum.SelectedTags, sum.Digest)
	return curation, nil
}

func (uc *CurationUsecase) filterReadable(ctx context.Context, posts []*Post) ([]*Post, error) {
	if uc.probe == nil {
		return posts, nil
	}
	readable := make([]*Post, 0, len(posts))
	for _, p := range posts {
		ok, err := uc.probe.Readable(ctx, p)
		if err != nil {
			return nil, err
		}
		if !ok {
			uc.log.Infof("excluding post %d: image unreadable", p.PostID)
			continue
		}
		readable = append(readable, p)
	}
	return readable, nil
}

// CheckVocabulary fails when the vocabulary contains a tag that must never be
// selected, e.g. rating or quality meta tags that should have been blacklisted.
func CheckVocabulary(vocabulary []TagCount, mustExclude []string) error {
	if len(mustExclude) == 0 {
		return nil
	}
	forbidden := filter.NewBlacklist(mustExclude)
	var found []string
	for _, tc := range vocabulary {
		if forbidden.Contains(tc.Tag) {
			found = append(found, tc.Tag)
		}
	}
	if len(found) == 0 {
		return nil
	}
	sort.Strings(found)
	return ErrorDataConsistency("vocabulary contains excluded tags: %s", strings.Join(found, ", "))
}

// RestrictToVocabulary returns copies of posts keeping only vocabulary tags.
func RestrictToVocabulary(posts []*Post, vocabulary []TagCount) []*Post {
	keep := make(taggraph.Set, len(vocabulary))
	for _, tc := range vocabulary {
		keep.Add(tc.Tag)
	}
	out := make([]*Post, len(posts))
	for i, p := range posts {
		c := *p
		c.Tags = make(taggraph.Set, len(p.Tags))
		for t := range p.Tags {
			if keep.Has(t) {
				c.Tags.Add(t)
			}
		}
		out[i] = &c
	}
	return out
}
