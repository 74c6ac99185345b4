package data

import (
	"context"
	"errors"
	"strconv"

	"github.com/go-kratos/kratos/v2/log"

	"tagcurator/internal/biz"
	pkgredis "tagcurator/internal/pkg/redis"
)

type redisSink struct {
	cache  pkgredis.Cache
	prefix string
	log    *log.Helper
}

// NewRedisSink publishes the vocabulary under prefix.
func NewRedisSink(cache pkgredis.Cache, prefix string, logger log.Logger) biz.Sink {
	return &redisSink{
		cache:  cache,
		prefix: prefix,
		log:    log.NewHelper(logger),
	}
}

func (s *redisSink) Name() string { return sinkRedis }

func (s *redisSink) key(name string) string {
	return s.prefix + ":" + name
}

// Batch returns the keys written for c:
//
//	<prefix>:vocabulary  list of selected tags, most used first
//	<prefix>:usage       sorted set of every counted tag by usage
//	<prefix>:digest      vocabulary digest
//	<prefix>:records     number of curated records
func (s *redisSink) Batch(c *biz.Curation) pkgredis.Batch {
	usage := make([]pkgredis.Member, 0, len(c.Usage))
	for tag, n := range c.Usage {
		usage = append(usage, pkgredis.Member{Member: tag, Score: float64(n)})
	}
	return pkgredis.Batch{
		Strings: map[string]string{
			s.key("digest"):  c.Summary.Digest,
			s.key("records"): strconv.Itoa(c.Summary.RecordsOut),
		},
		Lists: map[string][]string{
			s.key("vocabulary"): c.VocabularyTags(),
		},
		SortedSets: map[string][]pkgredis.Member{
			s.key("usage"): usage,
		},
	}
}

// Prepare implements biz.Sink. It reads the previous digest and builds the
// batch; nothing is written before Commit.
func (s *redisSink) Prepare(ctx context.Context, c *biz.Curation) (biz.PendingEmit, error) {
	prev, err := s.cache.GetString(ctx, s.key("digest"))
	if err != nil && !errors.Is(err, pkgredis.Nil) {
		return nil, err
	}
	return &pendingBatch{sink: s, batch: s.Batch(c), prev: prev, c: c}, nil
}

type pendingBatch struct {
	sink  *redisSink
	batch pkgredis.Batch
	prev  string
	c     *biz.Curation
}

// Commit writes the batch in one MULTI/EXEC.
func (p *pendingBatch) Commit(ctx context.Context) error {
	s, c := p.sink, p.c
	if err := s.cache.ReplaceAll(ctx, p.batch); err != nil {
		return err
	}

	switch p.prev {
	case "":
		s.log.Infof("published %d tags under %s", len(c.Vocabulary), s.key("*"))
	case c.Summary.Digest:
		s.log.Infof("republished %d tags under %s, vocabulary unchanged", len(c.Vocabulary), s.key("*"))
	default:
		s.log.Infof("published %d tags under %s, vocabulary digest %s -> %s", len(c.Vocabulary), s.key("*"), p.prev, c.Summary.Digest)
	}
	return nil
}

func (p *pendingBatch) Abort(context.Context) {}
