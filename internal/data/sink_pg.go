package data

import (
	"context"
	"errors"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/jackc/pgx/v5"

	"tagcurator/internal/biz"
)

type pgSink struct {
	data *Data
	log  *log.Helper
}

// NewPgSink replaces the curated_tags and curated_posts tables.
func NewPgSink(data *Data, logger log.Logger) biz.Sink {
	return &pgSink{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (s *pgSink) Name() string { return sinkPostgres }

// Prepare implements biz.Sink. Tables are truncated and refilled inside one
// transaction that stays open until Commit, so readers see either the
// previous or the new curation.
func (s *pgSink) Prepare(ctx context.Context, c *biz.Curation) (_ biz.PendingEmit, err error) {
	tx, err := s.data.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	if _, err := tx.Exec(ctx, "TRUNCATE curated_tags, curated_posts"); err != nil {
		return nil, err
	}

	tags, err := tx.CopyFrom(ctx,
		pgx.Identifier{"curated_tags"},
		[]string{"rank", "tag", "usage_count"},
		pgx.CopyFromSlice(len(c.Vocabulary), func(i int) ([]any, error) {
			tc := c.Vocabulary[i]
			return []any{int32(i + 1), tc.Tag, int32(tc.Count)}, nil
		}),
	)
	if err != nil {
		return nil, err
	}

	posts, err := tx.CopyFrom(ctx,
		pgx.Identifier{"curated_posts"},
		[]string{"post_id", "file_hash", "tags", "score", "rating"},
		pgx.CopyFromSlice(len(c.Posts), func(i int) ([]any, error) {
			p := c.Posts[i]
			return []any{p.PostID, p.FileHash, p.SortedTags(), p.Score, p.Rating.String()}, nil
		}),
	)
	if err != nil {
		return nil, err
	}

	query, args, err := psql.
		Insert("curated_runs").
		Columns("digest", "records_in", "records_out", "selected_tags").
		Values(c.Summary.Digest, c.Summary.PostsLoaded, c.Summary.RecordsOut, c.Summary.SelectedTags).
		ToSql()
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return nil, err
	}

	return &pendingTx{tx: tx, tags: tags, posts: posts, log: s.log}, nil
}

type pendingTx struct {
	tx    pgx.Tx
	tags  int64
	posts int64
	log   *log.Helper
}

func (p *pendingTx) Commit(ctx context.Context) error {
	if err := p.tx.Commit(ctx); err != nil {
		return err
	}
	p.log.Infof("copied %d tags and %d posts to postgres", p.tags, p.posts)
	return nil
}

func (p *pendingTx) Abort(ctx context.Context) {
	if err := p.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		p.log.Warnf("rollback curated tables: %v", err)
	}
}
