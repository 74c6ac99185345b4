package data

import (
	"context"
	"encoding/hex"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-kratos/kratos/v2/log"

	"tagcurator/internal/biz"
	"tagcurator/internal/conf"
	"tagcurator/internal/pkg/pagination"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type postPgRepo struct {
	data *Data
	src  *conf.PostSource
	log  *log.Helper
}

// NewPostPgRepo reads posts from the metadata table.
func NewPostPgRepo(data *Data, src *conf.PostSource, logger log.Logger) biz.PostRepo {
	return &postPgRepo{
		data: data,
		src:  src,
		log:  log.NewHelper(logger),
	}
}

// pageQuery builds one keyset page ordered by post id. With
// RequireEmbedding only posts that have an embedding row are returned.
func (r *postPgRepo) pageQuery(page *pagination.KeysetRequest) (string, []any, error) {
	q := psql.
		Select("m.post_id", "m.tag_string", "m.file_hash", "m.score", "m.rating").
		From("metadata m").
		Where(sq.Gt{"m.post_id": page.After}).
		OrderBy("m.post_id").
		Limit(uint64(page.GetLimit()))
	if r.src.RequireEmbedding {
		q = q.InnerJoin("embeddings e ON e.hash = m.file_hash")
	}
	return q.ToSql()
}

// ListPosts implements biz.PostRepo.
func (r *postPgRepo) ListPosts(ctx context.Context) ([]*biz.Post, error) {
	var posts []*biz.Post
	page := pagination.NewKeysetRequest(r.src.PageSize)

	for page.HasMore {
		query, args, err := r.pageQuery(page)
		if err != nil {
			return nil, err
		}
		rows, err := r.data.Pool.Query(ctx, query, args...)
		if err != nil {
			return nil, err
		}

		n := 0
		var lastID int64
		for rows.Next() {
			var (
				id        int64
				tagString string
				fileHash  []byte
				score     int64
				rating    string
			)
			if err := rows.Scan(&id, &tagString, &fileHash, &score, &rating); err != nil {
				rows.Close()
				return nil, err
			}
			p, err := newPost(id, tagString, hex.EncodeToString(fileHash), score, rating)
			if err != nil {
				rows.Close()
				return nil, biz.ErrorMalformedInput("metadata post %d: %v", id, err)
			}
			posts = append(posts, p)
			lastID = id
			n++
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}

		page.Advance(lastID, n)
		r.log.Debugf("read %d posts up to id %d", len(posts), lastID)
	}
	return posts, nil
}
