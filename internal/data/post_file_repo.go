package data

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"

	"tagcurator/internal/biz"
)

// postRow is one line of a danbooru posts dump.
type postRow struct {
	ID        int64  `json:"id"`
	PostID    int64  `json:"post_id"`
	TagString string `json:"tag_string"`
	FileHash  string `json:"file_hash"`
	MD5       string `json:"md5"`
	Score     int64  `json:"score"`
	Rating    string `json:"rating"`
}

type postFileRepo struct {
	path string
	log  *log.Helper
}

// NewPostFileRepo reads posts from a JSONL dump.
func NewPostFileRepo(path string, logger log.Logger) biz.PostRepo {
	return &postFileRepo{
		path: path,
		log:  log.NewHelper(logger),
	}
}

// ListPosts implements biz.PostRepo.
func (r *postFileRepo) ListPosts(ctx context.Context) ([]*biz.Post, error) {
	var posts []*biz.Post
	err := eachJSONLine(r.path, func(line int, row *postRow) error {
		if line%progressCheck == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		id := row.ID
		if id == 0 {
			id = row.PostID
		}
		hash := row.FileHash
		if hash == "" {
			hash = row.MD5
		}
		p, err := newPost(id, row.TagString, hash, row.Score, row.Rating)
		if err != nil {
			return malformed(r.path, line, "%v", err)
		}
		posts = append(posts, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.log.Debugf("read %d posts from %s", len(posts), r.path)
	return posts, nil
}

// progressCheck is how many lines are read between context checks.
const progressCheck = 4096
