package data

import (
	"fmt"
	"strings"

	"github.com/go-kratos/kratos/v2/log"

	"tagcurator/internal/biz"
	"tagcurator/internal/conf"
	"tagcurator/internal/pkg/filter"
	"tagcurator/internal/pkg/taggraph"
)

// NewPostRepo returns the post source selected by input.posts.driver.
func NewPostRepo(data *Data, in *conf.Input, logger log.Logger) (biz.PostRepo, error) {
	switch in.Posts.Driver {
	case driverFile:
		if in.Posts.Path == "" {
			return nil, fmt.Errorf("input.posts.path is required for the %q driver", driverFile)
		}
		return NewPostFileRepo(in.Posts.Path, logger), nil
	case driverPostgres:
		return NewPostPgRepo(data, in.Posts, logger), nil
	default:
		return nil, fmt.Errorf("unknown post driver %q", in.Posts.Driver)
	}
}

// newPost converts raw column values into a biz.Post.
func newPost(id int64, tagString, fileHash string, score int64, rating string) (*biz.Post, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid post id %d", id)
	}
	r, err := biz.ParseRating(rating)
	if err != nil {
		return nil, err
	}
	return &biz.Post{
		PostID:   id,
		FileHash: normalizeHash(fileHash),
		Tags:     taggraph.NewSet(filter.SplitTagString(tagString)...),
		Score:    score,
		Rating:   r,
	}, nil
}

// normalizeHash lowercases a hex file hash.
func normalizeHash(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}
