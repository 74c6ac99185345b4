package data

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-kratos/kratos/v2/log"

	"tagcurator/internal/biz"
	"tagcurator/internal/conf"
)

const (
	keyPostID   = "post_id"
	keyFileHash = "file_hash"
)

type duplicateRepo struct {
	path string
	key  string
	log  *log.Helper
}

// NewDuplicateRepo reads the duplicate list: one group per line, members
// separated by whitespace, keyed by post id or file hash.
func NewDuplicateRepo(in *conf.Input, logger log.Logger) (biz.DuplicateRepo, error) {
	switch in.DuplicatesKey {
	case keyPostID, keyFileHash:
	default:
		return nil, fmt.Errorf("unknown duplicates key %q", in.DuplicatesKey)
	}
	return &duplicateRepo{
		path: in.Duplicates,
		key:  in.DuplicatesKey,
		log:  log.NewHelper(logger),
	}, nil
}

// ListGroups implements biz.DuplicateRepo.
func (r *duplicateRepo) ListGroups(_ context.Context) ([]biz.DuplicateGroup, error) {
	if r.path == "" {
		return nil, nil
	}
	var groups []biz.DuplicateGroup
	err := eachLine(r.path, func(line int, text string) error {
		g := biz.DuplicateGroup{Line: line}
		for _, member := range strings.Fields(text) {
			if r.key == keyFileHash {
				g.FileHashes = append(g.FileHashes, normalizeHash(member))
				continue
			}
			id, err := strconv.ParseInt(member, 10, 64)
			if err != nil || id <= 0 {
				return malformed(r.path, line, "invalid post id %q", member)
			}
			g.PostIDs = append(g.PostIDs, id)
		}
		groups = append(groups, g)
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.log.Debugf("read %d duplicate groups keyed by %s", len(groups), r.key)
	return groups, nil
}
