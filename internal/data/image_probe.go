package data

import (
	"context"
	"strconv"

	"github.com/go-kratos/kratos/v2/log"

	"tagcurator/internal/biz"
	"tagcurator/internal/conf"
)

// imageProbe answers decodability from the list of images that failed to
// decode. Entries are post ids or file hashes, one per line.
type imageProbe struct {
	path   string
	ids    map[int64]struct{}
	hashes map[string]struct{}
	loaded bool
	log    *log.Helper
}

// NewImageProbe creates the probe for input.unreadable.
func NewImageProbe(in *conf.Input, logger log.Logger) biz.ImageProbe {
	return &imageProbe{
		path: in.Unreadable,
		log:  log.NewHelper(logger),
	}
}

func (p *imageProbe) load() error {
	p.loaded = true
	p.ids = make(map[int64]struct{})
	p.hashes = make(map[string]struct{})
	if p.path == "" {
		return nil
	}
	entries, err := readList(p.path, true)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if id, err := strconv.ParseInt(e, 10, 64); err == nil {
			p.ids[id] = struct{}{}
			continue
		}
		p.hashes[normalizeHash(e)] = struct{}{}
	}
	p.log.Debugf("%d unreadable images listed", len(p.ids)+len(p.hashes))
	return nil
}

// Readable implements biz.ImageProbe. It is called from one goroutine.
func (p *imageProbe) Readable(_ context.Context, post *biz.Post) (bool, error) {
	if !p.loaded {
		if err := p.load(); err != nil {
			return false, err
		}
	}
	if _, ok := p.ids[post.PostID]; ok {
		return false, nil
	}
	if post.FileHash != "" {
		if _, ok := p.hashes[post.FileHash]; ok {
			return false, nil
		}
	}
	return true, nil
}
