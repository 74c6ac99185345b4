package data

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-kratos/kratos/v2/log"

	"tagcurator/internal/biz"
	"tagcurator/internal/conf"
)

type deprecationStore struct {
	path string
	log  *log.Helper
}

// NewDeprecationStore writes the list read back by TagTableRepo.Deprecations.
func NewDeprecationStore(in *conf.Input, logger log.Logger) biz.DeprecationStore {
	return &deprecationStore{
		path: in.Deprecations,
		log:  log.NewHelper(logger),
	}
}

// SaveDeprecations implements biz.DeprecationStore. The file is replaced
// atomically.
func (s *deprecationStore) SaveDeprecations(_ context.Context, tags []string) error {
	if s.path == "" {
		return errors.New("input.deprecations is not set")
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+"-*")
	if err != nil {
		return err
	}
	content := strings.Join(tags, "\n")
	if len(tags) > 0 {
		content += "\n"
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}
	if err := os.Rename(f.Name(), s.path); err != nil {
		os.Remove(f.Name())
		return err
	}
	s.log.Infof("wrote %d deprecated tags to %s", len(tags), s.path)
	return nil
}
