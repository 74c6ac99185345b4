package data

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-kratos/kratos/v2/log"
	"gopkg.in/yaml.v3"

	"tagcurator/internal/biz"
)

const (
	TopTagsFile  = "top_tags.txt"
	MetadataFile = "metadata.csv"
	SummaryFile  = "summary.yaml"
)

var metadataHeader = []string{"post_id", "file_hash", "tags", "score", "rating"}

type fileSink struct {
	dir string
	log *log.Helper
}

// NewFileSink writes top_tags.txt, metadata.csv and summary.yaml into dir.
func NewFileSink(dir string, logger log.Logger) biz.Sink {
	return &fileSink{
		dir: dir,
		log: log.NewHelper(logger),
	}
}

func (s *fileSink) Name() string { return sinkFile }

// Prepare implements biz.Sink. Every file is written to a temporary name in
// dir; nothing under the final names changes until Commit.
func (s *fileSink) Prepare(ctx context.Context, c *biz.Curation) (_ biz.PendingEmit, err error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, err
	}

	// commit order: the vocabulary is renamed last, so a reader that sees
	// a new top_tags.txt also sees the metadata and summary it belongs to
	writers := []struct {
		name  string
		write func(*bufio.Writer) error
	}{
		{SummaryFile, func(w *bufio.Writer) error { return writeSummary(w, c) }},
		{MetadataFile, func(w *bufio.Writer) error { return writeMetadata(ctx, w, c) }},
		{TopTagsFile, func(w *bufio.Writer) error { return writeTopTags(w, c) }},
	}

	p := &pendingFiles{dir: s.dir, log: s.log}
	defer func() {
		if err != nil {
			p.Abort(ctx)
		}
	}()

	for _, w := range writers {
		tmp, err := writeTemp(s.dir, w.name, w.write)
		if tmp != "" {
			p.files = append(p.files, pendingFile{name: w.name, temp: tmp})
		}
		if err != nil {
			return nil, fmt.Errorf("write %s: %w", w.name, err)
		}
	}
	return p, nil
}

type pendingFile struct {
	name string
	temp string
}

// pendingFiles holds the temporary files of one prepared emit. Files before
// next have already been renamed to their final names.
type pendingFiles struct {
	dir   string
	files []pendingFile
	next  int
	log   *log.Helper
}

// Commit renames the temporary files into place. A failed rename leaves
// the files already renamed in place and removes the rest.
func (p *pendingFiles) Commit(ctx context.Context) error {
	for p.next < len(p.files) {
		f := p.files[p.next]
		if err := os.Rename(f.temp, filepath.Join(p.dir, f.name)); err != nil {
			p.Abort(ctx)
			return fmt.Errorf("rename %s: %w", f.name, err)
		}
		p.next++
	}
	p.log.Infof("wrote %s, %s and %s to %s", TopTagsFile, MetadataFile, SummaryFile, p.dir)
	return nil
}

// Abort removes the temporary files not yet renamed.
func (p *pendingFiles) Abort(_ context.Context) {
	for _, f := range p.files[p.next:] {
		if err := os.Remove(f.temp); err != nil && !os.IsNotExist(err) {
			p.log.Warnf("remove %s: %v", f.temp, err)
		}
	}
	p.next = len(p.files)
}

func writeTemp(dir, name string, write func(*bufio.Writer) error) (string, error) {
	f, err := os.CreateTemp(dir, "."+name+"-*")
	if err != nil {
		return "", err
	}
	w := bufio.NewWriter(f)
	if err := write(w); err != nil {
		f.Close()
		return f.Name(), err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return f.Name(), err
	}
	if err := f.Close(); err != nil {
		return f.Name(), err
	}
	return f.Name(), nil
}

func writeTopTags(w *bufio.Writer, c *biz.Curation) error {
	for _, tc := range c.Vocabulary {
		if _, err := w.WriteString(tc.Tag + "\n"); err != nil {
			return err
		}
	}
	return nil
}

func writeMetadata(ctx context.Context, w *bufio.Writer, c *biz.Curation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(metadataHeader); err != nil {
		return err
	}
	for i, p := range c.Posts {
		if i%progressCheck == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		record := []string{
			strconv.FormatInt(p.PostID, 10),
			p.FileHash,
			strings.Join(p.SortedTags(), " "),
			strconv.FormatInt(p.Score, 10),
			p.Rating.String(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeSummary(w *bufio.Writer, c *biz.Curation) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c.Summary); err != nil {
		return err
	}
	return enc.Close()
}
