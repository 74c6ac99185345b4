package data

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"

	"tagcurator/internal/biz"
	"tagcurator/internal/conf"
	"tagcurator/internal/pkg/filter"
	"tagcurator/internal/pkg/taggraph"
)

// statusActive is the only relation status applied to posts; pending,
// deleted and retired rows are ignored. Rows without a status are
// hand-written and count as active.
const statusActive = "active"

// relationRow is one line of the tag_aliases or tag_implications dump.
type relationRow struct {
	Antecedent string `json:"antecedent_name"`
	Consequent string `json:"consequent_name"`
	Status     string `json:"status"`
}

type tagTableRepo struct {
	in  *conf.Input
	log *log.Helper
}

// NewTagTableRepo reads the tag tables named in the input config. An empty
// path is an empty table.
func NewTagTableRepo(in *conf.Input, logger log.Logger) biz.TagTableRepo {
	return &tagTableRepo{
		in:  in,
		log: log.NewHelper(logger),
	}
}

func readRelations(path string) ([][2]string, error) {
	if path == "" {
		return nil, nil
	}
	var out [][2]string
	skipped := 0
	err := eachJSONLine(path, func(line int, row *relationRow) error {
		if row.Status != "" && row.Status != statusActive {
			skipped++
			return nil
		}
		from := filter.NormalizeTag(row.Antecedent)
		to := filter.NormalizeTag(row.Consequent)
		if from == "" || to == "" {
			return malformed(path, line, "empty antecedent or consequent")
		}
		out = append(out, [2]string{from, to})
		return nil
	})
	return out, err
}

// ListAliases implements biz.TagTableRepo.
func (r *tagTableRepo) ListAliases(_ context.Context) ([]taggraph.Alias, error) {
	rows, err := readRelations(r.in.Aliases)
	if err != nil {
		return nil, err
	}
	aliases := make([]taggraph.Alias, len(rows))
	for i, row := range rows {
		aliases[i] = taggraph.Alias{Antecedent: row[0], Consequent: row[1]}
	}
	r.log.Debugf("read %d active aliases", len(aliases))
	return aliases, nil
}

// ListImplications implements biz.TagTableRepo.
func (r *tagTableRepo) ListImplications(_ context.Context) ([]taggraph.Implication, error) {
	rows, err := readRelations(r.in.Implications)
	if err != nil {
		return nil, err
	}
	implications := make([]taggraph.Implication, len(rows))
	for i, row := range rows {
		implications[i] = taggraph.Implication{Antecedent: row[0], Consequent: row[1]}
	}
	r.log.Debugf("read %d active implications", len(implications))
	return implications, nil
}

// Blacklist implements biz.TagTableRepo.
func (r *tagTableRepo) Blacklist(_ context.Context) ([]string, error) {
	if r.in.Blacklist == "" {
		return nil, nil
	}
	return readList(r.in.Blacklist, false)
}

// Deprecations implements biz.TagTableRepo. The deprecations file is
// produced by fetch-deprecations and may not exist yet.
func (r *tagTableRepo) Deprecations(_ context.Context) ([]string, error) {
	if r.in.Deprecations == "" {
		return nil, nil
	}
	tags, err := readList(r.in.Deprecations, true)
	if err == nil && tags == nil {
		r.log.Warnf("deprecations file %s not found, no deprecated tags removed", r.in.Deprecations)
	}
	return tags, err
}
