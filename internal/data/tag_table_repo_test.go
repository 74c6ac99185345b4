package data

import (
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/go-kratos/kratos/v2/log"

	"tagcurator/internal/biz"
	"tagcurator/internal/conf"
	"tagcurator/internal/pkg/taggraph"
)

func TestTagTableRepo_Relations(t *testing.T) {
	aliases := writeFile(t, "tag_aliases.json", strings.Join([]string{
		`{"antecedent_name": "ff7", "consequent_name": "final_fantasy_vii", "status": "active"}`,
		`{"antecedent_name": "old", "consequent_name": "new", "status": "deleted"}`,
		`{"antecedent_name": "Cat Ear", "consequent_name": "cat_ears", "status": "active"}`,
		`{"antecedent_name": "kitty", "consequent_name": "cat"}`,
	}, "\n"))
	implications := writeFile(t, "tag_implications.json", strings.Join([]string{
		`{"antecedent_name": "cat_ears", "consequent_name": "animal_ears", "status": "active"}`,
		`{"antecedent_name": "a", "consequent_name": "b", "status": "pending"}`,
		`{"antecedent_name": "cat", "consequent_name": "animal"}`,
	}, "\n"))

	repo := NewTagTableRepo(&conf.Input{Aliases: aliases, Implications: implications}, log.DefaultLogger)

	gotAliases, err := repo.ListAliases(context.Background())
	if err != nil {
		t.Fatalf("ListAliases() error = %v", err)
	}
	wantAliases := []taggraph.Alias{
		{Antecedent: "ff7", Consequent: "final_fantasy_vii"},
		{Antecedent: "cat_ear", Consequent: "cat_ears"},
		{Antecedent: "kitty", Consequent: "cat"},
	}
	if !reflect.DeepEqual(gotAliases, wantAliases) {
		t.Errorf("ListAliases() = %v, want %v", gotAliases, wantAliases)
	}

	gotImplications, err := repo.ListImplications(context.Background())
	if err != nil {
		t.Fatalf("ListImplications() error = %v", err)
	}
	wantImplications := []taggraph.Implication{
		{Antecedent: "cat_ears", Consequent: "animal_ears"},
		{Antecedent: "cat", Consequent: "animal"},
	}
	if !reflect.DeepEqual(gotImplications, wantImplications) {
		t.Errorf("ListImplications() = %v, want %v", gotImplications, wantImplications)
	}
}

func TestTagTableRepo_MalformedRelation(t *testing.T) {
	path := writeFile(t, "tag_aliases.json", `{"antecedent_name": "", "consequent_name": "x", "status": "active"}`)
	_, err := NewTagTableRepo(&conf.Input{Aliases: path}, log.DefaultLogger).ListAliases(context.Background())
	if !biz.IsMalformedInput(err) {
		t.Errorf("ListAliases() error = %v, want MALFORMED_INPUT", err)
	}
}

func TestTagTableRepo_Lists(t *testing.T) {
	blacklist := writeFile(t, "tag_blacklist.txt", "censored\n\n  bar_censor \n")
	repo := NewTagTableRepo(&conf.Input{
		Blacklist:    blacklist,
		Deprecations: filepath.Join(t.TempDir(), "missing.txt"),
	}, log.DefaultLogger)

	got, err := repo.Blacklist(context.Background())
	if err != nil {
		t.Fatalf("Blacklist() error = %v", err)
	}
	if want := []string{"censored", "bar_censor"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Blacklist() = %v, want %v", got, want)
	}

	deprecated, err := repo.Deprecations(context.Background())
	if err != nil {
		t.Fatalf("Deprecations() error = %v", err)
	}
	if len(deprecated) != 0 {
		t.Errorf("Deprecations() of a missing file = %v, want empty", deprecated)
	}
}

func TestTagTableRepo_MissingBlacklist(t *testing.T) {
	repo := NewTagTableRepo(&conf.Input{Blacklist: filepath.Join(t.TempDir(), "missing.txt")}, log.DefaultLogger)
	if _, err := repo.Blacklist(context.Background()); err == nil {
		t.Error("Blacklist() of a missing file should fail")
	}
}

func TestTagTableRepo_Unconfigured(t *testing.T) {
	repo := NewTagTableRepo(&conf.Input{}, log.DefaultLogger)
	ctx := context.Background()
	if a, err := repo.ListAliases(ctx); err != nil || len(a) != 0 {
		t.Errorf("ListAliases() = %v, %v", a, err)
	}
	if b, err := repo.Blacklist(ctx); err != nil || len(b) != 0 {
		t.Errorf("Blacklist() = %v, %v", b, err)
	}
}
