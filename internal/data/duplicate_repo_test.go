package data

import (
	"context"
	"reflect"
	"testing"

	"github.com/go-kratos/kratos/v2/log"

	"tagcurator/internal/biz"
	"tagcurator/internal/conf"
)

func TestDuplicateRepo_ListGroups(t *testing.T) {
	t.Run("post ids", func(t *testing.T) {
		path := writeFile(t, "duplicates.txt", "1 2 3\n\n10\t11\n")
		repo, err := NewDuplicateRepo(&conf.Input{Duplicates: path, DuplicatesKey: "post_id"}, log.DefaultLogger)
		if err != nil {
			t.Fatalf("NewDuplicateRepo() error = %v", err)
		}
		got, err := repo.ListGroups(context.Background())
		if err != nil {
			t.Fatalf("ListGroups() error = %v", err)
		}
		want := []biz.DuplicateGroup{
			{Line: 1, PostIDs: []int64{1, 2, 3}},
			{Line: 3, PostIDs: []int64{10, 11}},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("ListGroups() = %+v, want %+v", got, want)
		}
	})

	t.Run("file hashes", func(t *testing.T) {
		path := writeFile(t, "duplicates.txt", "AA bb\n")
		repo, err := NewDuplicateRepo(&conf.Input{Duplicates: path, DuplicatesKey: "file_hash"}, log.DefaultLogger)
		if err != nil {
			t.Fatalf("NewDuplicateRepo() error = %v", err)
		}
		got, err := repo.ListGroups(context.Background())
		if err != nil {
			t.Fatalf("ListGroups() error = %v", err)
		}
		want := []biz.DuplicateGroup{{Line: 1, FileHashes: []string{"aa", "bb"}}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("ListGroups() = %+v, want %+v", got, want)
		}
	})

	t.Run("bad post id", func(t *testing.T) {
		path := writeFile(t, "duplicates.txt", "1 two\n")
		repo, _ := NewDuplicateRepo(&conf.Input{Duplicates: path, DuplicatesKey: "post_id"}, log.DefaultLogger)
		if _, err := repo.ListGroups(context.Background()); !biz.IsMalformedInput(err) {
			t.Errorf("ListGroups() error = %v, want MALFORMED_INPUT", err)
		}
	})

	t.Run("no file configured", func(t *testing.T) {
		repo, _ := NewDuplicateRepo(&conf.Input{DuplicatesKey: "post_id"}, log.DefaultLogger)
		if got, err := repo.ListGroups(context.Background()); err != nil || len(got) != 0 {
			t.Errorf("ListGroups() = %v, %v", got, err)
		}
	})
}

func TestNewDuplicateRepo_UnknownKey(t *testing.T) {
	if _, err := NewDuplicateRepo(&conf.Input{DuplicatesKey: "sha1"}, log.DefaultLogger); err == nil {
		t.Error("NewDuplicateRepo() should reject an unknown key")
	}
}
