package data

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/go-kratos/kratos/v2/log"

	"tagcurator/internal/biz"
	"tagcurator/internal/conf"
	"tagcurator/internal/pkg/pagination"
)

func TestPostFileRepo_ListPosts(t *testing.T) {
	path := writeFile(t, "posts.jsonl", strings.Join([]string{
		`{"id": 1, "tag_string": "1girl Solo  long_hair", "file_hash": "ABCDEF", "score": 12, "rating": "s"}`,
		``,
		`{"post_id": 2, "tag_string": "", "md5": "0123", "score": -1, "rating": "explicit"}`,
	}, "\n"))

	posts, err := NewPostFileRepo(path, log.DefaultLogger).ListPosts(context.Background())
	if err != nil {
		t.Fatalf("ListPosts() error = %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("ListPosts() returned %d posts, want 2", len(posts))
	}

	first := posts[0]
	if first.PostID != 1 || first.FileHash != "abcdef" || first.Score != 12 || first.Rating != biz.RatingSensitive {
		t.Errorf("first post = %+v", first)
	}
	if got, want := first.SortedTags(), []string{"1girl", "long_hair", "solo"}; !reflect.DeepEqual(got, want) {
		t.Errorf("first tags = %v, want %v", got, want)
	}

	second := posts[1]
	if second.PostID != 2 || second.FileHash != "0123" || second.Rating != biz.RatingExplicit || len(second.Tags) != 0 {
		t.Errorf("second post = %+v", second)
	}
}

func TestPostFileRepo_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
		line    string
	}{
		{"bad json", "{\"id\": 1, \"rating\": \"g\"}\n{not json", ":2:"},
		{"unknown rating", `{"id": 1, "rating": "x"}`, ":1:"},
		{"missing id", `{"tag_string": "a", "rating": "g"}`, ":1:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "posts.jsonl", tt.content)
			_, err := NewPostFileRepo(path, log.DefaultLogger).ListPosts(context.Background())
			if !biz.IsMalformedInput(err) {
				t.Fatalf("ListPosts() error = %v, want MALFORMED_INPUT", err)
			}
			if !strings.Contains(err.Error(), tt.line) {
				t.Errorf("error %q does not name line %s", err, tt.line)
			}
		})
	}
}

func TestPostFileRepo_MissingFile(t *testing.T) {
	_, err := NewPostFileRepo("/nonexistent/posts.jsonl", log.DefaultLogger).ListPosts(context.Background())
	if err == nil {
		t.Error("ListPosts() on a missing file should fail")
	}
}

func TestNewPostRepo(t *testing.T) {
	tests := []struct {
		name    string
		src     *conf.PostSource
		wantErr bool
	}{
		{"file", &conf.PostSource{Driver: "file", Path: "posts.jsonl"}, false},
		{"file without path", &conf.PostSource{Driver: "file"}, true},
		{"postgres", &conf.PostSource{Driver: "postgres"}, false},
		{"unknown", &conf.PostSource{Driver: "parquet"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPostRepo(&Data{}, &conf.Input{Posts: tt.src}, log.DefaultLogger)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewPostRepo() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPostPgRepo_PageQuery(t *testing.T) {
	tests := []struct {
		name      string
		embedding bool
		wantSQL   string
	}{
		{
			name:    "all posts",
			wantSQL: "SELECT m.post_id, m.tag_string, m.file_hash, m.score, m.rating FROM metadata m WHERE m.post_id > $1 ORDER BY m.post_id LIMIT 500",
		},
		{
			name:      "only posts with embeddings",
			embedding: true,
			wantSQL:   "SELECT m.post_id, m.tag_string, m.file_hash, m.score, m.rating FROM metadata m INNER JOIN embeddings e ON e.hash = m.file_hash WHERE m.post_id > $1 ORDER BY m.post_id LIMIT 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewPostPgRepo(&Data{}, &conf.PostSource{RequireEmbedding: tt.embedding}, log.DefaultLogger).(*postPgRepo)
			page := pagination.NewKeysetRequest(500)
			page.Advance(42, 500)

			sql, args, err := repo.pageQuery(page)
			if err != nil {
				t.Fatalf("pageQuery() error = %v", err)
			}
			if sql != tt.wantSQL {
				t.Errorf("pageQuery() sql = %q\nwant %q", sql, tt.wantSQL)
			}
			if !reflect.DeepEqual(args, []any{int64(42)}) {
				t.Errorf("pageQuery() args = %v, want [42]", args)
			}
		})
	}
}
