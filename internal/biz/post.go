package biz

import (
	"fmt"
	"strings"

	"tagcurator/internal/pkg/taggraph"
)

// Rating is the content rating of a post, ordered from least to most mature.
type Rating int8

const (
	RatingGeneral Rating = iota
	RatingSensitive
	RatingQuestionable
	RatingExplicit
)

// ParseRating accepts the single letter codes and the full names.
// "safe" is the historical name of "sensitive".
func ParseRating(s string) (Rating, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "g", "general":
		return RatingGeneral, nil
	case "s", "safe", "sensitive":
		return RatingSensitive, nil
	case "q", "questionable":
		return RatingQuestionable, nil
	case "e", "explicit":
		return RatingExplicit, nil
	default:
		return 0, fmt.Errorf("unknown rating %q", s)
	}
}

func (r Rating) String() string {
	switch r {
	case RatingGeneral:
		return "g"
	case RatingSensitive:
		return "s"
	case RatingQuestionable:
		return "q"
	case RatingExplicit:
		return "e"
	default:
		return "unknown"
	}
}

// Post is one image's metadata.
type Post struct {
	PostID   int64
	FileHash string
	Tags     taggraph.Set
	Score    int64
	Rating   Rating
}

// Clone returns a deep copy of the post.
func (p *Post) Clone() *Post {
	c := *p
	c.Tags = make(taggraph.Set, len(p.Tags))
	for t := range p.Tags {
		c.Tags.Add(t)
	}
	return &c
}

// SortedTags returns the post tags in lexicographic order.
func (p *Post) SortedTags() []string {
	return p.Tags.Sorted()
}

// DuplicateGroup is one line of the duplicate list. Exactly one of PostIDs
// and FileHashes is set, depending on how the list is keyed.
type DuplicateGroup struct {
	Line       int
	PostIDs    []int64
	FileHashes []string
}
