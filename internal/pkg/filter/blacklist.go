package filter

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"tagcurator/internal/pkg/taggraph"
)

// Blacklist is an exact-match set of canonical tag names to drop.
// It is immutable after construction and safe for concurrent use.
type Blacklist struct {
	tags map[string]struct{}
}

// NewBlacklist merges one or more tag lists into a single filter.
// Entries are normalized with NormalizeTag; empty entries are ignored.
func NewBlacklist(lists ...[]string) *Blacklist {
	b := &Blacklist{tags: make(map[string]struct{})}
	for _, list := range lists {
		for _, entry := range list {
			if tag := NormalizeTag(entry); tag != "" {
				b.tags[tag] = struct{}{}
			}
		}
	}
	return b
}

// Contains reports whether tag is blacklisted.
func (b *Blacklist) Contains(tag string) bool {
	if b == nil {
		return false
	}
	_, ok := b.tags[tag]
	return ok
}

// Len returns the number of blacklisted tags.
func (b *Blacklist) Len() int {
	if b == nil {
		return 0
	}
	return len(b.tags)
}

// Apply returns tags minus the blacklisted entries. The input is not modified.
func (b *Blacklist) Apply(tags taggraph.Set) taggraph.Set {
	out := make(taggraph.Set, len(tags))
	for t := range tags {
		if !b.Contains(t) {
			out.Add(t)
		}
	}
	return out
}

var lowerNFC = transform.Chain(norm.NFC, runes.Map(unicode.ToLower))

// NormalizeTag normalizes a tag name read from any input file.
// - Normalizes unicode to NFC
// - Converts to lowercase
// - Trims and replaces inner whitespace runs with a single underscore
func NormalizeTag(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	result, _, err := transform.String(lowerNFC, raw)
	if err != nil {
		result = strings.ToLower(raw)
	}

	return strings.Join(strings.Fields(result), "_")
}

// SplitTagString splits a space-delimited tag string into normalized tags.
func SplitTagString(s string) []string {
	fields := strings.Fields(s)
	tags := make([]string, 0, len(fields))
	for _, f := range fields {
		if tag := NormalizeTag(f); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
