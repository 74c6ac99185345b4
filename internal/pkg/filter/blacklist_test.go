package filter

import (
	"reflect"
	"testing"

	"tagcurator/internal/pkg/taggraph"
)

func TestNormalizeTag(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "lowercase",
			input:    "Hatsune_Miku",
			expected: "hatsune_miku",
		},
		{
			name:     "surrounding whitespace",
			input:    "  1girl \t",
			expected: "1girl",
		},
		{
			name:     "inner whitespace",
			input:    "long   hair",
			expected: "long_hair",
		},
		{
			name:     "decomposed unicode is composed",
			input:    "Pokemo\u0301n",
			expected: "pokem\u00f3n",
		},
		{
			name:     "punctuation kept",
			input:    ":3",
			expected: ":3",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeTag(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeTag(%q) = %q; want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSplitTagString(t *testing.T) {
	got := SplitTagString(" 1girl  Solo\tlong_hair ")
	want := []string{"1girl", "solo", "long_hair"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitTagString() = %v; want %v", got, want)
	}
	if got := SplitTagString("   "); len(got) != 0 {
		t.Errorf("SplitTagString(blank) = %v; want empty", got)
	}
}

func TestBlacklist_Apply(t *testing.T) {
	bl := NewBlacklist([]string{"D", "", "censored"}, []string{"deprecated_tag"})

	tests := []struct {
		name     string
		input    taggraph.Set
		expected []string
	}{
		{
			name:     "removes blacklisted",
			input:    taggraph.NewSet("B", "C", "d"),
			expected: []string{"B", "C"},
		},
		{
			name:     "removes entries from every list",
			input:    taggraph.NewSet("censored", "deprecated_tag", "solo"),
			expected: []string{"solo"},
		},
		{
			name:     "nothing to remove",
			input:    taggraph.NewSet("solo"),
			expected: []string{"solo"},
		},
		{
			name:     "empty set",
			input:    taggraph.NewSet(),
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.input.Sorted()
			got := bl.Apply(tt.input).Sorted()
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Apply() = %v; want %v", got, tt.expected)
			}
			if !reflect.DeepEqual(tt.input.Sorted(), before) {
				t.Error("Apply() modified its input")
			}
		})
	}
}

func TestBlacklist_Nil(t *testing.T) {
	var bl *Blacklist
	if bl.Contains("x") {
		t.Error("nil blacklist should contain nothing")
	}
	if got := bl.Apply(taggraph.NewSet("x")).Sorted(); !reflect.DeepEqual(got, []string{"x"}) {
		t.Errorf("nil Apply() = %v", got)
	}
	if bl.Len() != 0 {
		t.Error("nil blacklist Len should be 0")
	}
}
