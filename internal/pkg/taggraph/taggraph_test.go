package taggraph

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestResolveCanonical(t *testing.T) {
	g, err := New([]Alias{
		{Antecedent: "ff7", Consequent: "final_fantasy_vii"},
		{Antecedent: "a", Consequent: "b"},
		{Antecedent: "b", Consequent: "c"},
		{Antecedent: "c", Consequent: "d"},
	}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		name string
		tag  string
		want string
	}{
		{"direct alias", "ff7", "final_fantasy_vii"},
		{"chain collapses to terminal", "a", "d"},
		{"middle of chain", "c", "d"},
		{"canonical resolves to itself", "d", "d"},
		{"unknown tag", "1girl", "1girl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.ResolveCanonical(tt.tag); got != tt.want {
				t.Errorf("ResolveCanonical(%q) = %q, want %q", tt.tag, got, tt.want)
			}
		})
	}
}

func TestResolveCanonical_Idempotent(t *testing.T) {
	g, err := New([]Alias{
		{Antecedent: "x", Consequent: "y"},
		{Antecedent: "y", Consequent: "z"},
		{Antecedent: "w", Consequent: "z"},
	}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for _, tag := range []string{"w", "x", "y", "z", "unrelated"} {
		once := g.ResolveCanonical(tag)
		if twice := g.ResolveCanonical(once); twice != once {
			t.Errorf("ResolveCanonical(ResolveCanonical(%q)) = %q, want %q", tag, twice, once)
		}
	}
}

func TestNew_AliasCycle(t *testing.T) {
	tests := []struct {
		name    string
		aliases []Alias
	}{
		{
			name:    "two tags",
			aliases: []Alias{{"a", "b"}, {"b", "a"}},
		},
		{
			name:    "three tags behind a tail",
			aliases: []Alias{{"tail", "a"}, {"a", "b"}, {"b", "c"}, {"c", "a"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			done := make(chan error, 1)
			go func() {
				_, err := New(tt.aliases, nil)
				done <- err
			}()

			select {
			case err := <-done:
				var cycle *CycleError
				if !errors.As(err, &cycle) {
					t.Fatalf("New() error = %v, want *CycleError", err)
				}
				if len(cycle.Path) < 3 || cycle.Path[0] != cycle.Path[len(cycle.Path)-1] {
					t.Errorf("cycle path = %v, want closed loop", cycle.Path)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("New() did not return on a cyclic alias table")
			}
		})
	}
}

func TestNew_AliasConflict(t *testing.T) {
	_, err := New([]Alias{{"a", "b"}, {"a", "c"}}, nil)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("New() error = %v, want *ConflictError", err)
	}
	if conflict.Tag != "a" {
		t.Errorf("conflict tag = %q, want %q", conflict.Tag, "a")
	}
}

func TestNew_DuplicateAndSelfAlias(t *testing.T) {
	g, err := New([]Alias{{"a", "b"}, {"a", "b"}, {"c", "c"}}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := g.ResolveCanonical("a"); got != "b" {
		t.Errorf("ResolveCanonical(a) = %q, want b", got)
	}
	if got := g.ResolveCanonical("c"); got != "c" {
		t.Errorf("ResolveCanonical(c) = %q, want c", got)
	}
	if g.IsAlias("c") {
		t.Error("self-alias should not be recorded")
	}
}

func TestCloseImplications(t *testing.T) {
	g, err := New(
		[]Alias{{"mouse_ear", "mouse_ears"}},
		[]Implication{
			{"mouse_ear", "animal_ears"},
			{"animal_ears", "ears"},
			{"cat_ears", "animal_ears"},
			{"self", "self"},
			{"p", "q"},
			{"q", "p"},
		},
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	want := map[string][]string{
		"mouse_ears":  {"animal_ears", "ears"},
		"animal_ears": {"ears"},
		"cat_ears":    {"animal_ears", "ears"},
		"p":           {"q"},
		"q":           {"p"},
	}
	if got := g.CloseImplications(); !reflect.DeepEqual(got, want) {
		t.Errorf("CloseImplications() = %v, want %v", got, want)
	}
}

func TestCloseImplications_FixedPoint(t *testing.T) {
	g, err := New(nil, []Implication{
		{"a", "b"}, {"b", "c"}, {"c", "d"}, {"d", "b"}, {"e", "a"}, {"x", "y"},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for _, start := range []string{"a", "b", "e", "x", "none"} {
		once := g.Expand(NewSet(start))
		twice := g.Expand(once)
		if !reflect.DeepEqual(once.Sorted(), twice.Sorted()) {
			t.Errorf("Expand not idempotent from %q: %v then %v", start, once.Sorted(), twice.Sorted())
		}
	}

	if got := g.Expand(NewSet("e")).Sorted(); !reflect.DeepEqual(got, []string{"a", "b", "c", "d", "e"}) {
		t.Errorf("Expand(e) = %v", got)
	}
}

func TestExpand_AliasThenImplication(t *testing.T) {
	g, err := New([]Alias{{"A", "B"}}, []Implication{{"B", "C"}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	got := g.Expand(NewSet("A", "D")).Sorted()
	want := []string{"B", "C", "D"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expand() = %v, want %v", got, want)
	}
}
