package taggraph

import (
	"sort"
)

// Alias rewrites Antecedent to Consequent.
type Alias struct {
	Antecedent string
	Consequent string
}

// Implication states that a post tagged Antecedent is also tagged Consequent.
type Implication struct {
	Antecedent string
	Consequent string
}

// Set is a set of tags.
type Set map[string]struct{}

// NewSet builds a set from tags.
func NewSet(tags ...string) Set {
	s := make(Set, len(tags))
	for _, t := range tags {
		s[t] = struct{}{}
	}
	return s
}

// Add inserts tag into the set.
func (s Set) Add(tag string) {
	s[tag] = struct{}{}
}

// Has reports whether tag is in the set.
func (s Set) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

// Sorted returns the tags in lexicographic order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Graph holds the collapsed alias mapping and the implication closure.
// It is read-only once New returns and safe for concurrent use.
type Graph struct {
	canonical map[string]string
	closure   map[string][]string
}

// New validates the alias table, collapses alias chains to their terminal tag,
// canonicalizes the implications and computes their transitive closure.
func New(aliases []Alias, implications []Implication) (*Graph, error) {
	edges := make(map[string]string, len(aliases))
	for _, a := range aliases {
		if a.Antecedent == a.Consequent {
			continue
		}
		if prev, ok := edges[a.Antecedent]; ok && prev != a.Consequent {
			return nil, &ConflictError{Tag: a.Antecedent, First: prev, Second: a.Consequent}
		}
		edges[a.Antecedent] = a.Consequent
	}

	canonical, err := collapseAliases(edges)
	if err != nil {
		return nil, err
	}

	g := &Graph{canonical: canonical}
	g.closure = g.closeImplications(implications)
	return g, nil
}

type visitState uint8

const (
	stateVisiting visitState = iota + 1
	stateDone
)

// collapseAliases follows every alias chain to its terminal tag.
func collapseAliases(edges map[string]string) (map[string]string, error) {
	canonical := make(map[string]string, len(edges))
	states := make(map[string]visitState, len(edges))

	// deterministic order so the reported cycle does not depend on map iteration
	starts := make([]string, 0, len(edges))
	for from := range edges {
		starts = append(starts, from)
	}
	sort.Strings(starts)

	for _, start := range starts {
		if states[start] == stateDone {
			continue
		}

		var path []string
		tag := start
		for {
			if states[tag] == stateDone {
				break
			}
			if states[tag] == stateVisiting {
				return nil, newCycleError(path, tag)
			}
			next, ok := edges[tag]
			if !ok {
				break
			}
			states[tag] = stateVisiting
			path = append(path, tag)
			tag = next
		}

		terminal := tag
		if t, ok := canonical[tag]; ok {
			terminal = t
		}
		for _, p := range path {
			canonical[p] = terminal
			states[p] = stateDone
		}
	}

	return canonical, nil
}

func newCycleError(path []string, repeated string) *CycleError {
	for i, p := range path {
		if p == repeated {
			cycle := append([]string{}, path[i:]...)
			return &CycleError{Path: append(cycle, repeated)}
		}
	}
	return &CycleError{Path: append(append([]string{}, path...), repeated)}
}

// ResolveCanonical returns the terminal tag of tag's alias chain.
// Tags without an alias resolve to themselves.
func (g *Graph) ResolveCanonical(tag string) string {
	if c, ok := g.canonical[tag]; ok {
		return c
	}
	return tag
}

// IsAlias reports whether tag is rewritten to another tag.
func (g *Graph) IsAlias(tag string) bool {
	_, ok := g.canonical[tag]
	return ok
}

// closeImplications runs one BFS per source tag. A source whose closure is
// already complete contributes it wholesale instead of being walked again.
func (g *Graph) closeImplications(implications []Implication) map[string][]string {
	direct := make(map[string]Set)
	for _, imp := range implications {
		from := g.ResolveCanonical(imp.Antecedent)
		to := g.ResolveCanonical(imp.Consequent)
		if from == to {
			continue
		}
		if direct[from] == nil {
			direct[from] = make(Set)
		}
		direct[from].Add(to)
	}

	sources := make([]string, 0, len(direct))
	for from := range direct {
		sources = append(sources, from)
	}
	sort.Strings(sources)

	done := make(map[string]Set, len(direct))
	for _, source := range sources {
		reached := make(Set)
		queue := make([]string, 0, len(direct[source]))
		for to := range direct[source] {
			queue = append(queue, to)
		}

		for len(queue) > 0 {
			tag := queue[0]
			queue = queue[1:]
			if reached.Has(tag) {
				continue
			}
			reached.Add(tag)

			if full, ok := done[tag]; ok {
				for t := range full {
					reached.Add(t)
				}
				continue
			}
			for next := range direct[tag] {
				if !reached.Has(next) {
					queue = append(queue, next)
				}
			}
		}

		delete(reached, source)
		done[source] = reached
	}

	closure := make(map[string][]string, len(done))
	for source, reached := range done {
		if len(reached) == 0 {
			continue
		}
		closure[source] = reached.Sorted()
	}
	return closure
}

// CloseImplications returns the cached implication closure: for every source
// tag, all tags it implies directly or transitively, sorted. The source itself
// is never listed. Callers must not modify the returned slices.
func (g *Graph) CloseImplications() map[string][]string {
	return g.closure
}

// Implied returns the closure of one canonical tag.
func (g *Graph) Implied(tag string) []string {
	return g.closure[tag]
}

// Expand resolves every tag to its canonical form and unions in everything
// the canonical tags imply.
func (g *Graph) Expand(tags Set) Set {
	out := make(Set, len(tags))
	for t := range tags {
		c := g.ResolveCanonical(t)
		out.Add(c)
		for _, implied := range g.closure[c] {
			out.Add(implied)
		}
	}
	return out
}

// AliasCount returns how many tags are rewritten by the alias table.
func (g *Graph) AliasCount() int {
	return len(g.canonical)
}
