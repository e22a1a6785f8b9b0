package classify

import (
	"sort"
)

// Origin records why a direct edge exists.
type Origin int

const (
	Asserted   Origin = iota + 1 // rdfs:subClassOf / rdfs:subPropertyOf
	Equivalent                   // one half of owl:equivalentClass
	Definition                   // restriction matched a defined class
)

func (o Origin) String() string {
	switch o {
	case Asserted:
		return "asserted"
	case Equivalent:
		return "equivalentClass"
	case Definition:
		return "definition"
	default:
		return "unknown"
	}
}

// ClassNode is one named class (or property) in a hierarchy.
type ClassNode struct {
	URI              string
	Direct           map[string]Origin   // direct superclasses
	Closure          map[string]struct{} // reflexive-transitive closure of Direct
	EquivalenceGroup map[string]struct{} // members mutually in each other's closure, self included
}

// Hierarchy is a directed graph of named nodes. Closure and equivalence data
// are only valid after ComputeClosure and go stale on AddEdge.
type Hierarchy struct {
	Nodes map[string]*ClassNode
	stale bool
}

// NewHierarchy creates an empty hierarchy.
func NewHierarchy() *Hierarchy {
	return &Hierarchy{Nodes: make(map[string]*ClassNode), stale: true}
}

// Node returns the node for uri, creating it if needed.
func (h *Hierarchy) Node(uri string) *ClassNode {
	n, ok := h.Nodes[uri]
	if !ok {
		n = &ClassNode{
			URI:              uri,
			Direct:           make(map[string]Origin),
			Closure:          map[string]struct{}{uri: {}},
			EquivalenceGroup: map[string]struct{}{uri: {}},
		}
		h.Nodes[uri] = n
		h.stale = true
	}
	return n
}

// AddEdge records sub ⊑ sup and reports whether the edge is new.
func (h *Hierarchy) AddEdge(sub, sup string, origin Origin) bool {
	if sub == sup {
		return false
	}
	h.Node(sup)
	n := h.Node(sub)
	if _, ok := n.Direct[sup]; ok {
		return false
	}
	n.Direct[sup] = origin
	h.stale = true
	return true
}

// Stale reports whether closures need recomputing.
func (h *Hierarchy) Stale() bool { return h.stale }

// ComputeClosure recomputes every closure by iterating to a fixpoint: each
// node's closure absorbs the closures of its members until nothing grows.
// It returns the number of passes made.
func (h *Hierarchy) ComputeClosure() int {
	for _, n := range h.Nodes {
		n.Closure = map[string]struct{}{n.URI: {}}
		for sup := range n.Direct {
			n.Closure[sup] = struct{}{}
		}
	}

	keys := h.Classes()
	passes := 0
	// Each pass at least doubles reachable path length, so len(keys)+1 passes
	// always suffice.
	for limit := len(keys) + 1; passes < limit; {
		passes++
		grew := false
		for _, uri := range keys {
			n := h.Nodes[uri]
			var add []string
			for member := range n.Closure {
				for anc := range h.Nodes[member].Closure {
					if _, ok := n.Closure[anc]; !ok {
						add = append(add, anc)
					}
				}
			}
			for _, a := range add {
				if _, ok := n.Closure[a]; !ok {
					n.Closure[a] = struct{}{}
					grew = true
				}
			}
		}
		if !grew {
			break
		}
	}

	for _, n := range h.Nodes {
		n.EquivalenceGroup = map[string]struct{}{n.URI: {}}
		for member := range n.Closure {
			if _, back := h.Nodes[member].Closure[n.URI]; back {
				n.EquivalenceGroup[member] = struct{}{}
			}
		}
	}
	h.stale = false
	return passes
}

// Classes returns every node URI in order.
func (h *Hierarchy) Classes() []string {
	out := make([]string, 0, len(h.Nodes))
	for uri := range h.Nodes {
		out = append(out, uri)
	}
	sort.Strings(out)
	return out
}

// Subsumes reports whether sub ⊑ sup holds in the closure. Unknown nodes only
// subsume themselves.
func (h *Hierarchy) Subsumes(sup, sub string) bool {
	if sub == sup {
		return true
	}
	n, ok := h.Nodes[sub]
	if !ok {
		return false
	}
	_, ok = n.Closure[sup]
	return ok
}

// Ancestors returns closure(uri) including uri itself.
func (h *Hierarchy) Ancestors(uri string) []string {
	n, ok := h.Nodes[uri]
	if !ok {
		return []string{uri}
	}
	out := make([]string, 0, len(n.Closure))
	for a := range n.Closure {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Descendants returns every node whose closure contains uri, uri excluded.
func (h *Hierarchy) Descendants(uri string) []string {
	var out []string
	for _, n := range h.Nodes {
		if n.URI == uri {
			continue
		}
		if _, ok := n.Closure[uri]; ok {
			out = append(out, n.URI)
		}
	}
	sort.Strings(out)
	return out
}

// Equivalent reports whether a and b share an equivalence group.
func (h *Hierarchy) Equivalent(a, b string) bool {
	return h.Subsumes(a, b) && h.Subsumes(b, a)
}

// ProperAncestor reports whether anc is strictly above c: c ⊑ anc but not
// the reverse.
func (h *Hierarchy) ProperAncestor(anc, c string) bool {
	return anc != c && h.Subsumes(anc, c) && !h.Subsumes(c, anc)
}

// Groups returns every equivalence group with more than one member.
func (h *Hierarchy) Groups() [][]string {
	seen := make(map[string]bool)
	var out [][]string
	for _, uri := range h.Classes() {
		if seen[uri] {
			continue
		}
		n := h.Nodes[uri]
		if len(n.EquivalenceGroup) < 2 {
			continue
		}
		group := make([]string, 0, len(n.EquivalenceGroup))
		for m := range n.EquivalenceGroup {
			group = append(group, m)
			seen[m] = true
		}
		sort.Strings(group)
		out = append(out, group)
	}
	return out
}

// DirectSupers returns the direct superclasses of uri in order.
func (h *Hierarchy) DirectSupers(uri string) []string {
	n, ok := h.Nodes[uri]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(n.Direct))
	for s := range n.Direct {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
