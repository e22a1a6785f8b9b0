package classify

import (
	"fmt"
	"strings"
)

// Step is one direct edge in a subsumption proof.
type Step struct {
	From   string
	To     string
	Depth  int
	Origin Origin
}

// Explain finds a chain of direct edges proving sub ⊑ sup. It returns nil
// when no chain exists or sub == sup.
func (h *Hierarchy) Explain(sub, sup string) []Step {
	if sub == sup {
		return nil
	}
	if _, ok := h.Nodes[sub]; !ok {
		return nil
	}

	// breadth-first so the shortest chain wins
	type hop struct {
		node string
		path []Step
	}
	visited := map[string]bool{sub: true}
	queue := []hop{{node: sub}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range h.DirectSupers(cur.node) {
			if visited[next] {
				continue
			}
			visited[next] = true
			path := make([]Step, len(cur.path), len(cur.path)+1)
			copy(path, cur.path)
			path = append(path, Step{
				From:   cur.node,
				To:     next,
				Depth:  len(cur.path),
				Origin: h.Nodes[cur.node].Direct[next],
			})
			if next == sup {
				return path
			}
			queue = append(queue, hop{node: next, path: path})
		}
	}
	return nil
}

// Describe renders a proof chain for display.
func Describe(sub, sup string, steps []Step) string {
	if len(steps) == 0 {
		return fmt.Sprintf("no derivation of %s ⊑ %s", sub, sup)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s ⊑ %s:\n", sub, sup)
	for i, s := range steps {
		fmt.Fprintf(&b, "  %d. %s ⊑ %s (%s)\n", i+1, s.From, s.To, s.Origin)
	}
	return b.String()
}
