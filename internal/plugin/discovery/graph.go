package discovery

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/workbench/internal/plugin"
)

// graph indexes candidates by name; node ids are discovery indexes.
type graph struct {
	nodes []candidate
	index map[string]int
	edges [][]int // dependency edges in declared order
}

func newGraph(candidates []candidate) *graph {
	g := &graph{
		nodes: candidates,
		index: make(map[string]int, len(candidates)),
		edges: make([][]int, len(candidates)),
	}
	for i, c := range candidates {
		g.index[c.manifest.Name] = i
	}
	for i, c := range candidates {
		for _, dep := range c.manifest.Dependencies {
			if j, ok := g.index[dep]; ok {
				g.edges[i] = append(g.edges[i], j)
			}
		}
	}
	return g
}

// resolve drops candidates with missing, circular or unresolved dependencies
// and orders the rest so every dependency precedes its dependents.
func resolve(candidates []candidate) ([]*plugin.Feature, []Error) {
	g := newGraph(candidates)
	excluded := make([]bool, len(candidates))
	var errs []Error

	// Missing dependencies
	for i, c := range candidates {
		var missing []string
		for _, dep := range c.manifest.Dependencies {
			if _, ok := g.index[dep]; !ok {
				missing = append(missing, dep)
			}
		}
		if len(missing) == 0 {
			continue
		}
		excluded[i] = true
		errs = append(errs, Error{
			FeaturePath: c.path,
			Type:        ErrorDependency,
			Message:     fmt.Sprintf("Missing dependencies: %s", strings.Join(missing, ", ")),
			Err:         plugin.ErrDependencyNotFound,
		})
	}

	// Cycles
	for _, scc := range g.cycles(excluded) {
		names := make([]string, len(scc))
		for k, id := range scc {
			names[k] = candidates[id].manifest.Name
			excluded[id] = true
		}
		errs = append(errs, Error{
			FeaturePath: candidates[scc[0]].path,
			Type:        ErrorDependency,
			Message:     fmt.Sprintf("Circular dependency detected among features: %s", strings.Join(names, ", ")),
			Err:         plugin.ErrCyclicDependency,
		})
	}

	// Anything that still reaches an excluded feature cannot run either.
	unresolved := make([]bool, len(candidates))
	for changed := true; changed; {
		changed = false
		for i := range candidates {
			if excluded[i] {
				continue
			}
			for _, j := range g.edges[i] {
				if excluded[j] {
					excluded[i] = true
					unresolved[i] = true
					changed = true
					break
				}
			}
		}
	}
	for i, c := range candidates {
		if !unresolved[i] {
			continue
		}
		var blocked []string
		for _, j := range g.edges[i] {
			if excluded[j] {
				blocked = append(blocked, candidates[j].manifest.Name+" (excluded)")
			}
		}
		errs = append(errs, Error{
			FeaturePath: c.path,
			Type:        ErrorDependency,
			Message:     fmt.Sprintf("Unresolved dependencies: %s", strings.Join(blocked, ", ")),
			Err:         plugin.ErrUnresolvedDependency,
		})
	}

	order := g.topoOrder(excluded)
	features := make([]*plugin.Feature, 0, len(order))
	for _, id := range order {
		c := candidates[id]
		features = append(features, plugin.NewFeature(c.manifest, c.entry, c.path))
	}
	return features, errs
}

// cycles returns the strongly connected components that form a cycle:
// more than one member, or a single member that depends on itself.
// Members are in discovery order and components are ordered by their first member.
func (g *graph) cycles(excluded []bool) [][]int {
	var (
		counter  int
		stack    []int
		onStack  = make([]bool, len(g.nodes))
		indexOf  = make([]int, len(g.nodes))
		lowlink  = make([]int, len(g.nodes))
		visited  = make([]bool, len(g.nodes))
		found    [][]int
		strongly func(v int)
	)

	strongly = func(v int) {
		visited[v] = true
		indexOf[v] = counter
		lowlink[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.edges[v] {
			if excluded[w] {
				continue
			}
			if !visited[w] {
				strongly(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indexOf[w])
			}
		}

		if lowlink[v] != indexOf[v] {
			return
		}
		var scc []int
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		if len(scc) > 1 || g.selfLoop(v) {
			sort.Ints(scc)
			found = append(found, scc)
		}
	}

	for v := range g.nodes {
		if !excluded[v] && !visited[v] {
			strongly(v)
		}
	}

	sort.Slice(found, func(a, b int) bool {
		return found[a][0] < found[b][0]
	})
	return found
}

func (g *graph) selfLoop(v int) bool {
	for _, w := range g.edges[v] {
		if w == v {
			return true
		}
	}
	return false
}

// topoOrder returns the non-excluded nodes in dependency order. Ties are
// broken by discovery order so the result is deterministic.
func (g *graph) topoOrder(excluded []bool) []int {
	visited := make([]bool, len(g.nodes))
	order := make([]int, 0, len(g.nodes))

	var visit func(v int)
	visit = func(v int) {
		if visited[v] {
			return
		}
		visited[v] = true
		for _, w := range g.edges[v] {
			if !excluded[w] {
				visit(w)
			}
		}
		order = append(order, v)
	}

	for v := range g.nodes {
		if !excluded[v] {
			visit(v)
		}
	}
	return order
}
