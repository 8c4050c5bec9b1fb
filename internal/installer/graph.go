package installer

import (
	"errors"
	"fmt"
	"sort"

	"github.com/baileyrd/naner-sub002/internal/catalog"
)

// ErrDependencyCycle reports a cyclic vendor catalog. It is a configuration
// error and aborts a run before any network activity.
var ErrDependencyCycle = errors.New("dependency cycle in vendor catalog")

// Order computes an install order over defs with Kahn's algorithm, placing
// every vendor after all of its declared dependencies. Dependencies outside
// defs (disabled or filtered vendors) do not gate ordering. Ties break
// lexicographically so the order is deterministic.
func Order(defs map[string]catalog.VendorDefinition) ([]string, error) {
	indegree := make(map[string]int, len(defs))
	dependents := make(map[string][]string, len(defs))

	for id, def := range defs {
		if _, ok := indegree[id]; !ok {
			indegree[id] = 0
		}
		for _, dep := range def.Dependencies {
			if _, ok := defs[dep]; !ok {
				continue
			}
			indegree[id]++
			dependents[dep] = append(dependents[dep], id)
		}
	}

	var ready []string
	for id, deg := range indegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(defs))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		next := dependents[id]
		sort.Strings(next)
		for _, dep := range next {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = insertSorted(ready, dep)
			}
		}
	}

	if len(order) != len(defs) {
		var stuck []string
		for id, deg := range indegree {
			if deg > 0 {
				stuck = append(stuck, id)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("%w: involves %v", ErrDependencyCycle, stuck)
	}
	return order, nil
}

// Closure restricts defs to id plus its transitive dependencies, so a
// single-vendor install still honors the vendor's own dependency chain.
func Closure(defs map[string]catalog.VendorDefinition, id string) (map[string]catalog.VendorDefinition, error) {
	if _, ok := defs[id]; !ok {
		return nil, fmt.Errorf("unknown vendor: %s", id)
	}

	out := make(map[string]catalog.VendorDefinition)
	var visit func(string)
	visit = func(cur string) {
		if _, done := out[cur]; done {
			return
		}
		def, ok := defs[cur]
		if !ok {
			return
		}
		out[cur] = def
		for _, dep := range def.Dependencies {
			visit(dep)
		}
	}
	visit(id)
	return out, nil
}

func insertSorted(list []string, v string) []string {
	idx := sort.SearchStrings(list, v)
	list = append(list, "")
	copy(list[idx+1:], list[idx:])
	list[idx] = v
	return list
}
