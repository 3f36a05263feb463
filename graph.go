package initorder

import (
	"fmt"
	"slices"
	"strings"
)

// CycleError reports a dependency cycle between modules.
type CycleError struct {
	// Cycle lists the modules on the cycle, starting and ending with the
	// same module.
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCircularDependency, strings.Join(e.Cycle, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCircularDependency }

// moduleGraph maps each module to the modules it depends on.
type moduleGraph map[string][]string

func buildModuleGraph(registry ModuleRegistry) (moduleGraph, error) {
	g := make(moduleGraph, len(registry))
	for name, module := range registry {
		depAware, ok := module.(DependencyAware)
		if !ok {
			g[name] = nil
			continue
		}
		deps := slices.Clone(depAware.Dependencies())
		slices.Sort(deps)
		for _, dep := range deps {
			if _, exists := registry[dep]; !exists {
				return nil, fmt.Errorf("%w: %s depends on non-existent module %s",
					ErrModuleDependencyMissing, name, dep)
			}
		}
		g[name] = slices.Compact(deps)
	}
	return g, nil
}

// order returns the modules so that every module follows its dependencies.
// Among modules whose dependencies are all placed, the smallest name goes
// first, so the order is stable between runs.
func (g moduleGraph) order() ([]string, error) {
	waiting := make(map[string]int, len(g))
	dependents := make(map[string][]string, len(g))
	var ready []string
	for name, deps := range g {
		waiting[name] = len(deps)
		for _, dep := range deps {
			dependents[dep] = append(dependents[dep], name)
		}
		if len(deps) == 0 {
			ready = append(ready, name)
		}
	}

	out := make([]string, 0, len(g))
	for len(ready) > 0 {
		slices.Sort(ready)
		next := ready[0]
		ready = ready[1:]
		out = append(out, next)

		for _, d := range dependents[next] {
			waiting[d]--
			if waiting[d] == 0 {
				ready = append(ready, d)
			}
		}
	}

	if len(out) < len(g) {
		return nil, &CycleError{Cycle: g.findCycle()}
	}
	return out, nil
}

// findCycle walks the graph depth first and returns the first cycle found.
func (g moduleGraph) findCycle() []string {
	const (
		unvisited = iota
		onPath
		done
	)
	state := make(map[string]int, len(g))
	var path []string

	var walk func(string) []string
	walk = func(name string) []string {
		state[name] = onPath
		path = append(path, name)
		for _, dep := range g[name] {
			switch state[dep] {
			case onPath:
				start := slices.Index(path, dep)
				return append(slices.Clone(path[start:]), dep)
			case unvisited:
				if cycle := walk(dep); cycle != nil {
					return cycle
				}
			}
		}
		path = path[:len(path)-1]
		state[name] = done
		return nil
	}

	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if state[name] == unvisited {
			if cycle := walk(name); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}
