package engine

import (
	"slices"

	"github.com/flatsync/flatsync/internal/accessor"
	"github.com/flatsync/flatsync/internal/record"
)

// AccessorFor returns the memoized accessor handle for a target,
// constructing one through the configured factory on first use. A target
// identifier maps to at most one live handle per engine.
func (e *Engine) AccessorFor(target string) accessor.Accessor {
	if acc, ok := e.accessors[target]; ok {
		return acc
	}
	acc := e.factory(target)
	e.accessors[target] = acc
	return acc
}

// Targets returns every target a prefetch pass must load: the configured
// default, every target already known to the registry, and every target a
// spec overrides to. The result is deduplicated and sorted so prefetch
// order is deterministic.
//
// A missing default target is a CONFIG error: the engine cannot place
// specs without an override anywhere.
func (e *Engine) Targets(specs []record.Spec) ([]string, error) {
	if e.defaultTarget == "" {
		return nil, NewConfigError("no default target configured")
	}

	seen := map[string]bool{e.defaultTarget: true}
	for target := range e.accessors {
		seen[target] = true
	}
	for _, spec := range specs {
		if t := spec.Target(); t != "" {
			seen[t] = true
		}
	}

	out := make([]string, 0, len(seen))
	for target := range seen {
		out = append(out, target)
	}
	slices.Sort(out)
	return out, nil
}
