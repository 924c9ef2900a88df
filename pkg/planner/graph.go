/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package planner

import (
	"sort"
	"strings"

	"github.com/hostplan/hostplan/pkg/errors"
)

// sortTopologically orders actions so every action follows all of its
// predecessors, with lexicographic tie-breaking for determinism. A cycle
// fails with CYCLIC_DEPENDENCY naming the cycle path.
func sortTopologically(actions map[string]*Action) ([]*Action, error) {
	if err := detectCycles(actions); err != nil {
		return nil, err
	}

	indegree := make(map[string]int, len(actions))
	dependents := make(map[string][]string, len(actions))
	for id, a := range actions {
		indegree[id] += 0
		for _, dep := range a.DependsOn {
			indegree[id]++
			dependents[dep] = append(dependents[dep], id)
		}
	}

	ready := make([]string, 0, len(actions))
	for id, deg := range indegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	ordered := make([]*Action, 0, len(actions))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		ordered = append(ordered, actions[id])

		released := false
		for _, dep := range dependents[id] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
				released = true
			}
		}
		if released {
			sort.Strings(ready)
		}
	}

	return ordered, nil
}

// detectCycles runs a depth-first search with the classic three node sets:
// permanently visited, on the current recursion stack, and unvisited. A
// back edge to a node on the stack is a cycle; the error names the full
// cycle path.
func detectCycles(actions map[string]*Action) error {
	const (
		unvisited = iota
		inStack
		done
	)

	ids := make([]string, 0, len(actions))
	for id := range actions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	mark := make(map[string]int, len(actions))
	var stack []string

	var visit func(id string) error
	visit = func(id string) error {
		switch mark[id] {
		case done:
			return nil
		case inStack:
			return cycleError(stack, id)
		}

		mark[id] = inStack
		stack = append(stack, id)

		deps := append([]string(nil), actions[id].DependsOn...)
		sort.Strings(deps)
		for _, dep := range deps {
			if _, ok := actions[dep]; !ok {
				continue
			}
			if err := visit(dep); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		mark[id] = done
		return nil
	}

	for _, id := range ids {
		if mark[id] == unvisited {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}

func cycleError(stack []string, repeat string) error {
	start := 0
	for i, id := range stack {
		if id == repeat {
			start = i
			break
		}
	}
	cycle := append(append([]string(nil), stack[start:]...), repeat)
	return errors.NewWithContext(errors.ErrCodeCyclicDependency,
		"dependency cycle: "+strings.Join(cycle, " -> "),
		map[string]any{"cycle": cycle})
}
