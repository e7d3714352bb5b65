// Package graph resolves task dependencies: topological ordering with
// cycle detection, and computation of the set of tasks eligible to
// start.
package graph

import (
	"github.com/felixgeelhaar/taskflow/internal/errors"
	"github.com/felixgeelhaar/taskflow/internal/task"
)

// DFS coloring for cycle detection.
type color int

const (
	white color = iota // unvisited
	gray               // on the recursion stack
	black              // finished
)

// Validate checks the dependency relation of the table: every
// dependency must resolve to an existing task and the relation, viewed
// as a directed graph, must be acyclic. Both failures are fatal at
// load time.
func Validate(tasks []task.Task) error {
	index := indexByNumber(tasks)

	for _, t := range tasks {
		for _, dep := range t.Dependencies {
			if _, ok := index[dep]; !ok {
				return errors.NewMissingDependencyError(t.Number, dep)
			}
		}
	}

	_, err := TopologicalOrder(tasks)
	return err
}

// TopologicalOrder returns the task numbers in an order where every
// task appears after all of its dependencies. Ties are broken by
// numeric task-number order so the result is deterministic. A cycle
// yields a CycleDetectedError naming the cycle.
func TopologicalOrder(tasks []task.Task) ([]task.Number, error) {
	index := indexByNumber(tasks)

	// Visit in tie-break order for a reproducible result.
	roots := numbersOf(tasks)
	task.SortNumbers(roots)

	colors := make(map[task.Number]color, len(tasks))
	var order []task.Number
	var stack []task.Number

	var visit func(n task.Number) error
	visit = func(n task.Number) error {
		switch colors[n] {
		case black:
			return nil
		case gray:
			// Back-edge: the cycle is the stack suffix from n, closed
			// with n again.
			cycle := []task.Number{n}
			for i := len(stack) - 1; i >= 0; i-- {
				cycle = append(cycle, stack[i])
				if stack[i] == n {
					break
				}
			}
			// Reverse into dependency order.
			for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
				cycle[i], cycle[j] = cycle[j], cycle[i]
			}
			return errors.NewCycleError(cycle)
		}

		colors[n] = gray
		stack = append(stack, n)

		t := tasks[index[n]]
		deps := append([]task.Number(nil), t.Dependencies...)
		task.SortNumbers(deps)
		for _, dep := range deps {
			if _, ok := index[dep]; !ok {
				return errors.NewMissingDependencyError(n, dep)
			}
			if err := visit(dep); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		colors[n] = black
		order = append(order, n)
		return nil
	}

	for _, n := range roots {
		if err := visit(n); err != nil {
			return nil, err
		}
	}

	return order, nil
}

// ReadyTasks returns the numbers of all pending tasks whose every
// dependency is done, in ascending numeric order. The set is
// recomputed from scratch on every call; done transitions change
// eligibility and there is no cache to invalidate.
func ReadyTasks(tasks []task.Task) []task.Number {
	index := indexByNumber(tasks)

	var ready []task.Number
	for _, t := range tasks {
		if t.Status() != task.StatusPending {
			continue
		}
		if unmet(t, tasks, index) == nil {
			ready = append(ready, t.Number)
		}
	}

	task.SortNumbers(ready)
	return ready
}

// Blocking returns the dependencies of task n that are not yet done,
// in ascending numeric order.
func Blocking(tasks []task.Task, n task.Number) []task.Number {
	index := indexByNumber(tasks)
	i, ok := index[n]
	if !ok {
		return nil
	}

	waiting := unmet(tasks[i], tasks, index)
	task.SortNumbers(waiting)
	return waiting
}

func unmet(t task.Task, tasks []task.Task, index map[task.Number]int) []task.Number {
	var waiting []task.Number
	for _, dep := range t.Dependencies {
		i, ok := index[dep]
		if !ok || tasks[i].Status() != task.StatusDone {
			waiting = append(waiting, dep)
		}
	}
	return waiting
}

func indexByNumber(tasks []task.Task) map[task.Number]int {
	index := make(map[task.Number]int, len(tasks))
	for i, t := range tasks {
		index[t.Number] = i
	}
	return index
}

func numbersOf(tasks []task.Task) []task.Number {
	nums := make([]task.Number, len(tasks))
	for i, t := range tasks {
		nums[i] = t.Number
	}
	return nums
}
