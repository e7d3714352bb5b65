// Package report renders the session summary and computes the single
// canonical next-task directive from store state.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/taskflow/internal/graph"
	"github.com/felixgeelhaar/taskflow/internal/task"
)

// DefaultCommand is the invocation name interpolated into the
// directive line when none is configured.
const DefaultCommand = "taskflow run"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	blockedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// NextDirective computes the mandatory final line of the session
// output, purely from store state: calling it twice without an
// intervening mutation yields an identical result.
func NextDirective(tasks []task.Task, command string) string {
	if command == "" {
		command = DefaultCommand
	}

	if allDone(tasks) {
		return fmt.Sprintf("Next task: %s All tasks complete - Ready for PR submission", command)
	}

	// A blocked in-flight task must be unblocked before anything else
	// happens.
	if t, ok := inFlight(tasks); ok {
		if _, blocked := t.Blocked(); blocked {
			return fmt.Sprintf("Next task: %s Fix blocker in Task %s before continuing", command, t.Number)
		}
		return fmt.Sprintf("Next task: %s Start with Task %s: %s", command, t.Number, t.Title)
	}

	if ready := graph.ReadyTasks(tasks); len(ready) > 0 {
		t := byNumber(tasks, ready[0])
		return fmt.Sprintf("Next task: %s Start with Task %s: %s", command, t.Number, t.Title)
	}

	// Nothing ready and nothing in flight: name what the lowest
	// remaining task waits for.
	stalled := lowestNotDone(tasks)
	waiting := graph.Blocking(tasks, stalled.Number)
	names := make([]string, len(waiting))
	for i, n := range waiting {
		names[i] = n.String()
	}
	return fmt.Sprintf("Next task: %s Task %s blocked - waiting for: [%s]", command, stalled.Number, strings.Join(names, ", "))
}

// Summary renders a human-readable session overview: per-status
// counts, the task list with phase detail, and any recorded blockers.
// The directive line is not included; callers print it last, after the
// summary, per the session output contract.
func Summary(tasks []task.Task) string {
	var b strings.Builder

	done, active, pending := 0, 0, 0
	for _, t := range tasks {
		switch t.Status() {
		case task.StatusDone:
			done++
		case task.StatusInProgress:
			active++
		default:
			pending++
		}
	}

	b.WriteString(titleStyle.Render("Session summary"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%d tasks: %s done, %s in progress, %s pending\n",
		len(tasks),
		doneStyle.Render(fmt.Sprintf("%d", done)),
		activeStyle.Render(fmt.Sprintf("%d", active)),
		pendingStyle.Render(fmt.Sprintf("%d", pending)),
	))
	b.WriteString("\n")

	ordered := make([]task.Number, 0, len(tasks))
	for _, t := range tasks {
		ordered = append(ordered, t.Number)
	}
	task.SortNumbers(ordered)

	for _, n := range ordered {
		t := byNumber(tasks, n)
		line := fmt.Sprintf("  %s %-6s %-32s %s", statusSymbol(t), t.Number, truncate(t.Title, 32), t.Phase)
		if reason, blocked := t.Blocked(); blocked {
			line += blockedStyle.Render(fmt.Sprintf("  [blocked: %s]", reason))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

func statusSymbol(t task.Task) string {
	if _, blocked := t.Blocked(); blocked {
		return blockedStyle.Render("!")
	}
	switch t.Status() {
	case task.StatusDone:
		return doneStyle.Render("✓")
	case task.StatusInProgress:
		return activeStyle.Render("▶")
	default:
		return pendingStyle.Render("·")
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

// allDone is vacuously true for an empty table, matching the execution
// loop's all-complete outcome for the same state.
func allDone(tasks []task.Task) bool {
	for _, t := range tasks {
		if t.Status() != task.StatusDone {
			return false
		}
	}
	return true
}

func inFlight(tasks []task.Task) (task.Task, bool) {
	for _, t := range tasks {
		if t.Status() == task.StatusInProgress {
			return t, true
		}
	}
	return task.Task{}, false
}

func lowestNotDone(tasks []task.Task) task.Task {
	var lowest *task.Task
	for i := range tasks {
		if tasks[i].Status() == task.StatusDone {
			continue
		}
		if lowest == nil || tasks[i].Number.Less(lowest.Number) {
			lowest = &tasks[i]
		}
	}
	if lowest == nil {
		return task.Task{}
	}
	return lowest.Clone()
}

func byNumber(tasks []task.Task, n task.Number) task.Task {
	for _, t := range tasks {
		if t.Number == n {
			return t
		}
	}
	return task.Task{}
}
