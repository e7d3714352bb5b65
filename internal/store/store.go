// Package store owns the persisted task table. It is the sole owner of
// on-disk state: load validates the whole table before anything runs,
// mutations are rejected before any write, and save rewrites the whole
// file atomically.
package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/taskflow/internal/errors"
	"github.com/felixgeelhaar/taskflow/internal/graph"
	"github.com/felixgeelhaar/taskflow/internal/task"
)

// Required columns of the task table, in canonical order. The phase
// column is written on save but tolerated as absent on load so tables
// created by earlier versions still open.
var requiredColumns = []string{
	"number", "title", "status", "dependencies", "estimated_hours", "complexity", "notes",
}

const phaseColumn = "phase"

// Store holds the task table for one plan. All mutation goes through
// UpdateStatus/Append/notes methods; nothing is persisted until Save.
type Store struct {
	path  string
	tasks []task.Task
	index map[task.Number]int
}

// New creates an empty store that will persist to path. Used when
// populating a fresh table from the plan document.
func New(path string) *Store {
	return &Store{
		path:  path,
		index: make(map[task.Number]int),
	}
}

// Open loads and validates the task table at path. Any structural
// inconsistency (malformed row, duplicate number, unresolved or cyclic
// dependency) is fatal: execution must not proceed past it.
func Open(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeTableRead, fmt.Sprintf("cannot read task table %s", path), err).
			WithSuggestion("Run 'taskflow init' to create the table from the plan document")
	}
	defer f.Close()

	s := New(path)
	if err := s.read(f); err != nil {
		return nil, err
	}

	if err := graph.Validate(s.tasks); err != nil {
		return nil, err
	}

	return s, nil
}

// Path returns the on-disk location of the table.
func (s *Store) Path() string {
	return s.path
}

// Len returns the number of tasks in the table.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Tasks returns a deep copy of the task table.
func (s *Store) Tasks() []task.Task {
	out := make([]task.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

// Get returns a copy of the task with the given number.
func (s *Store) Get(n task.Number) (task.Task, error) {
	i, ok := s.index[n]
	if !ok {
		return task.Task{}, errors.NewTaskNotFoundError(n)
	}
	return s.tasks[i].Clone(), nil
}

// Append adds a new task to the table. Numbers are unique; a duplicate
// is rejected.
func (s *Store) Append(t task.Task) error {
	if _, exists := s.index[t.Number]; exists {
		return errors.NewDuplicateTaskError(t.Number)
	}
	s.index[t.Number] = len(s.tasks)
	s.tasks = append(s.tasks, t.Clone())
	return nil
}

// InFlight returns the single task whose status is in-progress, if
// any. The orchestrator drives tasks serially, so the store enforces
// that at most one exists.
func (s *Store) InFlight() (task.Task, bool) {
	for _, t := range s.tasks {
		if t.Status() == task.StatusInProgress {
			return t.Clone(), true
		}
	}
	return task.Task{}, false
}

// UpdateStatus advances the task to the given phase. The request is
// checked against the canonical order before anything mutates: phases
// move strictly forward one step at a time, and a task may only enter
// in-progress while no other task is in flight. Out-of-order requests
// fail closed with an InvalidTransitionError and the table is left
// untouched.
func (s *Store) UpdateStatus(n task.Number, next task.Phase) error {
	i, ok := s.index[n]
	if !ok {
		return errors.NewTaskNotFoundError(n)
	}
	current := s.tasks[i].Phase

	want, ok := current.Next()
	if !ok || next != want {
		return errors.NewInvalidTransitionError(n, current, next)
	}

	if next == task.PhaseInProgress {
		if other, busy := s.InFlight(); busy && other.Number != n {
			return errors.NewInvalidTransitionError(n, current, next).
				WithSuggestion(fmt.Sprintf("task %s is already in flight; only one task may be in progress at a time", other.Number))
		}
	}

	s.tasks[i].Phase = next
	return nil
}

// UpdateNotes replaces the notes of the task.
func (s *Store) UpdateNotes(n task.Number, notes string) error {
	i, ok := s.index[n]
	if !ok {
		return errors.NewTaskNotFoundError(n)
	}
	s.tasks[i].Notes = notes
	return nil
}

// MarkBlocked records a blocked marker in the task's notes. Blocked is
// a side-state, not a status value: the phase is untouched.
func (s *Store) MarkBlocked(n task.Number, reason string) error {
	i, ok := s.index[n]
	if !ok {
		return errors.NewTaskNotFoundError(n)
	}
	s.tasks[i].SetBlocked(reason)
	return nil
}

// ClearBlocked removes a blocked marker from the task's notes.
func (s *Store) ClearBlocked(n task.Number) error {
	i, ok := s.index[n]
	if !ok {
		return errors.NewTaskNotFoundError(n)
	}
	s.tasks[i].ClearBlocked()
	return nil
}

// Save rewrites the whole table atomically: the new content is written
// to a temporary file in the same directory and renamed over the old
// one, so an interrupted save never leaves a partially written table.
func (s *Store) Save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeTableWrite, fmt.Sprintf("cannot create directory %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, ".tasks-*.csv")
	if err != nil {
		return errors.Wrap(errors.ErrCodeTableWrite, "cannot create temporary table file", err)
	}
	tmpName := tmp.Name()

	if err := s.write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeTableWrite, "cannot close temporary table file", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeTableWrite, fmt.Sprintf("cannot replace task table %s", s.path), err)
	}

	return nil
}

func (s *Store) write(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := append(append([]string(nil), requiredColumns...), phaseColumn)
	if err := cw.Write(header); err != nil {
		return errors.Wrap(errors.ErrCodeTableWrite, "cannot write table header", err)
	}

	for _, t := range s.tasks {
		row := []string{
			t.Number.String(),
			t.Title,
			string(t.Status()),
			task.FormatNumberList(t.Dependencies),
			strconv.FormatFloat(t.EstimatedHours, 'f', -1, 64),
			string(t.Complexity),
			t.Notes,
			t.Phase.String(),
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(errors.ErrCodeTableWrite, fmt.Sprintf("cannot write row for task %s", t.Number), err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(errors.ErrCodeTableWrite, "cannot flush task table", err)
	}
	return nil
}

func (s *Store) read(r io.Reader) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // row width validated against the header below

	records, err := cr.ReadAll()
	if err != nil {
		return errors.Wrap(errors.ErrCodeTableParse, fmt.Sprintf("cannot parse task table %s", s.path), err)
	}
	if len(records) == 0 {
		return errors.NewTableParseError(s.path, 0, "missing header row")
	}

	cols, err := s.parseHeader(records[0])
	if err != nil {
		return err
	}

	for rowNum, record := range records[1:] {
		line := rowNum + 2 // 1-based, after the header
		if len(record) != len(records[0]) {
			return errors.NewTableParseError(s.path, line, fmt.Sprintf("expected %d columns, got %d", len(records[0]), len(record)))
		}

		t, err := parseRow(s.path, line, record, cols)
		if err != nil {
			return err
		}
		if err := s.Append(t); err != nil {
			return err
		}
	}

	return nil
}

// parseHeader maps column names to positions, requiring every
// mandatory column.
func (s *Store) parseHeader(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, errors.NewTableParseError(s.path, 1, fmt.Sprintf("missing required column %q", name))
		}
	}
	return cols, nil
}

func parseRow(path string, line int, record []string, cols map[string]int) (task.Task, error) {
	field := func(name string) string { return record[cols[name]] }

	n, err := task.ParseNumber(field("number"))
	if err != nil {
		return task.Task{}, errors.NewTableParseError(path, line, err.Error())
	}

	status, err := task.ParseStatus(field("status"))
	if err != nil {
		return task.Task{}, errors.NewTableParseError(path, line, err.Error())
	}

	deps, err := task.ParseNumberList(field("dependencies"))
	if err != nil {
		return task.Task{}, errors.NewTableParseError(path, line, err.Error())
	}
	for _, dep := range deps {
		if dep == n {
			return task.Task{}, errors.NewTableParseError(path, line, fmt.Sprintf("task %s depends on itself", n))
		}
	}

	hours := 0.0
	if raw := strings.TrimSpace(field("estimated_hours")); raw != "" {
		hours, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return task.Task{}, errors.NewTableParseError(path, line, fmt.Sprintf("invalid estimated_hours %q", raw))
		}
	}

	complexity, err := task.ParseComplexity(field("complexity"))
	if err != nil {
		return task.Task{}, errors.NewTableParseError(path, line, err.Error())
	}

	// The phase column refines the coarse status; without it the
	// coarsest phase consistent with the status is assumed.
	phase, err := task.PhaseForStatus(status)
	if err != nil {
		return task.Task{}, errors.NewTableParseError(path, line, err.Error())
	}
	if i, ok := cols[phaseColumn]; ok && strings.TrimSpace(record[i]) != "" {
		phase, err = task.ParsePhase(record[i])
		if err != nil {
			return task.Task{}, errors.NewTableParseError(path, line, err.Error())
		}
		if phase.Status() != status {
			return task.Task{}, errors.NewTableParseError(path, line,
				fmt.Sprintf("phase %s contradicts status %s", phase, status))
		}
	}

	return task.Task{
		Number:         n,
		Title:          field("title"),
		Phase:          phase,
		Dependencies:   deps,
		EstimatedHours: hours,
		Complexity:     complexity,
		Notes:          field("notes"),
	}, nil
}
