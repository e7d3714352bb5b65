// Package document supplies the ordered list of planned work items the
// task table is populated from, and the gate that keeps document and
// table in 1:1 correspondence before execution begins.
package document

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/taskflow/internal/errors"
	"github.com/felixgeelhaar/taskflow/internal/task"
)

// Item is one planned work item as stated in the plan document.
type Item struct {
	Number         task.Number
	Title          string
	Description    string
	DependsOn      []task.Number
	EstimatedHours float64
	Complexity     task.Complexity
}

// Source supplies the planned work items. The orchestrator treats the
// document as an external collaborator: it never writes back to it.
type Source interface {
	Items(ctx context.Context) ([]Item, error)
}

// rawDocument is the YAML wire form of a plan document.
type rawDocument struct {
	Version string    `yaml:"version"`
	Tasks   []rawItem `yaml:"tasks"`
}

type rawItem struct {
	Number         string   `yaml:"number"`
	Title          string   `yaml:"title"`
	Description    string   `yaml:"description"`
	DependsOn      []string `yaml:"depends_on"`
	EstimatedHours float64  `yaml:"estimated_hours"`
	Complexity     string   `yaml:"complexity"`
}

// FileSource reads a plan document from a YAML file.
type FileSource struct {
	path string
}

// NewFileSource creates a file-backed document source.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Items reads and parses the plan document.
func (s *FileSource) Items(ctx context.Context) ([]Item, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDocumentParse, fmt.Sprintf("cannot read plan document %s", s.path), err)
	}

	var doc rawDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDocumentParse, fmt.Sprintf("cannot parse plan document %s", s.path), err)
	}

	items := make([]Item, 0, len(doc.Tasks))
	seen := make(map[task.Number]bool, len(doc.Tasks))
	for i, raw := range doc.Tasks {
		n, err := task.ParseNumber(raw.Number)
		if err != nil {
			return nil, errors.New(errors.ErrCodeDocumentParse, fmt.Sprintf("plan document %s, item %d: %v", s.path, i+1, err))
		}
		if seen[n] {
			return nil, errors.NewDuplicateTaskError(n)
		}
		seen[n] = true

		complexity, err := task.ParseComplexity(raw.Complexity)
		if err != nil {
			return nil, errors.New(errors.ErrCodeDocumentParse, fmt.Sprintf("plan document %s, item %s: %v", s.path, n, err))
		}

		var deps []task.Number
		for _, d := range raw.DependsOn {
			dep, err := task.ParseNumber(d)
			if err != nil {
				return nil, errors.New(errors.ErrCodeDocumentParse, fmt.Sprintf("plan document %s, item %s: %v", s.path, n, err))
			}
			deps = append(deps, dep)
		}

		items = append(items, Item{
			Number:         n,
			Title:          raw.Title,
			Description:    raw.Description,
			DependsOn:      deps,
			EstimatedHours: raw.EstimatedHours,
			Complexity:     complexity,
		})
	}

	return items, nil
}

// Populate builds the initial pending task table from the document
// items.
func Populate(items []Item) []task.Task {
	tasks := make([]task.Task, len(items))
	for i, item := range items {
		tasks[i] = task.Task{
			Number:         item.Number,
			Title:          item.Title,
			Phase:          task.PhasePending,
			Dependencies:   append([]task.Number(nil), item.DependsOn...),
			EstimatedHours: item.EstimatedHours,
			Complexity:     item.Complexity,
		}
	}
	return tasks
}

// Reconcile verifies the 1:1 correspondence between document items and
// table rows: same cardinality, same numbers. A mismatch is fatal and
// must be surfaced before any execution step runs.
func Reconcile(items []Item, tasks []task.Task) error {
	if len(items) != len(tasks) {
		return errors.NewTaskCountMismatchError(len(items), len(tasks))
	}

	inTable := make(map[task.Number]bool, len(tasks))
	for _, t := range tasks {
		inTable[t.Number] = true
	}
	for _, item := range items {
		if !inTable[item.Number] {
			return errors.New(errors.ErrCodeTaskSetMismatch,
				fmt.Sprintf("task %s is in the plan document but not in the table", item.Number)).
				WithSuggestion("Run 'taskflow validate' after editing the plan document")
		}
	}

	return nil
}

// Fingerprint returns a stable blake3 digest of the document items,
// recorded at init time and compared on validate to spot a plan that
// changed underneath a populated table.
func Fingerprint(items []Item) string {
	sorted := append([]Item(nil), items...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Number.Less(sorted[j].Number) })

	h := blake3.New()
	for _, item := range sorted {
		deps := append([]task.Number(nil), item.DependsOn...)
		task.SortNumbers(deps)
		fmt.Fprintf(h, "%s\x1f%s\x1f%s\x1f%s\x1f%g\x1f%s\x1e",
			item.Number, item.Title, item.Description,
			task.FormatNumberList(deps), item.EstimatedHours, item.Complexity)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
