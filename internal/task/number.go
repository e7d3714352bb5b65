package task

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Number is the hierarchical identifier of a task in dotted
// major.minor form (e.g. "2.3"). Numbers are globally unique and
// immutable once a task is created.
type Number struct {
	Major int
	Minor int
}

// ParseNumber parses a dotted two-level identifier.
func ParseNumber(s string) (Number, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 2 {
		return Number{}, fmt.Errorf("invalid task number %q: expected major.minor form", s)
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return Number{}, fmt.Errorf("invalid task number %q: %w", s, err)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return Number{}, fmt.Errorf("invalid task number %q: %w", s, err)
	}
	if major < 0 || minor < 0 {
		return Number{}, fmt.Errorf("invalid task number %q: components must be non-negative", s)
	}

	return Number{Major: major, Minor: minor}, nil
}

// String returns the dotted form.
func (n Number) String() string {
	return fmt.Sprintf("%d.%d", n.Major, n.Minor)
}

// Less orders numbers major ascending, then minor ascending. This is
// the tie-break order used everywhere a deterministic choice between
// tasks is needed.
func (n Number) Less(other Number) bool {
	if n.Major != other.Major {
		return n.Major < other.Major
	}
	return n.Minor < other.Minor
}

// SortNumbers sorts a slice of numbers in tie-break order.
func SortNumbers(nums []Number) {
	sort.Slice(nums, func(i, j int) bool { return nums[i].Less(nums[j]) })
}

// ParseNumberList parses a comma-separated list of task numbers.
// An empty string yields a nil slice.
func ParseNumberList(s string) ([]Number, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var nums []Number
	for _, part := range strings.Split(s, ",") {
		n, err := ParseNumber(part)
		if err != nil {
			return nil, err
		}
		nums = append(nums, n)
	}
	return nums, nil
}

// FormatNumberList renders numbers as a comma-separated list.
func FormatNumberList(nums []Number) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = n.String()
	}
	return strings.Join(parts, ",")
}
