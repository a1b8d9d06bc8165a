package reconciler

import "fmt"

// Result carries the change counters of one merge pass. The caller decides
// whether a zero-change result means the save can be skipped.
type Result struct {
	Updated int // entries renamed in place
	Added   int // entries newly appended
}

// HasChanges returns true if the merge produced any updates or additions.
func (r *Result) HasChanges() bool {
	return r.Updated > 0 || r.Added > 0
}

// Summary returns a human-readable summary of the merge.
func (r *Result) Summary() string {
	if !r.HasChanges() {
		return "no changes"
	}
	return fmt.Sprintf("%d updated, %d added", r.Updated, r.Added)
}
