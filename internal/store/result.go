package store

import "fmt"

// Result tracks per-record outcomes of an upsert batch. One bad record
// never fails the batch; it is skipped and counted here instead.
type Result struct {
	Inserted int
	Updated  int
	Skipped  int
	Errors   []string
}

// NewResult returns an empty Result.
func NewResult() *Result {
	return &Result{}
}

// Record counts one successful upsert.
func (r *Result) Record(inserted bool) {
	if inserted {
		r.Inserted++
	} else {
		r.Updated++
	}
}

// Skip counts one skipped record with its reason.
func (r *Result) Skip(format string, args ...any) {
	r.Skipped++
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Merge folds another Result into this one.
func (r *Result) Merge(other Result) {
	r.Inserted += other.Inserted
	r.Updated += other.Updated
	r.Skipped += other.Skipped
	r.Errors = append(r.Errors, other.Errors...)
}

// Total returns the number of records that were actually written.
func (r Result) Total() int {
	return r.Inserted + r.Updated
}

// Summary returns a machine-checkable one-line summary.
func (r Result) Summary() string {
	return fmt.Sprintf("inserted=%d updated=%d skipped=%d errors=%d",
		r.Inserted, r.Updated, r.Skipped, len(r.Errors))
}
