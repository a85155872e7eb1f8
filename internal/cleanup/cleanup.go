// Package cleanup implements the reconciler passes that remove rows the
// incremental sync can no longer justify: teams without an active roster,
// players with an out-of-vocabulary role, and stale serial sequences.
//
// Every pass separates verify from act. The verify step only reads and
// reports candidates; the act step deletes exactly what verify reported.
// Running with dryRun performs the verify step alone.
package cleanup

import (
	"fmt"
	"strings"
)

// Report is the outcome of one pass. Deleted counts removed rows; Applied
// counts non-delete actions such as a restarted sequence.
type Report struct {
	Examined int
	Deleted  int
	Applied  int
	Blocked  int
	DryRun   bool
	Details  []string
}

func (r *Report) note(format string, args ...any) {
	r.Details = append(r.Details, fmt.Sprintf(format, args...))
}

// Summary renders a one-line outcome.
func (r Report) Summary() string {
	mode := "apply"
	if r.DryRun {
		mode = "dry-run"
	}
	return fmt.Sprintf("%s examined=%d deleted=%d applied=%d blocked=%d",
		mode, r.Examined, r.Deleted, r.Applied, r.Blocked)
}

// Detail renders the per-candidate lines.
func (r Report) Detail() string {
	return strings.Join(r.Details, "\n")
}
