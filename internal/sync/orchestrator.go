package sync

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/projectares/aresdata/internal/store"
)

// Orchestrator schedules stages in dependency order and records what
// happened to each one.
type Orchestrator struct {
	stages []*Stage
	db     store.Querier
	logger *slog.Logger
}

func NewOrchestrator(stages []*Stage, db store.Querier, logger *slog.Logger) (*Orchestrator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	byName := make(map[string]*Stage, len(stages))
	for _, s := range stages {
		if byName[s.Name] != nil {
			return nil, fmt.Errorf("duplicate stage %q", s.Name)
		}
		byName[s.Name] = s
	}
	for _, s := range stages {
		for _, dep := range s.DependsOn {
			if byName[dep] == nil {
				return nil, fmt.Errorf("stage %q depends on unknown stage %q", s.Name, dep)
			}
		}
	}
	if err := checkAcyclic(stages, byName); err != nil {
		return nil, err
	}
	return &Orchestrator{stages: stages, db: db, logger: logger}, nil
}

// checkAcyclic rejects dependency cycles up front; at run time a cycle would
// look like a failed dependency and skip its stages without ever running one.
func checkAcyclic(stages []*Stage, byName map[string]*Stage) error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(stages))
	var visit func(s *Stage) error
	visit = func(s *Stage) error {
		switch state[s.Name] {
		case visiting:
			return fmt.Errorf("dependency cycle through stage %q", s.Name)
		case done:
			return nil
		}
		state[s.Name] = visiting
		for _, dep := range s.DependsOn {
			if err := visit(byName[dep]); err != nil {
				return err
			}
		}
		state[s.Name] = done
		return nil
	}
	for _, s := range stages {
		if err := visit(s); err != nil {
			return err
		}
	}
	return nil
}

// StageReport records the outcome of one stage.
type StageReport struct {
	Name     string
	Status   Status
	Result   *store.Result
	Err      error
	Duration time.Duration
}

// RunReport collects every stage's outcome, in execution order.
type RunReport struct {
	Stages []StageReport
}

// Failed reports whether any stage failed or was skipped.
func (r *RunReport) Failed() bool {
	for _, s := range r.Stages {
		if s.Status != StatusSucceeded {
			return true
		}
	}
	return false
}

// Summary renders one line per stage.
func (r *RunReport) Summary() string {
	var b strings.Builder
	for _, s := range r.Stages {
		fmt.Fprintf(&b, "%-12s %-18s", s.Name, s.Status)
		switch {
		case s.Result != nil:
			b.WriteString(s.Result.Summary())
		case s.Err != nil:
			b.WriteString(s.Err.Error())
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Run executes every stage whose dependencies succeeded, in topological
// order with priority tie-breaking. A context error aborts the run; stage
// errors do not, they just fail that stage and skip its dependents.
func (o *Orchestrator) Run(ctx context.Context) (*RunReport, error) {
	return o.run(ctx, o.stages)
}

// RunOnly executes exactly one stage plus its transitive dependencies.
func (o *Orchestrator) RunOnly(ctx context.Context, name string) (*RunReport, error) {
	byName := make(map[string]*Stage, len(o.stages))
	for _, s := range o.stages {
		byName[s.Name] = s
	}
	if byName[name] == nil {
		return nil, fmt.Errorf("unknown stage %q", name)
	}

	wanted := map[string]bool{}
	var mark func(n string)
	mark = func(n string) {
		if wanted[n] {
			return
		}
		wanted[n] = true
		for _, dep := range byName[n].DependsOn {
			mark(dep)
		}
	}
	mark(name)

	subset := make([]*Stage, 0, len(wanted))
	for _, s := range o.stages {
		if wanted[s.Name] {
			subset = append(subset, s)
		}
	}
	return o.run(ctx, subset)
}

func (o *Orchestrator) run(ctx context.Context, stages []*Stage) (*RunReport, error) {
	status := make(map[string]Status, len(stages))
	for _, s := range stages {
		status[s.Name] = StatusPending
	}

	report := &RunReport{}
	remaining := len(stages)

	for remaining > 0 {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		next := o.pickRunnable(stages, status)
		if next == nil {
			// Every pending stage has a failed or skipped dependency.
			for _, s := range stages {
				if status[s.Name] != StatusPending {
					continue
				}
				status[s.Name] = StatusSkipped
				report.Stages = append(report.Stages, StageReport{Name: s.Name, Status: StatusSkipped})
				o.logger.Warn("Stage skipped", "stage", s.Name, "reason", "dependency failed")
				remaining--
			}
			continue
		}

		report.Stages = append(report.Stages, o.execute(ctx, next, status))
		remaining--
	}
	return report, nil
}

// pickRunnable returns the pending stage with all dependencies succeeded,
// lowest priority first. Nil when nothing can run.
func (o *Orchestrator) pickRunnable(stages []*Stage, status map[string]Status) *Stage {
	runnable := make([]*Stage, 0, len(stages))
	for _, s := range stages {
		if status[s.Name] != StatusPending {
			continue
		}
		ready := true
		for _, dep := range s.DependsOn {
			if status[dep] != StatusSucceeded {
				ready = false
				break
			}
		}
		if ready {
			runnable = append(runnable, s)
		}
	}
	if len(runnable) == 0 {
		return nil
	}
	sort.Slice(runnable, func(i, j int) bool { return runnable[i].Priority < runnable[j].Priority })
	return runnable[0]
}

func (o *Orchestrator) execute(ctx context.Context, s *Stage, status map[string]Status) StageReport {
	status[s.Name] = StatusRunning
	o.logger.Info("Stage starting", "stage", s.Name)
	start := time.Now()

	// Structural check: a child stage must never run against empty parents.
	for _, table := range s.RequiresRows {
		ok, err := store.HasRows(ctx, o.db, table)
		if err == nil && !ok {
			err = fmt.Errorf("required table %s is empty", table)
		}
		if err != nil {
			status[s.Name] = StatusFailed
			o.logger.Error("Stage failed structural check", "stage", s.Name, "error", err)
			return StageReport{Name: s.Name, Status: StatusFailed, Err: err, Duration: time.Since(start)}
		}
	}

	result, err := s.Run(ctx)
	dur := time.Since(start)
	if err != nil {
		status[s.Name] = StatusFailed
		o.logger.Error("Stage failed", "stage", s.Name, "duration", dur, "error", err)
		return StageReport{Name: s.Name, Status: StatusFailed, Result: result, Err: err, Duration: dur}
	}

	status[s.Name] = StatusSucceeded
	o.logger.Info("Stage finished", "stage", s.Name, "duration", dur, "summary", result.Summary())
	return StageReport{Name: s.Name, Status: StatusSucceeded, Result: result, Duration: dur}
}
