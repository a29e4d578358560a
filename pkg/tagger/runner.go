package tagger

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/flowtag/pkg/deploylog"
	"github.com/agentstation/flowtag/pkg/errors"
	"github.com/agentstation/flowtag/pkg/logging"
	"github.com/agentstation/flowtag/pkg/policy"
)

// Linker resolves a workflow's logical name to its classification path.
type Linker interface {
	Path(name string) (string, bool)
}

// Runner drives a batch of deploy log records through a Backend.
type Runner struct {
	backend Backend
	policy  *policy.Policy
	logger  *zerolog.Logger
}

// NewRunner creates a Runner. A nil logger uses the process default.
func NewRunner(backend Backend, p *policy.Policy, logger *zerolog.Logger) *Runner {
	if logger == nil {
		logger = logging.Default()
	}
	return &Runner{backend: backend, policy: p, logger: logger}
}

// Plan links records to source paths and derives their labels without
// applying anything. Skipped items are returned alongside the assignments,
// both in record order.
func (r *Runner) Plan(records []deploylog.Record, linker Linker, limit int) (assignments []Assignment, items []Item) {
	linked := 0
	for _, rec := range records {
		path, ok := linker.Path(rec.Name)
		if !ok {
			items = append(items, Item{
				Assignment: Assignment{Name: rec.Name, RemoteID: rec.RemoteID},
				Status:     StatusSkipped,
				Err:        &errors.LinkageGapError{Name: rec.Name, RemoteID: rec.RemoteID},
			})
			continue
		}

		if limit > 0 && linked >= limit {
			break
		}
		linked++

		labels := r.policy.LabelsFor(path)
		if unknown := r.policy.UnknownLabels(labels); len(unknown) > 0 {
			r.logger.Debug().Str("workflow", rec.Name).Strs("labels", unknown).Msg("Labels without a catalog id are ignored")
		}

		a := Assignment{
			Name:     rec.Name,
			RemoteID: rec.RemoteID,
			Path:     path,
			Labels:   labels,
			LabelIDs: r.policy.LabelIDsFor(labels),
		}
		assignments = append(assignments, a)
		items = append(items, Item{Assignment: a})
	}
	return assignments, items
}

// Run processes records in order. Every record ends applied, dry-run, failed
// or skipped; failures never stop the batch and nothing is rolled back.
// A cancelled context is returned together with the partial result.
func (r *Runner) Run(ctx context.Context, records []deploylog.Record, linker Linker, opts ...Option) (*Result, error) {
	o := Defaults().Apply(opts...)
	if err := o.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	result := &Result{
		Backend: r.backend.Name(),
		DryRun:  o.DryRun,
		Limit:   o.Limit,
	}

	assignments, items := r.Plan(records, linker, o.Limit)

	var outcomes []Outcome
	if !o.DryRun && len(assignments) > 0 {
		outcomes = r.backend.Apply(ctx, assignments)
	}

	n := 0
	for _, item := range items {
		if item.Status != StatusSkipped {
			switch {
			case o.DryRun:
				item.Status = StatusDryRun
			case outcomes[n].Err != nil:
				item.Status = StatusFailed
				item.Err = outcomes[n].Err
			default:
				item.Status = StatusApplied
				item.TagIDs = outcomes[n].TagIDs
			}
			if outcomes != nil {
				result.Associations.Created += outcomes[n].Created
				result.Associations.Failed += outcomes[n].Failed
			}
			n++
		}

		r.log(item)
		result.add(item)
		if o.Progress != nil {
			o.Progress(result.Items[len(result.Items)-1])
		}
	}

	result.Duration = time.Since(start)
	r.logger.Info().
		Str("backend", result.Backend).
		Int("success", result.Success).
		Int("failed", result.Failed).
		Int("skipped", result.Skipped).
		Dur("duration", result.Duration).
		Msg("Tagging finished")

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

func (r *Runner) log(item Item) {
	ev := r.logger.Debug()
	switch item.Status {
	case StatusFailed:
		ev = r.logger.Warn().Err(item.Err)
	case StatusApplied:
		ev = r.logger.Info()
	}
	ev.Str("workflow", item.Name).
		Str("workflow_id", item.RemoteID).
		Str("status", string(item.Status)).
		Str("path", item.Path).
		Strs("labels", item.Labels).
		Msg("Processed workflow")
}
