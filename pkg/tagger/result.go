package tagger

import (
	"fmt"
	"time"
)

// Status is the terminal state of an item.
type Status string

// Item states. Every deploy log record processed ends in exactly one.
const (
	StatusApplied Status = "applied"
	StatusDryRun  Status = "dry-run"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Item is the record of one processed deploy log entry.
type Item struct {
	Assignment `json:",inline" yaml:",inline"`

	Status Status   `json:"status" yaml:"status"`
	TagIDs []string `json:"tag_ids,omitempty" yaml:"tag_ids,omitempty"`
	Error  string   `json:"error,omitempty" yaml:"error,omitempty"`
	Err    error    `json:"-" yaml:"-"`
}

// Succeeded reports whether the item counts towards the success tally.
func (i Item) Succeeded() bool {
	return i.Status == StatusApplied || i.Status == StatusDryRun
}

// AssociationTally counts association rows written by the relational backend.
type AssociationTally struct {
	Created int `json:"created" yaml:"created"`
	Failed  int `json:"failed" yaml:"failed"`
}

// Result represents the complete result of a run.
type Result struct {
	Backend string `json:"backend" yaml:"backend"`
	DryRun  bool   `json:"dry_run" yaml:"dry_run"`
	Limit   int    `json:"limit,omitempty" yaml:"limit,omitempty"`

	Items []Item `json:"items" yaml:"items"`

	Success      int              `json:"success" yaml:"success"`
	Failed       int              `json:"failed" yaml:"failed"`
	Skipped      int              `json:"skipped" yaml:"skipped"`
	Associations AssociationTally `json:"associations" yaml:"associations"`

	Duration time.Duration `json:"duration" yaml:"duration"`
}

func (r *Result) add(item Item) {
	if item.Err != nil {
		item.Error = item.Err.Error()
	}
	switch item.Status {
	case StatusApplied, StatusDryRun:
		r.Success++
	case StatusFailed:
		r.Failed++
	case StatusSkipped:
		r.Skipped++
	}
	r.Items = append(r.Items, item)
}

// Linked returns how many items were linked to a source definition.
func (r *Result) Linked() int {
	return r.Success + r.Failed
}

// HasFailures returns true if any item failed.
func (r *Result) HasFailures() bool {
	return r.Failed > 0
}

// Filter returns the items in the given state.
func (r *Result) Filter(status Status) []Item {
	var out []Item
	for _, it := range r.Items {
		if it.Status == status {
			out = append(out, it)
		}
	}
	return out
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	s := fmt.Sprintf("%d success, %d failed, %d skipped", r.Success, r.Failed, r.Skipped)
	if r.Associations.Created > 0 || r.Associations.Failed > 0 {
		s += fmt.Sprintf(" (%d associations created, %d failed)", r.Associations.Created, r.Associations.Failed)
	}
	if r.DryRun {
		s += " (dry run)"
	}
	return s
}
