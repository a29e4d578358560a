// Package tagger derives labels for deployed workflows and applies them
// through an interchangeable backend.
package tagger

import (
	"context"
)

// Assignment is the unit of work handed to a Backend: one linked workflow
// and the labels it should carry.
type Assignment struct {
	Name     string   `json:"name" yaml:"name"`
	RemoteID string   `json:"remote_id" yaml:"remote_id"`
	Path     string   `json:"path" yaml:"path"`
	Labels   []string `json:"labels" yaml:"labels"`
	LabelIDs []string `json:"label_ids" yaml:"label_ids"`
}

// Outcome is a backend's verdict for one Assignment.
type Outcome struct {
	// Err is nil when every label is now attached to the workflow.
	Err error
	// TagIDs is the tag set the workflow carries after the write, when known.
	TagIDs []string
	// Created and Failed count association statements (relational backend only).
	Created int
	Failed  int
}

// Backend commits assignments to the remote system.
//
// Apply returns exactly one Outcome per Assignment, in the same order. A
// failure on one assignment never prevents the others from being attempted;
// only context cancellation does, in which case the remaining outcomes carry
// the context error.
type Backend interface {
	Name() string
	Apply(ctx context.Context, batch []Assignment) []Outcome
	Close() error
}

// union returns existing followed by every id of extra not already present.
func union(existing, extra []string) []string {
	out := make([]string, 0, len(existing)+len(extra))
	seen := make(map[string]struct{}, len(existing)+len(extra))
	for _, list := range [][]string{existing, extra} {
		for _, id := range list {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

func cancelled(ctx context.Context, outcomes []Outcome, from int) bool {
	err := ctx.Err()
	if err == nil {
		return false
	}
	for i := from; i < len(outcomes); i++ {
		outcomes[i] = Outcome{Err: err}
	}
	return true
}
