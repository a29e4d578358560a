package tagger

import (
	"github.com/agentstation/flowtag/pkg/errors"
)

// Options controls a single run.
type Options struct {
	DryRun   bool       // Derive labels without touching the remote system
	Limit    int        // Maximum number of linked workflows to process; 0 means all
	Progress func(Item) // Called once per item in deploy log order
}

// Option is a function that configures run Options.
type Option func(*Options)

// Defaults returns the default run options.
func Defaults() *Options {
	return &Options{}
}

// Apply applies the given options.
func (o *Options) Apply(opts ...Option) *Options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Validate checks if the options are valid.
func (o *Options) Validate() error {
	if o.Limit < 0 {
		return &errors.ValidationError{
			Field:   "Limit",
			Value:   o.Limit,
			Message: "limit must be non-negative",
		}
	}
	return nil
}

// WithDryRun configures dry run mode.
func WithDryRun(dryRun bool) Option {
	return func(o *Options) {
		o.DryRun = dryRun
	}
}

// WithLimit caps how many linked workflows are processed.
// Unlinked workflows do not count towards the cap.
func WithLimit(n int) Option {
	return func(o *Options) {
		o.Limit = n
	}
}

// WithProgress registers a callback invoked for every finished item.
func WithProgress(fn func(Item)) Option {
	return func(o *Options) {
		o.Progress = fn
	}
}
