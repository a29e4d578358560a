package app

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/agentstation/flowtag/pkg/logging"
)

// ContextWithSignals creates a context that is cancelled when the application
// receives an interrupt or termination signal. A cancelled apply stops
// between items and reports what it finished.
func ContextWithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// withRun tags the app logger with a fresh run id and attaches it to ctx.
func (a *App) withRun(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	runID := uuid.NewString()
	logger := a.logger.With().Str("run_id", runID).Logger()
	a.logger = &logger
	return logging.WithRunID(logging.WithLogger(ctx, a.logger), runID)
}
