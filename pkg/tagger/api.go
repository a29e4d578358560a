package tagger

import (
	"context"
	"slices"

	"github.com/rs/zerolog"

	"github.com/agentstation/flowtag/internal/n8n"
	"github.com/agentstation/flowtag/pkg/errors"
	"github.com/agentstation/flowtag/pkg/logging"
)

// WorkflowClient is the part of the n8n API the API backend needs.
type WorkflowClient interface {
	GetWorkflow(ctx context.Context, id string) (*n8n.Workflow, error)
	UpdateWorkflow(ctx context.Context, id string, payload any) error
}

// APIBackend applies labels with a read-modify-write over the REST API.
// Existing tags are always kept.
type APIBackend struct {
	client WorkflowClient
	logger *zerolog.Logger
}

// NewAPIBackend creates an APIBackend.
func NewAPIBackend(client WorkflowClient, logger *zerolog.Logger) *APIBackend {
	if logger == nil {
		logger = logging.Default()
	}
	return &APIBackend{client: client, logger: logger}
}

// Name implements Backend.
func (b *APIBackend) Name() string { return "api" }

// Close implements Backend.
func (b *APIBackend) Close() error { return nil }

// Apply implements Backend.
func (b *APIBackend) Apply(ctx context.Context, batch []Assignment) []Outcome {
	outcomes := make([]Outcome, len(batch))
	for i, a := range batch {
		if cancelled(ctx, outcomes, i) {
			break
		}
		outcomes[i] = b.applyOne(ctx, a)
	}
	return outcomes
}

func (b *APIBackend) applyOne(ctx context.Context, a Assignment) Outcome {
	wf, err := b.client.GetWorkflow(ctx, a.RemoteID)
	if err != nil {
		return Outcome{Err: fetchError(a.RemoteID, err)}
	}

	existing := wf.TagIDs()
	tags := union(existing, a.LabelIDs)

	b.logger.Debug().
		Str("workflow_id", a.RemoteID).
		Strs("existing", existing).
		Strs("tags", tags).
		Bool("changed", !slices.Equal(existing, tags)).
		Msg("Updating workflow tags")

	if err := b.client.UpdateWorkflow(ctx, a.RemoteID, wf.UpdatePayload(tags)); err != nil {
		return Outcome{Err: applyError(a.RemoteID, err)}
	}
	return Outcome{TagIDs: tags}
}

func fetchError(remoteID string, err error) error {
	var apiErr *errors.APIError
	if errors.As(err, &apiErr) {
		return errors.NewFetchError(remoteID, apiErr.StatusCode, apiErr.Message, err)
	}
	return errors.NewFetchError(remoteID, 0, "", err)
}

func applyError(remoteID string, err error) error {
	var apiErr *errors.APIError
	if errors.As(err, &apiErr) {
		ae := errors.NewHTTPApplyError(remoteID, apiErr.StatusCode, apiErr.Message)
		ae.Err = err
		return ae
	}
	return &errors.ApplyError{RemoteID: remoteID, Err: err}
}
