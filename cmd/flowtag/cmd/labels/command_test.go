package labels_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/flowtag/cmd/flowtag/cmd/labels"
	"github.com/agentstation/flowtag/internal/appcontext"
	"github.com/agentstation/flowtag/pkg/policy"
)

func run(t *testing.T, format string, args ...string) string {
	t.Helper()
	mock := &appcontext.Mock{OutputFormatFunc: func() string { return format }}
	cmd := labels.NewCommand(mock)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	return out.String()
}

func TestLabelsForPaths(t *testing.T) {
	out := run(t, "json", "02-speech-processing/whisper", `09-unknown\deep`)

	var rows []labels.Row
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"voice-ai", "speech-processing", "whisper", "stt"}, rows[0].Labels)
	assert.Len(t, rows[0].TagIDs, 4)
	assert.Equal(t, []string{"voice-ai"}, rows[1].Labels)
}

func TestLabelsListsWholePolicy(t *testing.T) {
	out := run(t, "json")

	var rows []labels.Row
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	assert.Len(t, rows, len(policy.Default().Rules()))
}

func TestLabelsTable(t *testing.T) {
	out := run(t, "wide", "02-speech-processing/whisper")
	assert.Contains(t, out, "speech-processing")
	assert.Contains(t, out, "02-speech-processing/whisper")
}

func TestLabelsExportRoundTrips(t *testing.T) {
	out := run(t, "table", "--export")

	p, err := policy.Parse([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, policy.Default().Rules(), p.Rules())
	assert.Equal(t, policy.Default().Catalog(), p.Catalog())
}

func TestLabelsCatalog(t *testing.T) {
	out := run(t, "json", "--catalog")

	var catalog map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &catalog))
	assert.Len(t, catalog, len(policy.Default().Catalog()))
}
