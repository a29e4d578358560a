package policy_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/flowtag/pkg/errors"
	"github.com/agentstation/flowtag/pkg/policy"
)

func TestLabelsFor(t *testing.T) {
	p := policy.Default()

	tests := []struct {
		name string
		path string
		want []string
	}{
		{"exact subcategory", "02-speech-processing/whisper", []string{"voice-ai", "speech-processing", "whisper", "stt"}},
		{"exact category", "01-voice-agents", []string{"voice-ai", "voice-agents"}},
		{"backslash separators", `03-messaging-bots\telegram`, []string{"voice-ai", "messaging-bots", "telegram"}},
		{"unknown subdirectory falls back to parent", "05-business-automation/crm", []string{"voice-ai", "business-automation"}},
		{"deep path falls back to parent", "06-ai-assistants/a/b", []string{"voice-ai", "ai-assistants"}},
		{"unknown category", "09-unknown", []string{"voice-ai"}},
		{"root level", ".", []string{"voice-ai"}},
		{"empty", "", []string{"voice-ai"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.LabelsFor(tt.path))
		})
	}
}

func TestLabelsForReturnsCopy(t *testing.T) {
	p := policy.Default()
	got := p.LabelsFor("07-utilities")
	got[0] = "mutated"
	assert.Equal(t, []string{"voice-ai", "utilities"}, p.LabelsFor("07-utilities"))
}

func TestLabelIDsFor(t *testing.T) {
	p, err := policy.New("root", nil, policy.Catalog{
		"a":     "id-a",
		"b":     "id-b",
		"alias": "id-a",
	})
	require.NoError(t, err)

	got := p.LabelIDsFor([]string{"b", "missing", "a", "alias", "b"})
	assert.Equal(t, []string{"id-b", "id-a"}, got)
	assert.Empty(t, p.LabelIDsFor([]string{"missing"}))
	assert.Equal(t, []string{"missing"}, p.UnknownLabels([]string{"a", "missing"}))
}

func TestDefaultCatalogCoversRules(t *testing.T) {
	p := policy.Default()
	assert.Len(t, p.Rules(), 21)
	assert.Len(t, p.Catalog(), 23)
	for _, r := range p.Rules() {
		assert.Empty(t, p.UnknownLabels(r.Labels), r.Path)
		assert.Len(t, p.LabelIDsFor(r.Labels), len(r.Labels), r.Path)
	}
	assert.Equal(t, []string{"UWjQVM4os19WtLu8"}, p.LabelIDsFor([]string{p.Root()}))
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name  string
		root  string
		rules []policy.Rule
	}{
		{"empty root", "", nil},
		{"duplicate path", "r", []policy.Rule{{Path: "a", Labels: []string{"x"}}, {Path: `a`, Labels: []string{"y"}}}},
		{"duplicate path after normalizing", "r", []policy.Rule{{Path: "a/b", Labels: []string{"x"}}, {Path: `a\b`, Labels: []string{"y"}}}},
		{"duplicate label", "r", []policy.Rule{{Path: "a", Labels: []string{"x", "x"}}}},
		{"no labels", "r", []policy.Rule{{Path: "a"}}},
		{"empty path", "r", []policy.Rule{{Path: "", Labels: []string{"x"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := policy.New(tt.root, tt.rules, nil)
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
		})
	}
}

const sample = `
root: base
labels:
  base: id-base
  cat: id-cat
paths:
  - path: cat
    labels: [base, cat]
  - path: cat/sub
    labels: [base, cat, extra]
`

func TestParse(t *testing.T) {
	p, err := policy.Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "base", p.Root())
	assert.Equal(t, []string{"base", "cat", "extra"}, p.LabelsFor("cat/sub"))
	assert.Equal(t, []string{"id-base", "id-cat"}, p.LabelIDsFor(p.LabelsFor("cat/sub")))
	assert.Equal(t, []string{"base"}, p.LabelsFor("other"))
}

func TestParseErrors(t *testing.T) {
	_, err := policy.Parse([]byte("root: [unterminated"))
	var pe *errors.ParseError
	assert.ErrorAs(t, err, &pe)

	_, err = policy.Parse([]byte("root: r\nunknown: 1\n"))
	assert.True(t, errors.IsValidationError(err))

	_, err = policy.Parse([]byte("root: r\npaths:\n  - path: a\n    labels: [x, x]\n"))
	assert.True(t, errors.IsValidationError(err))
}

func TestParseSchema(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "missing root", doc: "paths: []\n"},
		{name: "empty root", doc: "root: \"\"\n"},
		{name: "label id not a string", doc: "root: r\nlabels:\n  r: [a]\n"},
		{name: "rule without labels", doc: "root: r\npaths:\n  - path: a\n"},
		{name: "rule with empty labels", doc: "root: r\npaths:\n  - path: a\n    labels: []\n"},
		{name: "unknown rule field", doc: "root: r\npaths:\n  - path: a\n    labels: [x]\n    tags: [y]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := policy.Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err), err.Error())
		})
	}
}

func TestLoadAndMarshalRoundTrip(t *testing.T) {
	data, err := policy.Marshal(policy.Default())
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "policy.yaml", data, 0o600))

	p, err := policy.Load(fs, "policy.yaml")
	require.NoError(t, err)
	assert.Equal(t, policy.Default().Rules(), p.Rules())
	assert.Equal(t, policy.Default().Catalog(), p.Catalog())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := policy.Load(afero.NewMemMapFs(), "missing.yaml")
	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)
}
