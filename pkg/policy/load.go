package policy

import (
	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"

	"github.com/agentstation/flowtag/pkg/errors"
)

// File is the on-disk shape of a policy.
//
//	root: voice-ai
//	labels:
//	  voice-ai: UWjQVM4os19WtLu8
//	paths:
//	  - path: 01-voice-agents
//	    labels: [voice-ai, voice-agents]
type File struct {
	Root   string            `yaml:"root"`
	Labels map[string]string `yaml:"labels"`
	Paths  []Rule            `yaml:"paths"`
}

// Parse decodes and validates a YAML policy document.
func Parse(data []byte) (*Policy, error) {
	if err := validate(data); err != nil {
		return nil, err
	}

	var f File
	if err := yaml.UnmarshalWithOptions(data, &f, yaml.DisallowUnknownField()); err != nil {
		return nil, errors.WrapParse("yaml", "", err)
	}
	return New(f.Root, f.Paths, Catalog(f.Labels))
}

// Load reads a policy file from fsys.
func Load(fsys afero.Fs, path string) (*Policy, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		if pe, ok := err.(*errors.ParseError); ok {
			pe.File = path
		}
		return nil, err
	}
	return p, nil
}

// Marshal renders the policy as a YAML document that Parse accepts.
func Marshal(p *Policy) ([]byte, error) {
	f := File{
		Root:   p.Root(),
		Labels: p.Catalog(),
		Paths:  p.Rules(),
	}
	return yaml.MarshalWithOptions(f,
		yaml.Indent(2),
		yaml.IndentSequence(true),
	)
}
