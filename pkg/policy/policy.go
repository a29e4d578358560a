// Package policy maps classification paths to ordered label sets and label
// names to remote label ids.
package policy

import (
	"strings"

	"github.com/agentstation/flowtag/pkg/errors"
)

// Rule is a single path entry of the policy table.
// Labels are applied in the order listed.
type Rule struct {
	Path   string   `yaml:"path" json:"path"`
	Labels []string `yaml:"labels" json:"labels"`
}

// Catalog maps label names to the remote label ids they resolve to.
type Catalog map[string]string

// ID returns the remote id for a label name.
func (c Catalog) ID(name string) (string, bool) {
	id, ok := c[name]
	return id, ok
}

// Policy is an immutable path-to-label table plus its label catalog.
type Policy struct {
	root    string
	rules   []Rule
	byPath  map[string]int
	catalog Catalog
}

// New validates the rules and builds a Policy. The rules and catalog are
// copied; later mutation by the caller has no effect.
func New(root string, rules []Rule, catalog Catalog) (*Policy, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.NewValidationError("root", root, "root label is required")
	}

	p := &Policy{
		root:    root,
		rules:   make([]Rule, 0, len(rules)),
		byPath:  make(map[string]int, len(rules)),
		catalog: make(Catalog, len(catalog)),
	}

	for name, id := range catalog {
		if name == "" || id == "" {
			return nil, errors.NewValidationError("labels", name, "label name and id must be non-empty")
		}
		p.catalog[name] = id
	}

	for i, r := range rules {
		path := normalize(r.Path)
		if path == "" {
			return nil, errors.NewValidationError("paths", i, "path must be non-empty")
		}
		if _, dup := p.byPath[path]; dup {
			return nil, errors.NewValidationError("paths", path, "duplicate path")
		}
		if len(r.Labels) == 0 {
			return nil, errors.NewValidationError("paths", path, "at least one label is required")
		}
		seen := make(map[string]struct{}, len(r.Labels))
		for _, l := range r.Labels {
			if _, dup := seen[l]; dup {
				return nil, errors.NewValidationError("labels", l, "duplicate label in entry "+path)
			}
			seen[l] = struct{}{}
		}

		p.byPath[path] = len(p.rules)
		p.rules = append(p.rules, Rule{Path: path, Labels: append([]string(nil), r.Labels...)})
	}

	return p, nil
}

// Root returns the label applied when no rule matches.
func (p *Policy) Root() string {
	return p.root
}

// LabelsFor returns the ordered labels for a classification path.
//
// Backslashes are treated as separators. An exact rule wins; otherwise the
// rule for the first path segment applies; otherwise only the root label.
// The result is never empty.
func (p *Policy) LabelsFor(path string) []string {
	path = normalize(path)

	if i, ok := p.byPath[path]; ok {
		return p.labels(i)
	}

	parent, _, _ := strings.Cut(path, "/")
	if i, ok := p.byPath[parent]; ok {
		return p.labels(i)
	}

	return []string{p.root}
}

// LabelIDsFor resolves label names to remote ids. Unknown names are dropped
// and repeated ids are kept once, in first-seen order.
func (p *Policy) LabelIDsFor(names []string) []string {
	ids := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		id, ok := p.catalog[name]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// UnknownLabels returns the names that have no catalog entry.
func (p *Policy) UnknownLabels(names []string) []string {
	var out []string
	for _, name := range names {
		if _, ok := p.catalog[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}

// Rules returns a copy of the rules in application order.
func (p *Policy) Rules() []Rule {
	out := make([]Rule, len(p.rules))
	for i := range p.rules {
		out[i] = Rule{Path: p.rules[i].Path, Labels: p.labels(i)}
	}
	return out
}

// Catalog returns a copy of the label catalog.
func (p *Policy) Catalog() Catalog {
	out := make(Catalog, len(p.catalog))
	for k, v := range p.catalog {
		out[k] = v
	}
	return out
}

func (p *Policy) labels(i int) []string {
	return append([]string(nil), p.rules[i].Labels...)
}

func normalize(path string) string {
	return strings.Trim(strings.ReplaceAll(path, "\\", "/"), "/")
}
