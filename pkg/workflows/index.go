// Package workflows indexes the source tree of workflow definitions.
//
// Every definition file contributes one entry linking the workflow's logical
// name to the directory it lives in, relative to the tree root. That
// directory is the classification path the label policy is consulted with.
package workflows

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/flowtag/pkg/constants"
	"github.com/agentstation/flowtag/pkg/errors"
	"github.com/agentstation/flowtag/pkg/logging"
)

// Entry is a single indexed definition file.
type Entry struct {
	Name string `json:"name"`
	Dir  string `json:"dir"`
	File string `json:"file"`
}

// Collision records two definition files declaring the same name.
// The later file in walk order wins.
type Collision struct {
	Name     string `json:"name"`
	Previous Entry  `json:"previous"`
	Current  Entry  `json:"current"`
}

// SameDir reports whether both files resolve to the same classification path.
func (c Collision) SameDir() bool {
	return c.Previous.Dir == c.Current.Dir
}

// Index maps logical names to source entries. It is immutable once built.
type Index struct {
	root       string
	entries    map[string]Entry
	files      int
	warnings   []*errors.ParseWarning
	collisions []Collision
}

type options struct {
	logger     *zerolog.Logger
	extensions []string
}

// Option configures BuildIndex.
type Option func(*options)

// WithLogger sets the logger that receives parse warnings and collisions.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithExtensions overrides which file extensions are treated as definitions.
func WithExtensions(exts ...string) Option {
	return func(o *options) {
		o.extensions = exts
	}
}

// BuildIndex walks root on fsys and indexes every definition file.
// Unreadable or unnamed files are recorded as warnings; only a missing root
// is an error.
func BuildIndex(fsys afero.Fs, root string, opts ...Option) (*Index, error) {
	o := &options{
		logger:     logging.Default(),
		extensions: []string{constants.DefinitionExt},
	}
	for _, opt := range opts {
		opt(o)
	}

	ok, err := afero.DirExists(fsys, root)
	if err != nil {
		return nil, errors.WrapIO("stat", root, err)
	}
	if !ok {
		return nil, errors.NewIOError("stat", root, os.ErrNotExist)
	}

	idx := &Index{
		root:    root,
		entries: make(map[string]Entry),
	}

	walkErr := afero.Walk(fsys, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			idx.warn(o.logger, &errors.ParseWarning{File: path, Message: "unreadable", Err: err})
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() || !hasExtension(path, o.extensions) {
			return nil
		}
		idx.files++

		data, err := afero.ReadFile(fsys, path)
		if err != nil {
			idx.warn(o.logger, &errors.ParseWarning{File: path, Message: "unreadable", Err: err})
			return nil
		}

		name, perr := ExtractName(data)
		if perr != nil {
			idx.warn(o.logger, &errors.ParseWarning{File: path, Message: perr.Error(), Err: perr})
			return nil
		}

		idx.add(o.logger, Entry{
			Name: name,
			Dir:  relativeDir(root, path),
			File: path,
		})
		return nil
	})
	if walkErr != nil {
		return nil, errors.WrapIO("walk", root, walkErr)
	}

	return idx, nil
}

// ExtractName returns the workflow's logical name from a definition document.
// A nested workflow.name wins over a top-level name.
func ExtractName(data []byte) (string, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", errors.WrapParse("json", "", err)
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return "", errors.New("document is not an object")
	}
	if wf, ok := obj["workflow"].(map[string]any); ok {
		if name, ok := wf["name"].(string); ok && name != "" {
			return name, nil
		}
	}
	if name, ok := obj["name"].(string); ok && name != "" {
		return name, nil
	}
	return "", errors.New("no name field")
}

func (idx *Index) add(logger *zerolog.Logger, e Entry) {
	if prev, ok := idx.entries[e.Name]; ok {
		c := Collision{Name: e.Name, Previous: prev, Current: e}
		idx.collisions = append(idx.collisions, c)
		logger.Warn().
			Str("workflow", e.Name).
			Str("previous", prev.File).
			Str("current", e.File).
			Bool("same_dir", c.SameDir()).
			Msg("Duplicate workflow name in source tree, last file wins")
	}
	idx.entries[e.Name] = e
}

func (idx *Index) warn(logger *zerolog.Logger, w *errors.ParseWarning) {
	idx.warnings = append(idx.warnings, w)
	logger.Warn().Err(w.Err).Str("file", w.File).Msg("Could not parse workflow definition")
}

// Path returns the classification path for a logical name.
func (idx *Index) Path(name string) (string, bool) {
	e, ok := idx.entries[name]
	return e.Dir, ok
}

// Entry returns the indexed entry for a logical name.
func (idx *Index) Entry(name string) (Entry, bool) {
	e, ok := idx.entries[name]
	return e, ok
}

// Len returns the number of indexed names.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Files returns how many definition files were visited.
func (idx *Index) Files() int {
	return idx.files
}

// Root returns the directory the index was built from.
func (idx *Index) Root() string {
	return idx.root
}

// Entries returns all entries sorted by name.
func (idx *Index) Entries() []Entry {
	out := make([]Entry, 0, len(idx.entries))
	for _, e := range idx.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Warnings returns the files excluded from the index.
func (idx *Index) Warnings() []*errors.ParseWarning {
	out := make([]*errors.ParseWarning, len(idx.warnings))
	copy(out, idx.warnings)
	return out
}

// Collisions returns duplicate-name collisions in walk order.
func (idx *Index) Collisions() []Collision {
	out := make([]Collision, len(idx.collisions))
	copy(out, idx.collisions)
	return out
}

func hasExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

func relativeDir(root, path string) string {
	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil {
		rel = filepath.Dir(path)
	}
	return filepath.ToSlash(rel)
}
