// Package deploylog parses the log written by the workflow deploy step into
// an ordered set of records linking a workflow's logical name to the id the
// n8n instance assigned to it.
package deploylog

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/spf13/afero"

	"github.com/agentstation/flowtag/pkg/errors"
)

// successPattern matches "SUCCESS: <name> (ID: <id>)". The name is greedy so
// names containing parentheses keep everything up to the last " (ID: ".
var successPattern = regexp.MustCompile(`^SUCCESS: (.+) \(ID: ([^)]+)\)`)

// Record links a deployed workflow to its remote id.
type Record struct {
	Name     string `json:"name"`
	RemoteID string `json:"remote_id"`
}

// Log is the immutable result of parsing a deploy log.
// Records keep the position at which a name was first seen; a later line for
// the same name replaces the id in place.
type Log struct {
	records []Record
	index   map[string]int
}

// maxLineLen bounds the bytes kept for one line. Longer lines cannot be
// success lines worth linking and are dropped like any other noise.
const maxLineLen = 1 << 20

// Parse reads a deploy log. Lines that are not success lines, including
// lines longer than maxLineLen, are ignored.
func Parse(r io.Reader) (*Log, error) {
	l := &Log{index: make(map[string]int)}

	br := bufio.NewReader(r)
	for {
		line, skip, err := readLine(br)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WrapIO("read", "deploy log", err)
		}
		if skip {
			continue
		}
		if rec, ok := ParseLine(line); ok {
			l.add(rec)
		}
	}
	return l, nil
}

// readLine returns the next line without its terminator. skip is set when
// the line exceeded maxLineLen; its content is then discarded.
func readLine(br *bufio.Reader) (line string, skip bool, err error) {
	var buf []byte
	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			return "", false, err
		}
		if !skip {
			if len(buf)+len(chunk) > maxLineLen {
				skip, buf = true, nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if !isPrefix {
			return string(buf), skip, nil
		}
	}
}

// ParseFile opens and parses the deploy log at path on fsys.
func ParseFile(fsys afero.Fs, path string) (*Log, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()
	return Parse(f)
}

// ParseLine extracts a record from a single success line.
func ParseLine(line string) (Record, bool) {
	m := successPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return Record{}, false
	}
	return Record{Name: m[1], RemoteID: m[2]}, true
}

func (l *Log) add(rec Record) {
	if i, ok := l.index[rec.Name]; ok {
		l.records[i].RemoteID = rec.RemoteID
		return
	}
	l.index[rec.Name] = len(l.records)
	l.records = append(l.records, rec)
}

// Records returns the records in iteration order.
func (l *Log) Records() []Record {
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Lookup returns the remote id recorded for name.
func (l *Log) Lookup(name string) (string, bool) {
	i, ok := l.index[name]
	if !ok {
		return "", false
	}
	return l.records[i].RemoteID, true
}

// Len returns the number of distinct deployed workflows.
func (l *Log) Len() int {
	return len(l.records)
}

// Map returns the name to remote id mapping.
func (l *Log) Map() map[string]string {
	m := make(map[string]string, len(l.records))
	for _, r := range l.records {
		m[r.Name] = r.RemoteID
	}
	return m
}
