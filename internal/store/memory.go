package store

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
)

var insertPattern = regexp.MustCompile(`^INSERT INTO "workflows_tags" \("workflowId", "tagId"\) VALUES \('((?:[^']|'')*)', '((?:[^']|'')*)'\) ON CONFLICT DO NOTHING$`)

// MemoryExecutor is an in-process association table that understands the
// statements built by this package. A batch is applied atomically: if any
// statement in it fails, none of it is kept.
type MemoryExecutor struct {
	mu    sync.Mutex
	rows  map[Association]struct{}
	tags  int
	fail  func(Association) error
	execs int
}

// NewMemoryExecutor creates an empty table.
func NewMemoryExecutor() *MemoryExecutor {
	return &MemoryExecutor{rows: make(map[Association]struct{})}
}

// FailWhen makes every statement for which fn returns an error fail.
func (m *MemoryExecutor) FailWhen(fn func(Association) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fn
}

// SetTagCount sets the value returned by the probe query.
func (m *MemoryExecutor) SetTagCount(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tags = n
}

// Exec implements Executor.
func (m *MemoryExecutor) Exec(ctx context.Context, query string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.execs++

	var pending []Association
	for _, stmt := range strings.Split(query, "; ") {
		match := insertPattern.FindStringSubmatch(strings.TrimSpace(stmt))
		if match == nil {
			return fmt.Errorf("memory: unsupported statement: %s", stmt)
		}
		a := Association{
			WorkflowID: strings.ReplaceAll(match[1], "''", "'"),
			TagID:      strings.ReplaceAll(match[2], "''", "'"),
		}
		if m.fail != nil {
			if err := m.fail(a); err != nil {
				return err
			}
		}
		pending = append(pending, a)
	}
	for _, a := range pending {
		m.rows[a] = struct{}{}
	}
	return nil
}

// Scalar implements Executor. Only the probe query is supported.
func (m *MemoryExecutor) Scalar(ctx context.Context, query string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if query != ProbeQuery() {
		return "", fmt.Errorf("memory: unsupported query: %s", query)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return strconv.Itoa(m.tags), nil
}

// Close implements Executor.
func (m *MemoryExecutor) Close() error { return nil }

// Rows returns the stored associations sorted by workflow then tag.
func (m *MemoryExecutor) Rows() []Association {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Association, 0, len(m.rows))
	for a := range m.rows {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WorkflowID != out[j].WorkflowID {
			return out[i].WorkflowID < out[j].WorkflowID
		}
		return out[i].TagID < out[j].TagID
	})
	return out
}

// Execs returns how many Exec calls were made.
func (m *MemoryExecutor) Execs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.execs
}
