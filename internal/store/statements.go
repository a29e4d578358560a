package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/agentstation/flowtag/pkg/constants"
	"github.com/agentstation/flowtag/pkg/errors"
)

// Association links one workflow to one tag.
type Association struct {
	WorkflowID string
	TagID      string
}

// InsertStatement renders an idempotent insert for a. Re-running it against
// a row that already exists is a no-op.
func InsertStatement(a Association) string {
	return fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES (%s, %s) ON CONFLICT DO NOTHING",
		pq.QuoteIdentifier(constants.WorkflowTagsTable),
		pq.QuoteIdentifier(constants.WorkflowIDColumn),
		pq.QuoteIdentifier(constants.TagIDColumn),
		pq.QuoteLiteral(a.WorkflowID),
		pq.QuoteLiteral(a.TagID),
	)
}

// ProbeQuery counts the tags known to the database.
func ProbeQuery() string {
	return "SELECT count(*) FROM " + pq.QuoteIdentifier(constants.TagTable)
}

// Join combines statements into a single batch.
func Join(stmts []string) string {
	return strings.Join(stmts, "; ")
}

// Chunk splits stmts into consecutive groups of at most size.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = constants.StatementBatchSize
	}
	var out [][]T
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}

// Ping checks connectivity by running the probe query and returns the tag count.
func Ping(ctx context.Context, ex Executor) (int, error) {
	out, err := ex.Scalar(ctx, ProbeQuery())
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, errors.WrapParse("psql", "", fmt.Errorf("unexpected probe output %q: %w", out, err))
	}
	return n, nil
}
