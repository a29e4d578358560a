package tagger

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/flowtag/internal/store"
	"github.com/agentstation/flowtag/pkg/constants"
	"github.com/agentstation/flowtag/pkg/errors"
	"github.com/agentstation/flowtag/pkg/logging"
)

// DBBackend applies labels by inserting association rows directly.
// Inserts ignore conflicts, so re-running never duplicates or fails.
type DBBackend struct {
	ex        store.Executor
	batchSize int
	logger    *zerolog.Logger
}

// DBOption configures a DBBackend.
type DBOption func(*DBBackend)

// WithBatchSize sets how many statements are sent per round trip.
func WithBatchSize(n int) DBOption {
	return func(b *DBBackend) {
		if n > 0 {
			b.batchSize = n
		}
	}
}

// NewDBBackend creates a DBBackend over ex. The backend owns ex and closes it.
func NewDBBackend(ex store.Executor, logger *zerolog.Logger, opts ...DBOption) *DBBackend {
	if logger == nil {
		logger = logging.Default()
	}
	b := &DBBackend{ex: ex, batchSize: constants.StatementBatchSize, logger: logger}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name implements Backend.
func (b *DBBackend) Name() string { return "db" }

// Close implements Backend.
func (b *DBBackend) Close() error { return b.ex.Close() }

// Ping verifies the database is reachable and returns how many tags it holds.
func (b *DBBackend) Ping(ctx context.Context) (int, error) {
	return store.Ping(ctx, b.ex)
}

type statement struct {
	item int
	sql  string
}

// Apply implements Backend. Statements from all assignments are grouped into
// batches; when a batch fails its statements are retried one by one so only
// the statements that fail on their own are charged to their workflow.
func (b *DBBackend) Apply(ctx context.Context, batch []Assignment) []Outcome {
	outcomes := make([]Outcome, len(batch))
	failed := make([][]string, len(batch))
	causes := make([]error, len(batch))
	pending := make([]int, len(batch))

	var stmts []statement
	for i, a := range batch {
		for _, id := range a.LabelIDs {
			sql := store.InsertStatement(store.Association{WorkflowID: a.RemoteID, TagID: id})
			stmts = append(stmts, statement{item: i, sql: sql})
			pending[i]++
		}
	}

	chunks := store.Chunk(stmts, b.batchSize)
	for n, chunk := range chunks {
		if ctx.Err() != nil {
			break
		}

		sqls := make([]string, len(chunk))
		for i, s := range chunk {
			sqls[i] = s.sql
		}

		if err := b.ex.Exec(ctx, store.Join(sqls)); err == nil {
			for _, s := range chunk {
				outcomes[s.item].Created++
				pending[s.item]--
			}
		} else {
			b.logger.Warn().Err(err).
				Int("batch", n+1).
				Int("statements", len(chunk)).
				Msg("Batch failed, retrying statements individually")

			for _, s := range chunk {
				if ctx.Err() != nil {
					break
				}
				pending[s.item]--
				if err := b.ex.Exec(ctx, s.sql); err != nil {
					outcomes[s.item].Failed++
					failed[s.item] = append(failed[s.item], s.sql)
					if causes[s.item] == nil {
						causes[s.item] = err
					}
					continue
				}
				outcomes[s.item].Created++
			}
		}

		b.logger.Debug().
			Int("done", min((n+1)*b.batchSize, len(stmts))).
			Int("total", len(stmts)).
			Msg("Association progress")
	}

	for i, a := range batch {
		switch {
		case len(failed[i]) > 0:
			outcomes[i].Err = &errors.ApplyError{
				RemoteID:   a.RemoteID,
				Statements: failed[i],
				Err:        causes[i],
			}
		case pending[i] > 0:
			outcomes[i].Err = ctx.Err()
		default:
			outcomes[i].TagIDs = append([]string(nil), a.LabelIDs...)
		}
	}
	return outcomes
}
