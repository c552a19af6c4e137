package repository

import (
	"context"
	"errors"
	"iter"
	"log/slog"

	"github.com/forgo/dinmore/api/internal/database"
)

// TableGateway wraps a TableStore with the semantics the domain layer relies
// on: point lookups report absence as (nil, nil), deletes are idempotent and
// scans follow continuation tokens to the end of the table.
type TableGateway struct {
	store    database.TableStore
	pageSize int
	logger   *slog.Logger
}

// NewTableGateway creates a new table gateway
func NewTableGateway(store database.TableStore, pageSize int, logger *slog.Logger) *TableGateway {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &TableGateway{
		store:    store,
		pageSize: database.ClampPageSize(pageSize),
		logger:   logger,
	}
}

// EnsureTable creates the table if it does not already exist
func (g *TableGateway) EnsureTable(ctx context.Context, table string) error {
	err := g.store.CreateTableIfNotExists(ctx, table)
	g.logger.DebugContext(ctx, "ensure table", slog.String("table", table), slog.Any("error", err))
	return err
}

// Insert adds a row. A duplicate (partition, row) fails with database.ErrConflict.
func (g *TableGateway) Insert(ctx context.Context, table string, entity database.Entity) (database.Entity, error) {
	inserted, err := g.store.Insert(ctx, table, entity)
	g.logger.DebugContext(ctx, "insert",
		slog.String("table", table),
		slog.String("partition_key", entity.PartitionKey),
		slog.String("row_key", entity.RowKey),
		slog.Any("error", err),
	)
	return inserted, err
}

// Retrieve returns the row or nil if it (or its table) does not exist
func (g *TableGateway) Retrieve(ctx context.Context, table, partitionKey, rowKey string) (*database.Entity, error) {
	entity, err := g.store.Retrieve(ctx, table, partitionKey, rowKey)
	g.logger.DebugContext(ctx, "retrieve",
		slog.String("table", table),
		slog.String("partition_key", partitionKey),
		slog.String("row_key", rowKey),
		slog.Any("error", err),
	)
	if err != nil {
		if isAbsent(err) {
			return nil, nil
		}
		return nil, err
	}
	return &entity, nil
}

// Delete removes the row if present. The current ETag is read first so a
// concurrent rewrite surfaces as database.ErrPreconditionFailed; a row that is
// already gone is not an error.
func (g *TableGateway) Delete(ctx context.Context, table, partitionKey, rowKey string) error {
	entity, err := g.Retrieve(ctx, table, partitionKey, rowKey)
	if err != nil {
		return err
	}
	if entity == nil {
		return nil
	}

	err = g.store.Delete(ctx, table, *entity)
	g.logger.DebugContext(ctx, "delete",
		slog.String("table", table),
		slog.String("partition_key", partitionKey),
		slog.String("row_key", rowKey),
		slog.Any("error", err),
	)
	if err != nil && !isAbsent(err) {
		return err
	}
	return nil
}

// Scan lazily iterates every row in the table, fetching one segment at a time.
// The sequence can be ranged over more than once; each pass restarts the scan.
// A missing table yields nothing.
func (g *TableGateway) Scan(ctx context.Context, table string) iter.Seq2[database.Entity, error] {
	return func(yield func(database.Entity, error) bool) {
		token := ""
		for page := 1; ; page++ {
			segment, err := g.store.QuerySegment(ctx, table, token, g.pageSize)
			if err != nil {
				if errors.Is(err, database.ErrTableNotFound) {
					return
				}
				yield(database.Entity{}, err)
				return
			}
			g.logger.DebugContext(ctx, "scan segment",
				slog.String("table", table),
				slog.Int("page", page),
				slog.Int("rows", len(segment.Entities)),
				slog.Bool("more", segment.ContinuationToken != ""),
			)

			for _, entity := range segment.Entities {
				if !yield(entity, nil) {
					return
				}
			}

			if segment.ContinuationToken == "" {
				return
			}
			token = segment.ContinuationToken
		}
	}
}

// ScanAll materializes a full table scan
func (g *TableGateway) ScanAll(ctx context.Context, table string) ([]database.Entity, error) {
	entities := make([]database.Entity, 0)
	for entity, err := range g.Scan(ctx, table) {
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// Ping checks the underlying store
func (g *TableGateway) Ping(ctx context.Context) error {
	return g.store.Ping(ctx)
}

func isAbsent(err error) bool {
	return errors.Is(err, database.ErrNotFound) || errors.Is(err, database.ErrTableNotFound)
}
