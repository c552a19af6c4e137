package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// SurrealStore implements TableStore on top of SurrealDB.
//
// Each logical table is a schemaless SurrealDB table. A row's record id is the
// array [partition_key, row_key], so the pair is unique by construction and a
// CREATE against an existing pair fails.
type SurrealStore struct {
	db Database
}

// NewSurrealStore creates a table store over a connected SurrealDB database
func NewSurrealStore(db Database) *SurrealStore {
	return &SurrealStore{db: db}
}

// CreateTableIfNotExists defines a schemaless table
func (s *SurrealStore) CreateTableIfNotExists(ctx context.Context, table string) error {
	if err := ValidateTableName(table); err != nil {
		return err
	}

	// DEFINE statements do not accept parameters; the name is validated above.
	query := fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMALESS", table)
	if err := s.db.Execute(ctx, query, nil); err != nil {
		if isAlreadyExistsError(err) {
			return nil
		}
		return err
	}
	return nil
}

// Insert creates a row, failing with ErrConflict if the record id is taken
func (s *SurrealStore) Insert(ctx context.Context, table string, entity Entity) (Entity, error) {
	if err := ValidateTableName(table); err != nil {
		return Entity{}, err
	}

	query := `
		CREATE type::thing($tb, [$pk, $rk]) CONTENT {
			partition_key: $pk,
			row_key: $rk,
			etag: $etag,
			timestamp: time::now(),
			properties: $properties
		}
	`
	vars := map[string]interface{}{
		"tb":         table,
		"pk":         entity.PartitionKey,
		"rk":         entity.RowKey,
		"etag":       uuid.NewString(),
		"properties": encodeSurrealProperties(entity.Properties),
	}

	result, err := s.db.QueryOne(ctx, query, vars)
	if err != nil {
		if isAlreadyExistsError(err) {
			return Entity{}, fmt.Errorf("%w: %s/%s", ErrConflict, entity.PartitionKey, entity.RowKey)
		}
		if isMissingTableError(err) {
			return Entity{}, fmt.Errorf("%w: %s", ErrTableNotFound, table)
		}
		return Entity{}, err
	}

	return entityFromRecord(result)
}

// Retrieve returns a single row by its keys
func (s *SurrealStore) Retrieve(ctx context.Context, table, partitionKey, rowKey string) (Entity, error) {
	if err := ValidateTableName(table); err != nil {
		return Entity{}, err
	}

	query := `SELECT * FROM type::thing($tb, [$pk, $rk])`
	vars := map[string]interface{}{
		"tb": table,
		"pk": partitionKey,
		"rk": rowKey,
	}

	result, err := s.db.QueryOne(ctx, query, vars)
	if err != nil {
		if isMissingTableError(err) {
			return Entity{}, fmt.Errorf("%w: %s", ErrTableNotFound, table)
		}
		return Entity{}, err
	}

	return entityFromRecord(result)
}

// Delete removes a row when its ETag still matches
func (s *SurrealStore) Delete(ctx context.Context, table string, entity Entity) error {
	if err := ValidateTableName(table); err != nil {
		return err
	}

	vars := map[string]interface{}{
		"tb": table,
		"pk": entity.PartitionKey,
		"rk": entity.RowKey,
	}
	query := `DELETE type::thing($tb, [$pk, $rk]) RETURN BEFORE`
	if entity.ETag != AnyETag {
		query = `DELETE type::thing($tb, [$pk, $rk]) WHERE etag = $etag RETURN BEFORE`
		vars["etag"] = entity.ETag
	}

	_, err := s.db.QueryOne(ctx, query, vars)
	if err == nil {
		return nil
	}
	if isMissingTableError(err) {
		return fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	// Nothing was deleted: either the row is gone or its ETag moved on.
	if _, lookupErr := s.Retrieve(ctx, table, entity.PartitionKey, entity.RowKey); lookupErr == nil {
		return fmt.Errorf("%w: %s/%s", ErrPreconditionFailed, entity.PartitionKey, entity.RowKey)
	}
	return fmt.Errorf("%w: %s/%s", ErrNotFound, entity.PartitionKey, entity.RowKey)
}

// QuerySegment returns one page ordered by (partition_key, row_key)
func (s *SurrealStore) QuerySegment(ctx context.Context, table, token string, pageSize int) (Segment, error) {
	if err := ValidateTableName(table); err != nil {
		return Segment{}, err
	}
	pageSize = ClampPageSize(pageSize)

	vars := map[string]interface{}{
		"tb":    table,
		"limit": pageSize + 1,
	}
	query := `SELECT * FROM type::table($tb) ORDER BY partition_key ASC, row_key ASC LIMIT $limit`
	if token != "" {
		pk, rk, err := DecodeContinuationToken(token)
		if err != nil {
			return Segment{}, err
		}
		query = `
			SELECT * FROM type::table($tb)
			WHERE partition_key > $pk OR (partition_key = $pk AND row_key > $rk)
			ORDER BY partition_key ASC, row_key ASC
			LIMIT $limit
		`
		vars["pk"] = pk
		vars["rk"] = rk
	}

	results, err := s.db.Query(ctx, query, vars)
	if err != nil {
		if isMissingTableError(err) {
			return Segment{}, fmt.Errorf("%w: %s", ErrTableNotFound, table)
		}
		return Segment{}, err
	}

	records := extractRecords(results)
	segment := Segment{Entities: make([]Entity, 0, len(records))}
	for _, record := range records {
		entity, err := entityFromRecord(record)
		if err != nil {
			return Segment{}, err
		}
		segment.Entities = append(segment.Entities, entity)
	}

	if len(segment.Entities) > pageSize {
		last := segment.Entities[pageSize-1]
		segment.ContinuationToken = EncodeContinuationToken(last.PartitionKey, last.RowKey)
		segment.Entities = segment.Entities[:pageSize]
	}
	return segment, nil
}

// Ping checks the underlying connection
func (s *SurrealStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the underlying connection
func (s *SurrealStore) Close() error {
	return s.db.Close()
}

// extractRecords flattens the {status, result} wrappers returned by Query
func extractRecords(results []interface{}) []interface{} {
	records := make([]interface{}, 0)
	for _, result := range results {
		resp, ok := result.(map[string]interface{})
		if !ok {
			continue
		}
		if status, ok := resp["status"].(string); ok && status == "OK" {
			if resultData, ok := resp["result"].([]interface{}); ok {
				records = append(records, resultData...)
			}
		}
	}
	return records
}

// entityFromRecord converts a SurrealDB record map into an Entity
func entityFromRecord(record interface{}) (Entity, error) {
	if arr, ok := record.([]interface{}); ok {
		if len(arr) == 0 {
			return Entity{}, ErrNotFound
		}
		record = arr[0]
	}

	data, ok := record.(map[string]interface{})
	if !ok {
		return Entity{}, fmt.Errorf("%w: unexpected record format %T", ErrQuery, record)
	}

	entity := Entity{
		PartitionKey: stringValue(data["partition_key"]),
		RowKey:       stringValue(data["row_key"]),
		ETag:         stringValue(data["etag"]),
		Timestamp:    timeValue(data["timestamp"]),
		Properties:   map[string]any{},
	}
	if props, ok := data["properties"].(map[string]interface{}); ok {
		for k, v := range props {
			entity.Properties[k] = decodeSurrealValue(v)
		}
	}
	return entity, nil
}

// encodeSurrealProperties converts Go values into types the driver encodes natively
func encodeSurrealProperties(props map[string]any) map[string]interface{} {
	out := make(map[string]interface{}, len(props))
	for k, v := range props {
		switch t := v.(type) {
		case time.Time:
			out[k] = models.CustomDateTime{Time: t.UTC()}
		case *time.Time:
			if t != nil {
				out[k] = models.CustomDateTime{Time: t.UTC()}
			}
		case float32:
			out[k] = float64(t)
		default:
			out[k] = v
		}
	}
	return out
}

// decodeSurrealValue unwraps driver-specific types
func decodeSurrealValue(v interface{}) interface{} {
	switch t := v.(type) {
	case models.CustomDateTime:
		return t.Time
	case *models.CustomDateTime:
		if t != nil {
			return t.Time
		}
		return nil
	}
	return v
}

func stringValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func timeValue(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case models.CustomDateTime:
		return t.Time
	case *models.CustomDateTime:
		if t != nil {
			return t.Time
		}
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// isAlreadyExistsError checks if an error is a record or table collision
func isAlreadyExistsError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "already exists") ||
		strings.Contains(errStr, "duplicate")
}

// isMissingTableError checks for strict-mode "table does not exist" failures
func isMissingTableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "table") && strings.Contains(errStr, "does not exist")
}

var _ TableStore = (*SurrealStore)(nil)
