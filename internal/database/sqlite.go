package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// SQLite configuration constants.
const (
	// dirPermissions is the permission mode for the database directory.
	dirPermissions = 0750

	// sqliteBusyTimeoutMillis bounds how long a writer waits for the lock.
	sqliteBusyTimeoutMillis = 5000

	// connectionTimeout is the timeout for verifying database connectivity.
	connectionTimeout = 5 * time.Second
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// SQLiteStore implements TableStore using an embedded SQLite database.
//
// Each logical table becomes one SQL table keyed by (partition_key, row_key);
// the property bag is stored as a JSON document.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (or creates) the database at path
func OpenSQLite(path string) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: sqlite path is required", ErrInvalidInput)
	}

	dsn := MemoryPath
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)",
			filepath.Clean(path), sqliteBusyTimeoutMillis)
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite db: %v", ErrConnection, err)
	}

	// SQLite has a single writer, and each :memory: connection is a separate database.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%w: ping sqlite db: %v", ErrConnection, err)
	}

	return &SQLiteStore{db: sqlDB, now: time.Now}, nil
}

// CreateTableIfNotExists creates the backing SQL table
func (s *SQLiteStore) CreateTableIfNotExists(ctx context.Context, table string) error {
	if err := ValidateTableName(table); err != nil {
		return err
	}

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (
		partition_key TEXT NOT NULL,
		row_key TEXT NOT NULL,
		etag TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		properties TEXT NOT NULL,
		PRIMARY KEY (partition_key, row_key)
	)`, table)

	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		if isSQLiteAlreadyExists(err) {
			return nil
		}
		return translateSQLiteError(err, table)
	}
	return nil
}

// Insert adds a row, failing with ErrConflict on a duplicate key
func (s *SQLiteStore) Insert(ctx context.Context, table string, entity Entity) (Entity, error) {
	if err := ValidateTableName(table); err != nil {
		return Entity{}, err
	}

	props, err := json.Marshal(entity.Properties)
	if err != nil {
		return Entity{}, fmt.Errorf("%w: encoding properties: %v", ErrInvalidInput, err)
	}

	entity.ETag = uuid.NewString()
	entity.Timestamp = s.now().UTC()

	_, err = s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %q (partition_key, row_key, etag, timestamp, properties) VALUES (?, ?, ?, ?, ?)`, table),
		entity.PartitionKey,
		entity.RowKey,
		entity.ETag,
		entity.Timestamp.UnixMilli(),
		string(props),
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return Entity{}, fmt.Errorf("%w: %s/%s", ErrConflict, entity.PartitionKey, entity.RowKey)
		}
		return Entity{}, translateSQLiteError(err, table)
	}

	return s.Retrieve(ctx, table, entity.PartitionKey, entity.RowKey)
}

// Retrieve returns a single row by its keys
func (s *SQLiteStore) Retrieve(ctx context.Context, table, partitionKey, rowKey string) (Entity, error) {
	if err := ValidateTableName(table); err != nil {
		return Entity{}, err
	}

	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT partition_key, row_key, etag, timestamp, properties FROM %q WHERE partition_key = ? AND row_key = ?`, table),
		partitionKey,
		rowKey,
	)

	entity, err := scanSQLiteEntity(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entity{}, fmt.Errorf("%w: %s/%s", ErrNotFound, partitionKey, rowKey)
		}
		return Entity{}, translateSQLiteError(err, table)
	}
	return entity, nil
}

// Delete removes a row when its ETag still matches
func (s *SQLiteStore) Delete(ctx context.Context, table string, entity Entity) error {
	if err := ValidateTableName(table); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %q WHERE partition_key = ? AND row_key = ? AND (etag = ? OR ? = '*')`, table),
		entity.PartitionKey,
		entity.RowKey,
		entity.ETag,
		entity.ETag,
	)
	if err != nil {
		return translateSQLiteError(err, table)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return translateSQLiteError(err, table)
	}
	if affected > 0 {
		return nil
	}

	if _, lookupErr := s.Retrieve(ctx, table, entity.PartitionKey, entity.RowKey); lookupErr == nil {
		return fmt.Errorf("%w: %s/%s", ErrPreconditionFailed, entity.PartitionKey, entity.RowKey)
	}
	return fmt.Errorf("%w: %s/%s", ErrNotFound, entity.PartitionKey, entity.RowKey)
}

// QuerySegment returns one page ordered by (partition_key, row_key)
func (s *SQLiteStore) QuerySegment(ctx context.Context, table, token string, pageSize int) (Segment, error) {
	if err := ValidateTableName(table); err != nil {
		return Segment{}, err
	}
	pageSize = ClampPageSize(pageSize)

	var (
		rows *sql.Rows
		err  error
	)
	if token == "" {
		rows, err = s.db.QueryContext(ctx,
			fmt.Sprintf(`SELECT partition_key, row_key, etag, timestamp, properties
			   FROM %q
			  ORDER BY partition_key ASC, row_key ASC
			  LIMIT ?`, table),
			pageSize+1,
		)
	} else {
		pk, rk, decodeErr := DecodeContinuationToken(token)
		if decodeErr != nil {
			return Segment{}, decodeErr
		}
		rows, err = s.db.QueryContext(ctx,
			fmt.Sprintf(`SELECT partition_key, row_key, etag, timestamp, properties
			   FROM %q
			  WHERE partition_key > ? OR (partition_key = ? AND row_key > ?)
			  ORDER BY partition_key ASC, row_key ASC
			  LIMIT ?`, table),
			pk, pk, rk,
			pageSize+1,
		)
	}
	if err != nil {
		return Segment{}, translateSQLiteError(err, table)
	}
	defer rows.Close()

	segment := Segment{Entities: make([]Entity, 0, pageSize)}
	for rows.Next() {
		entity, err := scanSQLiteEntity(rows)
		if err != nil {
			return Segment{}, translateSQLiteError(err, table)
		}
		segment.Entities = append(segment.Entities, entity)
	}
	if err := rows.Err(); err != nil {
		return Segment{}, translateSQLiteError(err, table)
	}

	if len(segment.Entities) > pageSize {
		last := segment.Entities[pageSize-1]
		segment.ContinuationToken = EncodeContinuationToken(last.PartitionKey, last.RowKey)
		segment.Entities = segment.Entities[:pageSize]
	}
	return segment, nil
}

// Ping verifies the database handle
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return ErrConnection
	}
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return nil
}

// Close closes the SQLite handle
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteEntity(row rowScanner) (Entity, error) {
	var (
		entity    Entity
		timestamp int64
		props     string
	)
	if err := row.Scan(&entity.PartitionKey, &entity.RowKey, &entity.ETag, &timestamp, &props); err != nil {
		return Entity{}, err
	}
	entity.Timestamp = time.UnixMilli(timestamp).UTC()
	entity.Properties = map[string]any{}
	if err := json.Unmarshal([]byte(props), &entity.Properties); err != nil {
		return Entity{}, fmt.Errorf("%w: decoding properties: %v", ErrQuery, err)
	}
	return entity, nil
}

// translateSQLiteError maps driver errors onto the package sentinels
func translateSQLiteError(err error, table string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3lib.SQLITE_BUSY, sqlite3lib.SQLITE_LOCKED:
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
	}
	if strings.Contains(strings.ToLower(err.Error()), "no such table") {
		return fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}
	return fmt.Errorf("%w: %v", ErrQuery, err)
}

func isSQLiteUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

func isSQLiteAlreadyExists(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "already exists")
}

var _ TableStore = (*SQLiteStore)(nil)
