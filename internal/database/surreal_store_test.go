package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// ============================================================================
// Mock Database
// ============================================================================

type mockDatabase struct {
	queryFunc    func(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error)
	queryOneFunc func(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error)
	executeFunc  func(ctx context.Context, query string, vars map[string]interface{}) error
}

func (m *mockDatabase) Connect(ctx context.Context) error { return nil }
func (m *mockDatabase) Close() error                      { return nil }
func (m *mockDatabase) Ping(ctx context.Context) error    { return nil }

func (m *mockDatabase) Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
	if m.queryFunc != nil {
		return m.queryFunc(ctx, query, vars)
	}
	return nil, nil
}

func (m *mockDatabase) QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
	if m.queryOneFunc != nil {
		return m.queryOneFunc(ctx, query, vars)
	}
	return nil, ErrNotFound
}

func (m *mockDatabase) Execute(ctx context.Context, query string, vars map[string]interface{}) error {
	if m.executeFunc != nil {
		return m.executeFunc(ctx, query, vars)
	}
	return nil
}

func surrealRecord(pk, rk, etag string) map[string]interface{} {
	return map[string]interface{}{
		"partition_key": pk,
		"row_key":       rk,
		"etag":          etag,
		"timestamp":     models.CustomDateTime{Time: time.Date(2024, 3, 14, 10, 30, 0, 0, time.UTC)},
		"properties":    map[string]interface{}{},
	}
}

// okResult wraps records the way SurrealDB.Query returns them
func okResult(records ...interface{}) []interface{} {
	return []interface{}{
		map[string]interface{}{"status": "OK", "result": records},
	}
}

// ============================================================================
// CreateTableIfNotExists Tests
// ============================================================================

func TestSurrealStore_CreateTable_AlreadyExistsIsSuccess(t *testing.T) {
	store := NewSurrealStore(&mockDatabase{
		executeFunc: func(ctx context.Context, query string, vars map[string]interface{}) error {
			return errors.New("The table 'devices' already exists")
		},
	})

	if err := store.CreateTableIfNotExists(context.Background(), "devices"); err != nil {
		t.Errorf("expected existing table to be success, got %v", err)
	}
}

func TestSurrealStore_CreateTable_InvalidNameSkipsQuery(t *testing.T) {
	called := false
	store := NewSurrealStore(&mockDatabase{
		executeFunc: func(ctx context.Context, query string, vars map[string]interface{}) error {
			called = true
			return nil
		},
	})

	err := store.CreateTableIfNotExists(context.Background(), "devices; REMOVE TABLE x")
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if called {
		t.Error("expected no query for an invalid table name")
	}
}

// ============================================================================
// Insert Tests
// ============================================================================

func TestSurrealStore_Insert_ReturnsStoredEntity(t *testing.T) {
	var gotVars map[string]interface{}
	store := NewSurrealStore(&mockDatabase{
		queryOneFunc: func(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
			gotVars = vars
			return surrealRecord(vars["pk"].(string), vars["rk"].(string), vars["etag"].(string)), nil
		},
	})

	entity, err := store.Insert(context.Background(), "devices", Entity{PartitionKey: "device", RowKey: "abc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entity.PartitionKey != "device" || entity.RowKey != "abc" {
		t.Errorf("unexpected keys %s/%s", entity.PartitionKey, entity.RowKey)
	}
	if entity.ETag == "" || entity.ETag != gotVars["etag"] {
		t.Errorf("expected the generated etag to be returned, got %q", entity.ETag)
	}
	if gotVars["tb"] != "devices" {
		t.Errorf("expected table var devices, got %v", gotVars["tb"])
	}
}

func TestSurrealStore_Insert_DuplicateIsConflict(t *testing.T) {
	store := NewSurrealStore(&mockDatabase{
		queryOneFunc: func(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
			return nil, fmt.Errorf("%w: Database record `devices:['device', 'abc']` already exists", ErrQuery)
		},
	})

	_, err := store.Insert(context.Background(), "devices", Entity{PartitionKey: "device", RowKey: "abc"})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestSurrealStore_MissingTableIsTableNotFound(t *testing.T) {
	missing := errors.New("The table 'patrons' does not exist")
	store := NewSurrealStore(&mockDatabase{
		queryFunc: func(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
			return nil, missing
		},
		queryOneFunc: func(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
			return nil, missing
		},
	})
	ctx := context.Background()

	if _, err := store.Insert(ctx, "patrons", Entity{PartitionKey: "f", RowKey: "r"}); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("insert: expected ErrTableNotFound, got %v", err)
	}
	if _, err := store.Retrieve(ctx, "patrons", "f", "r"); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("retrieve: expected ErrTableNotFound, got %v", err)
	}
	if err := store.Delete(ctx, "patrons", Entity{PartitionKey: "f", RowKey: "r", ETag: AnyETag}); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("delete: expected ErrTableNotFound, got %v", err)
	}
	if _, err := store.QuerySegment(ctx, "patrons", "", 10); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("query segment: expected ErrTableNotFound, got %v", err)
	}
}

// ============================================================================
// Delete Tests
// ============================================================================

func TestSurrealStore_Delete_MatchingETag(t *testing.T) {
	var deleteQuery string
	store := NewSurrealStore(&mockDatabase{
		queryOneFunc: func(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
			deleteQuery = query
			if vars["etag"] != "etag-1" {
				t.Errorf("expected etag var etag-1, got %v", vars["etag"])
			}
			return surrealRecord("device", "abc", "etag-1"), nil
		},
	})

	err := store.Delete(context.Background(), "devices", Entity{PartitionKey: "device", RowKey: "abc", ETag: "etag-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(deleteQuery, "WHERE etag = $etag") {
		t.Errorf("expected an etag-guarded delete, got %q", deleteQuery)
	}
}

func TestSurrealStore_Delete_StaleETagIsPreconditionFailed(t *testing.T) {
	store := NewSurrealStore(&mockDatabase{
		queryOneFunc: func(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
			if strings.HasPrefix(strings.TrimSpace(query), "DELETE") {
				return nil, ErrNotFound
			}
			// The row is still there under a newer etag
			return surrealRecord("device", "abc", "etag-2"), nil
		},
	})

	err := store.Delete(context.Background(), "devices", Entity{PartitionKey: "device", RowKey: "abc", ETag: "etag-1"})
	if !errors.Is(err, ErrPreconditionFailed) {
		t.Errorf("expected ErrPreconditionFailed, got %v", err)
	}
}

func TestSurrealStore_Delete_VanishedRowIsNotFound(t *testing.T) {
	store := NewSurrealStore(&mockDatabase{
		queryOneFunc: func(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
			return nil, ErrNotFound
		},
	})

	err := store.Delete(context.Background(), "devices", Entity{PartitionKey: "device", RowKey: "abc", ETag: "etag-1"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if errors.Is(err, ErrPreconditionFailed) {
		t.Error("a vanished row must not be reported as a precondition failure")
	}
}

func TestSurrealStore_Delete_AnyETagIsUnconditional(t *testing.T) {
	store := NewSurrealStore(&mockDatabase{
		queryOneFunc: func(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
			if strings.Contains(query, "etag") {
				t.Errorf("expected an unconditional delete, got %q", query)
			}
			if _, ok := vars["etag"]; ok {
				t.Error("expected no etag var")
			}
			return surrealRecord("device", "abc", "etag-1"), nil
		},
	})

	if err := store.Delete(context.Background(), "devices", Entity{PartitionKey: "device", RowKey: "abc", ETag: AnyETag}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// ============================================================================
// QuerySegment Tests
// ============================================================================

func TestSurrealStore_QuerySegment_MoreRowsThanPage(t *testing.T) {
	var gotVars map[string]interface{}
	store := NewSurrealStore(&mockDatabase{
		queryFunc: func(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
			gotVars = vars
			return okResult(
				surrealRecord("device", "a", "e1"),
				surrealRecord("device", "b", "e2"),
				surrealRecord("device", "c", "e3"),
			), nil
		},
	})

	segment, err := store.QuerySegment(context.Background(), "devices", "", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotVars["limit"] != 3 {
		t.Errorf("expected one extra row to be requested, got limit %v", gotVars["limit"])
	}
	if len(segment.Entities) != 2 {
		t.Fatalf("expected page trimmed to 2, got %d", len(segment.Entities))
	}
	if segment.Entities[1].RowKey != "b" {
		t.Errorf("expected last row b, got %s", segment.Entities[1].RowKey)
	}

	pk, rk, err := DecodeContinuationToken(segment.ContinuationToken)
	if err != nil {
		t.Fatalf("expected a valid token, got %v", err)
	}
	if pk != "device" || rk != "b" {
		t.Errorf("expected token after device/b, got %s/%s", pk, rk)
	}
}

func TestSurrealStore_QuerySegment_ExactPageHasNoToken(t *testing.T) {
	store := NewSurrealStore(&mockDatabase{
		queryFunc: func(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
			return okResult(
				surrealRecord("device", "a", "e1"),
				surrealRecord("device", "b", "e2"),
			), nil
		},
	})

	segment, err := store.QuerySegment(context.Background(), "devices", "", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(segment.Entities) != 2 {
		t.Errorf("expected 2 rows, got %d", len(segment.Entities))
	}
	if segment.ContinuationToken != "" {
		t.Errorf("expected no token on the last page, got %q", segment.ContinuationToken)
	}
}

func TestSurrealStore_QuerySegment_ResumesAfterToken(t *testing.T) {
	var gotQuery string
	var gotVars map[string]interface{}
	store := NewSurrealStore(&mockDatabase{
		queryFunc: func(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
			gotQuery, gotVars = query, vars
			return okResult(), nil
		},
	})

	token := EncodeContinuationToken("device", "b")
	segment, err := store.QuerySegment(context.Background(), "devices", token, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gotQuery, "row_key > $rk") {
		t.Errorf("expected a keyset query, got %q", gotQuery)
	}
	if gotVars["pk"] != "device" || gotVars["rk"] != "b" {
		t.Errorf("expected keyset vars device/b, got %v/%v", gotVars["pk"], gotVars["rk"])
	}
	if len(segment.Entities) != 0 || segment.ContinuationToken != "" {
		t.Errorf("expected an empty final segment, got %+v", segment)
	}
}

func TestSurrealStore_QuerySegment_MalformedToken(t *testing.T) {
	store := NewSurrealStore(&mockDatabase{})

	_, err := store.QuerySegment(context.Background(), "devices", "not a token!", 2)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

// ============================================================================
// Record Decoding Tests
// ============================================================================

func TestEntityFromRecord_DecodesDriverTypes(t *testing.T) {
	seen := time.Date(2024, 3, 14, 10, 30, 0, 0, time.UTC)
	record := surrealRecord("face-1", "row-1", "etag-1")
	record["properties"] = map[string]interface{}{
		"TimeOfSighting": models.CustomDateTime{Time: seen},
		"Age":            uint64(34),
		"Device":         "kiosk-1",
	}

	entity, err := entityFromRecord(record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, ok := entity.Properties["TimeOfSighting"].(time.Time); !ok || !got.Equal(seen) {
		t.Errorf("expected CustomDateTime to decode to %v, got %#v", seen, entity.Properties["TimeOfSighting"])
	}
	if entity.Properties["Age"] != uint64(34) {
		t.Errorf("expected uint64 age to pass through, got %#v", entity.Properties["Age"])
	}
	if !entity.Timestamp.Equal(time.Date(2024, 3, 14, 10, 30, 0, 0, time.UTC)) {
		t.Errorf("unexpected timestamp %v", entity.Timestamp)
	}
}

func TestEntityFromRecord_EmptyArrayIsNotFound(t *testing.T) {
	_, err := entityFromRecord([]interface{}{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestEntityFromRecord_UnexpectedShape(t *testing.T) {
	_, err := entityFromRecord("not a record")
	if !errors.Is(err, ErrQuery) {
		t.Errorf("expected ErrQuery, got %v", err)
	}
}
