package database

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
)

// tableNamePattern follows the classic table-service naming rule: alphanumeric,
// starting with a letter, 3 to 63 characters.
var tableNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]{2,62}$`)

// ValidateTableName rejects names that cannot be used as a table identifier.
// Backends interpolate validated names into DDL, so this must run before any I/O.
func ValidateTableName(table string) error {
	if !tableNamePattern.MatchString(table) {
		return fmt.Errorf("%w: table name %q must be 3-63 alphanumeric characters starting with a letter", ErrInvalidInput, table)
	}
	return nil
}

// continuation is the decoded form of a continuation token
type continuation struct {
	PartitionKey string `json:"pk"`
	RowKey       string `json:"rk"`
}

// EncodeContinuationToken builds an opaque token resuming after (partitionKey, rowKey).
func EncodeContinuationToken(partitionKey, rowKey string) string {
	data, _ := json.Marshal(continuation{PartitionKey: partitionKey, RowKey: rowKey})
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeContinuationToken returns the position encoded in token.
func DecodeContinuationToken(token string) (string, string, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", "", fmt.Errorf("%w: malformed continuation token", ErrInvalidInput)
	}
	var c continuation
	if err := json.Unmarshal(data, &c); err != nil {
		return "", "", fmt.Errorf("%w: malformed continuation token", ErrInvalidInput)
	}
	if c.PartitionKey == "" && c.RowKey == "" {
		return "", "", fmt.Errorf("%w: empty continuation token", ErrInvalidInput)
	}
	return c.PartitionKey, c.RowKey, nil
}
