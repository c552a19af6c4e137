package ingest

import "errors"

// Errors for MQTT ingestion. Use errors.Is to check for them.
var (
	ErrNotConnected     = errors.New("ingest: client not connected")
	ErrConnectionFailed = errors.New("ingest: connection failed")
	ErrSubscribeFailed  = errors.New("ingest: subscribe failed")
	ErrInvalidQoS       = errors.New("ingest: invalid QoS level (must be 0, 1, or 2)")
	ErrInvalidTopic     = errors.New("ingest: topic cannot be empty")

	// ErrMalformedPayload is returned when a sighting message is not a JSON
	// patron array (or a single patron object).
	ErrMalformedPayload = errors.New("ingest: malformed sighting payload")
)
