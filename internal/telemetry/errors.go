package telemetry

import "errors"

var (
	// ErrDisabled is returned by Connect when InfluxDB is not enabled
	ErrDisabled = errors.New("telemetry: influxdb disabled")

	// ErrConnectionFailed is returned when the server cannot be reached
	ErrConnectionFailed = errors.New("telemetry: connection failed")

	// ErrNotConnected is returned after Close
	ErrNotConnected = errors.New("telemetry: not connected")
)
