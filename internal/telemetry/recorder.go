package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/forgo/dinmore/api/internal/config"
	"github.com/forgo/dinmore/api/internal/model"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement is the InfluxDB measurement sighting points are written to
const Measurement = "sighting"

const (
	defaultConnectTimeout = 10 * time.Second
	defaultBatchSize      = 100
	defaultFlushInterval  = 10 * time.Second
)

// pointWriter is the subset of api.WriteAPI the recorder needs
type pointWriter interface {
	WritePoint(point *write.Point)
	Flush()
}

// Recorder writes one InfluxDB point per stored sighting. Writes are batched
// and non-blocking; asynchronous write failures are logged.
type Recorder struct {
	client influxdb2.Client
	writer pointWriter
	logger *slog.Logger

	closed bool
	mu     sync.RWMutex
}

// Connect creates a recorder after verifying the server is reachable
func Connect(cfg config.InfluxDBConfig, logger *slog.Logger) (*Recorder, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}
	if logger == nil {
		logger = slog.Default()
	}

	batchSize := cfg.BatchSize
	if batchSize == 0 {
		batchSize = defaultBatchSize
	}
	flush := cfg.FlushInterval
	if flush <= 0 {
		flush = defaultFlushInterval
	}

	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(batchSize).
			SetFlushInterval(uint(flush.Milliseconds())),
	)

	ctx, cancel := context.WithTimeout(context.Background(), defaultConnectTimeout)
	defer cancel()

	healthy, err := client.Ping(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	writeAPI := client.WriteAPI(cfg.Org, cfg.Bucket)
	r := newRecorder(writeAPI, logger)
	r.client = client

	go r.logWriteErrors(writeAPI.Errors())

	return r, nil
}

func newRecorder(w pointWriter, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		writer: w,
		logger: logger.With(slog.String("component", "telemetry")),
	}
}

func (r *Recorder) logWriteErrors(errs <-chan error) {
	for err := range errs {
		r.logger.Warn("influxdb write failed", slog.String("error", err.Error()))
	}
}

// RecordSighting queues a point for the sighting. It never blocks on the
// network; after Close it reports ErrNotConnected.
func (r *Recorder) RecordSighting(_ context.Context, sighting model.Sighting) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrNotConnected
	}
	r.writer.WritePoint(SightingPoint(sighting))
	return nil
}

// SightingPoint builds the point for a sighting. Low-cardinality attributes
// are tags; the face id stays a field so series count does not grow with
// visitors.
func SightingPoint(s model.Sighting) *write.Point {
	tags := make(map[string]string, 4)
	for k, v := range map[string]string{
		"device":  s.Device,
		"exhibit": s.Exhibit,
		"gender":  s.Gender,
		"emotion": s.PrimaryEmotion,
	} {
		if v != "" {
			tags[k] = v
		}
	}

	fields := map[string]interface{}{
		"age":               int64(s.Age),
		"smile":             s.Smile,
		"confidence":        s.FaceMatchConfidence,
		"persisted_face_id": s.PersistedFaceID,
	}
	if s.Glasses != "" {
		fields["glasses"] = s.Glasses
	}

	return write.NewPoint(Measurement, tags, fields, s.TimeOfSighting)
}

// Ping checks the InfluxDB server
func (r *Recorder) Ping(ctx context.Context) error {
	r.mu.RLock()
	closed := r.closed
	r.mu.RUnlock()
	if closed || r.client == nil {
		return ErrNotConnected
	}

	healthy, err := r.client.Ping(ctx)
	if err != nil {
		return fmt.Errorf("influxdb ping: %w", err)
	}
	if !healthy {
		return fmt.Errorf("influxdb ping: server not healthy")
	}
	return nil
}

// Close flushes pending points and releases the client
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	r.writer.Flush()
	if r.client != nil {
		r.client.Close()
	}
	return nil
}
