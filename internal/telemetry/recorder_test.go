package telemetry

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/forgo/dinmore/api/internal/config"
	"github.com/forgo/dinmore/api/internal/model"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

type fakeWriter struct {
	mu      sync.Mutex
	points  []*write.Point
	flushes int
}

func (f *fakeWriter) WritePoint(p *write.Point) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.points = append(f.points, p)
}

func (f *fakeWriter) Flush() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
}

func testSighting() model.Sighting {
	return model.Sighting{
		PersistedFaceID:     "face-1",
		SightingID:          "5f0c7a3e-0d5b-4f59-9f4c-2b1e9d6c1a11",
		Device:              "11111111-1111-1111-1111-111111111111",
		Exhibit:             "Hall A",
		Gender:              "female",
		Age:                 34,
		PrimaryEmotion:      "happiness",
		TimeOfSighting:      time.Date(2024, 3, 14, 10, 30, 0, 0, time.UTC),
		Smile:               0.5,
		Glasses:             "NoGlasses",
		FaceMatchConfidence: 0.87,
	}
}

func TestSightingPoint_LineProtocol(t *testing.T) {
	line := write.PointToLineProtocol(SightingPoint(testSighting()), time.Second)

	for _, want := range []string{
		"sighting,",
		"device=11111111-1111-1111-1111-111111111111",
		`exhibit=Hall\ A`,
		"gender=female",
		"emotion=happiness",
		"age=34i",
		"confidence=0.87",
		"smile=0.5",
		`glasses="NoGlasses"`,
		`persisted_face_id="face-1"`,
	} {
		if !strings.Contains(line, want) {
			t.Errorf("expected %q in line protocol %q", want, line)
		}
	}
	if !strings.HasSuffix(strings.TrimSpace(line), " 1710412200") {
		t.Errorf("expected sighting time as timestamp, got %q", line)
	}
}

func TestSightingPoint_OmitsEmptyTags(t *testing.T) {
	s := testSighting()
	s.Exhibit = ""
	s.PrimaryEmotion = ""
	s.Glasses = ""

	line := write.PointToLineProtocol(SightingPoint(s), time.Second)

	if strings.Contains(line, "exhibit=") || strings.Contains(line, "emotion=") {
		t.Errorf("expected empty tags to be omitted, got %q", line)
	}
	if strings.Contains(line, "glasses=") {
		t.Errorf("expected empty glasses field to be omitted, got %q", line)
	}
}

func TestRecordSighting_WritesPoint(t *testing.T) {
	w := &fakeWriter{}
	r := newRecorder(w, nil)

	if err := r.RecordSighting(context.Background(), testSighting()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(w.points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(w.points))
	}
	if w.points[0].Name() != Measurement {
		t.Errorf("expected measurement %q, got %q", Measurement, w.points[0].Name())
	}
}

func TestClose_FlushesOnceAndRejectsWrites(t *testing.T) {
	w := &fakeWriter{}
	r := newRecorder(w, nil)

	if err := r.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if w.flushes != 1 {
		t.Errorf("expected one flush, got %d", w.flushes)
	}

	err := r.RecordSighting(context.Background(), testSighting())
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrNotConnected after close, got %v", err)
	}
	if err := r.Ping(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrNotConnected from ping, got %v", err)
	}
}

func TestConnect_Disabled(t *testing.T) {
	_, err := Connect(config.InfluxDBConfig{Enabled: false}, nil)
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("expected ErrDisabled, got %v", err)
	}
}

func TestLogWriteErrors_DrainsChannel(t *testing.T) {
	r := newRecorder(&fakeWriter{}, nil)
	errs := make(chan error, 2)
	errs <- errors.New("bucket not found")
	errs <- errors.New("unauthorized")
	close(errs)

	done := make(chan struct{})
	go func() {
		r.logWriteErrors(errs)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("logWriteErrors did not return after channel closed")
	}
}
