package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/forgo/dinmore/api/internal/database"
	"github.com/forgo/dinmore/api/internal/model"
	"github.com/google/uuid"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

func testPatron() model.Patron {
	seen := time.Date(2024, 3, 14, 10, 30, 0, 0, time.UTC)
	confidence := float32(0.91)
	return model.Patron{
		PersistedFaceID: "face-1",
		Device:          "11111111-1111-1111-1111-111111111111",
		Exhibit:         "Hall A",
		FaceAttributes: model.FaceAttributes{
			Gender:  "male",
			Age:     29.5,
			Smile:   0.4,
			Glasses: "ReadingGlasses",
		},
		PrimaryEmotion:      "neutral",
		Time:                &seen,
		FaceMatchConfidence: &confidence,
	}
}

// ============================================================================
// Device Mapping Tests
// ============================================================================

func TestDeviceMapping_RoundTrip(t *testing.T) {
	t.Parallel()

	device := model.Device{
		ID:      uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		Label:   "Kiosk-1",
		Exhibit: "Hall A",
		Venue:   "Museum",
	}

	entity := DeviceToEntity("device", device)
	if entity.PartitionKey != "device" || entity.RowKey != "11111111-1111-1111-1111-111111111111" {
		t.Errorf("unexpected keys %s/%s", entity.PartitionKey, entity.RowKey)
	}
	if entity.Properties[PropDeviceLabel] != "Kiosk-1" {
		t.Errorf("expected DeviceLabel property, got %v", entity.Properties)
	}

	got, err := DeviceFromEntity(entity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != device {
		t.Errorf("expected %+v, got %+v", device, got)
	}
}

func TestDeviceFromEntity_NonGUIDRowKey(t *testing.T) {
	t.Parallel()

	_, err := DeviceFromEntity(database.Entity{PartitionKey: "device", RowKey: "kiosk-1"})
	if !errors.Is(err, ErrMalformedEntity) {
		t.Errorf("expected ErrMalformedEntity, got %v", err)
	}
}

// ============================================================================
// Patron Mapping Tests
// ============================================================================

func TestPatronToEntity_AgeRounding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		age  float64
		want int64
	}{
		{29.5, 30},
		{29.4, 29},
		{28.5, 29},
		{0.4, 0},
		{64.99, 65},
	}

	for _, tt := range tests {
		p := testPatron()
		p.FaceAttributes.Age = tt.age

		entity, err := PatronToEntity("face-1", "row-1", p)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := entity.Properties[PropAge]; got != tt.want {
			t.Errorf("age %v: expected %d, got %v", tt.age, tt.want, got)
		}
	}
}

func TestPatronToEntity_Properties(t *testing.T) {
	t.Parallel()

	p := testPatron()
	entity, err := PatronToEntity("face-1", "row-1", p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if entity.PartitionKey != "face-1" || entity.RowKey != "row-1" {
		t.Errorf("unexpected keys %s/%s", entity.PartitionKey, entity.RowKey)
	}
	if got := entity.Properties[PropFaceMatchConfidence]; got != float64(float32(0.91)) {
		t.Errorf("expected widened confidence, got %v (%T)", got, got)
	}
	if got := entity.Properties[PropTimeOfSighting]; got != p.Time.UTC() {
		t.Errorf("expected sighting time, got %v", got)
	}
	if got := entity.Properties[PropPrimaryEmotion]; got != "neutral" {
		t.Errorf("expected neutral, got %v", got)
	}
}

func TestPatronToEntity_DerivesEmotionFromScores(t *testing.T) {
	t.Parallel()

	p := testPatron()
	p.PrimaryEmotion = ""
	p.FaceAttributes.Emotion = &model.EmotionScores{Surprise: 0.7, Happiness: 0.3}

	entity, err := PatronToEntity("face-1", "row-1", p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := entity.Properties[PropPrimaryEmotion]; got != model.EmotionSurprise {
		t.Errorf("expected surprise, got %v", got)
	}
}

func TestPatronToEntity_Preconditions(t *testing.T) {
	t.Parallel()

	noTime := testPatron()
	noTime.Time = nil

	zeroTime := testPatron()
	zeroTime.Time = &time.Time{}

	noConfidence := testPatron()
	noConfidence.FaceMatchConfidence = nil

	tests := []struct {
		name      string
		partition string
		patron    model.Patron
		want      error
	}{
		{"missing time", "face-1", noTime, ErrMissingTimestamp},
		{"zero time", "face-1", zeroTime, ErrMissingTimestamp},
		{"missing confidence", "face-1", noConfidence, ErrMissingConfidence},
		{"missing face", "", testPatron(), ErrMissingFaceID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PatronToEntity(tt.partition, "row-1", tt.patron)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if !errors.Is(err, database.ErrInvalidInput) {
				t.Errorf("expected precondition to wrap ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestPatronFromEntity_JSONDecodedValues(t *testing.T) {
	t.Parallel()

	stored := time.Date(2024, 3, 14, 10, 31, 0, 0, time.UTC)
	entity := database.Entity{
		PartitionKey: "face-1",
		RowKey:       "row-1",
		Timestamp:    stored,
		Properties: map[string]any{
			PropDevice:              "dev-1",
			PropExhibit:             "Hall A",
			PropGender:              "female",
			PropAge:                 float64(30),
			PropPrimaryEmotion:      "happiness",
			PropTimeOfSighting:      "2024-03-14T10:30:00Z",
			PropSmile:               0.75,
			PropGlasses:             "NoGlasses",
			PropFaceMatchConfidence: 0.9,
		},
	}

	got, err := PatronFromEntity(entity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := model.Sighting{
		PersistedFaceID:     "face-1",
		SightingID:          "row-1",
		Device:              "dev-1",
		Exhibit:             "Hall A",
		Gender:              "female",
		Age:                 30,
		PrimaryEmotion:      "happiness",
		TimeOfSighting:      time.Date(2024, 3, 14, 10, 30, 0, 0, time.UTC),
		Smile:               0.75,
		Glasses:             "NoGlasses",
		FaceMatchConfidence: 0.9,
		StoredAt:            stored,
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestPatronFromEntity_SurrealDecodedValues(t *testing.T) {
	t.Parallel()

	seen := time.Date(2024, 3, 14, 10, 30, 0, 0, time.UTC)
	entity := database.Entity{
		PartitionKey: "face-1",
		RowKey:       "row-1",
		Properties: map[string]any{
			PropAge:            uint64(41),
			PropTimeOfSighting: models.CustomDateTime{Time: seen},
			PropSmile:          int64(1),
		},
	}

	got, err := PatronFromEntity(entity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Age != 41 {
		t.Errorf("expected age 41, got %d", got.Age)
	}
	if !got.TimeOfSighting.Equal(seen) {
		t.Errorf("expected %v, got %v", seen, got.TimeOfSighting)
	}
	if got.Smile != 1 {
		t.Errorf("expected smile 1, got %v", got.Smile)
	}
}

func TestPatronFromEntity_MissingTime(t *testing.T) {
	t.Parallel()

	_, err := PatronFromEntity(database.Entity{PartitionKey: "face-1", RowKey: "row-1", Properties: map[string]any{}})
	if !errors.Is(err, ErrMalformedEntity) {
		t.Errorf("expected ErrMalformedEntity, got %v", err)
	}
}
