package repository

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestKeyStrategy_DeviceKey(t *testing.T) {
	t.Parallel()

	keys := NewKeyStrategy("")
	id := uuid.MustParse("AAAAAAAA-1111-1111-1111-111111111111")

	partition, row, err := keys.DeviceKey(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if partition != DefaultDevicePartition {
		t.Errorf("expected partition %q, got %q", DefaultDevicePartition, partition)
	}
	if row != "aaaaaaaa-1111-1111-1111-111111111111" {
		t.Errorf("expected lower-case GUID row key, got %q", row)
	}
}

func TestKeyStrategy_DeviceKey_CustomPartition(t *testing.T) {
	t.Parallel()

	partition, _, err := NewKeyStrategy("kiosks").DeviceKey(uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if partition != "kiosks" {
		t.Errorf("expected kiosks, got %q", partition)
	}
}

func TestKeyStrategy_DeviceKey_NilID(t *testing.T) {
	t.Parallel()

	if _, _, err := NewKeyStrategy("").DeviceKey(uuid.Nil); !errors.Is(err, ErrInvalidDeviceID) {
		t.Errorf("expected ErrInvalidDeviceID, got %v", err)
	}
}

func TestKeyStrategy_PatronKey(t *testing.T) {
	t.Parallel()

	fixed := uuid.MustParse("22222222-2222-4222-8222-222222222222")
	keys := KeyStrategy{NewRowID: func() uuid.UUID { return fixed }}

	partition, row, err := keys.PatronKey("face-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if partition != "face-1" || row != fixed.String() {
		t.Errorf("unexpected keys %s/%s", partition, row)
	}
}

func TestKeyStrategy_PatronKey_FreshRowPerCall(t *testing.T) {
	t.Parallel()

	keys := NewKeyStrategy("")
	_, first, _ := keys.PatronKey("face-1")
	_, second, _ := keys.PatronKey("face-1")
	if first == second {
		t.Errorf("expected distinct row keys, got %s twice", first)
	}
}

func TestKeyStrategy_PatronKey_EmptyFace(t *testing.T) {
	t.Parallel()

	for _, face := range []string{"", "   "} {
		if _, _, err := NewKeyStrategy("").PatronKey(face); !errors.Is(err, ErrMissingFaceID) {
			t.Errorf("expected ErrMissingFaceID for %q, got %v", face, err)
		}
	}
}
