package model

import (
	"strings"

	"github.com/google/uuid"
)

// Device is a registered capture device (kiosk camera) at an exhibit
type Device struct {
	ID      uuid.UUID `json:"id"`
	Label   string    `json:"deviceLabel"`
	Exhibit string    `json:"exhibit"`
	Venue   string    `json:"venue"`
}

// RegisterDeviceRequest represents a request to register a device
type RegisterDeviceRequest struct {
	ID      string `json:"id,omitempty"`
	Label   string `json:"deviceLabel"`
	Exhibit string `json:"exhibit"`
	Venue   string `json:"venue"`
}

// Field limits for devices
const (
	MaxDeviceLabelLength = 100
	MaxExhibitLength     = 200
	MaxVenueLength       = 200
)

// Validate validates the register device request
func (r *RegisterDeviceRequest) Validate() []FieldError {
	var errors []FieldError

	if r.ID != "" {
		if id, err := uuid.Parse(r.ID); err != nil || id == uuid.Nil {
			errors = append(errors, FieldError{
				Field:   "id",
				Message: "id must be a non-nil UUID",
			})
		}
	}

	if strings.TrimSpace(r.Label) == "" {
		errors = append(errors, FieldError{
			Field:   "deviceLabel",
			Message: "deviceLabel is required",
		})
	}
	if len(r.Label) > MaxDeviceLabelLength {
		errors = append(errors, FieldError{
			Field:   "deviceLabel",
			Message: "deviceLabel exceeds maximum length",
		})
	}

	if len(r.Exhibit) > MaxExhibitLength {
		errors = append(errors, FieldError{
			Field:   "exhibit",
			Message: "exhibit exceeds maximum length",
		})
	}

	if len(r.Venue) > MaxVenueLength {
		errors = append(errors, FieldError{
			Field:   "venue",
			Message: "venue exceeds maximum length",
		})
	}

	return errors
}

// ToDevice builds a Device from a validated request, generating an id when
// none was supplied.
func (r *RegisterDeviceRequest) ToDevice() Device {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		id = uuid.New()
	}
	return Device{
		ID:      id,
		Label:   strings.TrimSpace(r.Label),
		Exhibit: r.Exhibit,
		Venue:   r.Venue,
	}
}
