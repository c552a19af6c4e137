package handler

import (
	"context"
	"net/http"

	"github.com/forgo/dinmore/api/internal/model"
	"github.com/google/uuid"
)

// DeviceService interface for the handler
type DeviceService interface {
	StoreDevice(ctx context.Context, device model.Device) error
	GetDevice(ctx context.Context, id uuid.UUID) (*model.Device, error)
	GetDevices(ctx context.Context) ([]model.Device, error)
	DeleteDevice(ctx context.Context, id uuid.UUID) error
}

// DeviceHandler handles device HTTP requests
type DeviceHandler struct {
	devices DeviceService
}

// NewDeviceHandler creates a new device handler
func NewDeviceHandler(devices DeviceService) *DeviceHandler {
	return &DeviceHandler{devices: devices}
}

// Register handles POST /v1/devices - register a capture device
func (h *DeviceHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterDeviceRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		WriteError(w, model.NewValidationError(errors))
		return
	}

	device := req.ToDevice()
	if err := h.devices.StoreDevice(r.Context(), device); err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "register device"))
		return
	}

	WriteData(w, http.StatusCreated, device, map[string]string{
		"self": "/v1/devices/" + device.ID.String(),
	})
}

// List handles GET /v1/devices - list all registered devices
func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	devices, err := h.devices.GetDevices(r.Context())
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "list devices"))
		return
	}

	WriteData(w, http.StatusOK, devices, nil)
}

// Get handles GET /v1/devices/{deviceId}
func (h *DeviceHandler) Get(w http.ResponseWriter, r *http.Request) {
	// An id that is not a GUID cannot name a stored device.
	id, err := uuid.Parse(r.PathValue("deviceId"))
	if err != nil || id == uuid.Nil {
		WriteError(w, model.NewNotFoundError("device"))
		return
	}

	device, err := h.devices.GetDevice(r.Context(), id)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "get device"))
		return
	}
	if device == nil {
		WriteError(w, model.NewNotFoundError("device"))
		return
	}

	WriteData(w, http.StatusOK, device, nil)
}

// Delete handles DELETE /v1/devices/{deviceId}. Deleting an unknown device
// succeeds.
func (h *DeviceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("deviceId"))
	if err != nil || id == uuid.Nil {
		WriteNoContent(w)
		return
	}

	if err := h.devices.DeleteDevice(r.Context(), id); err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "delete device"))
		return
	}

	WriteNoContent(w)
}
