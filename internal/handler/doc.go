// Package handler implements the HTTP surface of the Dinmore API.
//
// # Routes
//
//	POST   /v1/devices             register a device (admin)
//	GET    /v1/devices             list devices (admin)
//	GET    /v1/devices/{deviceId}  fetch one device
//	DELETE /v1/devices/{deviceId}  remove a device (admin)
//	POST   /v1/patrons             store a batch of sightings
//	GET    /health                 liveness and store reachability
//	GET    /metrics                Prometheus metrics, when enabled
//
// # Responses
//
// Successful responses are wrapped as {"data": ...}. Errors are RFC 9457
// problem details produced by MapServiceError:
//
//	if err := h.devices.StoreDevice(ctx, device); err != nil {
//	    WriteError(w, MapServiceError(err))
//	    return
//	}
package handler
