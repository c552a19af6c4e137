// Package model defines domain entities and API types for the Dinmore API.
//
// # Domain Entities
//
//   - Device: a registered capture device at an exhibit
//   - Patron: one submitted face observation
//   - Sighting: a stored patron row, keyed by face id and sighting id
//
// # JSON Serialization
//
// Models use camelCase json tags matching the capture device payloads:
//
//	type Device struct {
//	    ID      uuid.UUID `json:"id"`
//	    Label   string    `json:"deviceLabel"`
//	    Exhibit string    `json:"exhibit"`
//	    Venue   string    `json:"venue"`
//	}
//
// # Errors
//
// ProblemDetails implements RFC 9457 responses. Request types expose
// Validate() returning []FieldError for 422 responses.
package model
