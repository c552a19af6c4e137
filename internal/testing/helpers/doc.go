// Package helpers provides test utilities for the Dinmore API.
//
// # HTTP Requests
//
//	req := helpers.NewRequest(t, http.MethodPost, "/v1/devices").
//	    WithBody(body).
//	    WithAdminKey("secret").
//	    Build()
//
// # Assertions
//
//	helpers.AssertStatus(t, rr, http.StatusCreated)
//	helpers.AssertProblemDetails(t, rr, http.StatusConflict, model.ErrCodeAlreadyExists)
//	helpers.AssertRowExists(t, store, "devices", "device", id.String())
package helpers
