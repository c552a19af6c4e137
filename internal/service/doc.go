// Package service implements the domain facade of the Dinmore API.
//
// StoreService is the single entry point the HTTP handlers and the MQTT
// ingester use to persist devices and patron sightings. It validates input,
// derives storage keys through the repository layer and translates store
// failures into the sentinel errors in errors.go.
//
// # Service Pattern
//
//   - NewStoreService accepts a StoreServiceConfig with its dependencies
//   - Dependencies are narrow interfaces declared here, so unit tests use
//     func-field mocks instead of a table store
//   - Context is passed through for cancellation
//
// # Patron Batches
//
// StorePatrons stores entries independently. When some entries fail the
// stored ones are still returned, together with a *PartialBatchError that
// lists each failure by index:
//
//	result, err := svc.StorePatrons(ctx, patrons)
//	var partial *service.PartialBatchError
//	if errors.As(err, &partial) {
//	    // result.Stored holds the entries that were written
//	}
//
// A configured SightingRecorder receives every stored sighting. Recorder
// failures are logged and never fail the batch.
package service
