// Package repository implements the data access layer for the Dinmore API.
//
// Domain values are stored as flat rows in a database.TableStore. The layers
// inside this package, leaf first:
//
//   - mapper.go: pure Device/Patron <-> database.Entity conversion
//   - keys.go: (partition, row) derivation for each entity
//   - gateway.go: TableGateway, the store boundary (ensure, insert, retrieve,
//     delete, scan)
//   - device.go, sighting.go: per-entity repositories composing the above
//
// # Repository Pattern
//
//   - Constructor function (NewXxxRepository) accepts the gateway, key strategy and table name
//   - Point lookups return (nil, nil) when the row does not exist
//   - Deletes are idempotent
//
// # Example Usage
//
//	gw := NewTableGateway(store, cfg.Store.PageSize, logger)
//	repo := NewDeviceRepository(gw, NewKeyStrategy("device"), "devices")
//	device, err := repo.GetByID(ctx, id)
//	if err != nil {
//	    return err
//	}
//	if device == nil {
//	    // Handle not found
//	}
package repository
