// Package fixtures provides test data factories for the Dinmore API.
//
// # Builders
//
//	d := fixtures.Device()
//	p := fixtures.Patron(fixtures.WithAge(29.5))
//	batch := fixtures.Patrons(5, fixtures.WithFace("face-1"))
//
// # Persisting
//
//	f := fixtures.New(deviceRepo)
//	d := f.CreateDevice(t, func(d *model.Device) { d.Label = "Kiosk-1" })
package fixtures
