// Package telemetry forwards stored sightings to InfluxDB.
//
// Recorder satisfies service.SightingRecorder. Each stored sighting becomes a
// point in the "sighting" measurement, tagged by device, exhibit, gender and
// primary emotion, with age, smile and match confidence as fields and the
// sighting time as the timestamp. Writes use the client's non-blocking batch
// API so a slow or unavailable InfluxDB never delays persistence.
package telemetry
