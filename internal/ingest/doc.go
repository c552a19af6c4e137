// Package ingest receives patron sightings over MQTT.
//
// Capture devices publish a JSON array of patrons to
// dinmore/sightings/<deviceId>. The Client keeps a persistent session with
// the broker and restores subscriptions on reconnect; SightingHandler decodes
// each message and hands the batch to the store service, so MQTT and HTTP
// ingestion share the same validation and partial-failure semantics.
//
//	client, err := ingest.Connect(cfg.MQTT, logger)
//	h := ingest.NewSightingHandler(storeService, cfg.MQTT.TopicPrefix, logger)
//	err = client.Subscribe(h.Topic(), byte(cfg.MQTT.QoS), h.Handle)
//
// The client publishes a retained online/offline status to
// dinmore/ingest/status, with the offline message also registered as the
// broker's last will.
package ingest
