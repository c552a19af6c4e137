// Package config manages application configuration for the Dinmore API.
//
// Configuration is layered: code defaults, then an optional YAML file named
// by CONFIG_FILE, then environment variables. Validate reports every problem
// at once via errors.Join.
//
//	cfg, err := config.Load()
//	if err != nil { ... }
//	if err := cfg.Validate(); err != nil { ... }
//
// # Configuration Groups
//
//   - ServerConfig: HTTP listener, timeouts, CORS origins
//   - StoreConfig: backend (surrealdb or sqlite), page size, table names
//   - DatabaseConfig: SurrealDB connection
//   - SQLiteConfig: embedded store file
//   - AuthConfig: bcrypt hash of the admin key
//   - RateLimitConfig: per-client sighting ingestion limit
//   - MQTTConfig: sighting subscription broker
//   - InfluxDBConfig: sighting telemetry sink
//   - LoggingConfig: slog level, format, output
//
// # Environment Variables
//
//	SERVER_PORT        HTTP port (default 8080)
//	STORE_BACKEND      surrealdb | sqlite (default surrealdb)
//	TABLE_PAGE_SIZE    scan page size, 1..1000 (default 1000)
//	DEVICE_TABLE       device table name (default devices)
//	PATRON_TABLE       sighting table name (default patrons)
//	DB_HOST, DB_PORT   SurrealDB address
//	SQLITE_PATH        SQLite file, or :memory:
//	ADMIN_KEY_HASH     bcrypt hash, required in production
//	MQTT_ENABLED       subscribe to sightings over MQTT
//	INFLUXDB_ENABLED   write sighting points to InfluxDB
//	LOG_LEVEL          debug | info | warn | error
package config
