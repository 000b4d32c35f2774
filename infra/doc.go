// Package infra holds the adapters to external systems: the zerolog logger,
// Sentry, the MQTT plan publisher, the Prometheus, InfluxDB and eco KPI
// metrics sinks and the SQLite KPI store. They implement interfaces declared
// under core and are selected from configuration.
package infra
