// Package metrics defines the sinks solve outcomes are reported to. Concrete
// sinks (Prometheus, InfluxDB, eco KPIs) live in infra/metrics and register
// themselves by name so configuration can pick them.
package metrics
