package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/v2g-planner/core/metrics"
	"github.com/kilianp07/v2g-planner/infra/logger"
)

// InfluxSink writes solve summaries and hourly plans to InfluxDB using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordSolve writes one planner_solve point.
func (s *InfluxSink) RecordSolve(rec coremetrics.SolveRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("planner_solve").
		AddTag("solve_id", rec.ID).
		AddTag("mode", rec.Mode).
		AddTag("status", rec.Status).
		AddField("horizon", rec.Horizon).
		AddField("nodes", rec.Nodes).
		AddField("duration_ms", round3(rec.Duration.Seconds()*1000)).
		AddField("net_cost", round3(rec.NetCost)).
		AddField("solar_kwh", round3(rec.SolarKWh)).
		AddField("grid_kwh", round3(rec.GridKWh)).
		AddField("discharged_kwh", round3(rec.DischargedKWh)).
		AddField("co2_emitted_kg", round3(rec.CO2EmittedKg)).
		AddField("co2_avoided_kg", round3(rec.CO2AvoidedKg)).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordPlan writes one plan_hour point per hour of the schedule.
func (s *InfluxSink) RecordPlan(hours []coremetrics.PlanHour) error {
	if len(hours) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	points := make([]*write.Point, len(hours))
	for i, h := range hours {
		points[i] = write.NewPointWithMeasurement("plan_hour").
			AddTag("solve_id", h.SolveID).
			AddTag("mode", h.Mode).
			AddTag("action", h.Action).
			AddField("hour", h.Hour).
			AddField("solar_kw", round3(h.Solar)).
			AddField("grid_kw", round3(h.Grid)).
			AddField("discharge_kw", round3(h.Discharge)).
			AddField("soc_kwh", round3(h.SoC)).
			AddField("price", round3(h.Price)).
			SetTime(h.Time)
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// Close releases the HTTP client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
