// Package journal keeps an audit trail of optimizer calls: inputs, outcome
// and timings. It is meant for diagnosing odd plans after the fact.
package journal

import (
	"context"
	"time"

	"github.com/kilianp07/v2g-planner/core/model"
	"github.com/kilianp07/v2g-planner/core/scheduler"
)

// Record captures one solve.
type Record struct {
	ID               string            `json:"id"`
	Timestamp        time.Time         `json:"timestamp"`
	Mode             model.Mode        `json:"mode"`
	Horizon          int               `json:"horizon_hours"`
	Status           string            `json:"status"`
	NetCost          float64           `json:"net_cost"`
	CO2EmittedKg     float64           `json:"co2_emitted_kg"`
	CO2AvoidedKg     float64           `json:"co2_avoided_kg"`
	FilledByDeadline float64           `json:"filled_by_deadline"`
	DurationMS       int64             `json:"duration_ms"`
	Nodes            int               `json:"nodes"`
	Error            string            `json:"error,omitempty"`
	Input            scheduler.Input   `json:"input"`
	Result           *scheduler.Result `json:"result,omitempty"`
}

// FromEvent converts a solve event into a Record.
func FromEvent(ev scheduler.Event) Record {
	rec := Record{
		ID:         ev.ID,
		Timestamp:  ev.Time,
		Mode:       ev.Input.Mode,
		Horizon:    ev.Input.Horizon,
		Status:     ev.Status(),
		DurationMS: ev.Duration.Milliseconds(),
		Nodes:      ev.Stats.Nodes,
		Input:      ev.Input,
		Result:     ev.Result,
	}
	if ev.Err != nil {
		rec.Error = ev.Err.Error()
	}
	if r := ev.Result; r != nil {
		rec.NetCost = r.NetCost
		rec.CO2EmittedKg = r.CO2EmittedKg
		rec.CO2AvoidedKg = r.CO2AvoidedKg
		rec.FilledByDeadline = r.FilledByDeadline
	}
	return rec
}

// Failed reports whether the solve returned an error.
func (r Record) Failed() bool { return r.Error != "" }

// Query filters records. Zero fields match everything.
type Query struct {
	Start time.Time
	End   time.Time
	// Mode is "cost" or "eco".
	Mode       string
	FailedOnly bool
	// Limit keeps the most recent records when positive.
	Limit int
}

// Match reports whether rec passes every filter except Limit.
func (q Query) Match(rec Record) bool {
	if !q.Start.IsZero() && rec.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && rec.Timestamp.After(q.End) {
		return false
	}
	if q.Mode != "" && rec.Mode.String() != q.Mode {
		return false
	}
	if q.FailedOnly && !rec.Failed() {
		return false
	}
	return true
}

func (q Query) limit(recs []Record) []Record {
	if q.Limit > 0 && len(recs) > q.Limit {
		return recs[len(recs)-q.Limit:]
	}
	return recs
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}
