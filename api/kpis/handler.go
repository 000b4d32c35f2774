// Package kpis exposes the daily ecological KPIs over HTTP.
package kpis

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	eco "github.com/kilianp07/v2g-planner/core/metrics/eco"
)

// Day is one KPI row as served to clients.
type Day struct {
	Date          string  `json:"date"`
	Solves        int     `json:"solves"`
	SolarKWh      float64 `json:"solar_kwh"`
	GridKWh       float64 `json:"grid_kwh"`
	DischargedKWh float64 `json:"discharged_kwh"`
	CO2AvoidedKg  float64 `json:"co2_avoided_kg"`
	CO2EmittedKg  float64 `json:"co2_emitted_kg"`
	SolarShare    float64 `json:"solar_share"`
}

// NewHandler exposes ecological KPIs via GET /api/kpis/{mode}?start=&end=.
// end defaults to now.
func NewHandler(store eco.Store, factor float64, token string) http.Handler {
	return newHandler(store, factor, token, time.Now)
}

func newHandler(store eco.Store, factor float64, token string, now func() time.Time) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		mode := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/kpis"), "/")
		if mode != "cost" && mode != "eco" {
			http.NotFound(w, r)
			return
		}
		start, _ := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
		end, _ := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
		if end.IsZero() {
			end = now()
		}
		recs, err := store.Query(mode, start, end)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		out := make([]Day, len(recs))
		for i, rec := range recs {
			out[i] = Day{
				Date:          rec.Date.Format("2006-01-02"),
				Solves:        rec.Solves,
				SolarKWh:      rec.SolarKWh,
				GridKWh:       rec.GridKWh,
				DischargedKWh: rec.DischargedKWh,
				CO2AvoidedKg:  rec.CO2Avoided(factor),
				CO2EmittedKg:  rec.CO2Emitted(factor),
				SolarShare:    rec.SolarShare(),
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	})
}
