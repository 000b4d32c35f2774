// Package connectors pulls market data from external APIs into planner
// forecasts.
package connectors

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/v2g-planner/core/forecast"
	"github.com/kilianp07/v2g-planner/core/model"
)

// HourlyPrice is the grid price of the hour starting at Start, per kWh.
type HourlyPrice struct {
	Start time.Time
	Price float64
}

// PriceSource fetches the prices of the hours in [start, end).
type PriceSource interface {
	Prices(ctx context.Context, start, end time.Time) ([]HourlyPrice, error)
}

// PriceProvider takes solar and demand from Base and replaces the price
// series with market prices. Hour 0 is StartHour on the day after Now.
type PriceProvider struct {
	Base   forecast.Provider
	Source PriceSource
	Now    func() time.Time
}

func (p PriceProvider) Forecast(ctx context.Context) (model.Forecast, error) {
	f, err := p.Base.Forecast(ctx)
	if err != nil {
		return model.Forecast{}, err
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	n := f.Len()
	y, m, d := now().Date()
	start := time.Date(y, m, d+1, f.StartHour, 0, 0, 0, now().Location())
	prices, err := p.Source.Prices(ctx, start, start.Add(time.Duration(n)*time.Hour))
	if err != nil {
		return model.Forecast{}, fmt.Errorf("market prices: %w", err)
	}

	out := make([]float64, n)
	seen := make([]bool, n)
	for _, hp := range prices {
		h := int(hp.Start.Sub(start) / time.Hour)
		if h < 0 || h >= n {
			continue
		}
		out[h] = hp.Price
		seen[h] = true
	}
	for h, ok := range seen {
		if !ok {
			return model.Forecast{}, fmt.Errorf("market prices: hour %d (%s) missing", h, start.Add(time.Duration(h)*time.Hour).Format(time.RFC3339))
		}
	}
	f.Solar, f.Demand, f.Price = f.Solar[:n], f.Demand[:n], out
	return f, nil
}
