package wholesalemarket

import (
	"fmt"
	"time"

	"github.com/kilianp07/v2g-planner/connectors"
)

type Response struct {
	FrancePowerExchanges []struct {
		StartDate   string `json:"start_date"`
		EndDate     string `json:"end_date"`
		UpdatedDate string `json:"updated_date"`
		Values      []struct {
			StartDate string  `json:"start_date"`
			EndDate   string  `json:"end_date"`
			Value     float64 `json:"value"`
			Price     float64 `json:"price"`
		} `json:"values"`
	} `json:"france_power_exchanges"`
}

// HourlyPrices converts the exchange values to per kWh prices. Values
// sharing an hour are averaged.
func (r *Response) HourlyPrices() ([]connectors.HourlyPrice, error) {
	type acc struct {
		sum float64
		n   int
	}
	byHour := map[time.Time]*acc{}
	var order []time.Time
	for _, exchange := range r.FrancePowerExchanges {
		for _, v := range exchange.Values {
			ts, err := time.Parse(time.RFC3339, v.StartDate)
			if err != nil {
				return nil, fmt.Errorf("failed to parse time: %w", err)
			}
			h := ts.Truncate(time.Hour)
			a, ok := byHour[h]
			if !ok {
				a = &acc{}
				byHour[h] = a
				order = append(order, h)
			}
			a.sum += v.Price
			a.n++
		}
	}
	out := make([]connectors.HourlyPrice, len(order))
	for i, h := range order {
		a := byHour[h]
		// EUR/MWh to EUR/kWh
		out[i] = connectors.HourlyPrice{Start: h, Price: a.sum / float64(a.n) / 1000}
	}
	return out, nil
}
