package baseline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/v2g-planner/core/model"
	"github.com/kilianp07/v2g-planner/core/scheduler"
)

func TestEstimate(t *testing.T) {
	tests := []struct {
		name     string
		prices   []float64
		required float64
		rate     float64
		cost     float64
		charge   []float64
		unmet    float64
	}{
		{"cheapest first", []float64{0.3, 0.1, 0.2}, 15, 10, 0.1*10 + 0.2*5, []float64{0, 10, 5}, 0},
		{"ties keep hour order", []float64{0.2, 0.1, 0.1}, 5, 5, 0.5, []float64{0, 5, 0}, 0},
		{"nothing required", []float64{0.3, 0.1}, 0, 10, 0, []float64{0, 0}, 0},
		{"horizon too short", []float64{0.1, 0.2}, 30, 10, 0.1*10 + 0.2*10, []float64{10, 10}, 10},
		{"no hours", nil, 5, 10, 0, []float64{}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Estimate(tt.prices, tt.required, tt.rate)
			assert.InDelta(t, tt.cost, p.Cost, 1e-9)
			assert.InDeltaSlice(t, tt.charge, p.Charge, 1e-9)
			assert.InDelta(t, tt.unmet, p.Unmet, 1e-9)
		})
	}
}

func TestEstimate_Deterministic(t *testing.T) {
	prices := []float64{0.2, 0.2, 0.1, 0.2}
	a := Estimate(prices, 12, 5)
	b := Estimate(prices, 12, 5)
	assert.Equal(t, a, b)
	assert.Equal(t, []float64{5, 2, 5, 0}, a.Charge)
}

func TestCost_NotBelowOptimizedPlanWithoutSolar(t *testing.T) {
	p := model.DefaultParams()
	p.BatteryCapacity = 20
	p.MaxChargeRate = 5
	p.MaxDischargeRate = 5
	p.InitialSoC = 0
	prices := []float64{0.25, 0.1, 0.4, 0.15, 0.3}
	f := model.Forecast{
		Solar:  make([]float64, len(prices)),
		Price:  prices,
		Demand: []float64{40000, 10000, 50000, 0, 35000},
	}
	in, err := scheduler.NewInput(f, p, model.ModeCost, len(prices), 12)
	require.NoError(t, err)
	r, err := scheduler.New().Solve(context.Background(), in)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, Cost(prices, 12, p.MaxChargeRate), r.NetCost-1e-9)
}
