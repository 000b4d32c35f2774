// Package baseline estimates what charging from the grid alone would cost.
// It is a comparison yardstick for optimized plans, not a planner.
package baseline

import "sort"

// epsilon is the energy below which the requirement counts as met.
const epsilon = 1e-6

// Plan is the greedy grid-only schedule.
type Plan struct {
	Cost float64
	// Charge holds the kWh bought in each hour.
	Charge []float64
	// Unmet is the energy the horizon could not supply.
	Unmet float64
}

// Estimate fills requiredEnergy from the cheapest hours first, at most
// maxRate per hour. Equal prices keep hour order. Energy that does not fit in
// the horizon is reported in Unmet rather than as an error.
func Estimate(prices []float64, requiredEnergy, maxRate float64) Plan {
	order := make([]int, len(prices))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return prices[order[a]] < prices[order[b]] })

	p := Plan{Charge: make([]float64, len(prices))}
	remaining := requiredEnergy
	for _, h := range order {
		if remaining <= epsilon {
			break
		}
		charge := min(maxRate, remaining)
		p.Charge[h] = charge
		p.Cost += charge * prices[h]
		remaining -= charge
	}
	if remaining > epsilon {
		p.Unmet = remaining
	}
	return p
}

// Cost is shorthand for Estimate(...).Cost.
func Cost(prices []float64, requiredEnergy, maxRate float64) float64 {
	return Estimate(prices, requiredEnergy, maxRate).Cost
}
