// Package plan turns solved schedules into human readable output: contiguous
// action blocks, a calendar anchored text plan and a battery summary.
package plan

import "github.com/kilianp07/v2g-planner/core/scheduler"

// Category is an action shown in the text plan.
type Category int

const (
	SolarCharging Category = iota
	GridCharging
	Discharging
)

// Categories lists every category in rendering order.
var Categories = []Category{SolarCharging, GridCharging, Discharging}

func (c Category) String() string {
	switch c {
	case SolarCharging:
		return "Solar Charging"
	case GridCharging:
		return "Grid Charging"
	case Discharging:
		return "Discharging"
	default:
		return "Unknown"
	}
}

// Block is a maximal run of hours, Start to End inclusive, during which a
// category has a positive flow.
type Block struct {
	Category Category `json:"category"`
	Start    int      `json:"start"`
	End      int      `json:"end"`
}

// Hours returns the number of hours covered.
func (b Block) Hours() int { return b.End - b.Start + 1 }

func flows(r scheduler.Result, c Category) []float64 {
	switch c {
	case SolarCharging:
		return r.SolarCharging
	case GridCharging:
		return r.GridCharging
	default:
		return r.GridDischarging
	}
}

// ExtractBlocks scans hours 0..deadlineHour inclusive and returns the blocks
// of each category in Categories order, chronological within a category.
// A block still open at the end of the scan is closed at the last hour that
// has data, which is deadlineHour unless the series are shorter.
func ExtractBlocks(r scheduler.Result, deadlineHour int) []Block {
	var out []Block
	for _, c := range Categories {
		series := flows(r, c)
		last := min(deadlineHour, len(series)-1)
		start := -1
		for h := 0; h <= last; h++ {
			on := series[h] > 0
			switch {
			case on && start < 0:
				start = h
			case !on && start >= 0:
				out = append(out, Block{Category: c, Start: start, End: h - 1})
				start = -1
			}
		}
		if start >= 0 {
			out = append(out, Block{Category: c, Start: start, End: last})
		}
	}
	return out
}
