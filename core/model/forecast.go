package model

// Forecast is the hour-aligned input the planner consumes: available solar
// power, grid price and grid demand. Index 0 is the first simulated hour.
type Forecast struct {
	Solar  []float64 `json:"solar" yaml:"solar"`
	Price  []float64 `json:"price" yaml:"price"`
	Demand []float64 `json:"demand" yaml:"demand"`
	// StartHour is the hour of day of index 0.
	StartHour int `json:"start_hour" yaml:"start_hour"`
}

// Len returns the number of hours covered by all three series.
func (f Forecast) Len() int {
	n := len(f.Solar)
	if len(f.Price) < n {
		n = len(f.Price)
	}
	if len(f.Demand) < n {
		n = len(f.Demand)
	}
	return n
}
