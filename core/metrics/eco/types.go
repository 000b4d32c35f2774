package eco

import "time"

// Record aggregates the energy and carbon of the plans solved for one mode
// on one day.
type Record struct {
	Mode          string
	Date          time.Time
	SolarKWh      float64
	GridKWh       float64
	DischargedKWh float64
	Solves        int
}

// CO2Emitted returns the kilograms of CO2 of the grid energy.
func (r Record) CO2Emitted(factor float64) float64 {
	return r.GridKWh * factor
}

// CO2Avoided returns the kilograms of CO2 saved by charging from solar.
func (r Record) CO2Avoided(factor float64) float64 {
	return r.SolarKWh * factor
}

// SolarShare returns the fraction of charged energy that came from solar.
func (r Record) SolarShare() float64 {
	total := r.SolarKWh + r.GridKWh
	if total == 0 {
		return 0
	}
	return r.SolarKWh / total
}
