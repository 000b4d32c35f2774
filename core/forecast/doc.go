// Package forecast loads the hourly solar, price and demand series the
// planner optimizes against. Forecasts are produced elsewhere; this package
// only reads them from files or serves fixed series.
package forecast
