package forecast

import (
	"context"

	"github.com/kilianp07/v2g-planner/core/model"
)

// Provider supplies the forecast for the next planning run.
type Provider interface {
	Forecast(ctx context.Context) (model.Forecast, error)
}

// Static returns the same forecast on every call.
type Static struct {
	Value model.Forecast
}

// Forecast returns a copy of the configured series.
func (s Static) Forecast(context.Context) (model.Forecast, error) {
	return model.Forecast{
		Solar:     append([]float64(nil), s.Value.Solar...),
		Price:     append([]float64(nil), s.Value.Price...),
		Demand:    append([]float64(nil), s.Value.Demand...),
		StartHour: s.Value.StartHour,
	}, nil
}

// File rereads Path on every call so an external forecaster can replace it
// between runs.
type File struct {
	Path string
}

func (f File) Forecast(ctx context.Context) (model.Forecast, error) {
	if err := ctx.Err(); err != nil {
		return model.Forecast{}, err
	}
	return Load(f.Path)
}
