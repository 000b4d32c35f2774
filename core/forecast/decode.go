package forecast

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/v2g-planner/core/model"
)

// ErrEmpty is returned when a file holds no hourly values.
var ErrEmpty = errors.New("forecast: no hourly values")

// Load reads a forecast from a JSON, YAML or CSV file chosen by extension.
func Load(path string) (model.Forecast, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Forecast{}, err
	}
	defer f.Close()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	fc, err := Decode(f, ext)
	if err != nil {
		return model.Forecast{}, fmt.Errorf("forecast %s: %w", path, err)
	}
	return fc, nil
}

// Decode reads a forecast in the given format: json, yaml, yml or csv.
func Decode(r io.Reader, format string) (model.Forecast, error) {
	var fc model.Forecast
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&fc); err != nil {
			return fc, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&fc); err != nil {
			return fc, err
		}
	case "csv":
		var err error
		if fc, err = decodeCSV(r); err != nil {
			return fc, err
		}
	default:
		return fc, fmt.Errorf("unsupported forecast format: %s", format)
	}
	if fc.Len() == 0 {
		return fc, ErrEmpty
	}
	if fc.StartHour < 0 || fc.StartHour > 23 {
		return fc, fmt.Errorf("start_hour %d outside 0..23", fc.StartHour)
	}
	return fc, nil
}

// decodeCSV expects a header naming the solar, price and demand columns in
// any order. Other columns are ignored.
func decodeCSV(r io.Reader) (model.Forecast, error) {
	var fc model.Forecast
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return fc, fmt.Errorf("read header: %w", err)
	}
	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	targets := []struct {
		name string
		dst  *[]float64
	}{
		{"solar", &fc.Solar},
		{"price", &fc.Price},
		{"demand", &fc.Demand},
	}
	for _, t := range targets {
		if _, ok := cols[t.name]; !ok {
			return fc, fmt.Errorf("missing %q column", t.name)
		}
	}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fc, err
		}
		for _, t := range targets {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[cols[t.name]]), 64)
			if err != nil {
				return fc, fmt.Errorf("line %d %s: %w", line, t.name, err)
			}
			*t.dst = append(*t.dst, v)
		}
	}
	return fc, nil
}
