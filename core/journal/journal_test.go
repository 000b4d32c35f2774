package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/v2g-planner/core/model"
	"github.com/kilianp07/v2g-planner/core/scheduler"
	"github.com/kilianp07/v2g-planner/infra/logger"
)

var t0 = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func sampleRecords() []Record {
	res := &scheduler.Result{
		Mode:          model.ModeCost,
		Horizon:       1,
		SolarCharging: []float64{2, 0},
		GridCharging:  []float64{0, 0},
		BatterySoC:    []float64{0, 2},
		Actions:       []model.Action{model.ActionSolar},
		NetCost:       0,
	}
	ok := FromEvent(scheduler.Event{
		ID:       "a",
		Time:     t0,
		Input:    scheduler.Input{Horizon: 1, Mode: model.ModeCost},
		Result:   res,
		Duration: 1500 * time.Microsecond,
	})
	failed := FromEvent(scheduler.Event{
		ID:    "b",
		Time:  t0.Add(time.Hour),
		Input: scheduler.Input{Horizon: 4, Mode: model.ModeEco},
		Err:   &scheduler.InfeasibleError{Reason: "x"},
	})
	later := FromEvent(scheduler.Event{
		ID:     "c",
		Time:   t0.Add(2 * time.Hour),
		Input:  scheduler.Input{Horizon: 1, Mode: model.ModeEco},
		Result: res,
	})
	return []Record{ok, failed, later}
}

func ids(recs []Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func TestFromEvent(t *testing.T) {
	recs := sampleRecords()
	assert.Equal(t, "optimal", recs[0].Status)
	assert.Equal(t, int64(1), recs[0].DurationMS)
	assert.False(t, recs[0].Failed())
	assert.Equal(t, "infeasible", recs[1].Status)
	assert.True(t, recs[1].Failed())
	assert.Equal(t, "infeasible schedule: x", recs[1].Error)
	assert.Nil(t, recs[1].Result)
}

func TestStores(t *testing.T) {
	dir := t.TempDir()
	stores := map[string]func() (Store, error){
		"jsonl": func() (Store, error) { return NewJSONLStore(filepath.Join(dir, "j", "solves.jsonl")) },
		"rotating": func() (Store, error) {
			return NewRotatingJSONLStore(filepath.Join(dir, "r", "solves.jsonl"), 1, 2, 1)
		},
		"sqlite": func() (Store, error) { return NewSQLiteStore("file:journal_test.db?mode=memory&cache=shared") },
	}
	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			s, err := open()
			require.NoError(t, err)
			defer func() { _ = s.Close() }()
			for _, r := range sampleRecords() {
				require.NoError(t, s.Append(context.Background(), r))
			}

			all, err := s.Query(context.Background(), Query{})
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b", "c"}, ids(all))
			require.NotNil(t, all[0].Result)
			assert.Equal(t, []model.Action{model.ActionSolar}, all[0].Result.Actions)
			assert.Equal(t, model.ModeEco, all[1].Mode)

			failed, err := s.Query(context.Background(), Query{FailedOnly: true})
			require.NoError(t, err)
			assert.Equal(t, []string{"b"}, ids(failed))

			eco, err := s.Query(context.Background(), Query{Mode: "eco", Start: t0.Add(90 * time.Minute)})
			require.NoError(t, err)
			assert.Equal(t, []string{"c"}, ids(eco))

			last, err := s.Query(context.Background(), Query{Limit: 2, End: t0.Add(3 * time.Hour)})
			require.NoError(t, err)
			assert.Equal(t, []string{"b", "c"}, ids(last))
		})
	}
}

func TestRotatingJSONLStore_Rotation(t *testing.T) {
	path := t.TempDir() + "/solves.jsonl"
	store, err := NewRotatingJSONLStore(path, 1, 2, 1)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()
	rec := Record{ID: "x", Timestamp: time.Now()}
	for i := 0; i < 100; i++ {
		if err := store.Append(context.Background(), rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	out, err := store.Query(context.Background(), Query{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 100 {
		t.Fatalf("expected 100 records, got %d", len(out))
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(Options{Path: filepath.Join(dir, "a.jsonl")})
	require.NoError(t, err)
	assert.IsType(t, &JSONLStore{}, s)

	s, err = Open(Options{Backend: "jsonl", Path: filepath.Join(dir, "b.jsonl"), MaxSizeMB: 5})
	require.NoError(t, err)
	assert.IsType(t, &RotatingJSONLStore{}, s)
	_ = s.Close()

	_, err = Open(Options{Backend: "mongo"})
	assert.Error(t, err)
}

type failingStore struct{ Store }

func (failingStore) Append(context.Context, Record) error { return errors.New("disk full") }

func TestObserver(t *testing.T) {
	s, err := NewJSONLStore(filepath.Join(t.TempDir(), "obs.jsonl"))
	require.NoError(t, err)
	obs := NewObserver(s, logger.NopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	obs.ObserveSolve(ctx, scheduler.Event{ID: "z", Time: t0})
	recs, err := s.Query(context.Background(), Query{})
	require.NoError(t, err)
	assert.Equal(t, []string{"z"}, ids(recs))

	assert.NotPanics(t, func() {
		NewObserver(failingStore{}, logger.NopLogger{}).ObserveSolve(context.Background(), scheduler.Event{ID: "y"})
	})
}
