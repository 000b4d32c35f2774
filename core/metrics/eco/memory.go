package eco

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore stores records in memory for testing or lightweight usage.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]map[time.Time]*Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]map[time.Time]*Record{}}
}

// Add accumulates r into the record of its mode and day.
func (s *MemoryStore) Add(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[r.Mode] == nil {
		s.data[r.Mode] = map[time.Time]*Record{}
	}
	d := Day(r.Date)
	rec := s.data[r.Mode][d]
	if rec == nil {
		rec = &Record{Mode: r.Mode, Date: d}
		s.data[r.Mode][d] = rec
	}
	rec.SolarKWh += r.SolarKWh
	rec.GridKWh += r.GridKWh
	rec.DischargedKWh += r.DischargedKWh
	rec.Solves += r.Solves
	return nil
}

// Query returns records between start and end inclusive.
func (s *MemoryStore) Query(mode string, start, end time.Time) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start = Day(start)
	end = Day(end)
	var res []Record
	for d, r := range s.data[mode] {
		if d.Before(start) || d.After(end) {
			continue
		}
		res = append(res, *r)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Date.Before(res[j].Date) })
	return res, nil
}
