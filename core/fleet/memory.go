package fleet

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kilianp07/fleetcare/core/model"
)

type fuelKey struct {
	vehicle string
	day     time.Time
}

// MemoryStore keeps the registry and the fuel log in memory. It is used by
// tests and by the service when no database is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	vehicles map[string]model.VehicleRecord
	fuel     map[fuelKey]model.FuelLogEntry
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		vehicles: map[string]model.VehicleRecord{},
		fuel:     map[fuelKey]model.FuelLogEntry{},
	}
}

// UpsertVehicle validates and stores v, replacing any row with the same id.
func (s *MemoryStore) UpsertVehicle(_ context.Context, v model.VehicleRecord) error {
	if err := v.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.vehicles[v.ID] = v
	s.mu.Unlock()
	return nil
}

// AppendFuel stores entries keyed by vehicle and day. A second row for the
// same day replaces the first.
func (s *MemoryStore) AppendFuel(_ context.Context, entries ...model.FuelLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		if e.VehicleID == "" {
			return fmt.Errorf("fuel entry on %s: empty vehicle id", e.Date.Format(model.DateLayout))
		}
		e.Date = model.Day(e.Date)
		s.fuel[fuelKey{e.VehicleID, e.Date}] = e
	}
	return nil
}

func (s *MemoryStore) Vehicle(_ context.Context, id string) (model.VehicleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vehicles[id]
	if !ok {
		return model.VehicleRecord{}, fmt.Errorf("%w: %s", model.ErrVehicleNotFound, id)
	}
	return v, nil
}

func (s *MemoryStore) Vehicles(_ context.Context, f VehicleFilter) ([]model.VehicleRecord, error) {
	s.mu.RLock()
	res := make([]model.VehicleRecord, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		if f.Match(v) {
			res = append(res, v)
		}
	}
	s.mu.RUnlock()

	if f.DueBefore.IsZero() {
		sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	} else {
		sort.Slice(res, func(i, j int) bool {
			a, b := res[i].NextMaintenanceDate, res[j].NextMaintenanceDate
			if a.Equal(b) {
				return res[i].ID < res[j].ID
			}
			return a.Before(b)
		})
	}
	if f.Limit > 0 && len(res) > f.Limit {
		res = res[:f.Limit]
	}
	return res, nil
}

func (s *MemoryStore) Entries(_ context.Context, q FuelQuery) ([]model.FuelLogEntry, error) {
	s.mu.RLock()
	res := make([]model.FuelLogEntry, 0)
	for _, e := range s.fuel {
		if q.Match(e) {
			res = append(res, e)
		}
	}
	s.mu.RUnlock()
	SortEntries(res)
	return res, nil
}

// SortEntries orders rows by date then vehicle id.
func SortEntries(rows []model.FuelLogEntry) {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].VehicleID < rows[j].VehicleID
	})
}
