package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"warehouse-backend/models"

	"go.uber.org/zap"
)

// ErrNoData is returned by operations that need a loaded layout.
var ErrNoData = errors.New("warehouse data not loaded")

// StoreListener is notified after every store mutation.
type StoreListener func(models.StoreSnapshot)

// WarehouseStore holds the loaded layout and the viewer's filter state.
type WarehouseStore struct {
	mu sync.RWMutex

	data          *models.WarehouseData
	isLoading     bool
	err           string
	activeFilters []models.ItemCondition
	hoveredItem   string

	listeners []StoreListener
}

// NewWarehouseStore - 모든 필터가 활성화된 빈 스토어
func NewWarehouseStore() *WarehouseStore {
	return &WarehouseStore{
		activeFilters: models.AllConditions(),
	}
}

// Subscribe registers a listener. Listeners run synchronously after the lock
// is released and must not block.
func (s *WarehouseStore) Subscribe(l StoreListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// LoadData fetches the layout from src. On failure the previous data is kept
// and the error message is recorded; calling LoadData again is the retry.
func (s *WarehouseStore) LoadData(ctx context.Context, src LayoutSource) error {
	s.mutate(func() {
		s.isLoading = true
		s.err = ""
	})

	data, err := src.Load(ctx)
	if err != nil {
		msg := fmt.Sprintf("failed to load warehouse data: %v", err)
		Logger().Warn("warehouse data load failed",
			zap.String("source", src.Name()), zap.Error(err))

		s.mutate(func() {
			s.isLoading = false
			s.err = msg
		})
		return errors.New(msg)
	}

	Logger().Info("warehouse data loaded",
		zap.String("source", src.Name()),
		zap.Int("racks", len(data.Racks)),
		zap.Int("items", data.ItemCount()),
		zap.Int("zones", len(data.Zones)),
		zap.Int("routes", len(data.Routes)))

	s.mutate(func() {
		s.data = data
		s.isLoading = false
	})
	return nil
}

// ToggleFilter removes an active condition or appends an inactive one.
func (s *WarehouseStore) ToggleFilter(name string) error {
	c, err := models.ParseCondition(name)
	if err != nil {
		return err
	}

	s.mutate(func() {
		if i := slices.Index(s.activeFilters, c); i >= 0 {
			s.activeFilters = slices.Delete(slices.Clone(s.activeFilters), i, i+1)
		} else {
			s.activeFilters = append(slices.Clone(s.activeFilters), c)
		}
	})
	return nil
}

// SetActiveFilters replaces the active set, keeping the given order.
func (s *WarehouseStore) SetActiveFilters(names []string) error {
	filters := make([]models.ItemCondition, 0, len(names))
	for _, name := range names {
		c, err := models.ParseCondition(name)
		if err != nil {
			return err
		}
		if !slices.Contains(filters, c) {
			filters = append(filters, c)
		}
	}

	s.mutate(func() { s.activeFilters = filters })
	return nil
}

func (s *WarehouseStore) ClearFilters() {
	s.mutate(func() { s.activeFilters = []models.ItemCondition{} })
}

func (s *WarehouseStore) SelectAllFilters() {
	s.mutate(func() { s.activeFilters = models.AllConditions() })
}

// SetHoveredItem sets the hovered serial number; "" clears it.
func (s *WarehouseStore) SetHoveredItem(serialNo string) {
	s.mutate(func() { s.hoveredItem = serialNo })
}

// ========================================
// Selectors
// ========================================

func (s *WarehouseStore) Data() *models.WarehouseData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

func (s *WarehouseStore) Racks() []models.Rack {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return []models.Rack{}
	}
	return s.data.Racks
}

func (s *WarehouseStore) Zones() []models.Zone {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return []models.Zone{}
	}
	return s.data.Zones
}

func (s *WarehouseStore) Routes() []models.Route {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return []models.Route{}
	}
	return s.data.Routes
}

func (s *WarehouseStore) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isLoading
}

// Error returns the last load error message, or "".
func (s *WarehouseStore) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *WarehouseStore) ActiveFilters() []models.ItemCondition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.activeFilters)
}

func (s *WarehouseStore) HoveredItem() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hoveredItem
}

// IsActive reports whether items with condition c pass the filter.
func (s *WarehouseStore) IsActive(c models.ItemCondition) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.activeFilters, c)
}

// FilteredItems returns items across all racks whose condition is active.
func (s *WarehouseStore) FilteredItems() []models.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := []models.Item{}
	if s.data == nil {
		return items
	}
	for _, rack := range s.data.Racks {
		for _, item := range rack.Items {
			if slices.Contains(s.activeFilters, item.Condition) {
				items = append(items, item)
			}
		}
	}
	return items
}

// ConditionCounts counts items per known condition.
func (s *WarehouseStore) ConditionCounts() map[models.ItemCondition]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[models.ItemCondition]int, 4)
	for _, c := range models.AllConditions() {
		counts[c] = 0
	}
	if s.data == nil {
		return counts
	}
	for _, rack := range s.data.Racks {
		for _, item := range rack.Items {
			if _, ok := counts[item.Condition]; ok {
				counts[item.Condition]++
			}
		}
	}
	return counts
}

// Legend - 범례 (조건별 색상, 개수, 활성 여부)
func (s *WarehouseStore) Legend() []models.ConditionSummary {
	counts := s.ConditionCounts()
	active := s.ActiveFilters()

	legend := make([]models.ConditionSummary, 0, len(counts))
	for _, c := range models.AllConditions() {
		legend = append(legend, models.ConditionSummary{
			Condition: c,
			Color:     c.Color(),
			Count:     counts[c],
			Active:    slices.Contains(active, c),
		})
	}
	return legend
}

func (s *WarehouseStore) Snapshot() models.StoreSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// FilterState returns only the filter and hover part of the state.
func (s *WarehouseStore) FilterState() models.FilterState {
	snap := s.Snapshot()
	return models.FilterState{
		ActiveFilters: snap.ActiveFilters,
		HoveredItem:   snap.HoveredItem,
	}
}

func (s *WarehouseStore) snapshotLocked() models.StoreSnapshot {
	snap := models.StoreSnapshot{
		Data:          s.data,
		IsLoading:     s.isLoading,
		ActiveFilters: slices.Clone(s.activeFilters),
	}
	if s.err != "" {
		msg := s.err
		snap.Error = &msg
	}
	if s.hoveredItem != "" {
		item := s.hoveredItem
		snap.HoveredItem = &item
	}
	return snap
}

// mutate applies fn under the write lock, then notifies listeners.
func (s *WarehouseStore) mutate(fn func()) {
	s.mu.Lock()
	fn()
	snap := s.snapshotLocked()
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}
