package services

import (
	"context"
	"errors"
	"testing"

	"warehouse-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allConditions = []models.ItemCondition{
	models.ConditionGood, models.ConditionDamage, models.ConditionQuarantine, models.ConditionScrap,
}

func TestStoreInitialState(t *testing.T) {
	s := NewWarehouseStore()

	assert.Nil(t, s.Data())
	assert.False(t, s.IsLoading())
	assert.Empty(t, s.Error())
	assert.Equal(t, allConditions, s.ActiveFilters())
	assert.Empty(t, s.HoveredItem())
	assert.Empty(t, s.Racks())
	assert.Empty(t, s.Zones())
	assert.Empty(t, s.Routes())
	assert.Empty(t, s.FilteredItems())
}

func TestStoreToggleFilter(t *testing.T) {
	s := NewWarehouseStore()

	require.NoError(t, s.ToggleFilter("Good"))
	assert.Equal(t, []models.ItemCondition{models.ConditionDamage, models.ConditionQuarantine, models.ConditionScrap},
		s.ActiveFilters())

	require.NoError(t, s.ToggleFilter("Good"))
	assert.Equal(t, []models.ItemCondition{models.ConditionDamage, models.ConditionQuarantine, models.ConditionScrap, models.ConditionGood},
		s.ActiveFilters(), "re-enabled filter is appended")

	require.NoError(t, s.ToggleFilter("Damage"))
	require.NoError(t, s.ToggleFilter("Good"))
	assert.Equal(t, []models.ItemCondition{models.ConditionQuarantine, models.ConditionScrap}, s.ActiveFilters())
}

func TestStoreToggleUnknownFilter(t *testing.T) {
	s := NewWarehouseStore()

	err := s.ToggleFilter("Lost")

	assert.True(t, errors.Is(err, models.ErrUnknownCondition))
	assert.Equal(t, allConditions, s.ActiveFilters())
}

func TestStoreSetClearSelectAll(t *testing.T) {
	s := NewWarehouseStore()

	require.NoError(t, s.SetActiveFilters([]string{"Good", "Quarantine"}))
	assert.Equal(t, []models.ItemCondition{models.ConditionGood, models.ConditionQuarantine}, s.ActiveFilters())

	require.NoError(t, s.SetActiveFilters([]string{"Damage", "Damage"}))
	assert.Equal(t, []models.ItemCondition{models.ConditionDamage}, s.ActiveFilters())

	assert.Error(t, s.SetActiveFilters([]string{"Good", "Lost"}))
	assert.Equal(t, []models.ItemCondition{models.ConditionDamage}, s.ActiveFilters(), "rejected set leaves filters alone")

	s.ClearFilters()
	assert.Empty(t, s.ActiveFilters())
	assert.NotNil(t, s.ActiveFilters())

	s.SelectAllFilters()
	assert.Equal(t, allConditions, s.ActiveFilters())
}

func TestStoreActiveFiltersIsACopy(t *testing.T) {
	s := NewWarehouseStore()
	filters := s.ActiveFilters()
	filters[0] = models.ConditionScrap

	assert.Equal(t, models.ConditionGood, s.ActiveFilters()[0])
}

func TestStoreLoadData(t *testing.T) {
	s := NewWarehouseStore()
	src := &staticSource{data: sampleData()}

	require.NoError(t, s.LoadData(context.Background(), src))

	assert.Equal(t, src.data, s.Data())
	assert.False(t, s.IsLoading())
	assert.Empty(t, s.Error())
	assert.Len(t, s.Racks(), 2)
	assert.Len(t, s.Zones(), 1)
	assert.Len(t, s.Routes(), 2)
}

func TestStoreLoadFailureKeepsData(t *testing.T) {
	s := NewWarehouseStore()
	good := &staticSource{data: sampleData()}
	require.NoError(t, s.LoadData(context.Background(), good))

	bad := &staticSource{err: errors.New("Not Found")}
	err := s.LoadData(context.Background(), bad)

	require.Error(t, err)
	assert.Equal(t, "failed to load warehouse data: Not Found", s.Error())
	assert.Equal(t, err.Error(), s.Error())
	assert.False(t, s.IsLoading())
	assert.Equal(t, good.data, s.Data(), "data is not cleared on error")

	// retry clears the error
	require.NoError(t, s.LoadData(context.Background(), good))
	assert.Empty(t, s.Error())
}

func TestStoreLoadingStateVisibleDuringFetch(t *testing.T) {
	s := NewWarehouseStore()
	var seen []bool
	s.Subscribe(func(snap models.StoreSnapshot) { seen = append(seen, snap.IsLoading) })

	require.NoError(t, s.LoadData(context.Background(), &staticSource{data: sampleData()}))

	assert.Equal(t, []bool{true, false}, seen)
}

func TestStoreFilteredItemsAndCounts(t *testing.T) {
	s := NewWarehouseStore()
	require.NoError(t, s.LoadData(context.Background(), &staticSource{data: sampleData()}))

	assert.Len(t, s.FilteredItems(), 4)

	require.NoError(t, s.SetActiveFilters([]string{"Good"}))
	items := s.FilteredItems()
	require.Len(t, items, 2)
	assert.Equal(t, "SN-001", items[0].SerialNo)
	assert.Equal(t, "SN-003", items[1].SerialNo)

	counts := s.ConditionCounts()
	assert.Equal(t, map[models.ItemCondition]int{
		models.ConditionGood:       2,
		models.ConditionDamage:     1,
		models.ConditionQuarantine: 0,
		models.ConditionScrap:      1,
	}, counts, "counts ignore filters")

	legend := s.Legend()
	require.Len(t, legend, 4)
	assert.Equal(t, models.ConditionSummary{Condition: models.ConditionGood, Color: "#22c55e", Count: 2, Active: true}, legend[0])
	assert.False(t, legend[1].Active)
}

func TestStoreHoverAndSnapshot(t *testing.T) {
	s := NewWarehouseStore()
	var last models.StoreSnapshot
	s.Subscribe(func(snap models.StoreSnapshot) { last = snap })

	s.SetHoveredItem("SN-002")
	require.NotNil(t, last.HoveredItem)
	assert.Equal(t, "SN-002", *last.HoveredItem)
	assert.Equal(t, "SN-002", s.HoveredItem())

	s.SetHoveredItem("")
	assert.Nil(t, s.Snapshot().HoveredItem)
	assert.Nil(t, s.FilterState().HoveredItem)
	assert.Nil(t, s.Snapshot().Error)
}
