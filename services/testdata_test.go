package services

import (
	"context"

	"warehouse-backend/models"
)

func sampleData() *models.WarehouseData {
	return &models.WarehouseData{
		Racks: []models.Rack{
			{
				Name:       "Rack A-1",
				Coordinate: models.Coordinate3D{-5, 0, -5},
				Items: []models.Item{
					{SerialNo: "SN-001", Lot: "L1", Description: "Water", Condition: models.ConditionGood,
						Color: "#22c55e", Position: models.ItemPosition{X: 0, Y: 1}},
					{SerialNo: "SN-002", Lot: "L1", Description: "Water", Condition: models.ConditionDamage,
						Color: "#ef4444", Position: models.ItemPosition{X: 1, Y: 2}},
				},
			},
			{
				Name:       "Rack A-2",
				Coordinate: models.Coordinate3D{0, 0, -5},
				Items: []models.Item{
					{SerialNo: "SN-003", Lot: "L2", Description: "Tools", Condition: models.ConditionGood,
						Color: "#22c55e", Position: models.ItemPosition{X: 2, Y: 3}},
					{SerialNo: "SN-004", Lot: "L3", Description: "Scrap metal", Condition: models.ConditionScrap,
						Color: "#000000", Position: models.ItemPosition{X: 2, Y: 99}},
				},
			},
		},
		Zones: []models.Zone{
			{Type: "loading_zone", Name: "Dock", Coordinate: models.Coordinate3D{0, 0.01, 8},
				Dimensions: [2]float64{6, 3}, Color: "#3b82f6"},
		},
		Routes: []models.Route{
			{Type: "forklift", Name: "Loop", Color: "#f97316",
				Path: []models.Coordinate3D{{0, 0, 0}, {4, 0, 0}, {4, 0, 3}}},
			{Type: "agv", Name: "Shuttle", Color: "#14b8a6",
				Path: []models.Coordinate3D{{-2, 0, 0}, {-2, 0, 6}}},
		},
	}
}

// staticSource returns fixed data or a fixed error.
type staticSource struct {
	data *models.WarehouseData
	err  error
	hits int
}

func (s *staticSource) Name() string { return "static" }

func (s *staticSource) Load(_ context.Context) (*models.WarehouseData, error) {
	s.hits++
	return s.data, s.err
}
