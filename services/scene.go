package services

import (
	"warehouse-backend/algorithms"
	"warehouse-backend/models"
)

// PlacedItem is an item with its rack-relative and world positions.
type PlacedItem struct {
	models.Item
	Offset  algorithms.Vec3 `json:"offset"`
	World   algorithms.Vec3 `json:"world"`
	Visible bool            `json:"visible"`
	Hovered bool            `json:"hovered"`
}

// PlacedRack - 씬에 배치된 랙
type PlacedRack struct {
	Name   string          `json:"name"`
	Origin algorithms.Vec3 `json:"origin"`
	Items  []PlacedItem    `json:"items"`
}

// RoutePath is a route with its closed path.
type RoutePath struct {
	Name   string            `json:"name"`
	Type   string            `json:"type"`
	Color  string            `json:"color"`
	Path   []algorithms.Vec3 `json:"path"` // closed: last point repeats the first
	Length float64           `json:"length"`
}

// Scene - 렌더링 준비가 된 전체 씬
type Scene struct {
	Racks  []PlacedRack  `json:"racks"`
	Zones  []models.Zone `json:"zones"`
	Routes []RoutePath   `json:"routes"`
}

// ComposeScene places every item and closes every route.
func ComposeScene(data *models.WarehouseData, active []models.ItemCondition, hovered string) Scene {
	scene := Scene{
		Racks:  []PlacedRack{},
		Zones:  []models.Zone{},
		Routes: []RoutePath{},
	}
	if data == nil {
		return scene
	}

	isActive := make(map[models.ItemCondition]bool, len(active))
	for _, c := range active {
		isActive[c] = true
	}

	for _, rack := range data.Racks {
		scene.Racks = append(scene.Racks, PlaceRack(rack, isActive, hovered))
	}
	scene.Zones = append(scene.Zones, data.Zones...)
	for _, route := range data.Routes {
		scene.Routes = append(scene.Routes, CloseRoute(route))
	}
	return scene
}

// PlaceRack computes item positions for one rack.
func PlaceRack(rack models.Rack, active map[models.ItemCondition]bool, hovered string) PlacedRack {
	origin := ToVec3(rack.Coordinate)
	placed := PlacedRack{
		Name:   rack.Name,
		Origin: origin,
		Items:  make([]PlacedItem, 0, len(rack.Items)),
	}

	for _, item := range rack.Items {
		offset := algorithms.MapSlotToOffset(SlotOf(item))
		placed.Items = append(placed.Items, PlacedItem{
			Item:    item,
			Offset:  offset,
			World:   origin.Add(offset),
			Visible: active[item.Condition],
			Hovered: hovered != "" && item.SerialNo == hovered,
		})
	}
	return placed
}

// CloseRoute converts a route's open waypoint list into the closed path the
// animator expects.
func CloseRoute(route models.Route) RoutePath {
	points := make([]algorithms.Vec3, 0, len(route.Path))
	for _, p := range route.Path {
		points = append(points, ToVec3(p))
	}
	closed := algorithms.ClosedLoop(points)

	return RoutePath{
		Name:   route.Name,
		Type:   route.Type,
		Color:  route.Color,
		Path:   closed,
		Length: algorithms.PathLength(closed),
	}
}

// SlotOf maps an item's grid position (x: column, y: shelf) to a GridSlot.
func SlotOf(item models.Item) algorithms.GridSlot {
	return algorithms.GridSlot{Column: item.Position.X, Shelf: item.Position.Y}
}

func ToVec3(c models.Coordinate3D) algorithms.Vec3 {
	return algorithms.Vec3{X: c[0], Y: c[1], Z: c[2]}
}

func ToCoordinate(v algorithms.Vec3) models.Coordinate3D {
	return models.Coordinate3D{v.X, v.Y, v.Z}
}
