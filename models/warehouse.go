package models

import (
	"errors"
	"fmt"
)

// ========================================
// 아이템 상태 (Condition)
// ========================================

// ItemCondition - 아이템 상태
type ItemCondition string

const (
	ConditionGood       ItemCondition = "Good"
	ConditionDamage     ItemCondition = "Damage"
	ConditionQuarantine ItemCondition = "Quarantine"
	ConditionScrap      ItemCondition = "Scrap"
)

// ErrUnknownCondition is returned when a condition name is not one of the four
// known values.
var ErrUnknownCondition = errors.New("unknown item condition")

var conditionColors = map[ItemCondition]string{
	ConditionGood:       "#22c55e",
	ConditionDamage:     "#ef4444",
	ConditionQuarantine: "#eab308",
	ConditionScrap:      "#000000",
}

// AllConditions returns every condition in display order.
func AllConditions() []ItemCondition {
	return []ItemCondition{ConditionGood, ConditionDamage, ConditionQuarantine, ConditionScrap}
}

// ParseCondition converts a name into an ItemCondition.
func ParseCondition(s string) (ItemCondition, error) {
	c := ItemCondition(s)
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCondition, s)
	}
	return c, nil
}

func (c ItemCondition) IsValid() bool {
	_, ok := conditionColors[c]
	return ok
}

// Color returns the legend color for the condition, or "" if unknown.
func (c ItemCondition) Color() string {
	return conditionColors[c]
}

// ========================================
// 창고 데이터
// ========================================

// Coordinate3D is an [x, y, z] triple, encoded as a JSON array.
type Coordinate3D [3]float64

// ItemPosition - 랙 그리드 위치 (x: 열 0-2, y: 선반 0-3)
type ItemPosition struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Item - 랙에 보관된 재고 아이템
type Item struct {
	SerialNo    string        `json:"serialNo"`
	Lot         string        `json:"lot"`
	Description string        `json:"description"`
	Condition   ItemCondition `json:"condition"`
	Color       string        `json:"color"`
	Position    ItemPosition  `json:"position"`
}

// Rack - 창고 랙
type Rack struct {
	Name       string       `json:"name"`
	Coordinate Coordinate3D `json:"coordinate"`
	Items      []Item       `json:"items"`
}

// Zone - 바닥 구역 (loading, staging ...)
type Zone struct {
	Type       string       `json:"type"`
	Name       string       `json:"name"`
	Coordinate Coordinate3D `json:"coordinate"`
	Dimensions [2]float64   `json:"dimensions"` // [width, length]
	Color      string       `json:"color"`
}

// Route - 차량 경로. Path is open: the loop back to the first waypoint is implied.
type Route struct {
	Type  string         `json:"type"`
	Name  string         `json:"name"`
	Path  []Coordinate3D `json:"path"`
	Color string         `json:"color"`
}

// WarehouseData - 전체 창고 레이아웃
type WarehouseData struct {
	Racks  []Rack  `json:"racks"`
	Zones  []Zone  `json:"zones"`
	Routes []Route `json:"routes"`
}

// Validate checks the invariants the scene relies on.
func (d *WarehouseData) Validate() error {
	rackNames := make(map[string]bool, len(d.Racks))
	for _, rack := range d.Racks {
		if rack.Name == "" {
			return errors.New("rack with empty name")
		}
		if rackNames[rack.Name] {
			return fmt.Errorf("duplicate rack name %q", rack.Name)
		}
		rackNames[rack.Name] = true

		for _, item := range rack.Items {
			if item.Position.X < 0 || item.Position.Y < 0 {
				return fmt.Errorf("rack %q item %q: negative slot (%d, %d)",
					rack.Name, item.SerialNo, item.Position.X, item.Position.Y)
			}
			if !item.Condition.IsValid() {
				return fmt.Errorf("rack %q item %q: %w: %q",
					rack.Name, item.SerialNo, ErrUnknownCondition, item.Condition)
			}
		}
	}

	routeNames := make(map[string]bool, len(d.Routes))
	for _, route := range d.Routes {
		if route.Name == "" {
			return errors.New("route with empty name")
		}
		if routeNames[route.Name] {
			return fmt.Errorf("duplicate route name %q", route.Name)
		}
		routeNames[route.Name] = true
	}

	return nil
}

// ItemCount - 전체 아이템 수
func (d *WarehouseData) ItemCount() int {
	n := 0
	for _, rack := range d.Racks {
		n += len(rack.Items)
	}
	return n
}
