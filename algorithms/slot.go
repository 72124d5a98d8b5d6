package algorithms

// ColumnSpacing is the horizontal gap between adjacent rack columns.
const ColumnSpacing = 0.65

// DefaultShelfHeight is used for any shelf outside the known table (shelf 1).
const DefaultShelfHeight = 0.975

var shelfHeights = map[int]float64{
	0: 0.475,
	1: 0.975,
	2: 1.475,
	3: 1.975,
}

// GridSlot - 랙 내부 아이템 위치 (열, 선반)
type GridSlot struct {
	Column int `json:"column"`
	Shelf  int `json:"shelf"`
}

// MapSlotToOffset returns the position of a slot relative to its rack origin.
// Column 1 is centred on the rack; unknown shelves fall back to shelf 1.
func MapSlotToOffset(slot GridSlot) Vec3 {
	y, ok := shelfHeights[slot.Shelf]
	if !ok {
		y = DefaultShelfHeight
	}

	return Vec3{
		X: float64(slot.Column-1) * ColumnSpacing,
		Y: y,
		Z: 0,
	}
}
