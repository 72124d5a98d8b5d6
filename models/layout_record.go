package models

// Layout tables for the MySQL layout source. Each record converts to and from
// the JSON data contract types.

// RackRecord - 랙 테이블
type RackRecord struct {
	ID    uint         `gorm:"primaryKey"`
	Name  string       `gorm:"size:128;uniqueIndex"`
	X     float64
	Y     float64
	Z     float64
	Items []ItemRecord `gorm:"foreignKey:RackID;constraint:OnDelete:CASCADE"`
}

func (RackRecord) TableName() string { return "racks" }

// ItemRecord - 아이템 테이블
type ItemRecord struct {
	ID          uint   `gorm:"primaryKey"`
	RackID      uint   `gorm:"index"`
	SerialNo    string `gorm:"size:128;index"`
	Lot         string `gorm:"size:64"`
	Description string
	Condition   string `gorm:"size:16;index"`
	Color       string `gorm:"size:16"`
	Column      int
	Shelf       int
}

func (ItemRecord) TableName() string { return "rack_items" }

// ZoneRecord - 구역 테이블
type ZoneRecord struct {
	ID     uint   `gorm:"primaryKey"`
	Type   string `gorm:"size:64"`
	Name   string `gorm:"size:128"`
	X      float64
	Y      float64
	Z      float64
	Width  float64
	Length float64
	Color  string `gorm:"size:16"`
}

func (ZoneRecord) TableName() string { return "zones" }

// RouteRecord - 경로 테이블
type RouteRecord struct {
	ID        uint             `gorm:"primaryKey"`
	Type      string           `gorm:"size:64"`
	Name      string           `gorm:"size:128;uniqueIndex"`
	Color     string           `gorm:"size:16"`
	Waypoints []WaypointRecord `gorm:"foreignKey:RouteID;constraint:OnDelete:CASCADE"`
}

func (RouteRecord) TableName() string { return "routes" }

// WaypointRecord - 경로 웨이포인트 (Seq 순서)
type WaypointRecord struct {
	ID      uint `gorm:"primaryKey"`
	RouteID uint `gorm:"index"`
	Seq     int
	X       float64
	Y       float64
	Z       float64
}

func (WaypointRecord) TableName() string { return "route_waypoints" }

// NewRackRecord converts a rack into its table form.
func NewRackRecord(r Rack) RackRecord {
	rec := RackRecord{
		Name:  r.Name,
		X:     r.Coordinate[0],
		Y:     r.Coordinate[1],
		Z:     r.Coordinate[2],
		Items: make([]ItemRecord, 0, len(r.Items)),
	}
	for _, it := range r.Items {
		rec.Items = append(rec.Items, ItemRecord{
			SerialNo:    it.SerialNo,
			Lot:         it.Lot,
			Description: it.Description,
			Condition:   string(it.Condition),
			Color:       it.Color,
			Column:      it.Position.X,
			Shelf:       it.Position.Y,
		})
	}
	return rec
}

// Rack converts the record back into the data contract form.
func (r RackRecord) Rack() Rack {
	rack := Rack{
		Name:       r.Name,
		Coordinate: Coordinate3D{r.X, r.Y, r.Z},
		Items:      make([]Item, 0, len(r.Items)),
	}
	for _, it := range r.Items {
		rack.Items = append(rack.Items, Item{
			SerialNo:    it.SerialNo,
			Lot:         it.Lot,
			Description: it.Description,
			Condition:   ItemCondition(it.Condition),
			Color:       it.Color,
			Position:    ItemPosition{X: it.Column, Y: it.Shelf},
		})
	}
	return rack
}

func NewZoneRecord(z Zone) ZoneRecord {
	return ZoneRecord{
		Type:   z.Type,
		Name:   z.Name,
		X:      z.Coordinate[0],
		Y:      z.Coordinate[1],
		Z:      z.Coordinate[2],
		Width:  z.Dimensions[0],
		Length: z.Dimensions[1],
		Color:  z.Color,
	}
}

func (z ZoneRecord) Zone() Zone {
	return Zone{
		Type:       z.Type,
		Name:       z.Name,
		Coordinate: Coordinate3D{z.X, z.Y, z.Z},
		Dimensions: [2]float64{z.Width, z.Length},
		Color:      z.Color,
	}
}

func NewRouteRecord(r Route) RouteRecord {
	rec := RouteRecord{
		Type:      r.Type,
		Name:      r.Name,
		Color:     r.Color,
		Waypoints: make([]WaypointRecord, 0, len(r.Path)),
	}
	for i, p := range r.Path {
		rec.Waypoints = append(rec.Waypoints, WaypointRecord{Seq: i, X: p[0], Y: p[1], Z: p[2]})
	}
	return rec
}

// Route expects Waypoints already ordered by Seq.
func (r RouteRecord) Route() Route {
	route := Route{
		Type:  r.Type,
		Name:  r.Name,
		Color: r.Color,
		Path:  make([]Coordinate3D, 0, len(r.Waypoints)),
	}
	for _, wp := range r.Waypoints {
		route.Path = append(route.Path, Coordinate3D{wp.X, wp.Y, wp.Z})
	}
	return route
}
