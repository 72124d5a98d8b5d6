package services

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"warehouse-backend/models"

	"github.com/google/uuid"
)

// Generated layout geometry.
const (
	rackSpacingX = 4.0 // 랙 간 X 간격
	rackSpacingZ = 5.0 // 랙 열 간 Z 간격 (통로 포함)
	aisleMargin  = 1.5 // 랙 외곽과 차량 경로 사이 여백
	slotColumns  = 3
	slotShelves  = 3 // shelves 1..3
)

var itemDescriptions = []string{
	"Pallet of bottled water",
	"Boxed electronics",
	"Paper towels",
	"Auto parts",
	"Canned goods",
	"Garden tools",
}

// LayoutGenerator creates demo warehouse layouts.
type LayoutGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewLayoutGenerator - 시드 기반 생성기 (같은 시드 → 같은 배치)
func NewLayoutGenerator(seed int64) *LayoutGenerator {
	return &LayoutGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// rowLabel names rows like spreadsheet columns: A..Z, AA..AZ, BA...
func rowLabel(r int) string {
	label := ""
	for r >= 0 {
		label = string(rune('A'+r%26)) + label
		r = r/26 - 1
	}
	return label
}

// GenerateLayout builds rows x cols racks centred on the origin, with a
// loading zone, a staging zone and two forklift loops around the rack block.
func (g *LayoutGenerator) GenerateLayout(rows, cols int) *models.WarehouseData {
	g.mu.Lock()
	defer g.mu.Unlock()

	originX := -float64(cols-1) * rackSpacingX / 2
	originZ := -float64(rows-1) * rackSpacingZ / 2

	data := &models.WarehouseData{
		Racks:  make([]models.Rack, 0, rows*cols),
		Zones:  []models.Zone{},
		Routes: []models.Route{},
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			data.Racks = append(data.Racks, models.Rack{
				Name: fmt.Sprintf("Rack %s-%d", rowLabel(r), c+1),
				Coordinate: models.Coordinate3D{
					originX + float64(c)*rackSpacingX,
					0,
					originZ + float64(r)*rackSpacingZ,
				},
				Items: g.generateItems(),
			})
		}
	}

	halfX := float64(cols-1)*rackSpacingX/2 + aisleMargin
	halfZ := float64(rows-1)*rackSpacingZ/2 + aisleMargin

	data.Zones = append(data.Zones,
		models.Zone{
			Type:       "loading_zone",
			Name:       "Loading Dock",
			Coordinate: models.Coordinate3D{0, 0.01, halfZ + 3},
			Dimensions: [2]float64{2 * halfX, 3},
			Color:      "#3b82f6",
		},
		models.Zone{
			Type:       "staging_area",
			Name:       "Staging",
			Coordinate: models.Coordinate3D{-halfX - 3, 0.01, 0},
			Dimensions: [2]float64{3, 2 * halfZ},
			Color:      "#a855f7",
		},
	)

	data.Routes = append(data.Routes,
		models.Route{
			Type:  "forklift",
			Name:  "Outer Loop",
			Color: "#f97316",
			Path:  rectangle(halfX, halfZ),
		},
		models.Route{
			Type:  "agv",
			Name:  "Dock Shuttle",
			Color: "#14b8a6",
			Path:  rectangle(halfX/2, halfZ+1.5),
		},
	)

	return data
}

// generateItems fills a random subset of a rack's slots.
func (g *LayoutGenerator) generateItems() []models.Item {
	conditions := models.AllConditions()
	total := slotColumns * slotShelves
	count := 1 + g.rng.Intn(total)

	items := make([]models.Item, 0, count)
	for _, slot := range g.rng.Perm(total)[:count] {
		condition := conditions[g.rng.Intn(len(conditions))]
		items = append(items, models.Item{
			SerialNo:    g.serialNo(),
			Lot:         fmt.Sprintf("LOT-%04d", g.rng.Intn(10000)),
			Description: itemDescriptions[g.rng.Intn(len(itemDescriptions))],
			Condition:   condition,
			Color:       condition.Color(),
			Position: models.ItemPosition{
				X: slot % slotColumns,
				Y: 1 + slot/slotColumns,
			},
		})
	}
	return items
}

// serialNo draws the uuid bytes from the generator's rng so layouts are
// reproducible for a given seed.
func (g *LayoutGenerator) serialNo() string {
	id, err := uuid.NewRandomFromReader(g.rng)
	if err != nil {
		id = uuid.New()
	}
	return "SN-" + strings.ToUpper(id.String()[:8])
}

// rectangle returns an open, counter-clockwise loop on the floor.
func rectangle(halfX, halfZ float64) []models.Coordinate3D {
	return []models.Coordinate3D{
		{-halfX, 0, -halfZ},
		{halfX, 0, -halfZ},
		{halfX, 0, halfZ},
		{-halfX, 0, halfZ},
	}
}
