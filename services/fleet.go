package services

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"warehouse-backend/algorithms"
	"warehouse-backend/models"

	"go.uber.org/zap"
)

// ErrVehicleNotFound is returned for an unknown vehicle name.
var ErrVehicleNotFound = errors.New("vehicle not found")

// Vehicle - 경로 하나를 도는 차량
type Vehicle struct {
	Name         string
	Type         string
	Color        string
	RegisteredAt time.Time

	animator *algorithms.PathAnimator
	state    algorithms.VehicleState
	distance float64 // 누적 이동 거리
}

// Frame returns the vehicle's current render state.
func (v *Vehicle) Frame() models.VehicleFrame {
	return models.VehicleFrame{
		Route:    v.Name,
		Type:     v.Type,
		Color:    v.Color,
		Segment:  v.state.Segment,
		Progress: v.state.Progress,
		Position: ToCoordinate(v.state.Position),
		Heading:  v.state.Heading,
	}
}

// Fleet owns one vehicle per route. Each vehicle's state is only advanced by
// Step; the mutex guards readers on other goroutines.
type Fleet struct {
	mu           sync.RWMutex
	vehicles     map[string]*Vehicle
	speed        float64
	rotationGain float64
}

// NewFleet - 차량 관리자 생성
func NewFleet(speed, rotationGain float64) *Fleet {
	return &Fleet{
		vehicles:     make(map[string]*Vehicle),
		speed:        speed,
		rotationGain: rotationGain,
	}
}

// Sync replaces all vehicles with fresh ones for routes, each starting at its
// route's first waypoint.
func (f *Fleet) Sync(routes []models.Route) {
	now := time.Now()
	vehicles := make(map[string]*Vehicle, len(routes))

	for _, route := range routes {
		rp := CloseRoute(route)
		anim := algorithms.NewPathAnimator(rp.Path, f.speed, f.rotationGain)
		vehicles[route.Name] = &Vehicle{
			Name:         route.Name,
			Type:         route.Type,
			Color:        route.Color,
			RegisteredAt: now,
			animator:     anim,
			state:        anim.InitialState(),
		}
	}

	f.mu.Lock()
	f.vehicles = vehicles
	f.mu.Unlock()

	Logger().Info("fleet synced", zap.Int("vehicles", len(vehicles)))
}

// Step advances every vehicle by dt seconds and returns their frames.
func (f *Fleet) Step(dt float64) []models.VehicleFrame {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, v := range f.vehicles {
		before := v.state.Position
		v.animator.Advance(&v.state, dt)
		v.distance += algorithms.Distance(before, v.state.Position)
	}
	return f.framesLocked()
}

// Frames returns the current frame of every vehicle, sorted by route name.
func (f *Fleet) Frames() []models.VehicleFrame {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.framesLocked()
}

func (f *Fleet) framesLocked() []models.VehicleFrame {
	frames := make([]models.VehicleFrame, 0, len(f.vehicles))
	for _, v := range f.vehicles {
		frames = append(frames, v.Frame())
	}
	sort.Slice(frames, func(i, j int) bool { return frames[i].Route < frames[j].Route })
	return frames
}

// Get returns one vehicle's frame.
func (f *Fleet) Get(name string) (models.VehicleFrame, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	v, ok := f.vehicles[name]
	if !ok {
		return models.VehicleFrame{}, fmt.Errorf("%w: %s", ErrVehicleNotFound, name)
	}
	return v.Frame(), nil
}

// Remove drops a vehicle; it stops being advanced immediately.
func (f *Fleet) Remove(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.vehicles[name]; !ok {
		return fmt.Errorf("%w: %s", ErrVehicleNotFound, name)
	}
	delete(f.vehicles, name)
	Logger().Info("vehicle removed", zap.String("route", name))
	return nil
}

func (f *Fleet) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.vehicles)
}

// Statistics - 차량 통계
func (f *Fleet) Statistics() map[string]interface{} {
	f.mu.RLock()
	defer f.mu.RUnlock()

	total := 0.0
	moving := 0
	for _, v := range f.vehicles {
		total += v.distance
		if v.animator.SegmentCount() > 0 && v.animator.Speed() > 0 {
			moving++
		}
	}

	return map[string]interface{}{
		"total_vehicles": len(f.vehicles),
		"moving":         moving,
		"total_distance": total,
		"speed":          f.speed,
		"rotation_gain":  f.rotationGain,
	}
}
