package services

import (
	"context"
	"sync"
	"time"

	"warehouse-backend/models"

	"go.uber.org/zap"
)

// maxFrameDelta caps Δt after a stall (GC pause, suspended host) so vehicles
// do not skip whole segments.
const maxFrameDelta = 0.25

// FleetSimulator - 차량 애니메이션 루프
type FleetSimulator struct {
	fleet         *Fleet
	broadcastFunc func(models.WebSocketMessage)
	interval      time.Duration

	mu        sync.Mutex
	isRunning bool
	tick      uint64
	stopChan  chan struct{}
	done      chan struct{}
}

// NewFleetSimulator - tickRate 는 초당 프레임 수
func NewFleetSimulator(fleet *Fleet, tickRate int, broadcastFunc func(models.WebSocketMessage)) *FleetSimulator {
	if tickRate <= 0 {
		tickRate = 60
	}
	return &FleetSimulator{
		fleet:         fleet,
		broadcastFunc: broadcastFunc,
		interval:      time.Second / time.Duration(tickRate),
	}
}

// Run drives the loop until ctx is cancelled or Stop is called.
func (s *FleetSimulator) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		close(done)
	}()

	Logger().Info("🚜 fleet simulator started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			Logger().Info("fleet simulator stopped", zap.Error(ctx.Err()))
			return nil
		case <-stop:
			Logger().Info("fleet simulator stopped")
			return nil
		case now := <-ticker.C:
			s.Tick(now.Sub(last).Seconds())
			last = now
		}
	}
}

// Stop ends a running loop and waits for it to exit.
func (s *FleetSimulator) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	stop, done := s.stopChan, s.done
	s.isRunning = false
	s.mu.Unlock()

	close(stop)
	<-done
}

func (s *FleetSimulator) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// Tick advances the fleet by dt seconds and broadcasts the frame.
func (s *FleetSimulator) Tick(dt float64) models.FleetFrame {
	if dt > maxFrameDelta {
		dt = maxFrameDelta
	}

	s.mu.Lock()
	s.tick++
	tick := s.tick
	s.mu.Unlock()

	frame := models.FleetFrame{
		Tick:     tick,
		Delta:    dt,
		Vehicles: s.fleet.Step(dt),
	}

	if s.broadcastFunc != nil && len(frame.Vehicles) > 0 {
		s.broadcastFunc(models.WebSocketMessage{
			Type:      models.MessageTypeVehicleFrame,
			Data:      frame,
			Timestamp: time.Now().UnixMilli(),
		})
	}
	return frame
}
