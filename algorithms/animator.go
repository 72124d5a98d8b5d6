package algorithms

import "math"

// DefaultRotationGain controls how quickly a vehicle's heading eases toward
// the direction of travel (1/s).
const DefaultRotationGain = 5.0

// VehicleState is the mutable per-vehicle animation state. It is owned by a
// single render loop and advanced once per frame with PathAnimator.Advance.
type VehicleState struct {
	Segment  int     `json:"segment"`
	Progress float64 `json:"progress"` // [0, 1) along the current segment
	Position Vec3    `json:"position"`
	Heading  float64 `json:"heading"` // radians around Y, atan2(dx, dz)
}

// PathAnimator moves vehicles around a closed waypoint loop.
//
// The path must already be closed by the caller: its last point repeats the
// first one (see ClosedLoop). The animator never re-closes it, so a path of n
// points has n-1 segments. The animator itself is immutable and may be shared
// by several VehicleStates following the same route.
type PathAnimator struct {
	path         []Vec3
	speed        float64
	rotationGain float64
}

// NewPathAnimator - 닫힌 경로를 따라가는 애니메이터 생성
//
// speed is in world units per second. A non-positive rotationGain selects
// DefaultRotationGain.
func NewPathAnimator(path []Vec3, speed, rotationGain float64) *PathAnimator {
	if rotationGain <= 0 {
		rotationGain = DefaultRotationGain
	}

	p := make([]Vec3, len(path))
	copy(p, path)

	return &PathAnimator{
		path:         p,
		speed:        speed,
		rotationGain: rotationGain,
	}
}

// Path returns a copy of the closed path.
func (a *PathAnimator) Path() []Vec3 {
	p := make([]Vec3, len(a.path))
	copy(p, a.path)
	return p
}

func (a *PathAnimator) Speed() float64 { return a.speed }

// SegmentCount is len(path)-1, or 0 for a degenerate path.
func (a *PathAnimator) SegmentCount() int {
	if len(a.path) < 2 {
		return 0
	}
	return len(a.path) - 1
}

// InitialState places a vehicle at the first waypoint with zero heading.
func (a *PathAnimator) InitialState() VehicleState {
	var start Vec3
	if len(a.path) > 0 {
		start = a.path[0]
	}
	return VehicleState{Position: start}
}

// Advance moves s forward by dt seconds.
//
// At most one segment boundary is crossed per call; progress restarts at
// exactly 0 on the new segment. Finishing the last segment snaps the vehicle
// back to path[0] so no drift builds up across laps. Coincident waypoints
// complete immediately. Paths with fewer than two points, and non-positive
// dt, leave s untouched.
func (a *PathAnimator) Advance(s *VehicleState, dt float64) {
	segments := a.SegmentCount()
	if segments == 0 || dt <= 0 {
		return
	}
	if s.Segment < 0 || s.Segment >= segments {
		s.Segment = 0
		s.Progress = 0
	}

	start, end := a.path[s.Segment], a.path[s.Segment+1]
	length := Distance(start, end)

	progress := 1.0
	if length > 0 {
		progress = s.Progress + a.speed*dt/length
	}

	segment := s.Segment
	if progress >= 1 {
		progress = 0
		segment++

		if segment >= segments {
			s.Segment = 0
			s.Progress = 0
			s.Position = a.path[0]
			return
		}
	}

	start, end = a.path[segment], a.path[segment+1]
	s.Segment = segment
	s.Progress = progress
	s.Position = Lerp(start, end, progress)

	// atan2(0, 0) = 0: a purely vertical segment turns the vehicle toward +Z
	dir := end.Sub(start)
	desired := math.Atan2(dir.X, dir.Z)
	diff := ShortestAngle(s.Heading, desired)

	// clamp so a long frame cannot overshoot the target heading
	step := a.rotationGain * dt
	if step > 1 {
		step = 1
	}
	s.Heading += diff * step
}

// ShortestAngle returns the signed difference to-from wrapped into (-π, π].
func ShortestAngle(from, to float64) float64 {
	d := math.Mod(to-from, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	} else if d <= -math.Pi {
		d += 2 * math.Pi
	}
	return d
}

// ClosedLoop returns points with the first point appended, turning an open
// waypoint list into the closed path PathAnimator expects. Lists that are
// already closed, or shorter than two points, are returned as a copy.
func ClosedLoop(points []Vec3) []Vec3 {
	out := make([]Vec3, len(points), len(points)+1)
	copy(out, points)
	if len(points) < 2 || IsClosed(points) {
		return out
	}
	return append(out, points[0])
}

// IsClosed reports whether the last point repeats the first.
func IsClosed(points []Vec3) bool {
	return len(points) >= 2 && points[0] == points[len(points)-1]
}

// PathLength - 경로 전체 길이
func PathLength(points []Vec3) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1], points[i])
	}
	return total
}
