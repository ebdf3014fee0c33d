package mot

import (
	"fmt"

	kalman_filter "github.com/LdDl/kalman-filter"
)

// MotionModel selects Kalman filter used by each track
type MotionModel uint16

const (
	// MotionModelConstantVelocity is 7-D constant velocity filter [cx, cy, w, h, vcx, vcy, vw]
	MotionModelConstantVelocity MotionModel = iota
	// MotionModelBBox8 is 8-D filter [cx, cy, w, h, vx, vy, vw, vh] driven by acceleration noise
	MotionModelBBox8
)

func (m MotionModel) String() string {
	switch m {
	case MotionModelConstantVelocity:
		return "constant_velocity"
	case MotionModelBBox8:
		return "bbox8"
	default:
		return fmt.Sprintf("MotionModel(%d)", uint16(m))
	}
}

// motionFilter is what a Track needs from its filter
type motionFilter interface {
	Predict()
	Update(cx, cy, w, h float64) error
	GetState() (float64, float64, float64, float64)
	GetVelocity() (float64, float64, float64)
}

func newMotionFilter(model MotionModel, bbox Rectangle, noise NoiseParams) motionFilter {
	center := bbox.Center()
	switch model {
	case MotionModelBBox8:
		return newBBox8Filter(center.X, center.Y, bbox.Width, bbox.Height)
	default:
		return NewConstantVelocityFilter(center.X, center.Y, bbox.Width, bbox.Height, noise)
	}
}

// bbox8Filter adapts kalman_filter.KalmanBBox to motionFilter
type bbox8Filter struct {
	kf *kalman_filter.KalmanBBox
}

func newBBox8Filter(cx, cy, w, h float64) *bbox8Filter {
	// Kalman filter props
	dt := 1.0
	uCx := 1.0
	uCy := 1.0
	uW := 0.0
	uH := 0.0
	stdDevA := 2.0
	stdDevMCx := 0.1
	stdDevMCy := 0.1
	stdDevMW := 0.1
	stdDevMH := 0.1
	kf := kalman_filter.NewKalmanBBox(
		dt, uCx, uCy, uW, uH,
		stdDevA, stdDevMCx, stdDevMCy, stdDevMW, stdDevMH,
		kalman_filter.WithStateBBox(cx, cy, w, h),
	)
	return &bbox8Filter{kf: kf}
}

func (f *bbox8Filter) Predict() {
	f.kf.Predict()
}

func (f *bbox8Filter) Update(cx, cy, w, h float64) error {
	return f.kf.Update(cx, cy, w, h)
}

func (f *bbox8Filter) GetState() (float64, float64, float64, float64) {
	return f.kf.GetState()
}

func (f *bbox8Filter) GetVelocity() (float64, float64, float64) {
	vx, vy, vw, _ := f.kf.GetVelocity()
	return vx, vy, vw
}
