package mot

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	cvStateDim       = 7
	cvMeasurementDim = 4
)

// NoiseParams holds magnitudes for ConstantVelocityFilter matrices.
type NoiseParams struct {
	// Initial state covariance is InitialCovariance * I
	InitialCovariance float64
	// Process noise variance for (cx, cy, w, h)
	ProcessNoisePosition float64
	// Process noise for the whole (vcx, vcy, vw) block
	ProcessNoiseVelocity float64
	// Measurement noise variance for (cx, cy)
	MeasurementNoisePosition float64
	// Measurement noise variance for (w, h)
	MeasurementNoiseSize float64
}

// DefaultNoiseParams returns magnitudes tuned for near-static camera:
// P0 = 10*I, Q = I with velocity block filled by 0.01, R = diag(1, 1, 10, 10)
func DefaultNoiseParams() NoiseParams {
	return NoiseParams{
		InitialCovariance:        10.0,
		ProcessNoisePosition:     1.0,
		ProcessNoiseVelocity:     0.01,
		MeasurementNoisePosition: 1.0,
		MeasurementNoiseSize:     10.0,
	}
}

// Validate checks that every magnitude is finite and non-negative and that measurement noise is positive.
// Otherwise innovation covariance may lose positive definiteness and every update fails.
func (noise NoiseParams) Validate() error {
	magnitudes := []struct {
		name  string
		value float64
	}{
		{"initial covariance", noise.InitialCovariance},
		{"process noise position", noise.ProcessNoisePosition},
		{"process noise velocity", noise.ProcessNoiseVelocity},
		{"measurement noise position", noise.MeasurementNoisePosition},
		{"measurement noise size", noise.MeasurementNoiseSize},
	}
	for _, m := range magnitudes {
		if !isFinite(m.value) || m.value < 0 {
			return errors.Errorf("%s must be finite and non-negative, got %f", m.name, m.value)
		}
	}
	if noise.MeasurementNoisePosition == 0 {
		return errors.New("measurement noise position must be positive")
	}
	if noise.MeasurementNoiseSize == 0 {
		return errors.New("measurement noise size must be positive")
	}
	return nil
}

// ConstantVelocityFilter is linear Kalman filter over state [cx, cy, w, h, vcx, vcy, vw].
// Height velocity is not modeled. Measurement is [cx, cy, w, h].
type ConstantVelocityFilter struct {
	x         *mat.VecDense
	p         *mat.Dense
	motionMat *mat.Dense
	updateMat *mat.Dense
	processQ  *mat.Dense
	measureR  *mat.Dense
}

// NewConstantVelocityFilter creates filter with initial state taken from measurement; velocities start at zero.
func NewConstantVelocityFilter(cx, cy, w, h float64, noise NoiseParams) *ConstantVelocityFilter {
	dt := 1.0

	motionMat := mat.NewDense(cvStateDim, cvStateDim, nil)
	for i := 0; i < cvStateDim; i++ {
		motionMat.Set(i, i, 1.0)
	}
	// cx <- vcx, cy <- vcy, w <- vw
	for i := 0; i < 3; i++ {
		motionMat.Set(i, cvMeasurementDim+i, dt)
	}

	updateMat := mat.NewDense(cvMeasurementDim, cvStateDim, nil)
	for i := 0; i < cvMeasurementDim; i++ {
		updateMat.Set(i, i, 1.0)
	}

	processQ := mat.NewDense(cvStateDim, cvStateDim, nil)
	for i := 0; i < cvMeasurementDim; i++ {
		processQ.Set(i, i, noise.ProcessNoisePosition)
	}
	for i := cvMeasurementDim; i < cvStateDim; i++ {
		for j := cvMeasurementDim; j < cvStateDim; j++ {
			processQ.Set(i, j, noise.ProcessNoiseVelocity)
		}
	}

	measureR := mat.NewDense(cvMeasurementDim, cvMeasurementDim, nil)
	measureR.Set(0, 0, noise.MeasurementNoisePosition)
	measureR.Set(1, 1, noise.MeasurementNoisePosition)
	measureR.Set(2, 2, noise.MeasurementNoiseSize)
	measureR.Set(3, 3, noise.MeasurementNoiseSize)

	p := mat.NewDense(cvStateDim, cvStateDim, nil)
	for i := 0; i < cvStateDim; i++ {
		p.Set(i, i, noise.InitialCovariance)
	}

	return &ConstantVelocityFilter{
		x:         mat.NewVecDense(cvStateDim, []float64{cx, cy, w, h, 0, 0, 0}),
		p:         p,
		motionMat: motionMat,
		updateMat: updateMat,
		processQ:  processQ,
		measureR:  measureR,
	}
}

// Predict executes x = F*x, P = F*P*F' + Q
func (kf *ConstantVelocityFilter) Predict() {
	var x mat.VecDense
	x.MulVec(kf.motionMat, kf.x)
	kf.x = &x

	var fp mat.Dense
	fp.Mul(kf.motionMat, kf.p)
	var p mat.Dense
	p.Mul(&fp, kf.motionMat.T())
	p.Add(&p, kf.processQ)
	kf.p = &p
}

// Update executes correction step with measurement (cx, cy, w, h).
// Covariance is corrected in Joseph form to stay symmetric.
func (kf *ConstantVelocityFilter) Update(cx, cy, w, h float64) error {
	// P*H'
	var pht mat.Dense
	pht.Mul(kf.p, kf.updateMat.T())
	// S = H*P*H' + R
	var hpht mat.Dense
	hpht.Mul(kf.updateMat, &pht)
	innovationCov := mat.NewSymDense(cvMeasurementDim, nil)
	for i := 0; i < cvMeasurementDim; i++ {
		for j := i; j < cvMeasurementDim; j++ {
			v := (hpht.At(i, j)+hpht.At(j, i))/2.0 + kf.measureR.At(i, j)
			innovationCov.SetSym(i, j, v)
		}
	}

	chol := mat.Cholesky{}
	if ok := chol.Factorize(innovationCov); !ok {
		return errors.New("failed to factorize innovation covariance")
	}
	var innovationInv mat.SymDense
	if err := chol.InverseTo(&innovationInv); err != nil {
		return errors.Wrap(err, "failed to invert innovation covariance")
	}

	// K = P*H'*S^-1
	var gain mat.Dense
	gain.Mul(&pht, &innovationInv)

	measurement := mat.NewVecDense(cvMeasurementDim, []float64{cx, cy, w, h})
	var projected mat.VecDense
	projected.MulVec(kf.updateMat, kf.x)
	var innovation mat.VecDense
	innovation.SubVec(measurement, &projected)

	var correction mat.VecDense
	correction.MulVec(&gain, &innovation)
	var x mat.VecDense
	x.AddVec(kf.x, &correction)

	// P = (I-KH)*P*(I-KH)' + K*R*K'
	ikh := mat.NewDense(cvStateDim, cvStateDim, nil)
	for i := 0; i < cvStateDim; i++ {
		ikh.Set(i, i, 1.0)
	}
	var kh mat.Dense
	kh.Mul(&gain, kf.updateMat)
	ikh.Sub(ikh, &kh)

	var left mat.Dense
	left.Mul(ikh, kf.p)
	var p mat.Dense
	p.Mul(&left, ikh.T())

	var kr mat.Dense
	kr.Mul(&gain, kf.measureR)
	var krk mat.Dense
	krk.Mul(&kr, gain.T())
	p.Add(&p, &krk)

	kf.x = &x
	kf.p = &p
	return nil
}

// GetState returns filtered (cx, cy, w, h)
func (kf *ConstantVelocityFilter) GetState() (float64, float64, float64, float64) {
	return kf.x.AtVec(0), kf.x.AtVec(1), kf.x.AtVec(2), kf.x.AtVec(3)
}

// GetVelocity returns filtered (vcx, vcy, vw)
func (kf *ConstantVelocityFilter) GetVelocity() (float64, float64, float64) {
	return kf.x.AtVec(4), kf.x.AtVec(5), kf.x.AtVec(6)
}

// Covariance returns copy of state covariance
func (kf *ConstantVelocityFilter) Covariance() *mat.Dense {
	return mat.DenseCopyOf(kf.p)
}
