package mot

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantVelocityFilterInit(t *testing.T) {
	kf := NewConstantVelocityFilter(5, 6, 10, 20, DefaultNoiseParams())

	cx, cy, w, h := kf.GetState()
	assert.Equal(t, 5.0, cx)
	assert.Equal(t, 6.0, cy)
	assert.Equal(t, 10.0, w)
	assert.Equal(t, 20.0, h)

	vcx, vcy, vw := kf.GetVelocity()
	assert.Zero(t, vcx)
	assert.Zero(t, vcy)
	assert.Zero(t, vw)

	cov := kf.Covariance()
	for i := 0; i < cvStateDim; i++ {
		assert.Equal(t, 10.0, cov.At(i, i))
	}
}

func TestConstantVelocityFilterPredict(t *testing.T) {
	kf := NewConstantVelocityFilter(5, 5, 10, 10, DefaultNoiseParams())
	kf.Predict()

	// Zero velocity keeps state in place
	cx, cy, w, h := kf.GetState()
	assert.Equal(t, []float64{5, 5, 10, 10}, []float64{cx, cy, w, h})

	cov := kf.Covariance()
	// position picks up velocity variance and process noise
	assert.InDelta(t, 21.0, cov.At(0, 0), 1e-9)
	assert.InDelta(t, 21.0, cov.At(2, 2), 1e-9)
	// height has no velocity term
	assert.InDelta(t, 11.0, cov.At(3, 3), 1e-9)
	assert.InDelta(t, 10.01, cov.At(4, 4), 1e-9)
	assert.InDelta(t, 10.0, cov.At(0, 4), 1e-9)
	// whole velocity block gets process noise
	assert.InDelta(t, 0.01, cov.At(4, 5), 1e-9)
}

func TestConstantVelocityFilterUpdate(t *testing.T) {
	kf := NewConstantVelocityFilter(5, 5, 10, 10, DefaultNoiseParams())
	kf.Predict()

	err := kf.Update(27, 5, 10, 10)
	require.NoError(t, err)

	// gain for cx is 21/22, for vcx it is 10/22
	cx, cy, w, h := kf.GetState()
	assert.InDelta(t, 26.0, cx, 1e-9)
	assert.InDelta(t, 5.0, cy, 1e-9)
	assert.InDelta(t, 10.0, w, 1e-9)
	assert.InDelta(t, 10.0, h, 1e-9)

	vcx, vcy, vw := kf.GetVelocity()
	assert.InDelta(t, 10.0, vcx, 1e-9)
	assert.InDelta(t, 0.0, vcy, 1e-9)
	assert.InDelta(t, 0.0, vw, 1e-9)

	cov := kf.Covariance()
	for i := 0; i < cvStateDim; i++ {
		for j := 0; j < cvStateDim; j++ {
			assert.InDelta(t, cov.At(i, j), cov.At(j, i), 1e-9, "covariance must stay symmetric at (%d, %d)", i, j)
		}
		assert.Greater(t, cov.At(i, i), 0.0)
	}
	// measurement shrinks uncertainty
	assert.Less(t, cov.At(0, 0), 21.0)
}

func TestConstantVelocityFilterConverges(t *testing.T) {
	kf := NewConstantVelocityFilter(0, 0, 20, 20, DefaultNoiseParams())
	for i := 1; i <= 30; i++ {
		kf.Predict()
		require.NoError(t, kf.Update(float64(3*i), float64(-2*i), 20+float64(i), 20))
	}
	vcx, vcy, vw := kf.GetVelocity()
	assert.InDelta(t, 3.0, vcx, 0.2)
	assert.InDelta(t, -2.0, vcy, 0.2)
	assert.InDelta(t, 1.0, vw, 0.2)

	kf.Predict()
	cx, cy, _, _ := kf.GetState()
	assert.InDelta(t, 93.0, cx, 1.0)
	assert.InDelta(t, -62.0, cy, 1.0)
}

func TestNoiseParamsValidate(t *testing.T) {
	assert.NoError(t, DefaultNoiseParams().Validate())

	negative := DefaultNoiseParams()
	negative.ProcessNoisePosition = -1
	assert.ErrorContains(t, negative.Validate(), "process noise position")

	inf := DefaultNoiseParams()
	inf.InitialCovariance = math.Inf(1)
	assert.ErrorContains(t, inf.Validate(), "initial covariance")

	zeroR := DefaultNoiseParams()
	zeroR.MeasurementNoisePosition = 0
	assert.ErrorContains(t, zeroR.Validate(), "measurement noise position must be positive")
}
