package mot

import (
	"math"
	"testing"
)

func TestIoU(t *testing.T) {
	cases := []struct {
		name     string
		a, b     Rectangle
		expected float64
	}{
		{"same", NewRectFromCorners(0, 0, 10, 10), NewRectFromCorners(0, 0, 10, 10), 1.0},
		{"disjoint", NewRectFromCorners(0, 0, 10, 10), NewRectFromCorners(20, 20, 30, 30), 0.0},
		{"partial", NewRectFromCorners(0, 0, 10, 10), NewRectFromCorners(5, 5, 15, 15), 25.0 / 175.0},
		{"touching", NewRectFromCorners(0, 0, 10, 10), NewRectFromCorners(10, 0, 20, 10), 0.0},
		{"both degenerate", NewRectFromCorners(5, 5, 5, 5), NewRectFromCorners(5, 5, 5, 5), 0.0},
		{"inverted", NewRectFromCorners(10, 10, 0, 0), NewRectFromCorners(0, 0, 10, 10), 0.0},
		{"nan", NewRect(math.NaN(), 0, 10, 10), NewRectFromCorners(0, 0, 10, 10), 0.0},
		{"inf", NewRect(0, 0, math.Inf(1), 10), NewRectFromCorners(0, 0, 10, 10), 0.0},
	}
	for _, tc := range cases {
		got := IoU(tc.a, tc.b)
		if math.Abs(got-tc.expected) > 1e-6 {
			t.Errorf("%s: expected IoU %f, got %f", tc.name, tc.expected, got)
		}
		if math.IsNaN(got) {
			t.Errorf("%s: IoU must not be NaN", tc.name)
		}
	}
}

func TestIoUSymmetric(t *testing.T) {
	a := NewRectFromCorners(3, 4, 40, 25)
	b := NewRectFromCorners(10, -2, 33, 51)
	if math.Abs(IoU(a, b)-IoU(b, a)) > eps {
		t.Errorf("IoU should be symmetric: %f vs %f", IoU(a, b), IoU(b, a))
	}
}
