package mot

// iouEpsilon keeps IoU defined for a pair of zero-area boxes
const iouEpsilon = 1e-6

// IoU calculates Intersection over Union between two rectangles:
// overlap / (area1 + area2 - overlap + eps).
// Boxes with non-finite components or negative dimensions never overlap anything, so IoU is 0 for them.
func IoU(r1, r2 Rectangle) float64 {
	if !r1.IsValid() || !r2.IsValid() {
		return 0.0
	}
	xA := maxFloat64(r1.X, r2.X)
	yA := maxFloat64(r1.Y, r2.Y)
	xB := minFloat64(r1.X+r1.Width, r2.X+r2.Width)
	yB := minFloat64(r1.Y+r1.Height, r2.Y+r2.Height)

	interArea := maxFloat64(0, xB-xA) * maxFloat64(0, yB-yA)
	if interArea == 0 {
		return 0.0
	}
	return interArea / (r1.Area() + r2.Area() - interArea + iouEpsilon)
}

func maxFloat64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
