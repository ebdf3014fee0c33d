package mot

import (
	"github.com/google/uuid"
)

// Detection is a single class-labeled box observed on a frame
type Detection struct {
	BBox      Rectangle
	ClassName string
}

// NewDetection creates detection from corners (x1, y1, x2, y2)
func NewDetection(x1, y1, x2, y2 float64, className string) Detection {
	return Detection{
		BBox:      NewRectFromCorners(x1, y1, x2, y2),
		ClassName: className,
	}
}

// TrackedObject is an output record emitted by SortTracker.Update
type TrackedObject struct {
	// Filtered bounding box after this frame's update
	BBox      Rectangle
	ID        int
	ClassName string
	// Displacement of measured center between two last updates
	Heading Point
}

// Displacement returns length of heading vector
func (obj TrackedObject) Displacement() float64 {
	return euclideanDistance(Point{}, obj.Heading)
}

// TrackSnapshot is a read-only view of live track
type TrackSnapshot struct {
	// Run of the tracker that owns the track
	RunID           uuid.UUID
	ID              int
	ClassName       string
	BBox            Rectangle
	Velocity        [3]float64
	Heading         Point
	TimeSinceUpdate int
	HitStreak       int
	Hits            int
	Age             int
}

// CountByClass returns number of records per class label
func CountByClass(objects []TrackedObject) map[string]int {
	counts := make(map[string]int)
	for _, obj := range objects {
		counts[obj.ClassName]++
	}
	return counts
}
