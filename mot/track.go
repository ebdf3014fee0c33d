package mot

import (
	"github.com/pkg/errors"
)

// Track is a tracked object driven by Kalman filter.
// Tracks are created and mutated by SortTracker only.
type Track struct {
	id              int
	className       string
	tracker         motionFilter
	timeSinceUpdate int
	hitStreak       int
	hits            int
	age             int
	prevCenter      Point
	heading         Point
}

func newTrack(id int, detection Detection, model MotionModel, noise NoiseParams) *Track {
	return &Track{
		id:              id,
		className:       detection.ClassName,
		tracker:         newMotionFilter(model, detection.BBox, noise),
		timeSinceUpdate: 0,
		hitStreak:       0,
		hits:            0,
		age:             0,
		prevCenter:      detection.BBox.Center(),
		heading:         Point{X: 0, Y: 0},
	}
}

// bbox returns bounding box derived from filtered (cx, cy, w, h)
func (track *Track) bbox() Rectangle {
	cx, cy, w, h := track.tracker.GetState()
	return NewRectFromCenter(cx, cy, w, h)
}

// predict executes Kalman filter prediction step and ages the track
func (track *Track) predict() Rectangle {
	track.tracker.Predict()
	track.timeSinceUpdate++
	track.age++
	return track.bbox()
}

// update executes Kalman filter update step with matched detection box.
// Counters and heading stay untouched when filter fails.
func (track *Track) update(bbox Rectangle) error {
	center := bbox.Center()
	err := track.tracker.Update(center.X, center.Y, bbox.Width, bbox.Height)
	if err != nil {
		return errors.Wrapf(err, "Can't update track %d", track.id)
	}
	track.heading = center.Sub(track.prevCenter)
	track.prevCenter = center
	track.timeSinceUpdate = 0
	track.hitStreak++
	track.hits++
	return nil
}

// markMissed breaks hit streak of a track left without update on current frame
func (track *Track) markMissed() {
	if track.timeSinceUpdate > 0 {
		track.hitStreak = 0
	}
}

func (track *Track) record() TrackedObject {
	return TrackedObject{
		BBox:      track.bbox(),
		ID:        track.id,
		ClassName: track.className,
		Heading:   track.heading,
	}
}

func (track *Track) snapshot() TrackSnapshot {
	vcx, vcy, vw := track.tracker.GetVelocity()
	return TrackSnapshot{
		ID:              track.id,
		ClassName:       track.className,
		BBox:            track.bbox(),
		Velocity:        [3]float64{vcx, vcy, vw},
		Heading:         track.heading,
		TimeSinceUpdate: track.timeSinceUpdate,
		HitStreak:       track.hitStreak,
		Hits:            track.hits,
		Age:             track.age,
	}
}
