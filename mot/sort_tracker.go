package mot

import (
	"log/slog"
	"math"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// SortTracker is implementation of Multi-object tracker (MOT) in SORT manner:
// Kalman filter prediction, IoU association and track lifecycle with identity recycling.
//
// Default association is greedy per detection and is not one-to-one: two detections may both
// claim the same track in a single frame. Use MatchingAlgorithmHungarian for optimal assignment.
type SortTracker struct {
	// Max number of frames a track may stay unmatched before removal
	maxAge int
	// Consecutive matches before track is considered confirmed. Stored but does not gate output
	minHits int
	// Minimum IoU to accept a match
	iouThreshold float64
	// Algorithm to use for matching
	algorithm MatchingAlgorithm
	// Filter for newly created tracks
	motionModel MotionModel
	noise       NoiseParams

	// Live tracks in creation order
	tracks []*Track
	ids    *idPool

	runID  uuid.UUID
	logger *slog.Logger
	mu     sync.Mutex
}

// Option configures SortTracker
type Option func(*SortTracker)

// WithLogger sets logger for lifecycle events. Default discards everything
func WithLogger(logger *slog.Logger) Option {
	return func(tracker *SortTracker) {
		if logger != nil {
			tracker.logger = logger
		}
	}
}

// WithMatchingAlgorithm sets algorithm for detection to track association
func WithMatchingAlgorithm(algorithm MatchingAlgorithm) Option {
	return func(tracker *SortTracker) {
		tracker.algorithm = algorithm
	}
}

// WithMotionModel sets Kalman filter for new tracks
func WithMotionModel(model MotionModel) Option {
	return func(tracker *SortTracker) {
		tracker.motionModel = model
	}
}

// WithNoiseParams sets noise magnitudes for MotionModelConstantVelocity
func WithNoiseParams(noise NoiseParams) Option {
	return func(tracker *SortTracker) {
		tracker.noise = noise
	}
}

// NewDefaultSortTracker creates a default instance of SortTracker.
// Default values: maxAge=3, minHits=1, iouThreshold=0.3
func NewDefaultSortTracker(opts ...Option) *SortTracker {
	tracker, err := NewSortTracker(3, 1, 0.3, opts...)
	if err != nil {
		panic("should be impossible: " + err.Error())
	}
	return tracker
}

// NewSortTracker creates a new instance of SortTracker with specified parameters.
func NewSortTracker(maxAge, minHits int, iouThreshold float64, opts ...Option) (*SortTracker, error) {
	if maxAge < 0 {
		return nil, errors.Errorf("max age must be non-negative, got %d", maxAge)
	}
	if minHits < 0 {
		return nil, errors.Errorf("min hits must be non-negative, got %d", minHits)
	}
	if math.IsNaN(iouThreshold) || iouThreshold < 0 || iouThreshold > 1 {
		return nil, errors.Errorf("IoU threshold must be between 0 and 1, got %f", iouThreshold)
	}
	tracker := &SortTracker{
		maxAge:       maxAge,
		minHits:      minHits,
		iouThreshold: iouThreshold,
		algorithm:    MatchingAlgorithmGreedy,
		motionModel:  MotionModelConstantVelocity,
		noise:        DefaultNoiseParams(),
		tracks:       make([]*Track, 0),
		ids:          newIDPool(),
		runID:        uuid.New(),
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(tracker)
	}
	if err := tracker.noise.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid noise params")
	}
	tracker.logger = tracker.logger.With(slog.String("run_id", tracker.runID.String()))
	return tracker, nil
}

// MaxAge returns max number of unmatched frames
func (tracker *SortTracker) MaxAge() int {
	return tracker.maxAge
}

// MinHits returns configured confirmation streak
func (tracker *SortTracker) MinHits() int {
	return tracker.minHits
}

// IoUThreshold returns minimum IoU for a match
func (tracker *SortTracker) IoUThreshold() float64 {
	return tracker.iouThreshold
}

// RunID returns identifier of this tracker instance
func (tracker *SortTracker) RunID() uuid.UUID {
	return tracker.runID
}

// Update runs one frame: predict, associate, update, spawn, prune.
// Returned records cover tracks matched on this frame and tracks spawned on this frame.
// Tracks kept alive by prediction only are not returned.
func (tracker *SortTracker) Update(detections []Detection) []TrackedObject {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()

	// Predict next positions for all existing tracks via Kalman filter
	trackBBoxes := make([]Rectangle, len(tracker.tracks))
	for i, track := range tracker.tracks {
		trackBBoxes[i] = track.predict()
	}

	iouMatrix := createIoUMatrix(detections, trackBBoxes)
	matches, unmatchedDetections := performMatching(tracker.algorithm, iouMatrix, validDetections(detections), validBoxes(trackBBoxes), tracker.iouThreshold)

	updated := make([]TrackedObject, 0, len(detections))

	// Update matched tracks
	for _, match := range matches {
		track := tracker.tracks[match.track]
		err := track.update(detections[match.detection].BBox)
		if err != nil {
			tracker.logger.Warn("skip match", slog.Int("track_id", track.id), slog.Any("error", err))
			continue
		}
		updated = append(updated, track.record())
	}

	// Streak breaks on the frame a track is missed
	for _, track := range tracker.tracks {
		track.markMissed()
	}

	// Create new tracks
	for _, detIdx := range unmatchedDetections {
		detection := detections[detIdx]
		track := newTrack(tracker.ids.acquire(), detection, tracker.motionModel, tracker.noise)
		tracker.tracks = append(tracker.tracks, track)
		tracker.logger.Debug("spawn track", slog.Int("track_id", track.id), slog.String("class", track.className))
		updated = append(updated, track.record())
	}

	// Remove old tracks and recycle identities
	alive := tracker.tracks[:0]
	for _, track := range tracker.tracks {
		if track.timeSinceUpdate <= tracker.maxAge {
			alive = append(alive, track)
			continue
		}
		tracker.ids.release(track.id)
		tracker.logger.Debug("retire track", slog.Int("track_id", track.id), slog.String("class", track.className), slog.Int("hits", track.hits))
	}
	for i := len(alive); i < len(tracker.tracks); i++ {
		tracker.tracks[i] = nil
	}
	tracker.tracks = alive

	return updated
}

// Tracks returns snapshots of live tracks in creation order
func (tracker *SortTracker) Tracks() []TrackSnapshot {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	snapshots := make([]TrackSnapshot, len(tracker.tracks))
	for i, track := range tracker.tracks {
		snapshots[i] = track.snapshot()
		snapshots[i].RunID = tracker.runID
	}
	return snapshots
}

// Len returns number of live tracks
func (tracker *SortTracker) Len() int {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	return len(tracker.tracks)
}

// Reset drops all tracks and identity state
func (tracker *SortTracker) Reset() {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	tracker.tracks = make([]*Track, 0)
	tracker.ids.reset()
}
