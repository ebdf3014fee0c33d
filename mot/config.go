package mot

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// TrackerConfig is JSON tuning file for SortTracker.
// Omitted fields fall back to defaults through Get* methods, so partial configs are safe.
type TrackerConfig struct {
	// Lifecycle
	MaxAge       *int     `json:"max_age,omitempty"`
	MinHits      *int     `json:"min_hits,omitempty"`
	IoUThreshold *float64 `json:"iou_threshold,omitempty"`

	// Association and motion
	MatchingAlgorithm *string `json:"matching_algorithm,omitempty"` // "greedy" or "hungarian"
	MotionModel       *string `json:"motion_model,omitempty"`       // "constant_velocity" or "bbox8"

	// Constant velocity filter noise
	InitialCovariance    *float64 `json:"initial_covariance,omitempty"`
	ProcessNoisePos      *float64 `json:"process_noise_pos,omitempty"`
	ProcessNoiseVel      *float64 `json:"process_noise_vel,omitempty"`
	MeasurementNoisePos  *float64 `json:"measurement_noise_pos,omitempty"`
	MeasurementNoiseSize *float64 `json:"measurement_noise_size,omitempty"`
}

// LoadTrackerConfig loads a TrackerConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadTrackerConfig(path string) (*TrackerConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, errors.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to stat config file")
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, errors.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	cfg := &TrackerConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config JSON")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *TrackerConfig) Validate() error {
	if c.MaxAge != nil && *c.MaxAge < 0 {
		return errors.Errorf("max_age must be non-negative, got %d", *c.MaxAge)
	}
	if c.MinHits != nil && *c.MinHits < 0 {
		return errors.Errorf("min_hits must be non-negative, got %d", *c.MinHits)
	}
	if c.IoUThreshold != nil {
		if v := *c.IoUThreshold; math.IsNaN(v) || v < 0 || v > 1 {
			return errors.Errorf("iou_threshold must be between 0 and 1, got %f", v)
		}
	}
	if _, err := c.GetMatchingAlgorithm(); err != nil {
		return err
	}
	if _, err := c.GetMotionModel(); err != nil {
		return err
	}
	noise := map[string]*float64{
		"initial_covariance":     c.InitialCovariance,
		"process_noise_pos":      c.ProcessNoisePos,
		"process_noise_vel":      c.ProcessNoiseVel,
		"measurement_noise_pos":  c.MeasurementNoisePos,
		"measurement_noise_size": c.MeasurementNoiseSize,
	}
	for name, v := range noise {
		if v == nil {
			continue
		}
		if math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
			return errors.Errorf("%s must be finite and non-negative, got %f", name, *v)
		}
	}
	if c.MeasurementNoisePos != nil && *c.MeasurementNoisePos == 0 {
		return errors.New("measurement_noise_pos must be positive")
	}
	if c.MeasurementNoiseSize != nil && *c.MeasurementNoiseSize == 0 {
		return errors.New("measurement_noise_size must be positive")
	}
	return nil
}

// GetMaxAge returns the max_age value or the default.
func (c *TrackerConfig) GetMaxAge() int {
	if c.MaxAge == nil {
		return 3 // default
	}
	return *c.MaxAge
}

// GetMinHits returns the min_hits value or the default.
func (c *TrackerConfig) GetMinHits() int {
	if c.MinHits == nil {
		return 1 // default
	}
	return *c.MinHits
}

// GetIoUThreshold returns the iou_threshold value or the default.
func (c *TrackerConfig) GetIoUThreshold() float64 {
	if c.IoUThreshold == nil {
		return 0.3 // default
	}
	return *c.IoUThreshold
}

// GetMatchingAlgorithm parses matching_algorithm. Empty means greedy.
func (c *TrackerConfig) GetMatchingAlgorithm() (MatchingAlgorithm, error) {
	if c.MatchingAlgorithm == nil || *c.MatchingAlgorithm == "" {
		return MatchingAlgorithmGreedy, nil
	}
	switch *c.MatchingAlgorithm {
	case MatchingAlgorithmGreedy.String():
		return MatchingAlgorithmGreedy, nil
	case MatchingAlgorithmHungarian.String():
		return MatchingAlgorithmHungarian, nil
	default:
		return MatchingAlgorithmGreedy, errors.Errorf("unknown matching_algorithm %q", *c.MatchingAlgorithm)
	}
}

// GetMotionModel parses motion_model. Empty means constant_velocity.
func (c *TrackerConfig) GetMotionModel() (MotionModel, error) {
	if c.MotionModel == nil || *c.MotionModel == "" {
		return MotionModelConstantVelocity, nil
	}
	switch *c.MotionModel {
	case MotionModelConstantVelocity.String():
		return MotionModelConstantVelocity, nil
	case MotionModelBBox8.String():
		return MotionModelBBox8, nil
	default:
		return MotionModelConstantVelocity, errors.Errorf("unknown motion_model %q", *c.MotionModel)
	}
}

// GetNoiseParams returns filter noise with defaults for omitted fields.
func (c *TrackerConfig) GetNoiseParams() NoiseParams {
	noise := DefaultNoiseParams()
	if c.InitialCovariance != nil {
		noise.InitialCovariance = *c.InitialCovariance
	}
	if c.ProcessNoisePos != nil {
		noise.ProcessNoisePosition = *c.ProcessNoisePos
	}
	if c.ProcessNoiseVel != nil {
		noise.ProcessNoiseVelocity = *c.ProcessNoiseVel
	}
	if c.MeasurementNoisePos != nil {
		noise.MeasurementNoisePosition = *c.MeasurementNoisePos
	}
	if c.MeasurementNoiseSize != nil {
		noise.MeasurementNoiseSize = *c.MeasurementNoiseSize
	}
	return noise
}

// NewSortTrackerFromConfig creates SortTracker from tuning config.
// Options are applied after config values and override them.
func NewSortTrackerFromConfig(cfg *TrackerConfig, opts ...Option) (*SortTracker, error) {
	if cfg == nil {
		cfg = &TrackerConfig{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	algorithm, _ := cfg.GetMatchingAlgorithm()
	model, _ := cfg.GetMotionModel()
	allOpts := []Option{
		WithMatchingAlgorithm(algorithm),
		WithMotionModel(model),
		WithNoiseParams(cfg.GetNoiseParams()),
	}
	allOpts = append(allOpts, opts...)
	return NewSortTracker(cfg.GetMaxAge(), cfg.GetMinHits(), cfg.GetIoUThreshold(), allOpts...)
}
