package main

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/LdDl/sort-tracker/mot"
	"github.com/pkg/errors"
)

var (
	detectionsHeader = []string{"frame", "x1", "y1", "x2", "y2", "class"}
	tracksHeader     = []string{"frame", "id", "class", "x1", "y1", "x2", "y2", "hx", "hy"}
)

// replayStats summarizes a replay run
type replayStats struct {
	Frames     int
	Detections int
	Records    int
}

// replay feeds detections CSV frame by frame into tracker and writes emitted records.
// Frames missing between two present frame numbers are replayed as empty frames,
// up to the point where every track has aged out.
func replay(r io.Reader, w io.Writer, tracker *mot.SortTracker) (replayStats, error) {
	stats := replayStats{}

	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = len(detectionsHeader)
	reader.TrimLeadingSpace = true

	writer := csv.NewWriter(w)
	writer.Comma = ';'
	defer writer.Flush()

	header, err := reader.Read()
	if err != nil {
		return stats, errors.Wrap(err, "Can't read detections header")
	}
	for i, column := range detectionsHeader {
		if strings.TrimSpace(strings.ToLower(header[i])) != column {
			return stats, errors.Errorf("Unexpected header column %d: %q, expected %q", i, header[i], column)
		}
	}
	if err := writer.Write(tracksHeader); err != nil {
		return stats, errors.Wrap(err, "Can't write tracks header")
	}

	currentFrame := -1
	detections := make([]mot.Detection, 0)

	flush := func(frame int) error {
		objects := tracker.Update(detections)
		stats.Frames++
		stats.Detections += len(detections)
		stats.Records += len(objects)
		for _, obj := range objects {
			if err := writer.Write(trackRow(frame, obj)); err != nil {
				return errors.Wrapf(err, "Can't write records of frame %d", frame)
			}
		}
		detections = detections[:0]
		return nil
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, errors.Wrap(err, "Can't read detections")
		}
		line, _ := reader.FieldPos(0)
		frame, detection, err := parseDetectionRow(row)
		if err != nil {
			return stats, errors.Wrapf(err, "Bad detection on line %d", line)
		}
		if currentFrame < 0 {
			currentFrame = frame
		}
		if frame < currentFrame {
			return stats, errors.Errorf("Frames must be non-decreasing: got %d after %d on line %d", frame, currentFrame, line)
		}
		idle := 0
		for currentFrame < frame {
			// every track is gone after maxAge+1 empty frames, the rest of the gap changes nothing
			if idle > tracker.MaxAge() {
				stats.Frames += frame - currentFrame
				currentFrame = frame
				break
			}
			if len(detections) == 0 {
				idle++
			}
			if err := flush(currentFrame); err != nil {
				return stats, err
			}
			currentFrame++
		}
		detections = append(detections, detection)
	}
	if currentFrame >= 0 {
		if err := flush(currentFrame); err != nil {
			return stats, err
		}
	}
	writer.Flush()
	return stats, errors.Wrap(writer.Error(), "Can't flush tracks")
}

func parseDetectionRow(row []string) (int, mot.Detection, error) {
	frame, err := strconv.Atoi(strings.TrimSpace(row[0]))
	if err != nil {
		return 0, mot.Detection{}, errors.Wrap(err, "Can't parse frame")
	}
	coords := make([]float64, 4)
	for i := range coords {
		coords[i], err = strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
		if err != nil {
			return 0, mot.Detection{}, errors.Wrapf(err, "Can't parse %s", detectionsHeader[i+1])
		}
	}
	className := strings.TrimSpace(row[5])
	return frame, mot.NewDetection(coords[0], coords[1], coords[2], coords[3], className), nil
}

func trackRow(frame int, obj mot.TrackedObject) []string {
	x1, y1, x2, y2 := obj.BBox.Corners()
	return []string{
		strconv.Itoa(frame),
		strconv.Itoa(obj.ID),
		obj.ClassName,
		formatFloat(x1),
		formatFloat(y1),
		formatFloat(x2),
		formatFloat(y2),
		formatFloat(obj.Heading.X),
		formatFloat(obj.Heading.Y),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
