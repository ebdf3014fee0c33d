package mot

import (
	"fmt"
	"sort"

	"github.com/arthurkushman/go-hungarian"
)

// MatchingAlgorithm is for algorithm type for matching detections to tracks
type MatchingAlgorithm uint16

const (
	// MatchingAlgorithmGreedy picks best IoU track for every detection independently.
	// Several detections may pick the same track; every such pair is applied.
	MatchingAlgorithmGreedy MatchingAlgorithm = iota
	// MatchingAlgorithmHungarian uses the Hungarian algorithm (Kuhn-Munkres) for optimal one-to-one assignment
	MatchingAlgorithmHungarian
)

func (m MatchingAlgorithm) String() string {
	switch m {
	case MatchingAlgorithmGreedy:
		return "greedy"
	case MatchingAlgorithmHungarian:
		return "hungarian"
	default:
		return fmt.Sprintf("MatchingAlgorithm(%d)", uint16(m))
	}
}

// matchPair is (detection index, track index)
type matchPair struct {
	detection int
	track     int
}

// createIoUMatrix builds IoU matrix: rows = detections, columns = track boxes
func createIoUMatrix(detections []Detection, trackBBoxes []Rectangle) [][]float64 {
	iouMatrix := make([][]float64, len(detections))
	for i, det := range detections {
		row := make([]float64, len(trackBBoxes))
		for j, trkBox := range trackBBoxes {
			row[j] = IoU(det.BBox, trkBox)
		}
		iouMatrix[i] = row
	}
	return iouMatrix
}

// validBoxes marks boxes allowed to take part in association: finite and not inverted
func validBoxes(boxes []Rectangle) []bool {
	valid := make([]bool, len(boxes))
	for i, box := range boxes {
		valid[i] = box.IsValid()
	}
	return valid
}

// validDetections marks detections allowed to take part in association
func validDetections(detections []Detection) []bool {
	valid := make([]bool, len(detections))
	for i, det := range detections {
		valid[i] = det.BBox.IsValid()
	}
	return valid
}

// performMatching returns matched pairs and indices of unmatched detections (ascending).
// Invalid detections always end up unmatched and invalid tracks are never matched, whatever the threshold.
func performMatching(algorithm MatchingAlgorithm, iouMatrix [][]float64, validDets, validTracks []bool, iouThreshold float64) ([]matchPair, []int) {
	switch algorithm {
	case MatchingAlgorithmHungarian:
		return performHungarianMatching(iouMatrix, validDets, validTracks, iouThreshold)
	default:
		return performGreedyMatching(iouMatrix, validDets, validTracks, iouThreshold)
	}
}

// performGreedyMatching takes argmax over valid tracks for each detection in input order.
// First index wins ties.
func performGreedyMatching(iouMatrix [][]float64, validDets, validTracks []bool, iouThreshold float64) ([]matchPair, []int) {
	matches := make([]matchPair, 0)
	unmatched := make([]int, 0)
	for i, row := range iouMatrix {
		if !validDets[i] {
			unmatched = append(unmatched, i)
			continue
		}
		bestIdx := -1
		for j := range validTracks {
			if !validTracks[j] {
				continue
			}
			if bestIdx < 0 || row[j] > row[bestIdx] {
				bestIdx = j
			}
		}
		if bestIdx >= 0 && row[bestIdx] >= iouThreshold {
			matches = append(matches, matchPair{detection: i, track: bestIdx})
		} else {
			unmatched = append(unmatched, i)
		}
	}
	return matches, unmatched
}

// performHungarianMatching solves max-IoU assignment on square padded matrix.
// Pairs below threshold or involving invalid boxes are dropped and their detections become unmatched.
func performHungarianMatching(iouMatrix [][]float64, validDets, validTracks []bool, iouThreshold float64) ([]matchPair, []int) {
	numDetections := len(iouMatrix)
	numTracks := len(validTracks)
	matches := make([]matchPair, 0)
	unmatched := make([]int, 0)
	if numDetections == 0 {
		return matches, unmatched
	}
	if numTracks == 0 {
		for i := 0; i < numDetections; i++ {
			unmatched = append(unmatched, i)
		}
		return matches, unmatched
	}

	// Rectangular matrix - pad to make it square. Padding is done with 0.0 values (lowest IoU)
	paddedSize := maxInt(numDetections, numTracks)
	paddedMatrix := make([][]float64, paddedSize)
	for i := 0; i < paddedSize; i++ {
		paddedMatrix[i] = make([]float64, paddedSize)
	}
	for i := 0; i < numDetections; i++ {
		if !validDets[i] {
			continue
		}
		for j := 0; j < numTracks; j++ {
			if validTracks[j] {
				paddedMatrix[i][j] = iouMatrix[i][j]
			}
		}
	}

	assignmentsMap := hungarian.SolveMax(paddedMatrix)
	matchedDetections := make(map[int]struct{})
	for detIdx, rowMap := range assignmentsMap {
		if detIdx >= numDetections || !validDets[detIdx] {
			continue
		}
		// Inner map holds single entry {trackIndex: iou}
		for trkIdx := range rowMap {
			if trkIdx < numTracks && validTracks[trkIdx] && iouMatrix[detIdx][trkIdx] >= iouThreshold {
				matches = append(matches, matchPair{detection: detIdx, track: trkIdx})
				matchedDetections[detIdx] = struct{}{}
			}
			break
		}
	}
	// Map iteration order is random: keep output in detection order
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].detection < matches[j].detection
	})
	for i := 0; i < numDetections; i++ {
		if _, ok := matchedDetections[i]; !ok {
			unmatched = append(unmatched, i)
		}
	}
	return matches, unmatched
}
