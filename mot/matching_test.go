package mot

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func allValid(n int) []bool {
	valid := make([]bool, n)
	for i := range valid {
		valid[i] = true
	}
	return valid
}

func TestValidDetections(t *testing.T) {
	detections := []Detection{
		NewDetection(0, 0, 10, 10, "Car"),
		NewDetection(math.NaN(), 0, 10, 10, "Car"),
		NewDetection(50, 50, 40, 40, "Car"),
		NewDetection(80, 80, 80, 80, "Car"),
		NewDetection(0, 0, math.Inf(1), 10, "Car"),
	}
	assert.Equal(t, []bool{true, false, false, true, false}, validDetections(detections))
	assert.Equal(t, []bool{true, false}, validBoxes([]Rectangle{NewRect(0, 0, 1, 1), NewRect(0, 0, -1, 1)}))
}

func TestCreateIoUMatrix(t *testing.T) {
	detections := []Detection{
		NewDetection(0, 0, 10, 10, "Car"),
		NewDetection(5, 5, 15, 15, "Car"),
	}
	tracks := []Rectangle{
		NewRectFromCorners(0, 0, 10, 10),
		NewRectFromCorners(20, 20, 30, 30),
		NewRectFromCorners(5, 5, 15, 15),
	}
	m := createIoUMatrix(detections, tracks)
	assert.Len(t, m, 2)
	assert.Len(t, m[0], 3)
	assert.InDelta(t, 1.0, m[0][0], 1e-6)
	assert.InDelta(t, 0.0, m[0][1], 1e-6)
	assert.InDelta(t, 25.0/175.0, m[0][2], 1e-6)
	assert.InDelta(t, 1.0, m[1][2], 1e-6)
}

func TestGreedyMatching(t *testing.T) {
	iouMatrix := [][]float64{
		{0.1, 0.8, 0.2},
		{0.0, 0.0, 0.0},
		{0.5, 0.5, 0.1}, // tie: first index wins
		{0.2, 0.9, 0.0}, // claims already claimed track 1 again
	}
	matches, unmatched := performGreedyMatching(iouMatrix, allValid(4), allValid(3), 0.3)
	expected := []matchPair{{detection: 0, track: 1}, {detection: 2, track: 0}, {detection: 3, track: 1}}
	if diff := cmp.Diff(expected, matches, cmp.AllowUnexported(matchPair{})); diff != "" {
		t.Errorf("matches mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []int{1}, unmatched)
}

func TestGreedyMatchingNoTracks(t *testing.T) {
	matches, unmatched := performGreedyMatching([][]float64{{}, {}}, allValid(2), nil, 0.3)
	assert.Empty(t, matches)
	assert.Equal(t, []int{0, 1}, unmatched)
}

func TestGreedyMatchingSkipsInvalid(t *testing.T) {
	iouMatrix := [][]float64{
		{0.0, 0.0},
		{0.9, 0.1},
		{0.0, 0.0},
	}
	// zero threshold accepts zero IoU for valid detections only
	matches, unmatched := performGreedyMatching(iouMatrix, []bool{false, true, true}, allValid(2), 0)
	assert.Equal(t, []matchPair{{detection: 1, track: 0}, {detection: 2, track: 0}}, matches)
	assert.Equal(t, []int{0}, unmatched)

	// invalid track never wins argmax
	matches, unmatched = performGreedyMatching([][]float64{{0.0, 0.5}}, allValid(1), []bool{false, true}, 0)
	assert.Equal(t, []matchPair{{detection: 0, track: 1}}, matches)
	assert.Empty(t, unmatched)

	matches, unmatched = performGreedyMatching([][]float64{{0.0, 0.0}}, allValid(1), []bool{false, false}, 0)
	assert.Empty(t, matches)
	assert.Equal(t, []int{0}, unmatched)
}

func TestHungarianMatchingSkipsInvalid(t *testing.T) {
	iouMatrix := [][]float64{
		{0.0, 0.0},
		{0.0, 0.8},
	}
	matches, unmatched := performHungarianMatching(iouMatrix, []bool{false, true}, allValid(2), 0)
	assert.Equal(t, []matchPair{{detection: 1, track: 1}}, matches)
	assert.Equal(t, []int{0}, unmatched)

	matches, unmatched = performHungarianMatching([][]float64{{0.0}}, allValid(1), []bool{false}, 0)
	assert.Empty(t, matches)
	assert.Equal(t, []int{0}, unmatched)
}

func TestHungarianMatchingOneToOne(t *testing.T) {
	iouMatrix := [][]float64{
		{0.1, 0.8, 0.2},
		{0.2, 0.9, 0.0},
	}
	matches, unmatched := performHungarianMatching(iouMatrix, allValid(2), allValid(3), 0.3)
	// only one detection may take track 1; the other one has nothing above threshold
	assert.Equal(t, []matchPair{{detection: 1, track: 1}}, matches)
	assert.Equal(t, []int{0}, unmatched)
}

func TestHungarianMatchingMoreTracks(t *testing.T) {
	iouMatrix := [][]float64{
		{0.0, 0.0, 0.7},
	}
	matches, unmatched := performHungarianMatching(iouMatrix, allValid(1), allValid(3), 0.3)
	assert.Equal(t, []matchPair{{detection: 0, track: 2}}, matches)
	assert.Empty(t, unmatched)
}

func TestHungarianMatchingEmpty(t *testing.T) {
	matches, unmatched := performHungarianMatching(nil, nil, allValid(3), 0.3)
	assert.Empty(t, matches)
	assert.Empty(t, unmatched)

	matches, unmatched = performHungarianMatching([][]float64{{}}, allValid(1), nil, 0.3)
	assert.Empty(t, matches)
	assert.Equal(t, []int{0}, unmatched)
}

func TestMatchingAlgorithmString(t *testing.T) {
	assert.Equal(t, "greedy", MatchingAlgorithmGreedy.String())
	assert.Equal(t, "hungarian", MatchingAlgorithmHungarian.String())
	assert.Equal(t, "MatchingAlgorithm(9)", MatchingAlgorithm(9).String())
}
