package engine

import "math"

// CalculatePoints computes the points earned for one attempt at a prompt.
// attemptNumber is 1-based and counts all attempts so far including this one.
//
// Rules:
//   - first correct attempt earns the full point value
//   - incorrect attempts earn nothing, ever
//   - prompts with two or fewer options earn nothing after the first try,
//     since retrying a binary choice is just elimination
//   - otherwise partial credit decays linearly with attempt number:
//     ceil(totalPoints * (totalOptions - attemptNumber) / (totalOptions - 1)),
//     reaching zero once attemptNumber >= totalOptions
func CalculatePoints(totalPoints, totalOptions, attemptNumber int, correct bool) int {
	if attemptNumber == 1 && correct {
		return totalPoints
	}

	if !correct {
		return 0
	}

	if totalOptions <= 2 {
		return 0
	}

	remaining := totalOptions - attemptNumber
	if remaining <= 0 {
		return 0
	}

	points := int(math.Ceil(float64(totalPoints*remaining) / float64(totalOptions-1)))
	if points < 0 {
		return 0
	}
	return points
}
