package trend

import (
	"math"

	"github.com/whisperengine-ai/whisperengine-v2-sub009/internal/domain"
)

const (
	trajectoryMinPoints  = 3
	stableMeanDelta      = 0.1
	stableDeltaVariance  = 0.05
	directionalMeanDelta = 0.1
	oscillationVariance  = 0.1
)

// ClassifyTrajectory labels the directional pattern of a short ordered
// intensity window. Pure function; fewer than three points cannot be
// classified and yield insufficient_data.
func ClassifyTrajectory(history []float64) string {
	if len(history) < trajectoryMinPoints {
		return domain.PatternInsufficientData
	}

	deltas := make([]float64, 0, len(history)-1)
	for i := 1; i < len(history); i++ {
		deltas = append(deltas, history[i]-history[i-1])
	}
	mean := meanOf(deltas)
	variance := varianceOf(deltas, mean)

	switch {
	case math.Abs(mean) < stableMeanDelta && variance < stableDeltaVariance:
		return domain.PatternStable
	// A noisy window is not a direction; oscillation wins over a drifting
	// mean produced by large alternating swings.
	case mean > directionalMeanDelta && variance <= oscillationVariance:
		return domain.PatternEscalating
	case mean < -directionalMeanDelta && variance <= oscillationVariance:
		return domain.PatternDeclining
	case variance > oscillationVariance:
		return domain.PatternOscillating
	default:
		return domain.PatternVariable
	}
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func varianceOf(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values))
}
