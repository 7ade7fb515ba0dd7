package trend

import (
	"math"

	"github.com/whisperengine-ai/whisperengine-v2-sub009/internal/domain"
)

const (
	intensityConfidenceWeight = 0.6
	intensityEmojiStep        = 0.12
	intensityEmojiCap         = 0.24
	intensityExclaimStep      = 0.05
	intensityExclaimCap       = 0.15
	intensityCapsBonus        = 0.08
	intensityAmplifierBonus   = 0.08
)

// EstimateIntensity derives a bounded scalar intensity from the classifier's
// confidence plus emoji and punctuation evidence.
func EstimateIntensity(classifierConfidence float64, sig domain.RawSignals) float64 {
	intensity := intensityConfidenceWeight * clamp01(classifierConfidence)

	emotive := 0
	for cat, n := range sig.EmojiCategories {
		if cat == "positive" || cat == "gratitude" {
			continue
		}
		emotive += n
	}
	intensity += math.Min(intensityEmojiStep*float64(emotive), intensityEmojiCap)

	exclaims := sig.Punctuation["exclamations"]
	intensity += math.Min(intensityExclaimStep*float64(exclaims), intensityExclaimCap)

	if sig.Punctuation["caps_words"] > 0 {
		intensity += intensityCapsBonus
	}
	if len(sig.Amplifiers) > 0 {
		intensity += intensityAmplifierBonus
	}
	return clamp01(intensity)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
