package trend

import (
	"testing"

	"github.com/whisperengine-ai/whisperengine-v2-sub009/internal/domain"
)

func TestEstimateIntensityConfidenceOnly(t *testing.T) {
	got := EstimateIntensity(0.5, domain.RawSignals{})
	assertNear(t, got, 0.3, 1e-12)
}

func TestEstimateIntensitySignalBonuses(t *testing.T) {
	sig := domain.RawSignals{
		EmojiCategories: map[string]int{"anger": 1},
		Punctuation:     map[string]int{"exclamations": 2, "caps_words": 1},
		Amplifiers:      []string{"so"},
	}
	got := EstimateIntensity(0.5, sig)
	// 0.3 base + 0.12 emoji + 0.10 exclaims + 0.08 caps + 0.08 amplifier.
	assertNear(t, got, 0.68, 1e-12)
}

func TestEstimateIntensityPositiveEmojiExcluded(t *testing.T) {
	sig := domain.RawSignals{
		EmojiCategories: map[string]int{"positive": 3, "gratitude": 2},
	}
	got := EstimateIntensity(0.5, sig)
	assertNear(t, got, 0.3, 1e-12)
}

func TestEstimateIntensityBounded(t *testing.T) {
	sig := domain.RawSignals{
		EmojiCategories: map[string]int{"anger": 10, "intense": 10},
		Punctuation:     map[string]int{"exclamations": 20, "caps_words": 5},
		Amplifiers:      []string{"so", "very", "really"},
	}
	got := EstimateIntensity(1.2, sig)
	if got < 0 || got > 1 {
		t.Fatalf("intensity out of range: %v", got)
	}
	// 0.6 + 0.24 + 0.15 + 0.08 + 0.08 clamps at 1.0.
	assertNear(t, got, 1.0, 1e-12)
}

func TestEstimateIntensityNegativeConfidenceClamped(t *testing.T) {
	if got := EstimateIntensity(-0.4, domain.RawSignals{}); got != 0 {
		t.Fatalf("got %v, want 0", got)
	}
}
