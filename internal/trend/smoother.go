package trend

import "github.com/whisperengine-ai/whisperengine-v2-sub009/internal/domain"

// EMA alpha bounds. Values outside the range are pulled back in rather than
// rejected so a bad config degrades smoothing instead of breaking it.
const (
	DefaultAlpha = 0.3
	MinAlpha     = 0.15
	MaxAlpha     = 0.45
)

// NormalizeAlpha maps any requested alpha into the supported range; zero or
// negative means "use the default".
func NormalizeAlpha(alpha float64) float64 {
	if alpha <= 0 {
		return DefaultAlpha
	}
	if alpha < MinAlpha {
		return MinAlpha
	}
	if alpha > MaxAlpha {
		return MaxAlpha
	}
	return alpha
}

// Smooth applies one EMA step: ema = alpha*raw + (1-alpha)*previous. A nil
// previous is a cold start and returns raw unchanged (after clamping).
// Callers receive both values: raw for immediate safety escalation, ema for
// trend analysis. The two must not be conflated.
func Smooth(raw float64, previous *float64, alpha float64) domain.SmoothedIntensity {
	alpha = NormalizeAlpha(alpha)
	raw = clamp01(raw)

	if previous == nil {
		return domain.SmoothedIntensity{Raw: raw, EMA: raw, Alpha: alpha}
	}

	prev := clamp01(*previous)
	ema := clamp01(alpha*raw + (1-alpha)*prev)
	return domain.SmoothedIntensity{Raw: raw, EMA: ema, Alpha: alpha, PreviousEMA: &prev}
}
