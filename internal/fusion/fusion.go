package fusion

import (
	"log/slog"
	"math"

	"github.com/whisperengine-ai/whisperengine-v2-sub009/internal/domain"
)

const (
	DefaultKeywordWeight  = 0.3
	DefaultSemanticWeight = 0.4
	DefaultContextWeight  = 0.3

	// Above this top-label confidence the classifier distribution is trusted
	// verbatim instead of being diluted by averaging.
	DefaultConfidenceThreshold = 0.6

	recentEmotionPrior = 0.1
)

// Weights are the per-source fusion weights. They are expected to sum to
// ~1.0; a mismatch is logged once and preserved as configured.
type Weights struct {
	Keyword  float64
	Semantic float64
	Context  float64
}

func DefaultWeights() Weights {
	return Weights{
		Keyword:  DefaultKeywordWeight,
		Semantic: DefaultSemanticWeight,
		Context:  DefaultContextWeight,
	}
}

// Evidence is the set of optional sources fed into one fusion pass. A nil or
// empty source is simply absent, never an error.
type Evidence struct {
	Classifier     []domain.ClassifierScore
	Polarity       *domain.Polarity
	Keywords       domain.ScoreMap
	RecentEmotions []string
	HasAngerCue    bool
}

type Engine struct {
	weights   Weights
	threshold float64
	logger    *slog.Logger
}

func NewEngine(weights Weights, confidenceThreshold float64, logger *slog.Logger) *Engine {
	if weights.Keyword <= 0 && weights.Semantic <= 0 && weights.Context <= 0 {
		weights = DefaultWeights()
	}
	if confidenceThreshold <= 0 || confidenceThreshold > 1 {
		confidenceThreshold = DefaultConfidenceThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	if sum := weights.Keyword + weights.Semantic + weights.Context; math.Abs(sum-1.0) > 0.01 {
		// Preserved as configured; deliberate de-weighting is allowed.
		logger.Warn("fusion weights do not sum to 1.0", "sum", sum,
			"keyword", weights.Keyword, "semantic", weights.Semantic, "context", weights.Context)
	}
	return &Engine{weights: weights, threshold: confidenceThreshold, logger: logger}
}

func (e *Engine) ConfidenceThreshold() float64 {
	return e.threshold
}

// Fuse combines the present evidence sources into one normalized score map.
// With at least one non-empty source the returned map sums to 1.0; with none
// it is the fallback {neutral: 1}.
func (e *Engine) Fuse(ev Evidence) domain.ScoreMap {
	if top, ok := topClassifierScore(ev.Classifier); ok && top >= e.threshold {
		return normalize(classifierMap(ev.Classifier))
	}

	combined := domain.ScoreMap{}
	for label, score := range classifierMap(ev.Classifier) {
		combined[label] += score * e.weights.Semantic
	}
	for label, score := range ev.Keywords {
		if score > 0 {
			combined[label] += score * e.weights.Keyword
		}
	}
	for label, score := range e.contextMap(ev) {
		combined[label] += score * e.weights.Context
	}

	return normalize(combined)
}

// contextMap projects polarity onto label space. Positive polarity maps to
// joy; negative polarity is disambiguated between anger and sadness by
// literal anger-token presence in the text. Recent emotion labels contribute
// a mild prior.
func (e *Engine) contextMap(ev Evidence) domain.ScoreMap {
	out := domain.ScoreMap{}
	if p := ev.Polarity; p != nil {
		if p.Positive > 0 {
			out[domain.EmotionJoy] += p.Positive
		}
		if p.Negative > 0 {
			if ev.HasAngerCue {
				out[domain.EmotionAnger] += p.Negative
			} else {
				out[domain.EmotionSadness] += p.Negative
			}
		}
		if p.Neutral > 0 {
			out[domain.EmotionNeutral] += p.Neutral * 0.5
		}
	}
	for _, label := range ev.RecentEmotions {
		if label == "" {
			continue
		}
		out[label] += recentEmotionPrior
	}
	return out
}

func classifierMap(scores []domain.ClassifierScore) domain.ScoreMap {
	out := domain.ScoreMap{}
	for _, s := range scores {
		if s.Label == "" || s.Score <= 0 {
			continue
		}
		out[s.Label] += s.Score
	}
	return out
}

func topClassifierScore(scores []domain.ClassifierScore) (float64, bool) {
	top := 0.0
	found := false
	for _, s := range scores {
		if s.Label == "" {
			continue
		}
		found = true
		if s.Score > top {
			top = s.Score
		}
	}
	return top, found
}

func normalize(m domain.ScoreMap) domain.ScoreMap {
	total := 0.0
	for _, v := range m {
		if v > 0 {
			total += v
		}
	}
	if total <= 1e-12 {
		return domain.ScoreMap{domain.EmotionNeutral: 1.0}
	}
	out := make(domain.ScoreMap, len(m))
	for k, v := range m {
		if v > 0 {
			out[k] = v / total
		}
	}
	return out
}
