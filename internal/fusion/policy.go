package fusion

import (
	"math"
	"sort"

	"github.com/whisperengine-ai/whisperengine-v2-sub009/internal/domain"
)

// Decision policy thresholds. The asymmetry is deliberate: ignoring real
// distress because neutral narrowly won is a worse failure mode than
// occasionally over-labeling mild text.
const (
	neutralHighConfidence = 0.70
	neutralLargeMargin    = 0.30
	minAlternativeScore   = 0.30

	confidenceFloorWinner   = 0.25
	confidenceFloorOverride = 0.30
	confidenceFloorWeak     = 0.20
	confidenceFloorNeutral  = 0.40
)

// Decide picks the primary label and its confidence from a fused score map.
// A neutral top label is only accepted when it is strongly confident or wins
// by a large margin; otherwise a viable runner-up is promoted. Non-neutral
// winners are never suppressed. Ties break on canonical label order.
func Decide(scores domain.ScoreMap) (string, float64) {
	ranked := rank(scores)
	if len(ranked) == 0 {
		return domain.EmotionNeutral, confidenceFloorWeak
	}

	top := ranked[0]
	margin := top.score
	if len(ranked) > 1 {
		margin = top.score - ranked[1].score
	}

	if top.label != domain.EmotionNeutral {
		conf := clamp(top.score+0.25*margin, confidenceFloorWinner, 1.0)
		return top.label, conf
	}

	if top.score >= neutralHighConfidence {
		return top.label, clamp(top.score, confidenceFloorWeak, 1.0)
	}
	if margin >= neutralLargeMargin {
		return top.label, clamp(top.score, confidenceFloorNeutral, 1.0)
	}
	if len(ranked) > 1 && ranked[1].score >= minAlternativeScore {
		// False-neutral suppression: promote the viable alternative.
		second := ranked[1]
		conf := clamp(second.score+0.1, confidenceFloorOverride, 0.9)
		return second.label, conf
	}
	return top.label, clamp(top.score, confidenceFloorWeak, 1.0)
}

type rankedScore struct {
	label string
	score float64
}

var canonicalIndex = buildCanonicalIndex()

func buildCanonicalIndex() map[string]int {
	idx := make(map[string]int, len(domain.BaseEmotions)+len(domain.ExtendedEmotions))
	order := 0
	for _, l := range domain.BaseEmotions {
		idx[l] = order
		order++
	}
	for _, l := range domain.ExtendedEmotions {
		idx[l] = order
		order++
	}
	return idx
}

func rank(scores domain.ScoreMap) []rankedScore {
	out := make([]rankedScore, 0, len(scores))
	for label, score := range scores {
		if label == "" || score <= 0 {
			continue
		}
		out = append(out, rankedScore{label: label, score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if math.Abs(out[i].score-out[j].score) > 1e-12 {
			return out[i].score > out[j].score
		}
		return labelOrder(out[i].label) < labelOrder(out[j].label)
	})
	return out
}

func labelOrder(label string) int {
	if idx, ok := canonicalIndex[label]; ok {
		return idx
	}
	return len(canonicalIndex)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
