package synthesis

import (
	"math"
	"sort"
	"strings"

	"github.com/whisperengine-ai/whisperengine-v2-sub009/internal/domain"
)

const (
	primaryMatchWeight   = 0.6
	secondaryMatchWeight = 0.2
	patternHitWeight     = 0.2
	patternHitCap        = 0.4
	emojiOverlapWeight   = 0.1
	emojiOverlapCap      = 0.2

	// A synthesized label must not be less trustworthy than keeping the base
	// label; it is only adopted above this fraction of the base confidence.
	baseConfidenceGuard = 0.8

	mixedCandidateThreshold = 0.2
	maxSecondaryEmotions    = 3

	// A secondary base below this fused score is noise, not a match.
	secondaryMatchFloor = 0.1
)

// Outcome is the synthesizer's verdict: the final primary label (base or
// extended), its confidence, and up to three secondary emotions that never
// include the primary.
type Outcome struct {
	Primary     string
	Confidence  float64
	Secondaries []string
	RuleApplied string
}

type Synthesizer struct {
	rules []Rule
}

func NewSynthesizer(rules []Rule) *Synthesizer {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Synthesizer{rules: rules}
}

// Synthesize evaluates every rule against the decided base label, the fused
// score map, and the raw text signals. The highest-scoring rule replaces the
// base label only when it clears both its activation threshold and the
// base-confidence guard; otherwise the base label is kept.
func (s *Synthesizer) Synthesize(basePrimary string, baseConfidence float64, fused domain.ScoreMap, text string, sig domain.RawSignals) Outcome {
	lowered := strings.ToLower(text)

	bestIdx := -1
	bestConf := 0.0
	for i, rule := range s.rules {
		conf := s.ruleConfidence(rule, basePrimary, baseConfidence, fused, lowered, sig)
		if conf > bestConf {
			bestConf = conf
			bestIdx = i
		}
	}

	if bestIdx >= 0 {
		rule := s.rules[bestIdx]
		threshold := rule.ActivationThreshold
		if threshold <= 0 {
			threshold = defaultActivationThreshold
		}
		if bestConf > threshold && bestConf > baseConfidenceGuard*baseConfidence {
			secondaries := s.buildSecondaries(rule.Target, basePrimary, fused)
			return Outcome{
				Primary:     rule.Target,
				Confidence:  math.Min(bestConf, 1.0),
				Secondaries: secondaries,
				RuleApplied: rule.Target,
			}
		}
	}

	return Outcome{
		Primary:     basePrimary,
		Confidence:  baseConfidence,
		Secondaries: s.buildSecondaries(basePrimary, "", fused),
	}
}

// ruleConfidence is the mean of the non-zero contributions plus the rule's
// boost, capped at 1.0.
func (s *Synthesizer) ruleConfidence(rule Rule, basePrimary string, baseConfidence float64, fused domain.ScoreMap, lowered string, sig domain.RawSignals) float64 {
	var contributions []float64
	distinctive := false

	for _, base := range rule.PrimaryBases {
		if base == basePrimary {
			contributions = append(contributions, primaryMatchWeight*baseConfidence)
			break
		}
	}

	for _, base := range rule.SecondaryBases {
		if score := fused[base]; score >= secondaryMatchFloor {
			contributions = append(contributions, secondaryMatchWeight*score)
			distinctive = true
		}
	}

	hits := 0
	for _, pattern := range rule.TextPatterns {
		if pattern != "" && strings.Contains(lowered, pattern) {
			hits++
		}
	}
	if hits > 0 {
		contributions = append(contributions, math.Min(patternHitWeight*float64(hits), patternHitCap))
		distinctive = true
	}

	overlap := 0
	for _, cat := range rule.EmojiCategories {
		if sig.EmojiCategories[cat] > 0 {
			overlap++
		}
	}
	if overlap > 0 {
		contributions = append(contributions, math.Min(emojiOverlapWeight*float64(overlap), emojiOverlapCap))
		distinctive = true
	}

	// A bare base-label match carries no evidence that the extended label
	// fits better than the base label itself.
	if len(contributions) == 0 || !distinctive {
		return 0
	}
	sum := 0.0
	for _, c := range contributions {
		sum += c
	}
	if sum > 1.0 {
		sum = 1.0
	}
	conf := sum/float64(len(contributions)) + rule.ConfidenceBoost
	return math.Min(conf, 1.0)
}

// buildSecondaries lists up to three secondary emotions, most confident
// first. When a rule was adopted the demoted base label leads the list; the
// remainder are mixed base candidates above the minor threshold. The primary
// is never included.
func (s *Synthesizer) buildSecondaries(primary, demotedBase string, fused domain.ScoreMap) []string {
	var out []string
	seen := map[string]struct{}{primary: {}}
	if demotedBase != "" && demotedBase != primary {
		out = append(out, demotedBase)
		seen[demotedBase] = struct{}{}
	}

	type candidate struct {
		label string
		score float64
	}
	var candidates []candidate
	for label, score := range fused {
		if _, ok := seen[label]; ok {
			continue
		}
		if score >= mixedCandidateThreshold {
			candidates = append(candidates, candidate{label: label, score: score})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].label < candidates[j].label
	})
	for _, c := range candidates {
		if len(out) >= maxSecondaryEmotions {
			break
		}
		out = append(out, c.label)
	}
	if len(out) > maxSecondaryEmotions {
		out = out[:maxSecondaryEmotions]
	}
	return out
}
