package signal

import (
	"math"
	"sort"

	"github.com/whisperengine-ai/whisperengine-v2-sub009/internal/domain"
)

// Per-emotion keyword lexicon. Matching is token-exact, so "sad" does not
// fire inside "saddle".
var emotionKeywords = map[string][]string{
	domain.EmotionJoy: {
		"happy", "glad", "great", "wonderful", "awesome", "amazing", "love",
		"adore", "joy", "delighted", "fantastic", "excited", "yay", "thrilled",
		"grateful", "thankful", "thanks", "thank",
	},
	domain.EmotionSadness: {
		"sad", "unhappy", "depressed", "miserable", "lonely", "crying", "cry",
		"hurt", "heartbroken", "down", "hopeless", "grief", "miss", "lost",
		"disappointed", "empty",
	},
	domain.EmotionAnger: {
		"angry", "mad", "furious", "hate", "annoyed", "irritated", "pissed",
		"rage", "outraged", "frustrated", "unfair", "livid",
	},
	domain.EmotionFear: {
		"afraid", "scared", "terrified", "worried", "anxious", "nervous",
		"panic", "frightened", "dread", "overwhelmed", "stressed",
	},
	domain.EmotionSurprise: {
		"surprised", "shocked", "unexpected", "wow", "unbelievable", "sudden",
		"astonished", "whoa",
	},
	domain.EmotionDisgust: {
		"disgusting", "gross", "nasty", "revolting", "sick", "awful", "vile",
		"repulsive",
	},
}

const (
	keywordBaseScore      = 0.4
	keywordStepScore      = 0.2
	amplifierStep         = 0.25
	amplifierMaxBoost     = 1.5
	negatorDampingFactor  = 0.4
	maxKeywordScorePerTag = 1.0
)

// ScoreKeywords scores each base emotion from lexicon matches in the text,
// amplified by amplifier tokens and damped by negators. It returns the score
// map alongside the matched indicator words in deterministic order. An empty
// map means no keyword evidence.
func ScoreKeywords(text string, sig domain.RawSignals) (domain.ScoreMap, []string) {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return domain.ScoreMap{}, nil
	}
	present := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		present[tok] = struct{}{}
	}

	boost := 1.0 + amplifierStep*math.Min(float64(len(sig.Amplifiers)), 2)
	if boost > amplifierMaxBoost {
		boost = amplifierMaxBoost
	}
	damp := 1.0
	if len(sig.Negators) > 0 {
		damp = negatorDampingFactor
	}

	scores := domain.ScoreMap{}
	var indicators []string
	for _, emo := range domain.BaseEmotions {
		hits := 0
		for _, kw := range emotionKeywords[emo] {
			if _, ok := present[kw]; ok {
				hits++
				indicators = append(indicators, kw)
			}
		}
		if hits == 0 {
			continue
		}
		score := (keywordBaseScore + keywordStepScore*float64(hits-1)) * boost * damp
		scores[emo] = math.Min(score, maxKeywordScorePerTag)
	}
	sort.Strings(indicators)
	return scores, indicators
}
