package synthesis

import "github.com/whisperengine-ai/whisperengine-v2-sub009/internal/domain"

// Rule maps base-emotion evidence onto one extended-taxonomy label. Rules are
// loaded once at startup and immutable for the process lifetime. Declaration
// order is the tie-break order between equally confident rules.
type Rule struct {
	Target              string
	PrimaryBases        []string
	SecondaryBases      []string
	TextPatterns        []string
	EmojiCategories     []string
	ConfidenceBoost     float64
	ActivationThreshold float64
}

const defaultActivationThreshold = 0.3

// DefaultRules is the built-in extended-taxonomy rule set.
func DefaultRules() []Rule {
	return []Rule{
		{
			Target:          domain.EmotionLove,
			PrimaryBases:    []string{domain.EmotionJoy},
			TextPatterns:    []string{"love", "adore", "cherish", "beloved", "soulmate"},
			EmojiCategories: []string{"love"},
			ConfidenceBoost: 0.30,
		},
		{
			Target:          domain.EmotionGratitude,
			PrimaryBases:    []string{domain.EmotionJoy},
			TextPatterns:    []string{"thank", "grateful", "appreciate", "means a lot"},
			EmojiCategories: []string{"gratitude", "positive"},
			ConfidenceBoost: 0.20,
		},
		{
			Target:          domain.EmotionExcitement,
			PrimaryBases:    []string{domain.EmotionJoy, domain.EmotionSurprise},
			TextPatterns:    []string{"excited", "thrilled", "can't wait", "cant wait", "pumped"},
			EmojiCategories: []string{"intense", "positive"},
			ConfidenceBoost: 0.15,
		},
		{
			Target:          domain.EmotionAnxiety,
			PrimaryBases:    []string{domain.EmotionFear},
			SecondaryBases:  []string{domain.EmotionSadness},
			TextPatterns:    []string{"worried", "anxious", "nervous", "what if", "stressed"},
			EmojiCategories: []string{"fear"},
			ConfidenceBoost: 0.20,
		},
		{
			Target:          domain.EmotionFrustration,
			PrimaryBases:    []string{domain.EmotionAnger},
			SecondaryBases:  []string{domain.EmotionSadness, domain.EmotionDisgust},
			TextPatterns:    []string{"frustrated", "fed up", "sick of", "tired of"},
			EmojiCategories: []string{"anger"},
			ConfidenceBoost: 0.15,
		},
		{
			Target:          domain.EmotionDisappointment,
			PrimaryBases:    []string{domain.EmotionSadness},
			SecondaryBases:  []string{domain.EmotionAnger},
			TextPatterns:    []string{"disappointed", "let down", "expected better", "hoped for"},
			EmojiCategories: []string{"sad"},
			ConfidenceBoost: 0.15,
		},
		{
			Target:          domain.EmotionHope,
			PrimaryBases:    []string{domain.EmotionJoy},
			SecondaryBases:  []string{domain.EmotionFear, domain.EmotionSadness},
			TextPatterns:    []string{"hope", "hopefully", "fingers crossed", "looking forward"},
			ConfidenceBoost: 0.10,
		},
		{
			Target:          domain.EmotionRelief,
			PrimaryBases:    []string{domain.EmotionJoy},
			SecondaryBases:  []string{domain.EmotionFear},
			TextPatterns:    []string{"relieved", "relief", "finally", "phew", "glad that's over"},
			ConfidenceBoost: 0.10,
		},
		{
			Target:          domain.EmotionContentment,
			PrimaryBases:    []string{domain.EmotionJoy, domain.EmotionNeutral},
			TextPatterns:    []string{"content", "peaceful", "at ease", "serene"},
			ConfidenceBoost: 0.05,
		},
	}
}
