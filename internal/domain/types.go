package domain

// Base emotion labels produced by the upstream transformer classifier.
// BaseEmotions order is the canonical tie-break order for score maps.
const (
	EmotionJoy      = "joy"
	EmotionSadness  = "sadness"
	EmotionAnger    = "anger"
	EmotionFear     = "fear"
	EmotionSurprise = "surprise"
	EmotionDisgust  = "disgust"
	EmotionNeutral  = "neutral"
)

// Extended labels reachable only through rule-based synthesis.
const (
	EmotionLove           = "love"
	EmotionGratitude      = "gratitude"
	EmotionExcitement     = "excitement"
	EmotionAnxiety        = "anxiety"
	EmotionFrustration    = "frustration"
	EmotionDisappointment = "disappointment"
	EmotionHope           = "hope"
	EmotionRelief         = "relief"
	EmotionContentment    = "contentment"
)

var BaseEmotions = []string{
	EmotionJoy,
	EmotionSadness,
	EmotionAnger,
	EmotionFear,
	EmotionSurprise,
	EmotionDisgust,
	EmotionNeutral,
}

var ExtendedEmotions = []string{
	EmotionLove,
	EmotionGratitude,
	EmotionExcitement,
	EmotionAnxiety,
	EmotionFrustration,
	EmotionDisappointment,
	EmotionHope,
	EmotionRelief,
	EmotionContentment,
}

// ScoreMap maps an emotion label to a non-negative score. A fused map sums
// to ~1.0 except for the empty-evidence fallback {neutral: 1}.
type ScoreMap map[string]float64

func (m ScoreMap) Clone() ScoreMap {
	out := make(ScoreMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ClassifierScore is one entry of the upstream classifier's distribution.
type ClassifierScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Polarity is the lexical polarity analyzer's output.
type Polarity struct {
	Positive float64 `json:"pos"`
	Negative float64 `json:"neg"`
	Neutral  float64 `json:"neutral"`
	Compound float64 `json:"compound"`
}

// RawSignals carries the surface-level evidence extracted from message text:
// emoji, punctuation shape, and amplifier/negator tokens.
type RawSignals struct {
	Emojis          []string       `json:"emojis,omitempty"`
	EmojiCategories map[string]int `json:"emoji_categories,omitempty"`
	Punctuation     map[string]int `json:"punctuation,omitempty"`
	Amplifiers      []string       `json:"amplifiers,omitempty"`
	Negators        []string       `json:"negators,omitempty"`
	HasAngerCue     bool           `json:"has_anger_cue,omitempty"`
}

// AnalysisResult is the immutable per-message outcome of the fusion pipeline.
// Intensity is the raw (unsmoothed) estimate; crisis-level consumers must use
// it directly, never the smoothed trend value.
type AnalysisResult struct {
	PrimaryEmotion string   `json:"primary_emotion"`
	Confidence     float64  `json:"confidence"`
	Intensity      float64  `json:"intensity"`
	AllEmotions    ScoreMap `json:"all_emotions"`
	AnalysisTimeMS float64  `json:"analysis_time_ms"`

	// Provenance: how strongly each evidence source was present, in [0,1].
	KeywordSignal  float64 `json:"keyword_signal"`
	SemanticSignal float64 `json:"semantic_signal"`
	ContextSignal  float64 `json:"context_signal"`
}

// Trajectory pattern labels. PatternNone is the distinct sentinel used when
// fewer than two observations exist for a user.
const (
	PatternStable           = "stable"
	PatternEscalating       = "escalating"
	PatternDeclining        = "declining"
	PatternOscillating      = "oscillating"
	PatternVariable         = "variable"
	PatternInsufficientData = "insufficient_data"
	PatternNone             = ""
)

// AdvancedEmotionalState is the synthesized per-message view combining the
// final label, secondary emotions, surface signals, and the short-term
// intensity trajectory. Persistence is the caller's responsibility.
type AdvancedEmotionalState struct {
	PrimaryEmotion      string         `json:"primary_emotion"`
	SecondaryEmotions   []string       `json:"secondary_emotions,omitempty"`
	EmotionalIntensity  float64        `json:"emotional_intensity"`
	TextIndicators      []string       `json:"text_indicators,omitempty"`
	EmojiAnalysis       map[string]int `json:"emoji_analysis,omitempty"`
	PunctuationPatterns map[string]int `json:"punctuation_patterns,omitempty"`
	EmotionalTrajectory []float64      `json:"emotional_trajectory,omitempty"`
	PatternType         string         `json:"pattern_type,omitempty"`
	Timestamp           string         `json:"timestamp"`
}

// SmoothedIntensity pairs the raw and EMA-smoothed intensity for one message.
// Both values are always returned together: raw feeds safety escalation and
// must not be damped, ema feeds trend analysis. PreviousEMA is nil on cold
// start.
type SmoothedIntensity struct {
	Raw         float64  `json:"raw"`
	EMA         float64  `json:"ema"`
	Alpha       float64  `json:"alpha"`
	PreviousEMA *float64 `json:"previous_ema,omitempty"`
}

// IntensityObservation is the most recent persisted intensity for a user.
// EMAIntensity is nil for records written before smoothing existed; consumers
// fall back to RawIntensity.
type IntensityObservation struct {
	RawIntensity float64
	EMAIntensity *float64
}

// IntensityRecord is one row of the append-only per-user intensity log.
type IntensityRecord struct {
	UserID       string  `json:"user_id"`
	MessageID    string  `json:"message_id"`
	Emotion      string  `json:"emotion"`
	RawIntensity float64 `json:"raw_intensity"`
	EMAIntensity float64 `json:"ema_intensity"`
	Alpha        float64 `json:"alpha"`
}

// MQTT payloads

// EmotionUpdatePayload is published after each completed analysis so that
// chat-platform consumers can react without polling.
type EmotionUpdatePayload struct {
	MessageID string                  `json:"message_id"`
	UserID    string                  `json:"user_id"`
	Result    AnalysisResult          `json:"result"`
	State     *AdvancedEmotionalState `json:"state,omitempty"`
	Smoothed  *SmoothedIntensity      `json:"smoothed,omitempty"`
	TS        string                  `json:"ts"`
}
