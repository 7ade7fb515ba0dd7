// Package engine wires the evidence extractors, fusion, decision policy,
// synthesis, and temporal smoothing into the per-message analysis pipeline.
// Every exported method recovers internally; callers never receive a panic
// or an error from an upstream source outage, only degraded confidence.
package engine

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/whisperengine-ai/whisperengine-v2-sub009/internal/domain"
	"github.com/whisperengine-ai/whisperengine-v2-sub009/internal/fusion"
	"github.com/whisperengine-ai/whisperengine-v2-sub009/internal/signal"
	"github.com/whisperengine-ai/whisperengine-v2-sub009/internal/synthesis"
	"github.com/whisperengine-ai/whisperengine-v2-sub009/internal/trend"
)

// Fallback returned when the pipeline fails unexpectedly.
const (
	fallbackConfidence = 0.3
	fallbackIntensity  = 0.5
)

const trajectoryWindow = 5

// Classifier is the opaque transformer emotion classifier. Errors are
// treated as absent evidence.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]domain.ClassifierScore, error)
}

// PolarityAnalyzer is the opaque lexical polarity analyzer.
type PolarityAnalyzer interface {
	Polarity(ctx context.Context, text string) (domain.Polarity, error)
}

// IntensityHistory reads the persisted per-user intensity log. The engine
// only reads; appending the new record is the caller's responsibility so the
// per-user chain stays append-only and insertion-ordered.
type IntensityHistory interface {
	MostRecent(ctx context.Context, userID string) (domain.IntensityObservation, bool, error)
	Recent(ctx context.Context, userID string, limit int) ([]float64, error)
}

type Config struct {
	Weights             fusion.Weights
	ConfidenceThreshold float64
	EMAAlpha            float64
}

// AnalyzeOptions carries the optional per-call context.
type AnalyzeOptions struct {
	Context        string
	RecentEmotions []string
}

type Service struct {
	alpha       float64
	classifier  Classifier
	polarity    PolarityAnalyzer
	history     IntensityHistory
	fuser       *fusion.Engine
	synthesizer *synthesis.Synthesizer
	logger      *slog.Logger
}

// New builds the engine with constructor-injected collaborators. Any of
// classifier, polarity, or history may be nil; the pipeline degrades to the
// remaining evidence.
func New(cfg Config, classifier Classifier, polarity PolarityAnalyzer, history IntensityHistory, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		alpha:       trend.NormalizeAlpha(cfg.EMAAlpha),
		classifier:  classifier,
		polarity:    polarity,
		history:     history,
		fuser:       fusion.NewEngine(cfg.Weights, cfg.ConfidenceThreshold, logger),
		synthesizer: synthesis.NewSynthesizer(nil),
		logger:      logger,
	}
}

// Analyze runs the full fusion pipeline for one message and returns the
// immutable per-message result. Intensity is the raw estimate; smoothing is
// a separate step (SmoothIntensity) so safety consumers are never damped.
func (s *Service) Analyze(ctx context.Context, text, userID string, opts AnalyzeOptions) (result domain.AnalysisResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("analysis pipeline panic, returning fallback", "user_id", userID, "panic", r)
			result = fallbackResult()
		}
		result.AnalysisTimeMS = roundMillis(time.Since(start))
	}()

	sig := signal.Extract(text)
	keywordScores, _ := signal.ScoreKeywords(text, sig)
	if opts.Context != "" {
		// Conversation context is weaker evidence than the message itself.
		ctxSig := signal.Extract(opts.Context)
		ctxScores, _ := signal.ScoreKeywords(opts.Context, ctxSig)
		for label, score := range ctxScores {
			keywordScores[label] += 0.5 * score
		}
	}

	var classifierScores []domain.ClassifierScore
	if s.classifier != nil {
		scores, err := s.classifier.Classify(ctx, text)
		if err != nil {
			s.logger.Warn("emotion classifier unavailable", "user_id", userID, "error", err)
		} else {
			classifierScores = scores
		}
	}

	var polarity *domain.Polarity
	if s.polarity != nil {
		p, err := s.polarity.Polarity(ctx, text)
		if err != nil {
			s.logger.Warn("polarity analyzer unavailable", "user_id", userID, "error", err)
		} else {
			polarity = &p
		}
	}

	fused := s.fuser.Fuse(fusion.Evidence{
		Classifier:     classifierScores,
		Polarity:       polarity,
		Keywords:       keywordScores,
		RecentEmotions: opts.RecentEmotions,
		HasAngerCue:    sig.HasAngerCue,
	})

	basePrimary, baseConfidence := fusion.Decide(fused)
	outcome := s.synthesizer.Synthesize(basePrimary, baseConfidence, fused, text, sig)

	classifierConfidence := baseConfidence
	if top, ok := topScore(classifierScores); ok {
		classifierConfidence = top
	}
	intensity := trend.EstimateIntensity(classifierConfidence, sig)

	return domain.AnalysisResult{
		PrimaryEmotion: outcome.Primary,
		Confidence:     clamp01(outcome.Confidence),
		Intensity:      intensity,
		AllEmotions:    fused,
		KeywordSignal:  provenance(keywordScores),
		SemanticSignal: classifierProvenance(classifierScores),
		ContextSignal:  polarityProvenance(polarity),
	}
}

// DetectAdvanced builds the full per-message emotional state. A base result
// from a prior Analyze call may be passed in to avoid a duplicate classifier
// round-trip; nil triggers a fresh analysis.
func (s *Service) DetectAdvanced(ctx context.Context, text, userID string, base *domain.AnalysisResult) domain.AdvancedEmotionalState {
	if base == nil {
		r := s.Analyze(ctx, text, userID, AnalyzeOptions{})
		base = &r
	}

	sig := signal.Extract(text)
	_, indicators := signal.ScoreKeywords(text, sig)

	// The decision policy is deterministic over the fused map, so the base
	// label can be re-derived without another classifier call.
	basePrimary, baseConfidence := fusion.Decide(base.AllEmotions)
	outcome := s.synthesizer.Synthesize(basePrimary, baseConfidence, base.AllEmotions, text, sig)

	trajectory := s.trajectoryWindow(ctx, userID, base.Intensity)
	pattern := domain.PatternNone
	if len(trajectory) >= 2 {
		pattern = trend.ClassifyTrajectory(trajectory)
	}

	return domain.AdvancedEmotionalState{
		PrimaryEmotion:      outcome.Primary,
		SecondaryEmotions:   outcome.Secondaries,
		EmotionalIntensity:  base.Intensity,
		TextIndicators:      indicators,
		EmojiAnalysis:       sig.EmojiCategories,
		PunctuationPatterns: sig.Punctuation,
		EmotionalTrajectory: trajectory,
		PatternType:         pattern,
		Timestamp:           time.Now().UTC().Format(time.RFC3339Nano),
	}
}

// SmoothIntensity applies one EMA step against the user's most recent
// persisted record. Retrieval failures and missing history are both treated
// as cold start; pre-smoothing records fall back to their raw intensity.
func (s *Service) SmoothIntensity(ctx context.Context, raw float64, userID string, alpha float64) domain.SmoothedIntensity {
	if alpha <= 0 {
		alpha = s.alpha
	}

	var previous *float64
	if s.history != nil {
		obs, ok, err := s.history.MostRecent(ctx, userID)
		if err != nil {
			s.logger.Warn("intensity history unavailable, treating as cold start", "user_id", userID, "error", err)
		} else if ok {
			if obs.EMAIntensity != nil {
				previous = obs.EMAIntensity
			} else {
				v := obs.RawIntensity
				previous = &v
			}
		}
	}
	return trend.Smooth(raw, previous, alpha)
}

// ClassifyTrajectory labels a short ordered intensity window.
func (s *Service) ClassifyTrajectory(history []float64) string {
	return trend.ClassifyTrajectory(history)
}

// trajectoryWindow is the user's recent smoothed intensities plus the
// current raw observation, capped at the window size, oldest first.
func (s *Service) trajectoryWindow(ctx context.Context, userID string, current float64) []float64 {
	var window []float64
	if s.history != nil {
		recent, err := s.history.Recent(ctx, userID, trajectoryWindow-1)
		if err != nil {
			s.logger.Warn("trajectory history unavailable", "user_id", userID, "error", err)
		} else {
			window = recent
		}
	}
	window = append(window, clamp01(current))
	if len(window) > trajectoryWindow {
		window = window[len(window)-trajectoryWindow:]
	}
	return window
}

func fallbackResult() domain.AnalysisResult {
	return domain.AnalysisResult{
		PrimaryEmotion: domain.EmotionNeutral,
		Confidence:     fallbackConfidence,
		Intensity:      fallbackIntensity,
		AllEmotions:    domain.ScoreMap{domain.EmotionNeutral: 1.0},
	}
}

func provenance(scores domain.ScoreMap) float64 {
	top := 0.0
	for _, v := range scores {
		if v > top {
			top = v
		}
	}
	return clamp01(top)
}

func classifierProvenance(scores []domain.ClassifierScore) float64 {
	top, ok := topScore(scores)
	if !ok {
		return 0
	}
	return clamp01(top)
}

func polarityProvenance(p *domain.Polarity) float64 {
	if p == nil {
		return 0
	}
	return clamp01(math.Abs(p.Compound))
}

func topScore(scores []domain.ClassifierScore) (float64, bool) {
	if len(scores) == 0 {
		return 0, false
	}
	top := 0.0
	for _, s := range scores {
		if s.Score > top {
			top = s.Score
		}
	}
	return top, true
}

func roundMillis(d time.Duration) float64 {
	ms := float64(d.Microseconds()) / 1000.0
	return math.Round(ms*1000) / 1000
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
