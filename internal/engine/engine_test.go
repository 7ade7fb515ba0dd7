package engine

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/whisperengine-ai/whisperengine-v2-sub009/internal/domain"
)

type fakeClassifier struct {
	scores []domain.ClassifierScore
	err    error
	panics bool
	calls  int
}

func (f *fakeClassifier) Classify(ctx context.Context, text string) ([]domain.ClassifierScore, error) {
	f.calls++
	if f.panics {
		panic("classifier blew up")
	}
	return f.scores, f.err
}

type fakePolarity struct {
	polarity domain.Polarity
	err      error
}

func (f *fakePolarity) Polarity(ctx context.Context, text string) (domain.Polarity, error) {
	return f.polarity, f.err
}

type fakeHistory struct {
	obs       domain.IntensityObservation
	ok        bool
	err       error
	recent    []float64
	recentErr error
}

func (f *fakeHistory) MostRecent(ctx context.Context, userID string) (domain.IntensityObservation, bool, error) {
	return f.obs, f.ok, f.err
}

func (f *fakeHistory) Recent(ctx context.Context, userID string, limit int) ([]float64, error) {
	return f.recent, f.recentErr
}

func assertNear(t *testing.T, got, want, eps float64) {
	t.Helper()
	if math.Abs(got-want) > eps {
		t.Fatalf("got %v, want %v (±%v)", got, want, eps)
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	svc := New(Config{},
		&fakeClassifier{scores: []domain.ClassifierScore{
			{Label: domain.EmotionJoy, Score: 0.5},
			{Label: domain.EmotionNeutral, Score: 0.5},
		}},
		&fakePolarity{polarity: domain.Polarity{Positive: 0.6, Compound: 0.6}},
		nil, nil)

	ctx := context.Background()
	a := svc.Analyze(ctx, "feeling pretty happy today", "u1", AnalyzeOptions{})
	b := svc.Analyze(ctx, "feeling pretty happy today", "u1", AnalyzeOptions{})

	a.AnalysisTimeMS, b.AnalysisTimeMS = 0, 0
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same input produced different results:\n%+v\n%+v", a, b)
	}
	if a.PrimaryEmotion != domain.EmotionJoy {
		t.Fatalf("primary=%q, want joy", a.PrimaryEmotion)
	}
}

func TestAnalyzePanicReturnsFallback(t *testing.T) {
	svc := New(Config{}, &fakeClassifier{panics: true}, nil, nil, nil)
	got := svc.Analyze(context.Background(), "anything", "u1", AnalyzeOptions{})

	if got.PrimaryEmotion != domain.EmotionNeutral {
		t.Fatalf("primary=%q, want neutral fallback", got.PrimaryEmotion)
	}
	assertNear(t, got.Confidence, 0.3, 1e-12)
	assertNear(t, got.Intensity, 0.5, 1e-12)
	if got.AllEmotions[domain.EmotionNeutral] != 1.0 {
		t.Fatalf("all_emotions=%v, want {neutral: 1}", got.AllEmotions)
	}
	if got.AnalysisTimeMS < 0 {
		t.Fatalf("analysis time not recorded: %v", got.AnalysisTimeMS)
	}
}

func TestAnalyzeClassifierErrorDegradesToKeywords(t *testing.T) {
	svc := New(Config{}, &fakeClassifier{err: errors.New("timeout")}, nil, nil, nil)
	got := svc.Analyze(context.Background(), "I am so happy and delighted", "u1", AnalyzeOptions{})

	if got.PrimaryEmotion != domain.EmotionJoy {
		t.Fatalf("primary=%q, want joy from keyword evidence", got.PrimaryEmotion)
	}
	if got.SemanticSignal != 0 {
		t.Fatalf("semantic signal=%v, want 0 when classifier is absent", got.SemanticSignal)
	}
	if got.KeywordSignal <= 0 {
		t.Fatalf("keyword signal=%v, want > 0", got.KeywordSignal)
	}
}

func TestAnalyzeEmptyTextIsNeutral(t *testing.T) {
	svc := New(Config{}, nil, nil, nil, nil)
	got := svc.Analyze(context.Background(), "", "u1", AnalyzeOptions{})
	if got.PrimaryEmotion != domain.EmotionNeutral {
		t.Fatalf("primary=%q, want neutral", got.PrimaryEmotion)
	}
}

func TestSmoothIntensityColdStartOnHistoryError(t *testing.T) {
	svc := New(Config{}, nil, nil, &fakeHistory{err: errors.New("db down")}, nil)
	got := svc.SmoothIntensity(context.Background(), 0.7, "u1", 0)
	assertNear(t, got.EMA, 0.7, 1e-12)
	if got.PreviousEMA != nil {
		t.Fatal("history error must behave as cold start")
	}
}

func TestSmoothIntensityUsesPersistedEMA(t *testing.T) {
	ema := 0.4
	svc := New(Config{}, nil, nil, &fakeHistory{
		obs: domain.IntensityObservation{RawIntensity: 0.9, EMAIntensity: &ema},
		ok:  true,
	}, nil)
	got := svc.SmoothIntensity(context.Background(), 0.8, "u1", 0.3)
	assertNear(t, got.EMA, 0.3*0.8+0.7*0.4, 1e-12)
}

func TestSmoothIntensityFallsBackToRawRecord(t *testing.T) {
	svc := New(Config{}, nil, nil, &fakeHistory{
		obs: domain.IntensityObservation{RawIntensity: 0.6},
		ok:  true,
	}, nil)
	got := svc.SmoothIntensity(context.Background(), 0.8, "u1", 0.3)
	// Pre-smoothing records carry no ema; raw stands in for it.
	assertNear(t, got.EMA, 0.3*0.8+0.7*0.6, 1e-12)
}

func TestDetectAdvancedReusesProvidedBase(t *testing.T) {
	clf := &fakeClassifier{scores: []domain.ClassifierScore{{Label: domain.EmotionJoy, Score: 0.9}}}
	svc := New(Config{}, clf, nil, &fakeHistory{recent: []float64{0.1, 0.25, 0.45, 0.6}}, nil)

	base := &domain.AnalysisResult{
		PrimaryEmotion: domain.EmotionJoy,
		Confidence:     0.8,
		Intensity:      0.8,
		AllEmotions:    domain.ScoreMap{domain.EmotionJoy: 0.8, domain.EmotionNeutral: 0.2},
	}
	state := svc.DetectAdvanced(context.Background(), "such a good day!", "u1", base)

	if clf.calls != 0 {
		t.Fatalf("classifier called %d times, want 0 when base is provided", clf.calls)
	}
	if len(state.EmotionalTrajectory) != 5 {
		t.Fatalf("trajectory=%v, want 4 persisted points plus current", state.EmotionalTrajectory)
	}
	if state.PatternType != domain.PatternEscalating {
		t.Fatalf("pattern=%q, want escalating", state.PatternType)
	}
	if state.Timestamp == "" {
		t.Fatal("timestamp missing")
	}
}

func TestDetectAdvancedWithoutHistoryHasNoPattern(t *testing.T) {
	svc := New(Config{}, nil, nil, nil, nil)
	base := &domain.AnalysisResult{
		PrimaryEmotion: domain.EmotionJoy,
		Confidence:     0.7,
		Intensity:      0.5,
		AllEmotions:    domain.ScoreMap{domain.EmotionJoy: 1.0},
	}
	state := svc.DetectAdvanced(context.Background(), "hello there", "u1", base)

	if len(state.EmotionalTrajectory) != 1 {
		t.Fatalf("trajectory=%v, want only the current point", state.EmotionalTrajectory)
	}
	if state.PatternType != domain.PatternNone {
		t.Fatalf("pattern=%q, want none for a single point", state.PatternType)
	}
}

func TestDetectAdvancedFreshAnalysisWhenBaseMissing(t *testing.T) {
	clf := &fakeClassifier{scores: []domain.ClassifierScore{
		{Label: domain.EmotionSadness, Score: 0.85},
		{Label: domain.EmotionNeutral, Score: 0.15},
	}}
	svc := New(Config{}, clf, nil, nil, nil)
	state := svc.DetectAdvanced(context.Background(), "everything feels heavy", "u1", nil)

	if clf.calls != 1 {
		t.Fatalf("classifier called %d times, want 1", clf.calls)
	}
	if state.PrimaryEmotion != domain.EmotionSadness {
		t.Fatalf("primary=%q, want sadness", state.PrimaryEmotion)
	}
}
