package synthesis

import (
	"math"
	"testing"

	"github.com/whisperengine-ai/whisperengine-v2-sub009/internal/domain"
)

func assertNear(t *testing.T, got, want, eps float64) {
	t.Helper()
	if math.Abs(got-want) > eps {
		t.Fatalf("got %v, want %v (±%v)", got, want, eps)
	}
}

func TestSynthesizeLoveFromStrongJoy(t *testing.T) {
	s := NewSynthesizer(nil)
	fused := domain.ScoreMap{domain.EmotionJoy: 0.8, domain.EmotionNeutral: 0.2}
	out := s.Synthesize(domain.EmotionJoy, 0.75, fused,
		"I absolutely love and adore you!", domain.RawSignals{EmojiCategories: map[string]int{}})

	if out.Primary != domain.EmotionLove {
		t.Fatalf("primary=%q, want love", out.Primary)
	}
	if out.RuleApplied != domain.EmotionLove {
		t.Fatalf("rule applied=%q, want love", out.RuleApplied)
	}
	// primary 0.6*0.75 and two pattern hits 0.4, meaned, plus boost 0.30.
	assertNear(t, out.Confidence, 0.725, 1e-9)
	if len(out.Secondaries) == 0 || out.Secondaries[0] != domain.EmotionJoy {
		t.Fatalf("demoted base should lead secondaries, got %v", out.Secondaries)
	}
}

func TestSynthesizeGuardKeepsConfidentBase(t *testing.T) {
	s := NewSynthesizer(nil)
	fused := domain.ScoreMap{domain.EmotionJoy: 0.95, domain.EmotionNeutral: 0.05}
	out := s.Synthesize(domain.EmotionJoy, 0.95, fused,
		"I love it", domain.RawSignals{EmojiCategories: map[string]int{}})

	// One weak pattern hit cannot beat 80% of a very confident base label.
	if out.Primary != domain.EmotionJoy {
		t.Fatalf("primary=%q, want joy kept", out.Primary)
	}
	assertNear(t, out.Confidence, 0.95, 1e-9)
	if out.RuleApplied != "" {
		t.Fatalf("rule applied=%q, want none", out.RuleApplied)
	}
}

func TestSynthesizeNoDistinctiveEvidenceKeepsBase(t *testing.T) {
	s := NewSynthesizer(nil)
	fused := domain.ScoreMap{domain.EmotionJoy: 1.0}
	out := s.Synthesize(domain.EmotionJoy, 0.8, fused,
		"what a nice day", domain.RawSignals{EmojiCategories: map[string]int{}})

	if out.Primary != domain.EmotionJoy {
		t.Fatalf("primary=%q, want joy", out.Primary)
	}
	if len(out.Secondaries) != 0 {
		t.Fatalf("secondaries=%v, want none", out.Secondaries)
	}
}

func TestSynthesizeFrustrationFromAngerBlend(t *testing.T) {
	s := NewSynthesizer(nil)
	fused := domain.ScoreMap{
		domain.EmotionAnger:   0.5,
		domain.EmotionSadness: 0.3,
		domain.EmotionNeutral: 0.2,
	}
	out := s.Synthesize(domain.EmotionAnger, 0.45, fused,
		"so frustrated and fed up with this", domain.RawSignals{EmojiCategories: map[string]int{}})

	if out.Primary != domain.EmotionFrustration {
		t.Fatalf("primary=%q, want frustration", out.Primary)
	}
	if out.Secondaries[0] != domain.EmotionAnger {
		t.Fatalf("demoted anger should lead secondaries, got %v", out.Secondaries)
	}
}

func TestSynthesizeSecondariesCappedAndExcludePrimary(t *testing.T) {
	s := NewSynthesizer(nil)
	fused := domain.ScoreMap{
		domain.EmotionJoy:      0.30,
		domain.EmotionSadness:  0.25,
		domain.EmotionFear:     0.22,
		domain.EmotionSurprise: 0.20,
		domain.EmotionAnger:    0.20,
	}
	out := s.Synthesize(domain.EmotionJoy, 0.5, fused,
		"nothing rule-shaped here", domain.RawSignals{EmojiCategories: map[string]int{}})

	if len(out.Secondaries) != 3 {
		t.Fatalf("secondaries=%v, want exactly 3", out.Secondaries)
	}
	for _, sec := range out.Secondaries {
		if sec == out.Primary {
			t.Fatalf("secondaries must not include primary: %v", out.Secondaries)
		}
	}
	want := []string{domain.EmotionSadness, domain.EmotionFear, domain.EmotionAnger}
	for i, label := range want {
		if out.Secondaries[i] != label {
			t.Fatalf("secondaries=%v, want %v", out.Secondaries, want)
		}
	}
}

func TestSynthesizeEmojiEvidenceActivatesRule(t *testing.T) {
	s := NewSynthesizer(nil)
	fused := domain.ScoreMap{domain.EmotionJoy: 0.9, domain.EmotionNeutral: 0.1}
	sig := domain.RawSignals{EmojiCategories: map[string]int{"love": 2}}
	out := s.Synthesize(domain.EmotionJoy, 0.55, fused, "you 😍🥰", sig)

	if out.Primary != domain.EmotionLove {
		t.Fatalf("primary=%q, want love via emoji category overlap", out.Primary)
	}
}
