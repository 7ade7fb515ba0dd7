package config

import "testing"

func TestLoadEmotionServerConfigDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/emotion")

	cfg, err := LoadEmotionServerConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":9020" {
		t.Fatalf("addr=%q, want :9020", cfg.HTTPAddr)
	}
	if cfg.KeywordWeight != 0.3 || cfg.SemanticWeight != 0.4 || cfg.ContextWeight != 0.3 {
		t.Fatalf("weights=%v/%v/%v, want 0.3/0.4/0.3", cfg.KeywordWeight, cfg.SemanticWeight, cfg.ContextWeight)
	}
	if cfg.ConfidenceThreshold != 0.6 {
		t.Fatalf("threshold=%v, want 0.6", cfg.ConfidenceThreshold)
	}
	if cfg.EMAAlpha != 0.3 {
		t.Fatalf("alpha=%v, want 0.3", cfg.EMAAlpha)
	}
	if cfg.MQTTTopicPrefix != "emotion" {
		t.Fatalf("topic prefix=%q, want emotion", cfg.MQTTTopicPrefix)
	}
}

func TestLoadEmotionServerConfigRequiresDSN(t *testing.T) {
	t.Setenv("DB_DSN", "")
	if _, err := LoadEmotionServerConfig(); err == nil {
		t.Fatal("expected error without DB_DSN")
	}
}

func TestLoadEmotionServerConfigRejectsBadThreshold(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/emotion")
	t.Setenv("EMOTION_CONFIDENCE_THRESHOLD", "1.5")
	if _, err := LoadEmotionServerConfig(); err == nil {
		t.Fatal("expected error for threshold above 1")
	}
}

func TestLoadEmotionServerConfigOverrides(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/emotion")
	t.Setenv("EMOTION_HTTP_ADDR", ":8099")
	t.Setenv("EMOTION_SEMANTIC_WEIGHT", "0.5")
	t.Setenv("EMOTION_EMA_ALPHA", "0.2")

	cfg, err := LoadEmotionServerConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8099" || cfg.SemanticWeight != 0.5 || cfg.EMAAlpha != 0.2 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}
