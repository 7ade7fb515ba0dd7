package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/whisperengine-ai/whisperengine-v2-sub009/internal/domain"
)

func TestClassifyDecodesScores(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/classify" {
			t.Fatalf("path=%q, want /v1/classify", r.URL.Path)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["text"] != "hello" {
			t.Fatalf("text=%q, want hello", req["text"])
		}
		json.NewEncoder(w).Encode(map[string]any{
			"scores": []map[string]any{
				{"label": "joy", "score": 0.8},
				{"label": "neutral", "score": 0.2},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	scores, err := c.Classify(context.Background(), "  hello  ")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if len(scores) != 2 || scores[0].Label != domain.EmotionJoy || scores[0].Score != 0.8 {
		t.Fatalf("scores=%v", scores)
	}
}

func TestClassifyUpstreamErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if _, err := c.Classify(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for 503 response")
	}
}

func TestClassifyEmptyScoresIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"scores": []any{}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if _, err := c.Classify(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for empty score list")
	}
}

func TestClientDisabledWithoutBaseURL(t *testing.T) {
	c := NewClient("", time.Second)
	if c.Enabled() {
		t.Fatal("blank base url should disable the client")
	}
	if _, err := c.Classify(context.Background(), "hello"); err == nil {
		t.Fatal("disabled client should error")
	}
}

func TestPolarityDecodesBreakdown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/polarity" {
			t.Fatalf("path=%q, want /v1/polarity", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]float64{
			"pos": 0.1, "neg": 0.6, "neutral": 0.3, "compound": -0.55,
		})
	}))
	defer srv.Close()

	c := NewPolarityClient(srv.URL, time.Second)
	p, err := c.Polarity(context.Background(), "this is bad")
	if err != nil {
		t.Fatalf("polarity: %v", err)
	}
	if p.Negative != 0.6 || p.Compound != -0.55 {
		t.Fatalf("polarity=%+v", p)
	}
}
