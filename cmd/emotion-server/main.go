package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/whisperengine-ai/whisperengine-v2-sub009/internal/classifier"
	"github.com/whisperengine-ai/whisperengine-v2-sub009/internal/config"
	"github.com/whisperengine-ai/whisperengine-v2-sub009/internal/domain"
	"github.com/whisperengine-ai/whisperengine-v2-sub009/internal/engine"
	"github.com/whisperengine-ai/whisperengine-v2-sub009/internal/fusion"
	"github.com/whisperengine-ai/whisperengine-v2-sub009/internal/mqtt"
	"github.com/whisperengine-ai/whisperengine-v2-sub009/internal/store"
)

type analyzeRequest struct {
	Text           string   `json:"text"`
	UserID         string   `json:"user_id"`
	Context        string   `json:"context,omitempty"`
	RecentEmotions []string `json:"recent_emotions,omitempty"`
}

type smoothRequest struct {
	Raw    float64 `json:"raw"`
	UserID string  `json:"user_id"`
	Alpha  float64 `json:"alpha,omitempty"`
}

type trajectoryRequest struct {
	History []float64 `json:"history"`
}

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.LoadEmotionServerConfig()
	if err != nil {
		logger.Error("load config failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	intensityLog, err := store.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Error("connect db failed", "error", err)
		os.Exit(1)
	}
	defer intensityLog.Close()

	if err := intensityLog.Migrate(ctx); err != nil {
		logger.Error("migrate db failed", "error", err)
		os.Exit(1)
	}

	var baseClassifier engine.Classifier
	if cfg.ClassifierBaseURL != "" {
		baseClassifier = classifier.NewClient(cfg.ClassifierBaseURL, cfg.ClassifierTimeout)
	}
	var polarityAnalyzer engine.PolarityAnalyzer
	if cfg.PolarityBaseURL != "" {
		polarityAnalyzer = classifier.NewPolarityClient(cfg.PolarityBaseURL, cfg.ClassifierTimeout)
	}

	svc := engine.New(engine.Config{
		Weights: fusion.Weights{
			Keyword:  cfg.KeywordWeight,
			Semantic: cfg.SemanticWeight,
			Context:  cfg.ContextWeight,
		},
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		EMAAlpha:            cfg.EMAAlpha,
	}, baseClassifier, polarityAnalyzer, intensityLog, logger)

	publisher := mqtt.NewPublisher(mqtt.PublisherConfig{
		BrokerURL:   cfg.MQTTBrokerURL,
		ClientID:    cfg.MQTTClientID,
		Username:    cfg.MQTTUsername,
		Password:    cfg.MQTTPassword,
		TopicPrefix: cfg.MQTTTopicPrefix,
	}, logger)
	if publisher.Enabled() {
		if err := publisher.Start(ctx); err != nil {
			logger.Error("start mqtt publisher failed", "error", err)
			os.Exit(1)
		}
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":             true,
			"base_emotions":  domain.BaseEmotions,
			"extended":       domain.ExtendedEmotions,
			"classifier_set": baseClassifier != nil,
			"polarity_set":   polarityAnalyzer != nil,
		})
	})

	r.Get("/v1/emotion/labels", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"base":     domain.BaseEmotions,
			"extended": domain.ExtendedEmotions,
		})
	})

	r.Post("/v1/emotion/analyze", func(w http.ResponseWriter, req *http.Request) {
		var in analyzeRequest
		if err := decodeJSONBody(req, cfg.ReadBodyMaxBytes, &in); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
		if strings.TrimSpace(in.Text) == "" || strings.TrimSpace(in.UserID) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "text and user_id are required"})
			return
		}

		result := svc.Analyze(req.Context(), in.Text, in.UserID, engine.AnalyzeOptions{
			Context:        in.Context,
			RecentEmotions: in.RecentEmotions,
		})
		smoothed := svc.SmoothIntensity(req.Context(), result.Intensity, in.UserID, 0)

		messageID := uuid.NewString()
		if err := intensityLog.Append(req.Context(), domain.IntensityRecord{
			UserID:       in.UserID,
			MessageID:    messageID,
			Emotion:      result.PrimaryEmotion,
			RawIntensity: smoothed.Raw,
			EMAIntensity: smoothed.EMA,
			Alpha:        smoothed.Alpha,
		}); err != nil {
			logger.Warn("append intensity record failed", "user_id", in.UserID, "error", err)
		}

		if publisher.Enabled() {
			payload := domain.EmotionUpdatePayload{
				MessageID: messageID,
				UserID:    in.UserID,
				Result:    result,
				Smoothed:  &smoothed,
				TS:        time.Now().UTC().Format(time.RFC3339Nano),
			}
			if err := publisher.PublishEmotionUpdate(req.Context(), in.UserID, payload); err != nil {
				logger.Warn("publish emotion update failed", "user_id", in.UserID, "error", err)
			}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"message_id": messageID,
			"result":     result,
			"smoothed":   smoothed,
		})
	})

	r.Post("/v1/emotion/advanced", func(w http.ResponseWriter, req *http.Request) {
		var in analyzeRequest
		if err := decodeJSONBody(req, cfg.ReadBodyMaxBytes, &in); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
		if strings.TrimSpace(in.Text) == "" || strings.TrimSpace(in.UserID) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "text and user_id are required"})
			return
		}

		state := svc.DetectAdvanced(req.Context(), in.Text, in.UserID, nil)
		writeJSON(w, http.StatusOK, state)
	})

	r.Post("/v1/emotion/smooth", func(w http.ResponseWriter, req *http.Request) {
		var in smoothRequest
		if err := decodeJSONBody(req, cfg.ReadBodyMaxBytes, &in); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
		if strings.TrimSpace(in.UserID) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "user_id is required"})
			return
		}
		writeJSON(w, http.StatusOK, svc.SmoothIntensity(req.Context(), in.Raw, in.UserID, in.Alpha))
	})

	r.Post("/v1/emotion/trajectory", func(w http.ResponseWriter, req *http.Request) {
		var in trajectoryRequest
		if err := decodeJSONBody(req, cfg.ReadBodyMaxBytes, &in); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"pattern": svc.ClassifyTrajectory(in.History),
			"points":  len(in.History),
		})
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("emotion server started", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("received shutdown signal")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
}

func decodeJSONBody(req *http.Request, maxBytes int64, out any) error {
	defer req.Body.Close()
	data, err := io.ReadAll(io.LimitReader(req.Body, maxBytes+1))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return fmt.Errorf("request body too large")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		if err == nil {
			return fmt.Errorf("invalid json: multiple JSON values")
		}
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
