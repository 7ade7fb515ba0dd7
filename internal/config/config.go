package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type EmotionServerConfig struct {
	HTTPAddr         string
	ReadBodyMaxBytes int64
	DBDSN            string

	ClassifierBaseURL string
	PolarityBaseURL   string
	ClassifierTimeout time.Duration

	MQTTBrokerURL   string
	MQTTClientID    string
	MQTTUsername    string
	MQTTPassword    string
	MQTTTopicPrefix string

	KeywordWeight       float64
	SemanticWeight      float64
	ContextWeight       float64
	ConfidenceThreshold float64
	EMAAlpha            float64
}

func LoadEmotionServerConfig() (EmotionServerConfig, error) {
	cfg := EmotionServerConfig{
		HTTPAddr:         getenvDefault("EMOTION_HTTP_ADDR", ":9020"),
		ReadBodyMaxBytes: int64(getenvIntDefault("EMOTION_MAX_BODY_BYTES", 65536)),
		DBDSN:            os.Getenv("DB_DSN"),

		ClassifierBaseURL: strings.TrimRight(os.Getenv("CLASSIFIER_BASE_URL"), "/"),
		PolarityBaseURL:   strings.TrimRight(os.Getenv("POLARITY_BASE_URL"), "/"),
		ClassifierTimeout: time.Duration(getenvIntDefault("CLASSIFIER_TIMEOUT_MS", 1500)) * time.Millisecond,

		MQTTBrokerURL:   os.Getenv("MQTT_BROKER_URL"),
		MQTTClientID:    getenvDefault("EMOTION_MQTT_CLIENT_ID", "emotion-server"),
		MQTTUsername:    os.Getenv("MQTT_USERNAME"),
		MQTTPassword:    os.Getenv("MQTT_PASSWORD"),
		MQTTTopicPrefix: getenvDefault("MQTT_TOPIC_PREFIX", "emotion"),

		KeywordWeight:       getenvFloatDefault("EMOTION_KEYWORD_WEIGHT", 0.3),
		SemanticWeight:      getenvFloatDefault("EMOTION_SEMANTIC_WEIGHT", 0.4),
		ContextWeight:       getenvFloatDefault("EMOTION_CONTEXT_WEIGHT", 0.3),
		ConfidenceThreshold: getenvFloatDefault("EMOTION_CONFIDENCE_THRESHOLD", 0.6),
		EMAAlpha:            getenvFloatDefault("EMOTION_EMA_ALPHA", 0.3),
	}

	if cfg.DBDSN == "" {
		return EmotionServerConfig{}, fmt.Errorf("DB_DSN is required")
	}
	if cfg.KeywordWeight < 0 || cfg.SemanticWeight < 0 || cfg.ContextWeight < 0 {
		return EmotionServerConfig{}, fmt.Errorf("fusion weights must be non-negative")
	}
	if cfg.ConfidenceThreshold <= 0 || cfg.ConfidenceThreshold > 1 {
		return EmotionServerConfig{}, fmt.Errorf("EMOTION_CONFIDENCE_THRESHOLD must be in (0, 1]")
	}

	return cfg, nil
}

func getenvDefault(key, val string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return val
}

func getenvIntDefault(key string, val int) int {
	v := os.Getenv(key)
	if v == "" {
		return val
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return val
	}
	return n
}

func getenvFloatDefault(key string, val float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return val
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return val
	}
	return n
}
