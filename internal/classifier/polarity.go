package classifier

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/whisperengine-ai/whisperengine-v2-sub009/internal/domain"
)

type PolarityClient struct {
	baseURL string
	http    *http.Client
}

func NewPolarityClient(baseURL string, timeout time.Duration) *PolarityClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &PolarityClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *PolarityClient) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// Polarity returns the {pos, neg, neutral, compound} breakdown for the text.
func (c *PolarityClient) Polarity(ctx context.Context, text string) (domain.Polarity, error) {
	if !c.Enabled() {
		return domain.Polarity{}, fmt.Errorf("polarity analyzer is not configured")
	}
	var out domain.Polarity
	if err := postJSON(ctx, c.http, c.baseURL+"/v1/polarity", map[string]string{"text": strings.TrimSpace(text)}, &out); err != nil {
		return domain.Polarity{}, err
	}
	return out, nil
}
