// Package classifier holds HTTP clients for the two opaque upstream
// analyzers: the transformer emotion classifier and the lexical polarity
// analyzer. Both are optional collaborators; callers treat any error as
// "evidence absent" and continue.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/whisperengine-ai/whisperengine-v2-sub009/internal/domain"
)

const defaultTimeout = 1500 * time.Millisecond

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// Classify returns the upstream label distribution for the text.
func (c *Client) Classify(ctx context.Context, text string) ([]domain.ClassifierScore, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("emotion classifier is not configured")
	}
	var out struct {
		Scores []domain.ClassifierScore `json:"scores"`
	}
	if err := postJSON(ctx, c.http, c.baseURL+"/v1/classify", map[string]string{"text": strings.TrimSpace(text)}, &out); err != nil {
		return nil, err
	}
	if len(out.Scores) == 0 {
		return nil, fmt.Errorf("classifier returned no scores")
	}
	return out.Scores, nil
}

func postJSON(ctx context.Context, client *http.Client, url string, payload any, out any) error {
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("classifier service status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return err
	}
	return nil
}
