// Package gemini implementa el colaborador de clasificación de texto sobre
// la API REST generateContent de Google Gemini.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/arbot/internal/ports"
)

const (
	defaultBase  = "https://generativelanguage.googleapis.com"
	defaultModel = "gemini-2.0-flash"

	// Free tier: 15 req/min → 1 cada 4s, con un pequeño burst.
	requestsPerMinute = 15

	maxRetries    = 2
	baseRetryWait = 1 * time.Second
)

// Client llama a generateContent con rate limiting y retries.
type Client struct {
	http    *http.Client
	base    string
	model   string
	apiKey  string
	limiter *rate.Limiter
	sleepFn func(ctx context.Context, attempt int)
}

// NewClient crea un Client. base o model vacíos usan los defaults.
func NewClient(apiKey, model, base string) *Client {
	if base == "" {
		base = defaultBase
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		base:    base,
		model:   model,
		apiKey:  apiKey,
		limiter: rate.NewLimiter(rate.Limit(requestsPerMinute)/60, 2),
		sleepFn: sleep,
	}
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Complete envía el prompt y devuelve el texto concatenado del primer
// candidato. Implementa ports.Completer.
func (c *Client) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("gemini.Complete: missing API key")
	}

	body := generateRequest{
		Contents: []content{{Parts: []part{{Text: req.Prompt}}}},
		GenerationConfig: &generationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxOutputTokens,
		},
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.base, c.model, c.apiKey)
	resp, err := c.postWithRetry(ctx, url, body)
	if err != nil {
		return "", fmt.Errorf("gemini.Complete: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini.Complete: empty response")
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

func (c *Client) postWithRetry(ctx context.Context, url string, body generateRequest) (generateResponse, error) {
	var out generateResponse
	payload, err := json.Marshal(body)
	if err != nil {
		return out, fmt.Errorf("marshal request: %w", err)
	}

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return out, fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return out, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if attempt == maxRetries {
				return out, fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleepFn(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return out, fmt.Errorf("status %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.sleepFn(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			msg, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return out, fmt.Errorf("client error %d: %s", resp.StatusCode, string(msg))
		}

		err = json.NewDecoder(resp.Body).Decode(&out)
		resp.Body.Close()
		if err != nil {
			return out, fmt.Errorf("decode response: %w", err)
		}
		return out, nil
	}
	return out, fmt.Errorf("exhausted %d retries", maxRetries)
}

// sleep espera con backoff exponencial, respetando el contexto.
func sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
