package translate

import (
	"bytes"
	"context"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"net/http"
	"time"

	"lectern/internal/config"
)

// ErrWordNotFound signals that the provider definitively does not know the
// word, as opposed to being unreachable. Not-found results are cached;
// unreachable is not.
var ErrWordNotFound = goerrors.New("translation not found")

// Provider resolves a normalized word to a translation. Implementations map
// their own failure modes onto ErrWordNotFound (definitive miss) or any
// other error (unreachable); no provider-specific detail crosses this
// boundary.
type Provider interface {
	Translate(ctx context.Context, word, sourceLang, targetLang string) (string, error)
}

// HTTPProvider is a Provider backed by a JSON-over-HTTP translation
// endpoint.
type HTTPProvider struct {
	apiURL string
	apiKey string
	client *http.Client
}

// NewHTTPProvider creates a provider from config. Returns nil when no
// endpoint is configured; the cache treats a nil provider as unreachable.
func NewHTTPProvider(cfg *config.Config) *HTTPProvider {
	if cfg.ProviderURL == "" {
		return nil
	}
	timeout := time.Duration(cfg.ProviderTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPProvider{
		apiURL: cfg.ProviderURL,
		apiKey: cfg.ProviderAPIKey,
		client: &http.Client{Timeout: timeout},
	}
}

// translateRequest is the JSON body sent to the endpoint.
type translateRequest struct {
	Word   string `json:"word"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// translateResponse is the JSON body returned by the endpoint.
type translateResponse struct {
	Translation string `json:"translation"`
	Error       *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Translate posts the word and language pair to the endpoint.
func (p *HTTPProvider) Translate(ctx context.Context, word, sourceLang, targetLang string) (string, error) {
	requestData, err := json.Marshal(translateRequest{
		Word:   word,
		Source: sourceLang,
		Target: targetLang,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewBuffer(requestData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrWordNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var response translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if response.Error != nil {
		return "", fmt.Errorf("provider error: %s", response.Error.Message)
	}
	if response.Translation == "" {
		return "", ErrWordNotFound
	}

	return response.Translation, nil
}
