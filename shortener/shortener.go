// Package shortener shortens the public slideshow URL with TinyURL and caches the result
package shortener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/aouyang1/autoslides/settings"
)

const DefaultEndpoint = "https://tinyurl.com/api-create.php"

// ErrShorten marks failures of the shortening service itself.
var ErrShorten = errors.New("error shortening url")

type Shortener interface {
	Shorten(ctx context.Context, longURL string) (string, error)
}

// TinyURL calls the api-create endpoint, which answers with the short URL as
// plain text.
type TinyURL struct {
	endpoint string
	client   *http.Client
}

func NewTinyURL(endpoint string, client *http.Client) *TinyURL {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if client == nil {
		client = &http.Client{}
	}
	return &TinyURL{endpoint: endpoint, client: client}
}

func (t *TinyURL) Shorten(ctx context.Context, longURL string) (string, error) {
	reqURL := t.endpoint + "?url=" + url.QueryEscape(longURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("shortener returned status %d: %s", resp.StatusCode, string(body))
	}

	return strings.TrimSpace(string(body)), nil
}

// Cached returns the short URL stored for the document, shortening longURL and
// storing the result the first time.
func Cached(ctx context.Context, st *settings.Store, s Shortener, longURL string) (string, error) {
	shortURL, ok, err := st.ShortURL(ctx)
	if err != nil {
		return "", err
	}
	if ok {
		return shortURL, nil
	}

	shortURL, err = s.Shorten(ctx, longURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrShorten, err)
	}
	if err := st.SetShortURL(ctx, shortURL); err != nil {
		return "", err
	}

	slog.Info("cached short url", "url", longURL, "short_url", shortURL)
	return shortURL, nil
}
