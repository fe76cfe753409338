package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sjsage522/rankscout/logger"
	scrapeerrors "sjsage522/rankscout/pkg/errors"

	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

const (
	defaultMaxAttempts = 3
	defaultBackoff     = 500 * time.Millisecond
)

// Client talks to a Google-Translate-compatible "gtx" endpoint
type Client struct {
	httpClient  *http.Client
	endpoint    string
	limiter     *rate.Limiter
	maxAttempts int
	backoff     time.Duration
	log         *logger.Logger
}

// NewClient creates a translation client limited to rps requests per second
func NewClient(endpoint string, rps float64) *Client {
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		endpoint:    endpoint,
		limiter:     rate.NewLimiter(rate.Limit(rps), burst),
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
		log:         logger.ForComponent("translator"),
	}
}

// Translate sends text to the backend with the source language left to
// auto-detection. Empty text is returned as is without a request.
func (c *Client) Translate(ctx context.Context, text, target string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	reqURL := c.requestURL(text, target)

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", scrapeerrors.NewTranslation("rate limiter wait aborted", err)
		}

		translated, retry, err := c.do(ctx, reqURL)
		if err == nil {
			return translated, nil
		}
		lastErr = err
		if !retry {
			break
		}

		c.log.Debug().Err(err).Int("attempt", attempt).Msg("Translation request failed")
		if attempt < c.maxAttempts {
			if err := wait(ctx, time.Duration(attempt)*c.backoff); err != nil {
				return "", scrapeerrors.NewTranslation("retry wait aborted", err)
			}
		}
	}

	return "", scrapeerrors.NewTranslation(fmt.Sprintf("failed to translate %q", text), lastErr)
}

func (c *Client) requestURL(text, target string) string {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", "auto")
	params.Set("tl", target)
	params.Set("dt", "t")
	params.Set("q", text)
	return fmt.Sprintf("%s?%s", c.endpoint, params.Encode())
}

// do performs one request; retry reports whether the failure is transient
func (c *Client) do(ctx context.Context, reqURL string) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120 Safari/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", ctx.Err() == nil, fmt.Errorf("failed to call translation backend: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return "", retry, fmt.Errorf("translation backend returned status %d", resp.StatusCode)
	}

	body, err = decodeBody(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", false, err
	}

	translated, err := parseResponse(body)
	if err != nil {
		return "", false, err
	}
	return translated, false, nil
}

// decodeBody converts a body with a declared non UTF-8 charset
func decodeBody(body []byte, contentType string) ([]byte, error) {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil || params["charset"] == "" {
		return body, nil
	}

	encoding, name := charset.Lookup(params["charset"])
	if encoding == nil || name == "utf-8" {
		return body, nil
	}

	decoded, err := io.ReadAll(encoding.NewDecoder().Reader(bytes.NewReader(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s body: %w", name, err)
	}
	return decoded, nil
}

// parseResponse joins the translated segments of a gtx payload:
// [[["translated","source",...],...],...]
func parseResponse(body []byte) (string, error) {
	var payload []json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("empty translation response")
	}

	var segments [][]any
	if err := json.Unmarshal(payload[0], &segments); err != nil {
		return "", fmt.Errorf("unexpected segment layout: %w", err)
	}

	var sb strings.Builder
	for _, segment := range segments {
		if len(segment) == 0 {
			continue
		}
		if text, ok := segment[0].(string); ok {
			sb.WriteString(text)
		}
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("translation response has no text")
	}
	return sb.String(), nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
