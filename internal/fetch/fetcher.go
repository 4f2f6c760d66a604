package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Antwohlf/duocalculator/pkg/logging"
)

const defaultUserAgent = "duocalculator-scraper/1.0 (+https://github.com/duocalculator)"

// Config controls retry and timeout behavior for the fetcher.
type Config struct {
	Retries       int           `json:"retries"`
	Timeout       time.Duration `json:"timeout"`
	BackoffBase   time.Duration `json:"backoff_base"`
	BackoffCap    time.Duration `json:"backoff_cap"`
	RetryAfterCap time.Duration `json:"retry_after_cap"`
	UserAgent     string        `json:"user_agent"`
}

// DefaultConfig returns the production fetch settings: 3 attempts, 30s
// timeout, 2s/4s/8s backoff capped at 10s, and Retry-After honored up to 60s.
func DefaultConfig() *Config {
	return &Config{
		Retries:       3,
		Timeout:       30 * time.Second,
		BackoffBase:   time.Second,
		BackoffCap:    10 * time.Second,
		RetryAfterCap: 60 * time.Second,
		UserAgent:     UserAgent(),
	}
}

// UserAgent returns the outbound User-Agent, honoring the USER_AGENT
// environment override.
func UserAgent() string {
	if ua := os.Getenv("USER_AGENT"); ua != "" {
		return ua
	}
	return defaultUserAgent
}

// Client fetches pages with exponential-backoff retries and special-cased
// HTTP 429 handling.
type Client struct {
	config *Config
	http   *http.Client
}

// NewClient creates a fetch client. A nil config uses DefaultConfig.
func NewClient(config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	return &Client{
		config: config,
		http:   &http.Client{},
	}
}

// Fetch GETs url and returns the body text. Transient failures (transport
// errors, non-2xx statuses, timeouts) are retried with exponential backoff;
// a 429 waits out Retry-After instead. The returned error after the final
// attempt carries the attempt count and the root cause, with timeouts called
// out explicitly.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	logger := logging.GetLogger("fetcher")
	retries := c.config.Retries

	for attempt := 1; attempt <= retries; attempt++ {
		body, status, retryAfter, err := c.attempt(ctx, url)
		if err == nil && status == http.StatusTooManyRequests {
			if attempt == retries {
				return "", fmt.Errorf("failed to fetch %s after %d attempts: HTTP 429: Too Many Requests", url, retries)
			}
			delay := c.backoff(attempt)
			if retryAfter > 0 {
				delay = retryAfter
			}
			if delay > c.config.RetryAfterCap {
				delay = c.config.RetryAfterCap
			}
			logger.Warn().
				Str("url", url).
				Dur("delay", delay).
				Msg("Rate limited by upstream, honoring Retry-After")
			if err := sleep(ctx, delay); err != nil {
				return "", err
			}
			continue
		}
		if err == nil && (status < 200 || status >= 300) {
			err = fmt.Errorf("HTTP %d: %s", status, http.StatusText(status))
		}
		if err == nil {
			return body, nil
		}

		message := err.Error()
		if isTimeout(err) {
			message = "request timed out"
		}
		if attempt == retries {
			return "", fmt.Errorf("failed to fetch %s after %d attempts: %s", url, retries, message)
		}

		delay := c.backoff(attempt)
		logger.Warn().
			Str("url", url).
			Int("attempt", attempt).
			Int("retries", retries).
			Dur("delay", delay).
			Str("cause", message).
			Msg("Fetch attempt failed, backing off")
		if err := sleep(ctx, delay); err != nil {
			return "", err
		}
	}

	return "", fmt.Errorf("failed to fetch %s: no attempts made", url)
}

// attempt performs one GET. The returned retryAfter is only meaningful when
// status is 429.
func (c *Client) attempt(ctx context.Context, url string) (body string, status int, retryAfter time.Duration, err error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, 0, err
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", 0, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		return "", resp.StatusCode, parseRetryAfter(resp.Header.Get("Retry-After")), nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, 0, err
	}
	return string(data), resp.StatusCode, 0, nil
}

func (c *Client) backoff(attempt int) time.Duration {
	delay := c.config.BackoffBase * (1 << uint(attempt))
	if delay > c.config.BackoffCap {
		delay = c.config.BackoffCap
	}
	return delay
}

// parseRetryAfter handles both forms of the header: delta seconds and an
// HTTP date. Unparseable values yield zero, which falls back to exponential
// backoff.
func parseRetryAfter(header string) time.Duration {
	trimmed := strings.TrimSpace(header)
	if trimmed == "" {
		return 0
	}
	if seconds, err := strconv.ParseFloat(trimmed, 64); err == nil && seconds >= 0 {
		return time.Duration(seconds * float64(time.Second))
	}
	if t, err := http.ParseTime(trimmed); err == nil {
		if delta := time.Until(t); delta > 0 {
			return delta
		}
	}
	return 0
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
