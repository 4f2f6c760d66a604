package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/temoto/robotstxt"

	"github.com/Antwohlf/duocalculator/pkg/logging"
)

// CheckRobots does a best-effort robots.txt preflight for the upstream base
// URL. The scraper targets a single known host, so a disallow is surfaced to
// the operator as a warning rather than aborting the run; unreachable or
// malformed robots.txt counts as allowed, matching the usual crawler
// convention for 4xx responses.
func CheckRobots(ctx context.Context, base, userAgent string) bool {
	logger := logging.GetLogger("robots")

	baseURL, err := url.Parse(base)
	if err != nil {
		return true
	}
	robotsURL := baseURL.Scheme + "://" + baseURL.Host + "/robots.txt"

	reqCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return true
	}
	req.Header.Set("User-Agent", userAgent)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		logger.Debug().Err(err).Str("url", robotsURL).Msg("robots.txt unreachable, assuming allowed")
		return true
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return true
	}

	robots, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		logger.Debug().Err(err).Str("url", robotsURL).Msg("robots.txt unparseable, assuming allowed")
		return true
	}

	path := baseURL.Path
	if path == "" {
		path = "/"
	}
	allowed := robots.TestAgent(path, userAgent)
	if !allowed {
		logger.Warn().
			Str("url", robotsURL).
			Str("user_agent", userAgent).
			Msg("robots.txt disallows scraping this path")
	}
	return allowed
}
