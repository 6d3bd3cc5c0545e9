package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"catalogsync/internal/logger"
	"catalogsync/internal/observability"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// PageFetcher é o que o orquestrador precisa para buscar documentos.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type FetcherOptions struct {
	UserAgent   string
	ProxyURL    string
	Timeout     time.Duration
	MaxAttempts int
	// BaseDelay precede toda tentativa; RetryDelay*n precede a tentativa n+1.
	BaseDelay  time.Duration
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// Fetcher faz GETs com identidade fixa de navegador, atraso com jitter antes
// de cada tentativa e retry com espera crescente.
type Fetcher struct {
	client      *http.Client
	headers     http.Header
	maxAttempts int
	baseDelay   time.Duration
	retryDelay  time.Duration
	log         *zap.Logger
	sleep       func(context.Context, time.Duration) error
}

func NewFetcher(opts FetcherOptions) (*Fetcher, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = defaultUserAgent
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.ProxyURL != "" {
		proxy, err := url.Parse(opts.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid PROXY_URL: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxy)
	}

	headers := http.Header{}
	headers.Set("User-Agent", ua)
	headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	headers.Set("Accept-Language", "en-US,en;q=0.5")
	headers.Set("Connection", "keep-alive")
	headers.Set("Upgrade-Insecure-Requests", "1")
	headers.Set("Sec-Fetch-Dest", "document")
	headers.Set("Sec-Fetch-Mode", "navigate")
	headers.Set("Sec-Fetch-Site", "none")
	headers.Set("Sec-Fetch-User", "?1")
	headers.Set("Pragma", "no-cache")
	headers.Set("Cache-Control", "no-cache")

	return &Fetcher{
		client:      &http.Client{Timeout: timeout, Transport: transport},
		headers:     headers,
		maxAttempts: attempts,
		baseDelay:   opts.BaseDelay,
		retryDelay:  opts.RetryDelay,
		log:         logger.OrNop(opts.Logger),
		sleep:       sleepCtx,
	}, nil
}

func (f *Fetcher) Fetch(ctx context.Context, u string) ([]byte, error) {
	var (
		lastErr    error
		lastStatus int
		attempt    int
	)
	for attempt = 1; attempt <= f.maxAttempts; attempt++ {
		if err := f.sleep(ctx, jitter(f.baseDelay)); err != nil {
			lastErr = err
			break
		}

		start := time.Now()
		body, status, err := f.get(ctx, u)
		observability.FetchDuration.Observe(time.Since(start).Seconds())
		if err == nil {
			observability.FetchAttempts.WithLabelValues("ok").Inc()
			return body, nil
		}
		observability.FetchAttempts.WithLabelValues("error").Inc()
		lastErr, lastStatus = err, status

		f.log.Warn("erro no fetch",
			zap.String("url", u),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", f.maxAttempts),
			zap.Int("status", status),
			zap.Error(err),
		)
		if attempt == f.maxAttempts {
			break
		}
		if err := f.sleep(ctx, jitter(f.retryDelay*time.Duration(attempt))); err != nil {
			lastErr = err
			break
		}
	}
	return nil, &FetchError{URL: u, Attempts: attempt, StatusCode: lastStatus, Err: lastErr}
}

func (f *Fetcher) get(ctx context.Context, u string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, err
	}
	for k, v := range f.headers {
		req.Header[k] = v
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, fmt.Errorf("http status %d", resp.StatusCode)
	}
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return b, resp.StatusCode, nil
}
