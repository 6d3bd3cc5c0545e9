package crawler

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"catalogsync/internal/logger"
)

// LogoResolver tenta descobrir a URL do logo de uma marca. "" significa que
// nenhum candidato respondeu; nunca é erro.
type LogoResolver interface {
	Resolve(ctx context.Context, brandName string) string
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

// CandidateDomains guesses the marketing domains a brand is likely to own.
func CandidateDomains(brandName string) []string {
	clean := nonAlnum.ReplaceAllString(strings.ToLower(brandName), "")
	if clean == "" {
		return nil
	}
	return []string{
		clean + ".com",
		clean + "mobile.com",
		clean + "phones.com",
		clean + "electronics.com",
	}
}

// LogoClient consulta um serviço de logos do tipo <base>/<domínio> com
// credencial Bearer.
type LogoClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *zap.Logger
}

func NewLogoClient(baseURL, apiKey string, timeout time.Duration, log *zap.Logger) *LogoClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &LogoClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		log:     logger.OrNop(log),
	}
}

func (c *LogoClient) Resolve(ctx context.Context, brandName string) string {
	for _, domain := range CandidateDomains(brandName) {
		u := c.baseURL + "/" + domain
		if c.exists(ctx, u) {
			return u
		}
	}
	return ""
}

func (c *LogoClient) exists(ctx context.Context, u string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Debug("logo não encontrado", zap.String("url", u), zap.Error(err))
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Debug("logo não encontrado", zap.String("url", u), zap.Int("status", resp.StatusCode))
		return false
	}
	return true
}
