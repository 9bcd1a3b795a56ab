package sitemap

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Engines maps search engine names to their sitemap ping endpoints.
var Engines = map[string]string{
	"google": "https://www.google.com/ping",
	"bing":   "https://www.bing.com/ping",
}

// Pinger asks a search engine to re-crawl a sitemap.
type Pinger interface {
	Ping(ctx context.Context, engine, sitemapURL string) error
}

type HTTPPinger struct {
	client    *http.Client
	endpoints map[string]string
}

func NewHTTPPinger(client *http.Client, endpoints map[string]string) *HTTPPinger {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if endpoints == nil {
		endpoints = Engines
	}
	return &HTTPPinger{client: client, endpoints: endpoints}
}

func (p *HTTPPinger) Ping(ctx context.Context, engine, sitemapURL string) error {
	endpoint, ok := p.endpoints[engine]
	if !ok {
		return fmt.Errorf("unknown search engine %q", engine)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?sitemap="+url.QueryEscape(sitemapURL), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; SitemapPing)")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s ping: unexpected status %d", engine, resp.StatusCode)
	}
	zap.S().Debugw("sitemap ping accepted", "engine", engine)
	return nil
}
