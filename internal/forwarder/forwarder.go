package forwarder

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"

	"github.com/simman/go-gatekeeper/internal/config"
)

// Forwarder forwards filtered requests to upstream backends, optionally
// through a proxy
type Forwarder struct {
	mu      sync.Mutex
	clients map[string]*http.Client // keyed by proxy URL
}

// NewForwarder creates a new forwarder
func NewForwarder() *Forwarder {
	return &Forwarder{
		clients: make(map[string]*http.Client),
	}
}

// Forward forwards the request to the upstream backend
func (f *Forwarder) Forward(w http.ResponseWriter, r *http.Request, upstream config.Upstream) error {
	client, err := f.getClient(upstream.Proxy)
	if err != nil {
		return fmt.Errorf("failed to get client: %w", err)
	}

	targetURL := buildTargetURL(r, upstream)

	proxyReq, err := http.NewRequest(r.Method, targetURL, r.Body)
	if err != nil {
		return fmt.Errorf("failed to create upstream request: %w", err)
	}

	copyHeaders(proxyReq.Header, r.Header)

	// Host header without the upstream port
	proxyReq.Host = upstream.Addr
	if host, _, err := net.SplitHostPort(upstream.Addr); err == nil {
		proxyReq.Host = host
	}

	start := time.Now()
	resp, err := client.Do(proxyReq)
	if err != nil {
		log.Error().
			Err(err).
			Str("target", targetURL).
			Msg("upstream request failed")
		return fmt.Errorf("failed to forward request: %w", err)
	}
	defer resp.Body.Close()

	log.Info().
		Str("method", r.Method).
		Str("host", r.Host).
		Str("path", r.URL.Path).
		Str("target", targetURL).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("request forwarded")

	copyHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		log.Error().Err(err).Msg("failed to copy upstream response body")
		return fmt.Errorf("failed to copy response: %w", err)
	}

	return nil
}

// buildTargetURL constructs the upstream URL from the request
func buildTargetURL(r *http.Request, upstream config.Upstream) string {
	scheme := "https"
	if r.TLS == nil {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s%s", scheme, upstream.Addr, r.URL.RequestURI())
}

// getClient returns or creates an HTTP client for the given proxy URL
func (f *Forwarder) getClient(proxyURL string) (*http.Client, error) {
	if proxyURL == "" {
		proxyURL = "direct" // special key for direct connection
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if client, ok := f.clients[proxyURL]; ok {
		return client, nil
	}

	client, err := createClient(proxyURL)
	if err != nil {
		return nil, err
	}

	f.clients[proxyURL] = client
	return client, nil
}

// createClient creates a new HTTP client with the specified proxy
func createClient(proxyURL string) (*http.Client, error) {
	transport := &http.Transport{
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	if proxyURL != "" && proxyURL != "direct" {
		proxy, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxy)
	}

	if err := http2.ConfigureTransport(transport); err != nil {
		log.Warn().Err(err).Msg("failed to configure HTTP/2 transport")
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// Don't follow redirects
			return http.ErrUseLastResponse
		},
	}, nil
}

// copyHeaders copies HTTP headers from src to dst
func copyHeaders(dst, src http.Header) {
	for k, vv := range src {
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
}

// Close closes all HTTP clients
func (f *Forwarder) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, client := range f.clients {
		if transport, ok := client.Transport.(*http.Transport); ok {
			transport.CloseIdleConnections()
		}
	}
	return nil
}
