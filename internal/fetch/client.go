package fetch

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/net/proxy"

	"github.com/scentdb/scentcrawl/internal/identity"
)

// Response is the transport-level result of one HTTP GET: status,
// headers, decoded body, and the URL after any redirects.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte

	// FinalURL is the resolved URL after redirects. It is the
	// canonical form used for persistence and deduplication.
	FinalURL string
}

// Transport performs one HTTP GET under the given identity.
// Implementations must follow redirects transparently and report the
// final URL, support per-call proxy override from the identity, and
// send the identity's headers.
type Transport interface {
	Fetch(ctx context.Context, rawURL string, id identity.Identity) (*Response, error)
}

// Client is the production Transport. It builds a fresh http.Client
// per identity so proxy and header changes take full effect on
// rotation, requests compressed bodies and decodes gzip, deflate, and
// brotli responses, and caps how much of a body it reads.
type Client struct {
	timeout     time.Duration
	maxBodySize int64
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithMaxBodySize caps the response body size read into memory.
func WithMaxBodySize(size int64) ClientOption {
	return func(c *Client) {
		c.maxBodySize = size
	}
}

// NewClient creates a Client with the given per-request timeout.
func NewClient(timeout time.Duration, opts ...ClientOption) *Client {
	c := &Client{
		timeout:     timeout,
		maxBodySize: 5 * 1024 * 1024,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch performs one GET for the URL under the identity.
func (c *Client) Fetch(ctx context.Context, rawURL string, id identity.Identity) (*Response, error) {
	httpClient, err := c.httpClient(id)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("User-Agent", id.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", id.AcceptLanguage)
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("Connection", "keep-alive")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := c.decodeBody(resp)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		FinalURL:   resp.Request.URL.String(),
	}, nil
}

// httpClient builds an http.Client routed through the identity's
// proxy. HTTP(S) proxies go through the standard Transport.Proxy
// hook; socks5 proxies use a SOCKS5 dialer.
func (c *Client) httpClient(id identity.Identity) (*http.Client, error) {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   c.timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   c.timeout,
		ResponseHeaderTimeout: c.timeout,
		// Bodies are re-encoded manually so Accept-Encoding stays
		// under our control.
		DisableCompression: true,
	}

	if id.HasProxy() {
		proxyURL, err := url.Parse(id.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		switch proxyURL.Scheme {
		case "socks5", "socks5h":
			dialer, err := socksDialer(proxyURL, c.timeout)
			if err != nil {
				return nil, err
			}
			transport.DialContext = dialer
		default:
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   c.timeout,
	}, nil
}

// socksDialer builds a context dialer through a SOCKS5 proxy,
// carrying any credentials embedded in the proxy URL.
func socksDialer(proxyURL *url.URL, timeout time.Duration) (func(context.Context, string, string) (net.Conn, error), error) {
	var auth *proxy.Auth
	if proxyURL.User != nil {
		password, _ := proxyURL.User.Password()
		auth = &proxy.Auth{
			User:     proxyURL.User.Username(),
			Password: password,
		}
	}

	dialer, err := proxy.SOCKS5("tcp", proxyURL.Host, auth, &net.Dialer{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			return cd.DialContext(ctx, network, addr)
		}
		return dialer.Dial(network, addr)
	}, nil
}

// decodeBody reads the response body, decoding the declared content
// encoding, up to the configured size cap.
func (c *Client) decodeBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body

	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip decode: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fl := flate.NewReader(resp.Body)
		defer fl.Close()
		reader = fl
	}

	body, err := io.ReadAll(io.LimitReader(reader, c.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return body, nil
}
