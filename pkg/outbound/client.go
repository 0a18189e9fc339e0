// Package outbound issues the HTTP requests of connectivity probes. Non-2xx
// responses are returned verbatim; only failures to obtain a response are
// reported as errors, always as *TransportError.
package outbound

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultMaxRedirects is the number of redirect hops followed.
	DefaultMaxRedirects = 5
	// DefaultMaxConnsPerHost bounds the connection pool per provider host.
	DefaultMaxConnsPerHost = 10

	// maxResponseSize is the maximum allowed response body size (10MB)
	maxResponseSize = 10 * 1024 * 1024
)

// Options configures a Client. Zero values select the defaults.
type Options struct {
	MaxRedirects    int
	MaxConnsPerHost int
	// Transport overrides the pooled transport, e.g. to trust a test server.
	Transport http.RoundTripper
}

// Response is an HTTP response whose body has been fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	// Text is Body decoded by the Content-Type charset (UTF-8 by default).
	Text string
}

// Client is a small HTTP client with a bounded connection pool.
type Client struct {
	httpClient *http.Client
}

// NewClient constructs a Client.
func NewClient(opts Options) *Client {
	maxRedirects := opts.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = DefaultMaxRedirects
	}
	maxConns := opts.MaxConnsPerHost
	if maxConns <= 0 {
		maxConns = DefaultMaxConnsPerHost
	}

	transport := opts.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:   true,
			TLSHandshakeTimeout: 10 * time.Second,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: maxConns,
			MaxConnsPerHost:     maxConns,
			IdleConnTimeout:     90 * time.Second,
		}
	}

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// Get issues a GET bounded by timeout.
func (c *Client) Get(ctx context.Context, url string, header http.Header, timeout time.Duration) (*Response, error) {
	return c.do(ctx, http.MethodGet, url, header, nil, timeout)
}

// Post issues a POST of body bounded by timeout.
func (c *Client) Post(ctx context.Context, url string, header http.Header, body []byte, timeout time.Duration) (*Response, error) {
	return c.do(ctx, http.MethodPost, url, header, body, timeout)
}

func (c *Client) do(ctx context.Context, method, url string, header http.Header, body []byte, timeout time.Duration) (*Response, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, &TransportError{Kind: KindUnknown, Detail: err.Error(), URL: url, Err: err}
	}
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		terr := newTransportError(url, err, KindUnknown)
		log.Debug().
			Str("method", method).
			Str("url", url).
			Str("kind", string(terr.Kind)).
			Dur("latency", time.Since(start)).
			Msg("[OUTBOUND] Request failed")
		return nil, terr
	}
	defer resp.Body.Close()

	// Limit response body size to prevent OOM
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		fallback := KindRead
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			fallback = KindTimeout
		}
		return nil, newTransportError(url, err, fallback)
	}

	log.Debug().
		Str("method", method).
		Str("url", url).
		Int("status_code", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("[OUTBOUND] Response received")

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
		Text:       DecodeBody(resp.Header.Get("Content-Type"), respBody),
	}, nil
}
