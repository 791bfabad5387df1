package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	maxBodyBytes     = 8 << 20
	defaultUserAgent = "matchfeed/1.0 (+https://github.com/riskibarqy/matchfeed)"

	TransportNetHTTP  = "nethttp"
	TransportFastHTTP = "fasthttp"
)

// HTTPTransport is the net/http implementation, traced through otelhttp.
type HTTPTransport struct {
	client *http.Client
}

func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &HTTPTransport{client: client}
}

func (t *HTTPTransport) Do(ctx context.Context, req Request) (Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return Response{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", defaultUserAgent)
	for key, value := range req.Header {
		httpReq.Header.Set(key, value)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, maxBodyBytes)); err != nil {
		return Response{StatusCode: resp.StatusCode}, fmt.Errorf("read response body: %w", err)
	}

	body := make([]byte, buf.Len())
	copy(body, buf.B)
	return Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// FastTransport uses fasthttp for lower allocation on high entity counts.
type FastTransport struct {
	client *fasthttp.Client
}

func NewFastTransport(client *fasthttp.Client) *FastTransport {
	if client == nil {
		client = &fasthttp.Client{
			Name:                     defaultUserAgent,
			MaxResponseBodySize:      maxBodyBytes,
			NoDefaultUserAgentHeader: false,
		}
	}
	return &FastTransport{client: client}
}

func (t *FastTransport) Do(ctx context.Context, req Request) (Response, error) {
	fastReq := fasthttp.AcquireRequest()
	fastReq.SetRequestURI(req.URL)
	fastReq.Header.SetMethod(fasthttp.MethodGet)
	fastReq.Header.Set("Accept", "application/json")
	for key, value := range req.Header {
		fastReq.Header.Set(key, value)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(30 * time.Second)
	}

	// The goroutine owns fastReq and fastResp; done is buffered so it never
	// blocks after the caller has gone.
	done := make(chan fastResult, 1)
	go func() {
		fastResp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseRequest(fastReq)
		defer fasthttp.ReleaseResponse(fastResp)

		if err := t.client.DoDeadline(fastReq, fastResp, deadline); err != nil {
			done <- fastResult{err: err}
			return
		}
		done <- fastResult{
			resp: Response{StatusCode: fastResp.StatusCode(), Body: append([]byte(nil), fastResp.Body()...)},
		}
	}()

	select {
	case <-ctx.Done():
		return Response{}, fmt.Errorf("send request: %w", ctx.Err())
	case res := <-done:
		if res.err != nil {
			return Response{}, fmt.Errorf("send request: %w", res.err)
		}
		return res.resp, nil
	}
}

type fastResult struct {
	resp Response
	err  error
}

// NewTransport picks an implementation by name; unknown names use net/http.
func NewTransport(name string) Transport {
	if strings.EqualFold(strings.TrimSpace(name), TransportFastHTTP) {
		return NewFastTransport(nil)
	}
	return NewHTTPTransport(nil)
}

// RedactURL hides credentials that may be carried in a query string.
func RedactURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := parsed.Query()
	changed := false
	for _, key := range []string{"api_token", "token", "apikey"} {
		if query.Has(key) {
			query.Set(key, "REDACTED")
			changed = true
		}
	}
	if changed {
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

func AbbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
