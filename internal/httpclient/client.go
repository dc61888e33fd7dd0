package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/unkn0wn-root/restpad/internal/errdef"
	"github.com/unkn0wn-root/restpad/internal/nettrace"
	"github.com/unkn0wn-root/restpad/internal/telemetry"
)

type Options struct {
	Timeout            time.Duration
	FollowRedirects    bool
	InsecureSkipVerify bool
	ProxyURL           string
	HTTP2              bool
	MaxBodyBytes       int64
}

func DefaultOptions() Options {
	return Options{
		Timeout:         30 * time.Second,
		FollowRedirects: true,
		MaxBodyBytes:    32 << 20,
	}
}

// Request is what the dispatcher hands over. A nil Body sends no payload.
type Request struct {
	ID      string
	Name    string
	Method  string
	URL     string
	Headers http.Header
	Body    *string
}

type Response struct {
	StatusCode   int
	StatusText   string
	Proto        string
	Headers      http.Header
	Body         []byte
	Truncated    bool
	Duration     time.Duration
	EffectiveURL string
	Timeline     *nettrace.Timeline
}

func (r *Response) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// HeaderLines returns "name: value" pairs sorted by name, one per value.
func (r *Response) HeaderLines() [][2]string {
	if r == nil {
		return nil
	}
	return SortedHeader(r.Headers)
}

func SortedHeader(h http.Header) [][2]string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out [][2]string
	for _, k := range keys {
		for _, v := range h[k] {
			out = append(out, [2]string{k, v})
		}
	}
	return out
}

type Client struct {
	opts        Options
	jar         http.CookieJar
	httpFactory func(Options) (*http.Client, error)
	telemetry   telemetry.Instrumenter
}

func NewClient(opts Options) *Client {
	jar, _ := cookiejar.New(nil)
	c := &Client{opts: opts, jar: jar, telemetry: telemetry.Noop()}
	c.httpFactory = c.buildHTTPClient
	return c
}

// SetHTTPFactory allows callers to override how http.Client instances are created.
// Passing nil restores the default factory.
func (c *Client) SetHTTPFactory(factory func(Options) (*http.Client, error)) {
	if factory == nil {
		factory = c.buildHTTPClient
	}
	c.httpFactory = factory
}

// SetTelemetry configures the instrumenter used to emit OpenTelemetry spans. Passing nil restores the no-op implementation.
func (c *Client) SetTelemetry(instr telemetry.Instrumenter) {
	if instr == nil {
		instr = telemetry.Noop()
	}
	c.telemetry = instr
}

func (c *Client) Options() Options {
	return c.opts
}

// Do performs one round trip. Any HTTP status is a successful result; only a
// request that could not be built or completed returns an error.
func (c *Client) Do(ctx context.Context, req Request) (resp *Response, err error) {
	httpReq, err := buildHTTPRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	client, err := c.httpFactory(c.opts)
	if err != nil {
		return nil, err
	}

	spanCtx, span := c.telemetry.Start(httpReq.Context(), telemetry.RequestStart{
		ID:          req.ID,
		Name:        req.Name,
		HTTPRequest: httpReq,
	})
	trace := nettrace.NewSession()
	httpReq = trace.Bind(httpReq.WithContext(spanCtx))

	start := time.Now()
	defer func() {
		result := telemetry.RequestResult{
			Err:      err,
			Duration: time.Since(start),
			Timeline: trace.Timeline(),
		}
		if resp != nil {
			result.StatusCode = resp.StatusCode
			result.BodyBytes = len(resp.Body)
		}
		span.End(result)
	}()

	httpResp, err := client.Do(httpReq)
	if err != nil {
		trace.Finish(err)
		return nil, errdef.Wrap(errdef.CodeHTTP, err, "perform request")
	}
	defer func() {
		_ = httpResp.Body.Close()
	}()

	body, truncated, err := readBody(httpResp.Body, c.opts.MaxBodyBytes)
	trace.Finish(err)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeHTTP, err, "read response body")
	}

	return &Response{
		StatusCode:   httpResp.StatusCode,
		StatusText:   statusText(httpResp),
		Proto:        httpResp.Proto,
		Headers:      httpResp.Header.Clone(),
		Body:         body,
		Truncated:    truncated,
		Duration:     time.Since(start),
		EffectiveURL: effURL(httpReq, httpResp),
		Timeline:     trace.Timeline(),
	}, nil
}

func buildHTTPRequest(ctx context.Context, req Request) (*http.Request, error) {
	target := strings.TrimSpace(req.URL)
	if target == "" {
		return nil, errdef.New(errdef.CodeHTTP, "request url is empty")
	}

	var body io.Reader
	if req.Body != nil {
		body = strings.NewReader(*req.Body)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeHTTP, err, "build request")
	}
	for name, values := range req.Headers {
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
	}
	if host := httpReq.Header.Get("Host"); host != "" {
		httpReq.Host = host
	}
	return httpReq, nil
}

func readBody(r io.Reader, limit int64) ([]byte, bool, error) {
	if limit <= 0 {
		data, err := io.ReadAll(r)
		return data, false, err
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(data)) > limit {
		return data[:limit], true, nil
	}
	return data, false, nil
}

// statusText strips the numeric code from resp.Status ("404 Not Found").
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func effURL(req *http.Request, resp *http.Response) string {
	if resp != nil && resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL.String()
	}
	if req != nil && req.URL != nil {
		return req.URL.String()
	}
	return ""
}
