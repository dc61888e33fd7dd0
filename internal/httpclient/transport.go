package httpclient

import (
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/http2"

	"github.com/unkn0wn-root/restpad/internal/errdef"
)

const (
	dialTimeout      = 30 * time.Second
	keepAlive        = 30 * time.Second
	handshakeTimeout = 10 * time.Second
	idleTimeout      = 90 * time.Second
	maxIdleConns     = 100
)

// buildHTTPClient is the default factory. Each send gets a fresh client built
// from the current Options, sharing only the cookie jar.
func (c *Client) buildHTTPClient(opts Options) (*http.Client, error) {
	transport, err := newTransport(opts)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Transport: transport, Jar: c.jar}
	if opts.Timeout > 0 {
		client.Timeout = opts.Timeout
	}
	if !opts.FollowRedirects {
		client.CheckRedirect = stopAtFirstResponse
	}
	return client, nil
}

func newTransport(opts Options) (*http.Transport, error) {
	dialer := &net.Dialer{Timeout: dialTimeout, KeepAlive: keepAlive}
	t := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   handshakeTimeout,
		MaxIdleConns:          maxIdleConns,
		IdleConnTimeout:       idleTimeout,
		ExpectContinueTimeout: time.Second,
		ForceAttemptHTTP2:     true,
	}

	if opts.ProxyURL != "" {
		proxy, err := url.Parse(opts.ProxyURL)
		if err != nil {
			return nil, errdef.Wrap(errdef.CodeHTTP, err, "parse proxy url %q", opts.ProxyURL)
		}
		t.Proxy = http.ProxyURL(proxy)
	}
	if opts.InsecureSkipVerify {
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // --insecure
	}
	if opts.HTTP2 {
		if err := http2.ConfigureTransport(t); err != nil {
			return nil, errdef.Wrap(errdef.CodeHTTP, err, "enable http2")
		}
	}
	return t, nil
}

// stopAtFirstResponse hands the 3xx back to the caller unfollowed.
func stopAtFirstResponse(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}
