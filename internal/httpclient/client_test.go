package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/restpad/internal/errdef"
	"github.com/unkn0wn-root/restpad/internal/nettrace"
)

func strPtr(s string) *string { return &s }

func TestClientDoSendsMethodHeadersAndBody(t *testing.T) {
	var (
		gotMethod string
		gotHeader string
		gotBody   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotHeader = r.Header.Get("X-Token")
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := NewClient(DefaultOptions())
	resp, err := client.Do(context.Background(), Request{
		Method:  http.MethodPost,
		URL:     srv.URL + "/items",
		Headers: http.Header{"X-Token": {"abc"}},
		Body:    strPtr(`{"a":1}`),
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "abc", gotHeader)
	assert.Equal(t, `{"a":1}`, gotBody)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Created", resp.StatusText)
	assert.Equal(t, `{"ok":true}`, string(resp.Body))
	assert.Equal(t, "application/json", resp.Headers.Get("Content-Type"))
	assert.Equal(t, srv.URL+"/items", resp.EffectiveURL)
	assert.True(t, resp.OK())
}

func TestClientDoTreatsErrorStatusAsResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing", http.StatusNotFound)
	}))
	defer srv.Close()

	resp, err := NewClient(DefaultOptions()).Do(context.Background(), Request{URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Not Found", resp.StatusText)
	assert.False(t, resp.OK())
}

func TestClientDoRecordsTimeline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "pong")
	}))
	defer srv.Close()

	resp, err := NewClient(DefaultOptions()).Do(context.Background(), Request{URL: srv.URL})
	require.NoError(t, err)
	require.NotNil(t, resp.Timeline)
	assert.True(t, resp.Timeline.Has(nettrace.PhaseTTFB))
	assert.True(t, resp.Timeline.Has(nettrace.PhaseTransfer))
	assert.Contains(t, resp.Timeline.Summary(), "ttfb")
}

func TestClientDoNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	target := srv.URL
	srv.Close()

	_, err := NewClient(DefaultOptions()).Do(context.Background(), Request{URL: target})
	require.Error(t, err)
	assert.Equal(t, errdef.CodeHTTP, errdef.CodeOf(err))
}

func TestClientDoRejectsEmptyURL(t *testing.T) {
	_, err := NewClient(DefaultOptions()).Do(context.Background(), Request{URL: "  "})
	require.Error(t, err)
	assert.Equal(t, errdef.CodeHTTP, errdef.CodeOf(err))
}

func TestClientDoHonoursCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewClient(DefaultOptions()).Do(ctx, Request{URL: srv.URL})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClientRedirectPolicy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/start" {
			http.Redirect(w, r, "/end", http.StatusFound)
			return
		}
		_, _ = w.Write([]byte("done"))
	}))
	defer srv.Close()

	follow := NewClient(DefaultOptions())
	resp, err := follow.Do(context.Background(), Request{URL: srv.URL + "/start"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, srv.URL+"/end", resp.EffectiveURL)

	opts := DefaultOptions()
	opts.FollowRedirects = false
	resp, err = NewClient(opts).Do(context.Background(), Request{URL: srv.URL + "/start"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestClientTruncatesLargeBodies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("0123456789"))
	}))
	defer srv.Close()

	opts := DefaultOptions()
	opts.MaxBodyBytes = 4
	resp, err := NewClient(opts).Do(context.Background(), Request{URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "0123", string(resp.Body))
	assert.True(t, resp.Truncated)
}

func TestClientRejectsBadProxy(t *testing.T) {
	opts := DefaultOptions()
	opts.ProxyURL = "://bad"
	_, err := NewClient(opts).Do(context.Background(), Request{URL: "http://example.invalid"})
	require.Error(t, err)
}

func TestSortedHeader(t *testing.T) {
	h := http.Header{"B": {"2"}, "A": {"1", "3"}}
	assert.Equal(t, [][2]string{{"A", "1"}, {"A", "3"}, {"B", "2"}}, SortedHeader(h))
}
