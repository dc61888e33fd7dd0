package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/restpad/internal/collection"
	"github.com/unkn0wn-root/restpad/internal/httpclient"
	"github.com/unkn0wn-root/restpad/internal/kv"
	"github.com/unkn0wn-root/restpad/internal/request"
	"github.com/unkn0wn-root/restpad/internal/store"
	"github.com/unkn0wn-root/restpad/internal/theme"
	"github.com/unkn0wn-root/restpad/internal/urlsync"
)

type stubTransport struct {
	resp  *httpclient.Response
	err   error
	calls []httpclient.Request
}

func (s *stubTransport) Do(_ context.Context, req httpclient.Request) (*httpclient.Response, error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("req-%d", n)
	}
}

func newController(t *testing.T, kvs store.KV, tr *stubTransport) *Controller {
	t.Helper()
	if kvs == nil {
		kvs = store.NewMemory()
	}
	if tr == nil {
		tr = &stubTransport{resp: &httpclient.Response{StatusCode: 200, StatusText: "OK"}}
	}
	c := New(context.Background(), Config{KV: kvs, Transport: tr, IDs: seqIDs()})
	require.NoError(t, c.Load())
	return c
}

func savedState(t *testing.T, kvs store.KV) collection.State {
	t.Helper()
	raw, ok, err := kvs.Get(collection.StateKey)
	require.NoError(t, err)
	require.True(t, ok)
	var st collection.State
	require.NoError(t, json.Unmarshal([]byte(raw), &st))
	return st
}

func TestLoadFillsBlankForm(t *testing.T) {
	c := newController(t, nil, nil)
	f := c.Form()
	assert.Equal(t, request.MethodGet, f.Method)
	assert.Equal(t, 1, f.Params.Len())
	assert.Equal(t, 1, f.Headers.Len())
	assert.Equal(t, "---", c.Response().Status)
	assert.Equal(t, "Waiting...", c.Response().DebugRequest)
}

func TestEditURLDecomposesIntoParams(t *testing.T) {
	mem := store.NewMemory()
	c := newController(t, mem, nil)

	c.Handle(EditURL{URL: "http://x.test/p?a=1&b=2&a=3"})

	assert.Equal(t, []kv.Pair{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}, {Key: "a", Value: "3"}}, c.Form().Params.Pairs())
	assert.Equal(t, "http://x.test/p?a=1&b=2&a=3", c.Form().URL)
	assert.Equal(t, urlsync.Idle, c.SyncPhase())

	st := savedState(t, mem)
	require.Len(t, st.Requests, 1)
	assert.Equal(t, "http://x.test/p?a=1&b=2&a=3", st.Requests[0].URL)
	assert.Len(t, st.Requests[0].Params, 3)
}

func TestEditURLWithoutQueryKeepsParams(t *testing.T) {
	c := newController(t, nil, nil)
	c.Handle(EditURL{URL: "http://x.test?a=1"})
	c.Handle(EditURL{URL: "http://x.test/other"})
	assert.Equal(t, []kv.Pair{{Key: "a", Value: "1"}}, c.Form().Params.Pairs())
}

func TestEditParamRecomposesURL(t *testing.T) {
	c := newController(t, nil, nil)
	c.Handle(EditURL{URL: "http://x.test/p?a=1"})

	c.Handle(EditRow{Table: ParamsTable, Index: 0, Field: kv.FieldValue, Value: "hello world"})
	assert.Equal(t, "http://x.test/p?a=hello%20world", c.Form().URL)

	c.Handle(AddRow{Table: ParamsTable})
	c.Handle(EditRow{Table: ParamsTable, Index: 1, Field: kv.FieldKey, Value: "q"})
	assert.Equal(t, "http://x.test/p?a=hello%20world&q=", c.Form().URL)

	c.Handle(DeleteRow{Table: ParamsTable, Index: 0})
	assert.Equal(t, "http://x.test/p?q=", c.Form().URL)

	c.Handle(DeleteRow{Table: ParamsTable, Index: 0})
	assert.Equal(t, "http://x.test/p", c.Form().URL)
}

func TestHeaderEditsLeaveURLAlone(t *testing.T) {
	c := newController(t, nil, nil)
	c.Handle(EditURL{URL: "http://x.test?a=1"})
	c.Handle(EditRow{Table: HeadersTable, Index: 0, Field: kv.FieldKey, Value: "X-Token"})
	c.Handle(EditRow{Table: HeadersTable, Index: 0, Field: kv.FieldValue, Value: "t"})
	assert.Equal(t, "http://x.test?a=1", c.Form().URL)
	assert.Equal(t, []kv.Pair{{Key: "X-Token", Value: "t"}}, c.Form().Headers.Pairs())
}

func TestFieldEditsPersistImmediately(t *testing.T) {
	mem := store.NewMemory()
	c := newController(t, mem, nil)

	c.Handle(EditRow{Table: HeadersTable, Index: 0, Field: kv.FieldKey, Value: "X-Token"})
	c.Handle(EditRow{Table: HeadersTable, Index: 0, Field: kv.FieldValue, Value: "abc"})
	assert.Equal(t, []kv.Pair{{Key: "X-Token", Value: "abc"}}, savedState(t, mem).Requests[0].Headers)

	c.Handle(EditBodyType{BodyType: request.BodyJSON})
	c.Handle(EditBody{Content: `{"a":1}`})
	st := savedState(t, mem)
	assert.Equal(t, request.BodyJSON, st.Requests[0].BodyType)
	assert.Equal(t, `{"a":1}`, st.Requests[0].BodyContent)

	c.Handle(AddRow{Table: HeadersTable})
	c.Handle(EditRow{Table: HeadersTable, Index: 1, Field: kv.FieldKey, Value: "Accept"})
	c.Handle(DeleteRow{Table: HeadersTable, Index: 0})
	assert.Equal(t, []kv.Pair{{Key: "Accept", Value: ""}}, savedState(t, mem).Requests[0].Headers)
}

func TestImportCurlWithoutDataKeepsTypedBody(t *testing.T) {
	mem := store.NewMemory()
	c := newController(t, mem, nil)
	c.Handle(EditBodyType{BodyType: request.BodyJSON})
	c.Handle(EditBody{Content: `{"b":2}`})

	c.Handle(ImportCurl{Text: "curl http://a.test/x -H 'A: b'"})

	f := c.Form()
	assert.Equal(t, "http://a.test/x", f.URL)
	assert.Equal(t, []kv.Pair{{Key: "A", Value: "b"}}, f.Headers.Pairs())
	assert.Equal(t, request.BodyJSON, f.BodyType)
	assert.Equal(t, `{"b":2}`, f.Body)
	assert.Equal(t, `{"b":2}`, savedState(t, mem).Requests[0].BodyContent)
}

func TestEditMethodNormalizes(t *testing.T) {
	mem := store.NewMemory()
	c := newController(t, mem, nil)
	c.Handle(EditMethod{Method: " patch "})
	assert.Equal(t, "PATCH", c.Form().Method)
	assert.Equal(t, "PATCH", savedState(t, mem).Requests[0].Method)
}

func TestOutOfRangeRowEditIsIgnored(t *testing.T) {
	c := newController(t, nil, nil)
	c.Handle(EditURL{URL: "http://x.test?a=1"})
	assert.Nil(t, c.Handle(EditRow{Table: ParamsTable, Index: 9, Field: kv.FieldKey, Value: "z"}))
	assert.Nil(t, c.Handle(DeleteRow{Table: ParamsTable, Index: -1}))
	assert.Equal(t, "http://x.test?a=1", c.Form().URL)
}

func TestCreateSwitchDelete(t *testing.T) {
	mem := store.NewMemory()
	c := newController(t, mem, nil)
	c.Handle(EditURL{URL: "http://one.test"})
	c.Handle(Create{})

	require.Len(t, c.Requests(), 2)
	assert.Equal(t, "req-2", c.ActiveID())
	assert.Empty(t, c.Form().URL)

	c.Handle(Switch{ID: "req-1"})
	assert.Equal(t, "req-1", c.ActiveID())
	assert.Equal(t, "http://one.test", c.Form().URL)

	c.Handle(Delete{ID: "req-1"})
	require.Len(t, c.Requests(), 1)
	assert.Equal(t, "req-2", c.ActiveID())

	c.Handle(Delete{ID: "req-2"})
	assert.Len(t, c.Requests(), 1)

	assert.Equal(t, "req-2", savedState(t, mem).ActiveID)
}

func TestSwitchUnknownIsNoop(t *testing.T) {
	c := newController(t, nil, nil)
	c.Handle(Switch{ID: "nope"})
	assert.Equal(t, "req-1", c.ActiveID())
}

func TestImportCurlKeepsCurlText(t *testing.T) {
	mem := store.NewMemory()
	c := newController(t, mem, nil)
	cmd := `curl -X POST "http://a.test/api?x=1" -H "Authorization: Bearer t" -d '{"a":1}'`

	c.Handle(EditCurl{Text: cmd})
	c.Handle(ImportCurl{})

	f := c.Form()
	assert.Equal(t, cmd, f.Curl)
	assert.Equal(t, request.MethodPost, f.Method)
	assert.Equal(t, "http://a.test/api?x=1", f.URL)
	assert.Equal(t, []kv.Pair{{Key: "x", Value: "1"}}, f.Params.Pairs())
	assert.Equal(t, []kv.Pair{
		{Key: "Authorization", Value: "Bearer t"},
		{Key: "Content-Type", Value: "application/json"},
	}, f.Headers.Pairs())
	assert.Equal(t, request.BodyJSON, f.BodyType)
	assert.Equal(t, `{"a":1}`, f.Body)
	assert.Equal(t, "Imported curl command", c.Notice())

	st := savedState(t, mem)
	assert.Equal(t, request.MethodPost, st.Requests[0].Method)
}

func TestImportCurlWithoutTextIsNoop(t *testing.T) {
	c := newController(t, nil, nil)
	c.Handle(EditURL{URL: "http://keep.test"})
	c.Handle(ImportCurl{Text: "   "})
	assert.Equal(t, "http://keep.test", c.Form().URL)
	assert.Empty(t, c.Notice())
}

func TestSwitchClearsCurlText(t *testing.T) {
	c := newController(t, nil, nil)
	c.Handle(Create{})
	c.Handle(EditCurl{Text: "curl http://a.test"})
	c.Handle(Switch{ID: "req-1"})
	assert.Empty(t, c.Form().Curl)
}

func TestSendRecordsResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"missing"}`))
	}))
	defer srv.Close()

	c := New(context.Background(), Config{
		KV:        store.NewMemory(),
		Transport: httpclient.NewClient(httpclient.DefaultOptions()),
		IDs:       seqIDs(),
	})
	require.NoError(t, c.Load())
	c.Handle(EditURL{URL: srv.URL + "/things"})

	call := c.Handle(Send{})
	require.NotNil(t, call)
	assert.Equal(t, ResponsePending, c.Response().State)
	assert.Contains(t, c.Response().DebugRequest, "GET /things HTTP/1.1")

	require.True(t, c.Deliver(call.Run()))
	view := c.Response()
	assert.Equal(t, ResponseDone, view.State)
	assert.Equal(t, "404 Not Found", view.Status)
	assert.False(t, view.OK)
	assert.Equal(t, "json", view.Lexer)
	assert.Equal(t, "{\n  \"error\": \"missing\"\n}", view.Body)
	assert.Contains(t, view.DebugResponse, "HTTP/1.1 404 Not Found")
}

func TestSendFailureShowsError(t *testing.T) {
	tr := &stubTransport{err: errors.New("dial tcp: connection refused")}
	c := newController(t, nil, tr)
	c.Handle(EditURL{URL: "localhost:1"})

	out, ok := c.SendNow(context.Background())
	require.True(t, ok)
	require.Len(t, tr.calls, 1)
	assert.Equal(t, "http://localhost:1", tr.calls[0].URL)
	assert.True(t, out.Failed())

	view := c.Response()
	assert.Equal(t, ResponseFailed, view.State)
	assert.Equal(t, "Error", view.Status)
	assert.Equal(t, "dial tcp: connection refused", view.Body)
	assert.Equal(t, "[Network Error]\ndial tcp: connection refused", view.DebugResponse)
}

func TestSendWithoutURLIsNoop(t *testing.T) {
	tr := &stubTransport{}
	c := newController(t, nil, tr)
	assert.Nil(t, c.Handle(Send{}))
	assert.Empty(t, tr.calls)
	assert.Equal(t, ResponseIdle, c.Response().State)
}

func TestSendSavesUnsavedBody(t *testing.T) {
	mem := store.NewMemory()
	c := newController(t, mem, nil)
	c.Handle(EditURL{URL: "http://a.test"})
	c.Handle(EditMethod{Method: "post"})
	c.Handle(EditBodyType{BodyType: request.BodyRaw})
	c.Handle(EditBody{Content: "payload"})

	_, ok := c.SendNow(context.Background())
	require.True(t, ok)

	st := savedState(t, mem)
	assert.Equal(t, "payload", st.Requests[0].BodyContent)
	assert.Equal(t, request.BodyRaw, st.Requests[0].BodyType)
	assert.Equal(t, request.MethodPost, st.Requests[0].Method)
}

func TestSwitchDropsInFlightResponse(t *testing.T) {
	c := newController(t, nil, nil)
	c.Handle(EditURL{URL: "http://a.test"})
	call := c.Handle(Send{})
	require.NotNil(t, call)

	c.Handle(Create{})
	assert.False(t, c.Deliver(call.Run()))
	assert.Equal(t, ResponseIdle, c.Response().State)
}

func TestSecondSendSupersedesFirst(t *testing.T) {
	c := newController(t, nil, nil)
	c.Handle(EditURL{URL: "http://a.test"})
	first := c.Handle(Send{})
	second := c.Handle(Send{})
	require.NotNil(t, first)
	require.NotNil(t, second)

	assert.False(t, c.Deliver(first.Run()))
	assert.True(t, c.Deliver(second.Run()))
}

func TestToggleThemePersists(t *testing.T) {
	mem := store.NewMemory()
	c := newController(t, mem, nil)
	require.Equal(t, theme.Dark, c.Theme())

	c.Handle(ToggleTheme{})
	assert.Equal(t, theme.Light, c.Theme())
	raw, ok, err := mem.Get(theme.Key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "light", raw)
}

func TestResizePanelPersists(t *testing.T) {
	mem := store.NewMemory()
	c := newController(t, mem, nil)
	assert.Equal(t, collection.DefaultPanelSize, c.PanelSize())

	c.Handle(ResizePanel{Size: 10})
	assert.Equal(t, collection.DefaultPanelSize, c.PanelSize())

	c.Handle(ResizePanel{Size: 420})
	assert.Equal(t, 420, c.PanelSize())
	assert.Equal(t, 420, savedState(t, mem).LastPanelSize)
}

func TestSaveNotice(t *testing.T) {
	c := newController(t, nil, nil)
	before := c.ListVersion()
	c.Handle(Save{Rerender: true})
	assert.Equal(t, "Saved", c.Notice())
	assert.Greater(t, c.ListVersion(), before)

	c.Handle(Save{})
	assert.Empty(t, c.Notice())
}
