// Package dispatch turns the active request into a transport call and
// serializes overlapping sends so only the newest outcome is kept.
package dispatch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/unkn0wn-root/restpad/internal/httpclient"
	"github.com/unkn0wn-root/restpad/internal/kv"
	"github.com/unkn0wn-root/restpad/internal/render"
	"github.com/unkn0wn-root/restpad/internal/request"
)

var schemePrefix = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

type Transport interface {
	Do(ctx context.Context, req httpclient.Request) (*httpclient.Response, error)
}

// Source is the request collection as seen by the dispatcher.
type Source interface {
	Save(rerender bool) error
	Active() (request.Entity, bool)
}

type Dispatcher struct {
	src       Source
	transport Transport
	log       *slog.Logger
	now       func() time.Time

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

type Option func(*Dispatcher)

func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

// WithClock replaces the wall clock used for elapsed time.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

func New(src Source, transport Transport, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		src:       src,
		transport: transport,
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Call is a prepared dispatch. Run may execute off the caller's goroutine.
type Call struct {
	Seq       uint64
	RequestID string
	Request   httpclient.Request

	ctx    context.Context
	cancel context.CancelFunc
	d      *Dispatcher
}

type Outcome struct {
	Seq       uint64
	RequestID string
	Request   httpclient.Request
	Response  *httpclient.Response
	Elapsed   time.Duration
	Err       error
	Body      string
	Pretty    string
	IsJSON    bool
}

func (o Outcome) Failed() bool {
	return o.Err != nil
}

// OK reports a 2xx response.
func (o Outcome) OK() bool {
	return o.Err == nil && o.Response.OK()
}

// Status is the label shown next to the response, "Error" for transport failures.
func (o Outcome) Status() string {
	if o.Err != nil || o.Response == nil {
		return "Error"
	}
	if o.Response.StatusText == "" {
		return fmt.Sprintf("%d", o.Response.StatusCode)
	}
	return fmt.Sprintf("%d %s", o.Response.StatusCode, o.Response.StatusText)
}

func (o Outcome) ElapsedMillis() int64 {
	return o.Elapsed.Milliseconds()
}

// Prepare saves pending edits and builds the call for the active request. It
// returns false without a call when there is nothing to send. A prepared call
// supersedes and cancels any earlier one.
func (d *Dispatcher) Prepare(ctx context.Context) (*Call, bool) {
	if err := d.src.Save(true); err != nil {
		d.log.Warn("save before send", "err", err)
	}

	e, ok := d.src.Active()
	if !ok {
		return nil, false
	}
	req, ok := BuildRequest(e)
	if !ok {
		return nil, false
	}

	callCtx, cancel := context.WithCancel(ctx)

	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
	}
	d.seq++
	seq := d.seq
	d.cancel = cancel
	d.mu.Unlock()

	return &Call{
		Seq:       seq,
		RequestID: e.ID,
		Request:   req,
		ctx:       callCtx,
		cancel:    cancel,
		d:         d,
	}, true
}

// Run performs the transport call and measures its wall time.
func (c *Call) Run() Outcome {
	defer c.cancel()

	out := Outcome{Seq: c.Seq, RequestID: c.RequestID, Request: c.Request}
	start := c.d.now()
	resp, err := c.d.transport.Do(c.ctx, c.Request)
	out.Elapsed = c.d.now().Sub(start)
	if err != nil {
		out.Err = err
		c.d.log.Debug("dispatch failed", "seq", c.Seq, "url", c.Request.URL, "err", err)
		return out
	}

	out.Response = resp
	out.Body = string(resp.Body)
	out.Pretty, out.IsJSON = render.PrettyJSON(out.Body)
	c.d.log.Debug("dispatch done",
		"seq", c.Seq,
		"url", c.Request.URL,
		"status", resp.StatusCode,
		"elapsed", out.Elapsed,
	)
	return out
}

// Accept reports whether o belongs to the newest dispatch.
func (d *Dispatcher) Accept(o Outcome) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if o.Seq != d.seq {
		return false
	}
	d.cancel = nil
	return true
}

// Send prepares and runs a dispatch synchronously.
func (d *Dispatcher) Send(ctx context.Context) (Outcome, bool) {
	call, ok := d.Prepare(ctx)
	if !ok {
		return Outcome{}, false
	}
	out := call.Run()
	return out, d.Accept(out)
}

// Cancel aborts the in-flight dispatch, if any. Its outcome is still delivered
// to Run's caller but is no longer accepted.
func (d *Dispatcher) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.seq++
}

func (d *Dispatcher) InFlight() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancel != nil
}

// NormalizeURL prefixes http:// unless raw already carries a scheme.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || schemePrefix.MatchString(raw) {
		return raw
	}
	return "http://" + raw
}

// BuildRequest maps an entity onto a transport request. It returns false
// when the entity has no URL.
func BuildRequest(e request.Entity) (httpclient.Request, bool) {
	target := NormalizeURL(e.URL)
	if target == "" {
		return httpclient.Request{}, false
	}

	method := request.NormalizeMethod(e.Method)

	req := httpclient.Request{
		ID:      e.ID,
		Name:    e.DisplayName(),
		Method:  method,
		URL:     target,
		Headers: kv.Header(e.Headers),
	}
	if request.HasBody(method) && e.BodyType != request.BodyNone && e.BodyType != "" {
		body := e.BodyContent
		req.Body = &body
	}
	return req, true
}
