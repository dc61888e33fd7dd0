// Package app wires the request collection, the URL/params synchronizer, the
// curl importer and the dispatcher behind a single controller that consumes
// view intents.
package app

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/unkn0wn-root/restpad/internal/collection"
	"github.com/unkn0wn-root/restpad/internal/curl"
	"github.com/unkn0wn-root/restpad/internal/dispatch"
	"github.com/unkn0wn-root/restpad/internal/kv"
	"github.com/unkn0wn-root/restpad/internal/request"
	"github.com/unkn0wn-root/restpad/internal/store"
	"github.com/unkn0wn-root/restpad/internal/theme"
	"github.com/unkn0wn-root/restpad/internal/urlsync"
)

// MinPanelSize is the smallest debug drawer size a resize may persist.
const MinPanelSize = 36

type Config struct {
	KV        store.KV
	Transport dispatch.Transport
	Logger    *slog.Logger
	Theme     theme.Mode
	// IDs overrides request id allocation.
	IDs func() string
}

// Controller owns all editor state. It is not safe for concurrent use; only
// dispatch.Call.Run may execute elsewhere.
type Controller struct {
	ctx        context.Context
	kv         store.KV
	log        *slog.Logger
	sync       *urlsync.Synchronizer
	form       *Form
	store      *collection.Store
	dispatcher *dispatch.Dispatcher

	theme       theme.Mode
	response    ResponseView
	notice      string
	listVersion int
}

func New(ctx context.Context, cfg Config) *Controller {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	mode := cfg.Theme
	if mode == "" {
		mode = theme.Dark
	}

	c := &Controller{
		ctx:      ctx,
		kv:       cfg.KV,
		log:      logger,
		sync:     urlsync.New(),
		theme:    mode,
		response: idleResponse(),
	}
	c.form = newForm(c.sync)
	c.store = collection.New(
		cfg.KV,
		c.form,
		collection.WithLogger(logger.With("component", "collection")),
		collection.WithListener(c),
		collection.WithIDs(cfg.IDs),
	)
	c.dispatcher = dispatch.New(
		c.store,
		cfg.Transport,
		dispatch.WithLogger(logger.With("component", "dispatch")),
	)
	return c
}

// Load restores the saved collection and fills the form.
func (c *Controller) Load() error {
	return c.store.Load()
}

// Handle applies in. The returned call is non-nil only for a Send that has
// something to dispatch; run it and pass its outcome to Deliver.
func (c *Controller) Handle(in Intent) *dispatch.Call {
	c.notice = ""

	switch in := in.(type) {
	case AddRow:
		c.form.list(in.Table).Add("", "")
		c.rowsChanged(in.Table)
	case DeleteRow:
		if !c.form.list(in.Table).Delete(in.Index) {
			return nil
		}
		c.rowsChanged(in.Table)
	case EditRow:
		if !c.form.list(in.Table).Edit(in.Index, in.Field, in.Value) {
			return nil
		}
		c.rowsChanged(in.Table)
	case EditURL:
		c.form.URL = in.URL
		c.sync.Decompose(in.URL, func(pairs []kv.Pair) {
			c.form.Params.Replace(pairs)
		})
		c.save(false)
	case EditMethod:
		c.form.Method = request.NormalizeMethod(in.Method)
		c.save(false)
	case EditBodyType:
		c.form.BodyType = in.BodyType
		c.save(false)
	case EditBody:
		c.form.Body = in.Content
		c.save(false)
	case EditCurl:
		c.form.Curl = in.Text
	case Switch:
		if _, err := c.store.Switch(in.ID, true); err != nil {
			c.log.Warn("switch request", "id", in.ID, "err", err)
		}
	case Create:
		if _, err := c.store.Create(); err != nil {
			c.log.Warn("create request", "err", err)
		}
	case Delete:
		if _, err := c.store.Delete(in.ID); err != nil {
			c.log.Warn("delete request", "id", in.ID, "err", err)
		}
	case Save:
		c.save(in.Rerender)
		if in.Rerender {
			c.notice = "Saved"
		}
	case Send:
		return c.prepareSend()
	case ImportCurl:
		c.importCurl(in.Text)
	case ToggleTheme:
		c.theme = c.theme.Toggle()
		if c.kv != nil {
			if err := theme.Save(c.kv, c.theme); err != nil {
				c.log.Warn("save theme", "err", err)
			}
		}
	case ResizePanel:
		if in.Size < MinPanelSize {
			return nil
		}
		if err := c.store.SetPanelSize(in.Size); err != nil {
			c.log.Warn("save panel size", "err", err)
		}
	default:
		c.log.Debug("ignoring unknown intent", "intent", in)
	}
	return nil
}

// Deliver records out in the response view unless a newer send superseded it.
func (c *Controller) Deliver(out dispatch.Outcome) bool {
	if !c.dispatcher.Accept(out) {
		c.log.Debug("dropping stale response", "seq", out.Seq)
		return false
	}
	c.response = outcomeResponse(c.response, out)
	if out.Failed() {
		c.log.Info("request failed", "url", out.Request.URL, "err", out.Err)
	}
	return true
}

// SendNow dispatches the active request synchronously.
func (c *Controller) SendNow(ctx context.Context) (dispatch.Outcome, bool) {
	if ctx != nil {
		prev := c.ctx
		c.ctx = ctx
		defer func() { c.ctx = prev }()
	}
	call := c.Handle(Send{})
	if call == nil {
		return dispatch.Outcome{}, false
	}
	out := call.Run()
	return out, c.Deliver(out)
}

func (c *Controller) prepareSend() *dispatch.Call {
	call, ok := c.dispatcher.Prepare(c.ctx)
	if !ok {
		return nil
	}
	c.response = pendingResponse(call)
	return call
}

// rowsChanged persists a table edit. Params edits rewrite the URL first.
func (c *Controller) rowsChanged(t Table) {
	if t == ParamsTable {
		c.sync.Recompose(c.form.URL, c.form.Params.Rows(), func(next string) {
			c.form.URL = next
		})
	}
	c.save(false)
}

func (c *Controller) importCurl(text string) {
	if strings.TrimSpace(text) == "" {
		text = c.form.Curl
	} else {
		c.form.Curl = text
	}
	if strings.TrimSpace(text) == "" {
		return
	}

	draft, err := curl.Parse(text)
	if err != nil {
		c.log.Warn("import curl", "err", err)
		c.notice = "Could not parse curl command"
		return
	}

	// Update works on the stored entity, so pending form edits go in first.
	c.save(false)
	e, ok, err := c.store.Update(draft.Apply)
	if err != nil {
		c.log.Warn("save imported request", "err", err)
	}
	if !ok {
		return
	}
	c.form.fill(e, true)
	c.resetResponse()
	c.log.Debug("imported curl", "draft", draft.String())
	c.notice = "Imported curl command"
}

func (c *Controller) save(rerender bool) {
	if err := c.store.Save(rerender); err != nil {
		c.log.Warn("save request", "err", err)
	}
}

func (c *Controller) resetResponse() {
	c.dispatcher.Cancel()
	c.response = idleResponse()
}

// RequestsChanged implements collection.Listener.
func (c *Controller) RequestsChanged() {
	c.listVersion++
}

// ResponseReset implements collection.Listener. Any send still in flight
// belongs to the previous request and is dropped.
func (c *Controller) ResponseReset() {
	c.resetResponse()
}

func (c *Controller) Form() *Form {
	return c.form
}

func (c *Controller) Requests() []request.Entity {
	return c.store.Requests()
}

func (c *Controller) ActiveID() string {
	return c.store.ActiveID()
}

func (c *Controller) Active() (request.Entity, bool) {
	return c.store.Active()
}

func (c *Controller) Store() *collection.Store {
	return c.store
}

func (c *Controller) Response() ResponseView {
	return c.response
}

func (c *Controller) Theme() theme.Mode {
	return c.theme
}

func (c *Controller) PanelSize() int {
	return c.store.PanelSize()
}

// Notice is a one-shot status message from the last intent.
func (c *Controller) Notice() string {
	return c.notice
}

// ListVersion increases whenever the request list needs redrawing.
func (c *Controller) ListVersion() int {
	return c.listVersion
}

func (c *Controller) SyncPhase() urlsync.Phase {
	return c.sync.Phase()
}
