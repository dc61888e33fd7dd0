package app

import (
	"strconv"
	"time"

	"github.com/unkn0wn-root/restpad/internal/dispatch"
	"github.com/unkn0wn-root/restpad/internal/render"
)

type ResponseState int

const (
	ResponseIdle ResponseState = iota
	ResponsePending
	ResponseDone
	ResponseFailed
)

const (
	idleStatus   = "---"
	debugWaiting = "Waiting..."
)

// ResponseView is the transient, never persisted result of the last send.
type ResponseView struct {
	State         ResponseState
	Status        string
	OK            bool
	Elapsed       time.Duration
	Body          string
	RawBody       string
	Lexer         string
	ContentType   string
	Truncated     bool
	Timing        string
	DebugRequest  string
	DebugResponse string
}

func idleResponse() ResponseView {
	return ResponseView{
		State:         ResponseIdle,
		Status:        idleStatus,
		DebugRequest:  debugWaiting,
		DebugResponse: debugWaiting,
	}
}

func (v ResponseView) ElapsedLabel() string {
	return formatMillis(v.Elapsed)
}

func pendingResponse(call *dispatch.Call) ResponseView {
	v := idleResponse()
	v.State = ResponsePending
	v.Status = "Sending..."
	v.DebugRequest = render.RequestText(
		call.Request.Method,
		call.Request.URL,
		call.Request.Headers,
		call.Request.Body,
	)
	return v
}

func outcomeResponse(prev ResponseView, out dispatch.Outcome) ResponseView {
	v := prev
	v.Elapsed = out.Elapsed
	v.Status = out.Status()
	if out.Failed() {
		v.State = ResponseFailed
		v.OK = false
		v.Body = out.Err.Error()
		v.RawBody = v.Body
		v.Lexer = ""
		v.DebugResponse = render.ErrorText(out.Err)
		return v
	}

	v.State = ResponseDone
	v.OK = out.OK()
	v.RawBody = out.Body
	v.ContentType = out.Response.Headers.Get("Content-Type")
	v.Truncated = out.Response.Truncated
	v.Timing = out.Response.Timeline.Summary()
	v.Body, v.Lexer = render.Body(out.Body, v.ContentType)
	v.DebugResponse = render.ResponseText(out.Response)
	return v
}

func formatMillis(d time.Duration) string {
	return strconv.FormatInt(d.Milliseconds(), 10) + "ms"
}
