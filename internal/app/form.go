package app

import (
	"github.com/unkn0wn-root/restpad/internal/kv"
	"github.com/unkn0wn-root/restpad/internal/request"
	"github.com/unkn0wn-root/restpad/internal/urlsync"
)

// Form is the live editor for the active request.
type Form struct {
	Method   string
	URL      string
	Params   *kv.List
	Headers  *kv.List
	BodyType request.BodyType
	Body     string
	Curl     string

	sync *urlsync.Synchronizer
}

func newForm(sync *urlsync.Synchronizer) *Form {
	return &Form{
		Method:   request.MethodGet,
		Params:   kv.NewList(nil),
		Headers:  kv.NewList(nil),
		BodyType: request.BodyNone,
		sync:     sync,
	}
}

func (f *Form) Capture() request.Fields {
	return request.Fields{
		Method:      f.Method,
		URL:         f.URL,
		Params:      f.Params.Pairs(),
		Headers:     f.Headers.Pairs(),
		BodyType:    f.BodyType,
		BodyContent: f.Body,
	}
}

// Fill loads e into the form and clears the curl box.
func (f *Form) Fill(e request.Entity) {
	f.fill(e, false)
}

func (f *Form) fill(e request.Entity, keepCurl bool) {
	f.sync.Hold(func() {
		f.Method = e.Method
		f.URL = e.URL
		f.Params.Replace(e.Params)
		f.Params.EnsureBlank()
		f.Headers.Replace(e.Headers)
		f.Headers.EnsureBlank()
		f.BodyType = e.BodyType
		f.Body = e.BodyContent
		if !keepCurl {
			f.Curl = ""
		}
	})
}

func (f *Form) list(t Table) *kv.List {
	if t == HeadersTable {
		return f.Headers
	}
	return f.Params
}
