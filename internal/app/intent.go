package app

import (
	"github.com/unkn0wn-root/restpad/internal/kv"
	"github.com/unkn0wn-root/restpad/internal/request"
)

// Table names one of the two key/value editors.
type Table int

const (
	ParamsTable Table = iota
	HeadersTable
)

func (t Table) String() string {
	if t == HeadersTable {
		return "headers"
	}
	return "params"
}

// Intent is a user action emitted by a view.
type Intent interface {
	intent()
}

type AddRow struct {
	Table Table
}

type DeleteRow struct {
	Table Table
	Index int
}

type EditRow struct {
	Table Table
	Index int
	Field kv.Field
	Value string
}

type EditURL struct {
	URL string
}

type EditMethod struct {
	Method string
}

type EditBodyType struct {
	BodyType request.BodyType
}

type EditBody struct {
	Content string
}

// EditCurl updates the pending curl text without importing it.
type EditCurl struct {
	Text string
}

type Switch struct {
	ID string
}

type Create struct{}

type Delete struct {
	ID string
}

type Send struct{}

// Save persists the form. Rerender also refreshes the request list.
type Save struct {
	Rerender bool
}

// ImportCurl parses Text, or the pending curl text when Text is empty.
type ImportCurl struct {
	Text string
}

type ToggleTheme struct{}

type ResizePanel struct {
	Size int
}

func (AddRow) intent()       {}
func (DeleteRow) intent()    {}
func (EditRow) intent()      {}
func (EditURL) intent()      {}
func (EditMethod) intent()   {}
func (EditBodyType) intent() {}
func (EditBody) intent()     {}
func (EditCurl) intent()     {}
func (Switch) intent()       {}
func (Create) intent()       {}
func (Delete) intent()       {}
func (Send) intent()         {}
func (Save) intent()         {}
func (ImportCurl) intent()   {}
func (ToggleTheme) intent()  {}
func (ResizePanel) intent()  {}
