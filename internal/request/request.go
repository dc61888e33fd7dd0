package request

import (
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/unkn0wn-root/restpad/internal/kv"
)

const (
	MethodGet     = "GET"
	MethodPost    = "POST"
	MethodPut     = "PUT"
	MethodPatch   = "PATCH"
	MethodDelete  = "DELETE"
	MethodHead    = "HEAD"
	MethodOptions = "OPTIONS"
)

// Methods is the order offered by method pickers. Any other string is still
// accepted on an Entity.
var Methods = []string{
	MethodGet,
	MethodPost,
	MethodPut,
	MethodPatch,
	MethodDelete,
	MethodHead,
	MethodOptions,
}

type BodyType string

const (
	BodyNone BodyType = "none"
	BodyJSON BodyType = "json"
	BodyRaw  BodyType = "raw"
)

var BodyTypes = []BodyType{BodyNone, BodyJSON, BodyRaw}

const (
	DefaultName    = "New Request"
	displayNameMax = 20
)

type Entity struct {
	ID          string    `json:"id"          yaml:"id"`
	Name        string    `json:"name"        yaml:"name"`
	Method      string    `json:"method"      yaml:"method"`
	URL         string    `json:"url"         yaml:"url"`
	Params      []kv.Pair `json:"params"      yaml:"params"`
	Headers     []kv.Pair `json:"headers"     yaml:"headers"`
	BodyType    BodyType  `json:"bodyType"    yaml:"bodyType"`
	BodyContent string    `json:"bodyContent" yaml:"bodyContent"`
}

// Fields are the editable parts of an Entity, as captured from a form.
type Fields struct {
	Method      string
	URL         string
	Params      []kv.Pair
	Headers     []kv.Pair
	BodyType    BodyType
	BodyContent string
}

func New(id string) Entity {
	return Entity{
		ID:       id,
		Name:     DefaultName,
		Method:   MethodGet,
		Params:   []kv.Pair{},
		Headers:  []kv.Pair{},
		BodyType: BodyNone,
	}
}

func (e *Entity) Apply(f Fields) {
	e.Method = f.Method
	e.URL = f.URL
	e.Params = kv.Clone(f.Params)
	e.Headers = kv.Clone(f.Headers)
	e.BodyType = f.BodyType
	e.BodyContent = f.BodyContent
}

func (e Entity) Fields() Fields {
	return Fields{
		Method:      e.Method,
		URL:         e.URL,
		Params:      kv.Clone(e.Params),
		Headers:     kv.Clone(e.Headers),
		BodyType:    e.BodyType,
		BodyContent: e.BodyContent,
	}
}

func (e Entity) Clone() Entity {
	out := e
	out.Params = kv.Clone(e.Params)
	out.Headers = kv.Clone(e.Headers)
	return out
}

var schemePrefix = regexp.MustCompile(`^https?://`)

// DisplayName is the label shown in request lists: the URL without its query
// and http(s) scheme, or the stored name when the URL is empty.
func (e Entity) DisplayName() string {
	label := ""
	if e.URL != "" {
		base, _, _ := strings.Cut(e.URL, "?")
		label = schemePrefix.ReplaceAllString(base, "")
	}
	if label == "" {
		label = strings.TrimSpace(e.Name)
	}
	if label == "" {
		label = DefaultName
	}
	if runewidth.StringWidth(label) > displayNameMax {
		label = runewidth.Truncate(label, displayNameMax, "") + "..."
	}
	return label
}

// NormalizeMethod trims and upper-cases method, defaulting to GET. Method
// edits, curl import and send all pass through it.
func NormalizeMethod(method string) string {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		return MethodGet
	}
	return method
}

// HasBody reports whether the method is allowed to carry a payload.
func HasBody(method string) bool {
	switch strings.ToUpper(method) {
	case MethodGet, MethodHead:
		return false
	}
	return true
}
