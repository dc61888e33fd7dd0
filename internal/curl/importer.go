// Package curl turns a pasted curl command line into request fields.
//
// Parsing is pattern based and best effort. Supported flags:
//
//	-X, --request              method
//	-H, --header               header (quoted)
//	-d, --data, --data-raw     body (quoted)
//
// The first http(s) URL, quoted or bare, becomes the request URL. Anything
// else on the line is ignored.
package curl

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/unkn0wn-root/restpad/internal/errdef"
	"github.com/unkn0wn-root/restpad/internal/kv"
	"github.com/unkn0wn-root/restpad/internal/request"
	"github.com/unkn0wn-root/restpad/internal/urlsync"
)

const (
	headerContentType = "Content-Type"
	mimeJSON          = "application/json"
)

var (
	lineContinuation = regexp.MustCompile(`\\\r?\n`)
	newlines         = regexp.MustCompile(`[\r\n]+`)

	quotedURL = regexp.MustCompile(`'(https?://[^']*)'|"(https?://[^"]*)"`)
	bareURL   = regexp.MustCompile(`https?://\S+`)

	shortMethod = regexp.MustCompile(`(?:^|\s)-X\s*['"]?([A-Za-z]+)`)
	longMethod  = regexp.MustCompile(`--request(?:\s+|=)['"]?([A-Za-z]+)`)

	headerFlag = regexp.MustCompile(`(?:-H|--header)\s+(?:'([^']*)'|"((?:[^"\\]|\\.)*)")`)
	bodyFlag   = regexp.MustCompile(`(?:--data-raw|--data|-d)\s+(?:'([^']*)'|"((?:[^"\\]|\\.)*)")`)

	dataMarkers = []string{"--data", "-d "}
)

// Draft is the outcome of a parse. Fields flagged as unset leave the target
// request untouched on Apply.
type Draft struct {
	Method string

	URL       string
	HasURL    bool
	Params    []kv.Pair
	HasParams bool

	Headers []kv.Pair

	Body     string
	BodyType request.BodyType
	HasBody  bool
}

// Normalize folds line continuations and literal newlines into spaces.
func Normalize(text string) string {
	text = lineContinuation.ReplaceAllString(text, " ")
	return newlines.ReplaceAllString(text, " ")
}

// Parse reads a curl command line. It never partially fails: either a full
// Draft is returned or an error and no Draft.
func Parse(text string) (d Draft, err error) {
	defer func() {
		if r := recover(); r != nil {
			d = Draft{}
			err = errdef.New(errdef.CodeParse, "parse curl command: %v", r)
		}
	}()

	cmd := strings.TrimSpace(Normalize(strings.TrimSpace(text)))
	if cmd == "" {
		return Draft{}, errdef.New(errdef.CodeParse, "curl command is empty")
	}

	parseURL(cmd, &d)
	d.Method = parseMethod(cmd)
	d.Headers = parseHeaders(cmd)
	parseBody(cmd, &d)
	return d, nil
}

// Apply writes the draft onto e.
func (d Draft) Apply(e *request.Entity) {
	if d.HasURL {
		e.URL = d.URL
	}
	if d.HasParams {
		e.Params = kv.Clone(d.Params)
	}
	e.Method = d.Method
	e.Headers = kv.Clone(d.Headers)
	if d.HasBody {
		e.BodyContent = d.Body
		e.BodyType = d.BodyType
	}
}

func (d Draft) String() string {
	return fmt.Sprintf(
		"%s %s (params=%d headers=%d body=%s)",
		d.Method,
		d.URL,
		len(d.Params),
		len(d.Headers),
		d.BodyType,
	)
}

func parseURL(cmd string, d *Draft) {
	raw := ""
	if m := quotedURL.FindStringSubmatch(cmd); m != nil {
		raw = firstNonEmpty(m[1], m[2])
	} else if m := bareURL.FindString(cmd); m != "" {
		raw = m
	}
	if raw == "" {
		return
	}

	d.URL = raw
	d.HasURL = true

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return
	}
	d.Params = urlsync.ParseQuery(u.RawQuery)
	d.HasParams = true
}

func parseMethod(cmd string) string {
	if m := shortMethod.FindStringSubmatch(cmd); m != nil {
		return request.NormalizeMethod(m[1])
	}
	if m := longMethod.FindStringSubmatch(cmd); m != nil {
		return request.NormalizeMethod(m[1])
	}
	for _, marker := range dataMarkers {
		if strings.Contains(cmd, marker) {
			return request.MethodPost
		}
	}
	return request.MethodGet
}

func parseHeaders(cmd string) []kv.Pair {
	headers := []kv.Pair{}
	for _, m := range headerFlag.FindAllStringSubmatch(cmd, -1) {
		raw := m[1]
		if m[2] != "" {
			raw = unescapeDouble(m[2])
		}
		name, value, ok := splitHeader(raw)
		if !ok {
			continue
		}
		headers = append(headers, kv.Pair{Key: name, Value: value})
	}
	return headers
}

func parseBody(cmd string, d *Draft) {
	m := bodyFlag.FindStringSubmatchIndex(cmd)
	if m == nil {
		return
	}

	var body string
	switch {
	case m[2] >= 0:
		body = cmd[m[2]:m[3]]
	case m[4] >= 0:
		body = unescapeDouble(cmd[m[4]:m[5]])
	}

	d.Body = body
	d.HasBody = true
	if !json.Valid([]byte(body)) {
		d.BodyType = request.BodyRaw
		return
	}
	d.BodyType = request.BodyJSON
	if !kv.HasKey(d.Headers, headerContentType) {
		d.Headers = append(d.Headers, kv.Pair{Key: headerContentType, Value: mimeJSON})
	}
}

// splitHeader splits on the first colon. A missing colon or an empty name
// position rejects the header.
func splitHeader(raw string) (string, string, bool) {
	idx := strings.IndexByte(raw, ':')
	if idx <= 0 {
		return "", "", false
	}
	return strings.TrimSpace(raw[:idx]), strings.TrimSpace(raw[idx+1:]), true
}

// unescapeDouble undoes the backslash escapes a shell honours inside double
// quotes.
func unescapeDouble(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '"', '\\', '$', '`':
				b.WriteByte(s[i+1])
				i++
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
