package render

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/quick"

	"github.com/unkn0wn-root/restpad/internal/httpclient"
)

const (
	DebugBodyLimit   = 5000
	truncationMarker = "\n... (truncated for debug view)"
	jsonIndent       = "  "
)

// RequestText renders a request the way it would appear on the wire.
func RequestText(method, target string, headers http.Header, body *string) string {
	var b strings.Builder

	path, host := target, ""
	if u, err := url.Parse(target); err == nil && u.Host != "" {
		path = u.EscapedPath()
		if path == "" {
			path = "/"
		}
		if u.RawQuery != "" {
			path += "?" + u.RawQuery
		}
		host = u.Host
	}

	b.WriteString(method)
	b.WriteByte(' ')
	b.WriteString(path)
	b.WriteString(" HTTP/1.1\n")
	if host != "" {
		b.WriteString("Host: ")
		b.WriteString(host)
		b.WriteByte('\n')
	}
	for _, kv := range httpclient.SortedHeader(headers) {
		b.WriteString(kv[0])
		b.WriteString(": ")
		b.WriteString(kv[1])
		b.WriteByte('\n')
	}
	if body != nil && *body != "" {
		b.WriteByte('\n')
		b.WriteString(*body)
	}
	return b.String()
}

func ResponseText(resp *httpclient.Response) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("HTTP/1.1 ")
	b.WriteString(strconv.Itoa(resp.StatusCode))
	if resp.StatusText != "" {
		b.WriteByte(' ')
		b.WriteString(resp.StatusText)
	}
	b.WriteByte('\n')
	for _, kv := range resp.HeaderLines() {
		b.WriteString(strings.ToLower(kv[0]))
		b.WriteString(": ")
		b.WriteString(kv[1])
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(Truncate(string(resp.Body), DebugBodyLimit))
	return b.String()
}

// ErrorText is the debug view for a dispatch that never produced a response.
func ErrorText(err error) string {
	if err == nil {
		return ""
	}
	return "[Network Error]\n" + err.Error()
}

// Truncate cuts text after limit characters and appends the debug marker.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + truncationMarker
}

// PrettyJSON reports whether text is a JSON document and returns it indented.
func PrettyJSON(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || !json.Valid([]byte(trimmed)) {
		return "", false
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(trimmed), "", jsonIndent); err != nil {
		return "", false
	}
	return buf.String(), true
}

func PrettyXML(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "<") {
		return "", false
	}
	decoder := xml.NewDecoder(strings.NewReader(trimmed))
	var buf bytes.Buffer
	encoder := xml.NewEncoder(&buf)
	encoder.Indent("", jsonIndent)
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", false
		}
		if err := encoder.EncodeToken(xml.CopyToken(tok)); err != nil {
			return "", false
		}
	}
	if err := encoder.Flush(); err != nil {
		return "", false
	}
	return buf.String(), true
}

// Body picks the formatted view for a response body. The lexer name is
// suitable for Highlight and is empty for plain text.
func Body(text, contentType string) (formatted, lexer string) {
	if pretty, ok := PrettyJSON(text); ok {
		return pretty, "json"
	}
	if strings.Contains(strings.ToLower(contentType), "xml") {
		if pretty, ok := PrettyXML(text); ok {
			return pretty, "xml"
		}
	}
	return text, ""
}

// Highlight colours source with chroma. Any failure returns the input unchanged.
func Highlight(source, lexer, style string) string {
	if lexer == "" || source == "" {
		return source
	}
	if style == "" {
		style = "monokai"
	}
	var buf bytes.Buffer
	if err := quick.Highlight(&buf, source, lexer, "terminal256", style); err != nil {
		return source
	}
	return buf.String()
}
