package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func fileState(t *testing.T) []string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("RESTPAD_CONFIG_DIR", dir)
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	return []string{"--backend", "file", "--store", filepath.Join(dir, "state.json")}
}

func TestImportCurlThenList(t *testing.T) {
	state := fileState(t)

	out, err := runCLI(t, "", append([]string{"import-curl", "curl -X PUT 'https://api.example.com/users/7?v=2'"}, state...)...)
	if err != nil {
		t.Fatalf("import-curl: %v", err)
	}
	if !strings.Contains(out, "Imported PUT api.example.com/user...") {
		t.Fatalf("unexpected import output %q", out)
	}

	out, err = runCLI(t, "", append([]string{"list"}, state...)...)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and two requests, got %q", out)
	}
	if !strings.HasPrefix(lines[2], "*") || !strings.Contains(lines[2], "PUT") {
		t.Fatalf("imported request should be active, got %q", lines[2])
	}
	if !strings.Contains(lines[1], "New Request") {
		t.Fatalf("expected default request first, got %q", lines[1])
	}
}

func TestImportCurlFromStdin(t *testing.T) {
	state := fileState(t)
	stdin := "curl https://api.example.com/ping \\\n  -H 'Accept: text/plain'\n"

	out, err := runCLI(t, stdin, append([]string{"import-curl"}, state...)...)
	if err != nil {
		t.Fatalf("import-curl: %v", err)
	}
	if !strings.Contains(out, "Imported GET api.example.com/ping") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestImportCurlRequiresInput(t *testing.T) {
	state := fileState(t)
	if _, err := runCLI(t, "   ", append([]string{"import-curl"}, state...)...); err == nil {
		t.Fatalf("expected error for empty stdin")
	}
}

func TestSendPrintsResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		w.Header().Set("X-Trace", "abc")
		w.WriteHeader(http.StatusAccepted)
		_, _ = io.WriteString(w, `{"queued":true}`)
	}))
	defer srv.Close()

	state := fileState(t)
	curlCmd := "curl -X POST '" + srv.URL + "/jobs' -d '{\"n\":1}'"
	if _, err := runCLI(t, "", append([]string{"import-curl", curlCmd}, state...)...); err != nil {
		t.Fatalf("import-curl: %v", err)
	}

	out, err := runCLI(t, "", append([]string{"send", "-v"}, state...)...)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	for _, want := range []string{
		"POST /jobs HTTP/1.1",
		`{"n":1}`,
		"HTTP/1.1 202 Accepted",
		"x-trace: abc",
		`{"queued":true}`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("send output missing %q:\n%s", want, out)
		}
	}
}

func TestSendUnknownID(t *testing.T) {
	state := fileState(t)
	if _, err := runCLI(t, "", append([]string{"send", "--id", "missing"}, state...)...); err == nil {
		t.Fatalf("expected error for unknown id")
	}
}

func TestSendWithoutURL(t *testing.T) {
	state := fileState(t)
	_, err := runCLI(t, "", append([]string{"send"}, state...)...)
	if err == nil || !strings.Contains(err.Error(), "no url") {
		t.Fatalf("expected no url error, got %v", err)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	state := fileState(t)
	if _, err := runCLI(t, "", append([]string{"import-curl", "curl https://a.example.com/x"}, state...)...); err != nil {
		t.Fatalf("import-curl: %v", err)
	}

	path := filepath.Join(t.TempDir(), "backup.yaml")
	out, err := runCLI(t, "", append([]string{"export", path}, state...)...)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, "Exported 2 requests") {
		t.Fatalf("unexpected export output %q", out)
	}

	out, err = runCLI(t, "", append([]string{"import", path}, state...)...)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "Imported 2 requests") {
		t.Fatalf("unexpected import output %q", out)
	}

	out, err = runCLI(t, "", append([]string{"list"}, state...)...)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got := strings.Count(out, "a.example.com/x"); got != 2 {
		t.Fatalf("expected the request twice after import, got %d in %q", got, out)
	}
}

func TestEphemeralLeavesNoState(t *testing.T) {
	state := fileState(t)
	args := append([]string{"import-curl", "curl https://a.example.com/x", "--ephemeral"}, state...)
	if _, err := runCLI(t, "", args...); err != nil {
		t.Fatalf("import-curl: %v", err)
	}
	out, err := runCLI(t, "", append([]string{"list"}, state...)...)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if strings.Contains(out, "a.example.com") {
		t.Fatalf("ephemeral import leaked into file state: %q", out)
	}
}
