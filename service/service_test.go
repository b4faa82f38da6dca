package service_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/p-maje/inz-wasm-compiler/service"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(service.New())
	t.Cleanup(srv.Close)
	return srv
}

func TestHealthz(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestCompileEndpoint(t *testing.T) {
	srv := newServer(t)

	source := `
function main {
	write 42;
}
`
	resp, err := http.Post(srv.URL+"/compile", "text/plain", strings.NewReader(source))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	for _, want := range []string{"(module", "i32.const 42", `(export "main" (func $main))`} {
		if !strings.Contains(string(body), want) {
			t.Errorf("response missing %q:\n%s", want, body)
		}
	}
}

func TestCompileEndpointDiagnostic(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Post(srv.URL+"/compile", "text/plain", strings.NewReader("function main { x = 1; }"))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if got := strings.TrimSpace(string(body)); got != "1: Variable 'x' not declared" {
		t.Errorf("body = %q", got)
	}
}

func TestRunEndpoint(t *testing.T) {
	srv := newServer(t)

	req, err := json.Marshal(map[string]string{
		"source": "function main {\n\tint a;\n\tread a;\n\twrite a + 1;\n}",
		"stdin":  "41",
	})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	resp, err := http.Post(srv.URL+"/run", "application/json", bytes.NewReader(req))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, want 200: %s", resp.StatusCode, body)
	}

	var out struct {
		WAT    string `json:"wat"`
		Output string `json:"output"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Output != "42\n" {
		t.Errorf("output = %q, want %q", out.Output, "42\n")
	}
	if !strings.Contains(out.WAT, "(module") {
		t.Errorf("response missing WAT text: %q", out.WAT)
	}
}

func TestRunEndpointDiagnostic(t *testing.T) {
	srv := newServer(t)

	req := `{"source": "function f { }", "stdin": ""}`
	resp, err := http.Post(srv.URL+"/run", "application/json", strings.NewReader(req))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if got := strings.TrimSpace(string(body)); got != "0: Function 'main' not found" {
		t.Errorf("body = %q", got)
	}
}

func TestRunEndpointBadJSON(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Post(srv.URL+"/run", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/compile")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}
