package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yeisme/filerelay/pkg/configs"
)

func newTestDropbox(contentURL, apiURL string) *Dropbox {
	d := NewDropbox(configs.DropboxConfig{AccessToken: "test-token"})
	d.contentURL = contentURL
	d.apiURL = apiURL

	return d
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), "upload.bin")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	return p
}

func TestDropboxUploadAndShare(t *testing.T) {
	var gotAuth, gotArg string

	content := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2/files/upload" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		gotAuth = r.Header.Get("Authorization")
		gotArg = r.Header.Get("Dropbox-API-Arg")

		body, _ := io.ReadAll(r.Body)
		if string(body) != "payload" {
			t.Errorf("body = %q", body)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"path_display": "/report.pdf",
			"name":         "report.pdf",
		})
	}))
	defer content.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2/sharing/create_shared_link_with_settings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"url": "https://www.dropbox.com/s/abc/report.pdf?dl=0",
		})
	}))
	defer api.Close()

	d := newTestDropbox(content.URL, api.URL)

	res, err := d.Upload(context.Background(), writeTempFile(t, "payload"), "report.pdf")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if !res.Success {
		t.Fatalf("result = %+v", res)
	}

	// 预览链接被改写为直链
	if res.URL != "https://www.dropbox.com/s/abc/report.pdf?dl=1" {
		t.Errorf("URL = %q", res.URL)
	}

	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}

	if !strings.Contains(gotArg, `"path":"/report.pdf"`) {
		t.Errorf("Dropbox-API-Arg = %q", gotArg)
	}
}

func TestDropboxShareLinkConflictFallsBackToListing(t *testing.T) {
	content := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"path_display": "/x.txt"})
	}))
	defer content.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/2/sharing/create_shared_link_with_settings":
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"error_summary":"shared_link_already_exists/.."}`))
		case "/2/sharing/list_shared_links":
			json.NewEncoder(w).Encode(map[string]any{
				"links": []map[string]any{{"url": "https://www.dropbox.com/s/old/x.txt?dl=0"}},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer api.Close()

	d := newTestDropbox(content.URL, api.URL)

	res, err := d.Upload(context.Background(), writeTempFile(t, "x"), "x.txt")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if res.URL != "https://www.dropbox.com/s/old/x.txt?dl=1" {
		t.Errorf("URL = %q", res.URL)
	}
}

func TestDropboxUploadFailureIsNotFatal(t *testing.T) {
	content := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error_summary":"invalid_access_token/"}`))
	}))
	defer content.Close()

	d := newTestDropbox(content.URL, content.URL)

	res, err := d.Upload(context.Background(), writeTempFile(t, "x"), "x.txt")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if res.Success {
		t.Error("upload should report failure")
	}

	if res.Message == "" {
		t.Error("failure should carry a message")
	}
}

func TestEscapeNonASCII(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"ascii unchanged", `{"path":"/report.pdf"}`, `{"path":"/report.pdf"}`},
		{"bmp escaped", `{"path":"/文件.txt"}`, `{"path":"/\u6587\u4ef6.txt"}`},
		{"emoji as surrogate pair", `{"path":"/😀.txt"}`, `{"path":"/\ud83d\ude00.txt"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := escapeNonASCII([]byte(tt.raw)); got != tt.want {
				t.Errorf("escaped = %q, want %q", got, tt.want)
			}
		})
	}
}
