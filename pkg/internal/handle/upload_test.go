package handle

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filerelay/pkg/configs"
	"github.com/yeisme/filerelay/pkg/internal/provider"
	"github.com/yeisme/filerelay/pkg/internal/storage"
	"github.com/yeisme/filerelay/pkg/internal/storage/staging"
	"github.com/yeisme/filerelay/pkg/internal/types"
	"github.com/yeisme/filerelay/pkg/middleware"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type stubAdapter struct {
	name    string
	display string
	fn      func(ctx context.Context, localPath, fileName string) (*provider.Result, error)
}

func (a *stubAdapter) Name() string        { return a.name }
func (a *stubAdapter) DisplayName() string { return a.display }

func (a *stubAdapter) Upload(ctx context.Context, localPath, fileName string) (*provider.Result, error) {
	return a.fn(ctx, localPath, fileName)
}

type testEnv struct {
	engine *gin.Engine
	cfg    configs.StorageConfig
}

func newTestEnv(t *testing.T, reg *provider.Registry) *testEnv {
	t.Helper()

	cfg := configs.StorageConfig{
		Dir:         filepath.Join(t.TempDir(), "uploads"),
		PublicMount: "/uploads",
		StagingDir:  ".staging",
	}

	store, err := staging.New(cfg)
	if err != nil {
		t.Fatalf("staging.New: %v", err)
	}

	engine := gin.New()
	engine.Use(
		middleware.StorageMiddleware(&storage.Manager{Staging: store}),
		middleware.RegistryMiddleware(reg),
	)
	engine.GET("/", Index)
	engine.GET("/healthz", Healthz)
	engine.GET("/health/providers", ProvidersHealth)
	engine.POST("/upload", Upload)
	engine.GET("/uploads/:name", ServeStored)

	return &testEnv{engine: engine, cfg: cfg}
}

// multipartBody 构造带 provider 字段和若干文件的 multipart 请求体.
func multipartBody(t *testing.T, providerID string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("provider", providerID); err != nil {
		t.Fatalf("WriteField: %v", err)
	}

	for name, content := range files {
		part, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}

		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}

	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	return &buf, mw.FormDataContentType()
}

func doUpload(t *testing.T, env *testEnv, providerID string, files map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := multipartBody(t, providerID, files)

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)

	return w
}

func decodeUploadResponse(t *testing.T, w *httptest.ResponseRecorder) types.UploadResponse {
	t.Helper()

	var resp types.UploadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (%s)", err, w.Body.String())
	}

	return resp
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}

	return names
}

func TestUploadUnknownProvider(t *testing.T) {
	env := newTestEnv(t, provider.NewRegistry())

	w := doUpload(t, env, "gdrive", map[string]string{"a.txt": "x"})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var resp types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if resp.Message != "Unknown provider." {
		t.Errorf("message = %q, want Unknown provider.", resp.Message)
	}

	// provider 校验失败时不应有任何文件落盘
	staging := filepath.Join(env.cfg.Dir, env.cfg.StagingDir)
	if got := dirEntries(t, staging); len(got) != 0 {
		t.Errorf("staging dir should be empty, got %v", got)
	}
}

func TestUploadNotConfigured(t *testing.T) {
	reg := provider.NewRegistry()
	reg.RegisterDisabled(provider.ProviderDropbox, "Dropbox")

	env := newTestEnv(t, reg)

	w := doUpload(t, env, provider.ProviderDropbox, map[string]string{"a.txt": "x"})

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}

	var resp types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if resp.Message != "Dropbox not configured." {
		t.Errorf("message = %q, want Dropbox not configured.", resp.Message)
	}
}

func TestUploadNoFiles(t *testing.T) {
	reg := provider.NewRegistry()
	reg.Register(provider.NewMediaNZ())

	env := newTestEnv(t, reg)

	w := doUpload(t, env, provider.ProviderMediaNZ, nil)

	// files 为零个文件是合法请求，返回空结果列表
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	resp := decodeUploadResponse(t, w)
	if len(resp.Links) != 0 {
		t.Errorf("len(links) = %d, want 0", len(resp.Links))
	}

	if resp.Message != "Upload processed." {
		t.Errorf("message = %q, want Upload processed.", resp.Message)
	}
}

func TestUploadMediaNZ(t *testing.T) {
	reg := provider.NewRegistry()
	reg.Register(provider.NewMediaNZ())

	env := newTestEnv(t, reg)

	w := doUpload(t, env, provider.ProviderMediaNZ, map[string]string{"a.txt": "x"})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	resp := decodeUploadResponse(t, w)
	if len(resp.Links) != 1 {
		t.Fatalf("len(links) = %d, want 1", len(resp.Links))
	}

	if resp.Links[0].Error != "media.nz upload not implemented yet" {
		t.Errorf("error = %q", resp.Links[0].Error)
	}
}

func TestUploadLocalServesFilesBack(t *testing.T) {
	reg := provider.NewRegistry()

	// local provider 与请求处理共享同一个存储目录
	cfg := configs.StorageConfig{
		Dir:         filepath.Join(t.TempDir(), "uploads"),
		PublicMount: "/uploads",
		StagingDir:  ".staging",
	}

	store, err := staging.New(cfg)
	if err != nil {
		t.Fatalf("staging.New: %v", err)
	}

	reg.Register(provider.NewLocal(cfg))

	engine := gin.New()
	engine.Use(
		middleware.StorageMiddleware(&storage.Manager{Staging: store}),
		middleware.RegistryMiddleware(reg),
	)
	engine.POST("/upload", Upload)
	engine.GET("/uploads/:name", ServeStored)

	env := &testEnv{engine: engine, cfg: cfg}

	w := doUpload(t, env, provider.ProviderLocal, map[string]string{"doc.txt": "local content"})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	resp := decodeUploadResponse(t, w)
	if len(resp.Links) != 1 {
		t.Fatalf("len(links) = %d, want 1", len(resp.Links))
	}

	link := resp.Links[0]
	if link.Error != "" {
		t.Fatalf("error = %q", link.Error)
	}

	if !strings.HasPrefix(link.URL, "/uploads/") {
		t.Fatalf("url = %q, want /uploads/ prefix", link.URL)
	}

	// 本地文件可通过返回的链接再次访问
	req := httptest.NewRequest(http.MethodGet, link.URL, nil)
	got := httptest.NewRecorder()
	engine.ServeHTTP(got, req)

	if got.Code != http.StatusOK {
		t.Fatalf("GET %s = %d, want 200", link.URL, got.Code)
	}

	if got.Body.String() != "local content" {
		t.Errorf("body = %q", got.Body.String())
	}
}

func TestUploadLocalDuplicateContentKeptSeparately(t *testing.T) {
	reg := provider.NewRegistry()

	cfg := configs.StorageConfig{
		Dir:         filepath.Join(t.TempDir(), "uploads"),
		PublicMount: "/uploads",
		StagingDir:  ".staging",
	}

	store, err := staging.New(cfg)
	if err != nil {
		t.Fatalf("staging.New: %v", err)
	}

	reg.Register(provider.NewLocal(cfg))

	engine := gin.New()
	engine.Use(
		middleware.StorageMiddleware(&storage.Manager{Staging: store}),
		middleware.RegistryMiddleware(reg),
	)
	engine.POST("/upload", Upload)
	engine.GET("/uploads/:name", ServeStored)

	env := &testEnv{engine: engine, cfg: cfg}

	// 同样的内容上传两次，各自独立存储，不做去重
	urls := make([]string, 0, 2)

	for range 2 {
		w := doUpload(t, env, provider.ProviderLocal, map[string]string{"dup.txt": "same bytes"})

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}

		resp := decodeUploadResponse(t, w)
		if len(resp.Links) != 1 || resp.Links[0].Error != "" {
			t.Fatalf("links = %+v", resp.Links)
		}

		urls = append(urls, resp.Links[0].URL)
	}

	if urls[0] == urls[1] {
		t.Fatalf("both uploads point at %q, want distinct stored names", urls[0])
	}

	for _, u := range urls {
		req := httptest.NewRequest(http.MethodGet, u, nil)
		got := httptest.NewRecorder()
		engine.ServeHTTP(got, req)

		if got.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", u, got.Code)
		}

		if got.Body.String() != "same bytes" {
			t.Errorf("GET %s body = %q", u, got.Body.String())
		}
	}
}

func TestUploadRemoteCleansStaging(t *testing.T) {
	reg := provider.NewRegistry()
	reg.Register(&stubAdapter{
		name:    "stub",
		display: "Stub",
		fn: func(_ context.Context, _, fileName string) (*provider.Result, error) {
			return &provider.Result{Success: true, URL: "https://stub/" + path.Base(fileName)}, nil
		},
	})

	env := newTestEnv(t, reg)

	w := doUpload(t, env, "stub", map[string]string{"a.txt": "x", "b.txt": "y"})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	resp := decodeUploadResponse(t, w)
	if len(resp.Links) != 2 {
		t.Fatalf("len(links) = %d, want 2", len(resp.Links))
	}

	for _, l := range resp.Links {
		if l.Error != "" || l.URL == "" {
			t.Errorf("unexpected link %+v", l)
		}
	}

	// 远端上传完成后暂存目录应为空
	stagingDir := filepath.Join(env.cfg.Dir, env.cfg.StagingDir)
	if got := dirEntries(t, stagingDir); len(got) != 0 {
		t.Errorf("staging dir should be empty, got %v", got)
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, provider.NewRegistry())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("body = %q, want OK", w.Body.String())
	}
}

func TestProvidersHealth(t *testing.T) {
	reg := provider.NewRegistry()
	reg.Register(provider.NewMediaNZ())
	reg.RegisterDisabled(provider.ProviderDropbox, "Dropbox")

	env := newTestEnv(t, reg)

	req := httptest.NewRequest(http.MethodGet, "/health/providers", nil)
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Providers []types.ProviderStatus `json:"providers"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(resp.Providers) != 2 {
		t.Fatalf("len(providers) = %d, want 2", len(resp.Providers))
	}

	for _, p := range resp.Providers {
		switch p.Name {
		case provider.ProviderMediaNZ:
			if !p.Configured {
				t.Errorf("medianz should be configured")
			}
		case provider.ProviderDropbox:
			if p.Configured {
				t.Errorf("dropbox should not be configured")
			}
		}
	}
}
