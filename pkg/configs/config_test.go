package configs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInitConfigDefaults(t *testing.T) {
	if err := InitConfig(t.TempDir()); err != nil {
		t.Fatalf("InitConfig: %v", err)
	}

	cfg := GetConfig()

	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", cfg.Server.Port)
	}

	if cfg.Storage.Dir != "uploads" {
		t.Errorf("Storage.Dir = %q, want uploads", cfg.Storage.Dir)
	}

	if cfg.Upload.TimeoutSeconds != 60 {
		t.Errorf("Upload.TimeoutSeconds = %d, want 60", cfg.Upload.TimeoutSeconds)
	}

	if cfg.Providers.Dropbox.Enabled() {
		t.Error("dropbox should be disabled without token")
	}

	if cfg.Providers.TeraBox.Enabled() {
		t.Error("terabox should be disabled without credentials")
	}
}

func TestInitConfigFlatEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DROPBOX_ACCESS_TOKEN", "tok-123")
	t.Setenv("TERABOX_NDUS", "n")
	t.Setenv("TERABOX_APPID", "a")
	t.Setenv("TERABOX_UPLOADID", "u")
	t.Setenv("TERABOX_JSTOKEN", "j")
	t.Setenv("TERABOX_BROWSERID", "b")

	if err := InitConfig(t.TempDir()); err != nil {
		t.Fatalf("InitConfig: %v", err)
	}

	cfg := GetConfig()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}

	if !cfg.Providers.Dropbox.Enabled() || cfg.Providers.Dropbox.AccessToken != "tok-123" {
		t.Errorf("dropbox config = %+v", cfg.Providers.Dropbox)
	}

	if !cfg.Providers.TeraBox.Enabled() {
		t.Errorf("terabox config = %+v", cfg.Providers.TeraBox)
	}
}

func TestInitConfigPrefixedEnvWins(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("FILERELAY_SERVER_PORT", "9090")

	if err := InitConfig(t.TempDir()); err != nil {
		t.Fatalf("InitConfig: %v", err)
	}

	if got := GetConfig().Server.Port; got != 9090 {
		t.Errorf("Server.Port = %d, want 9090", got)
	}
}

func TestInitConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("server:\n  port: 4444\nupload:\n  parallel: true\n")

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := InitConfig(dir); err != nil {
		t.Fatalf("InitConfig: %v", err)
	}

	cfg := GetConfig()

	if cfg.Server.Port != 4444 {
		t.Errorf("Server.Port = %d, want 4444", cfg.Server.Port)
	}

	if !cfg.Upload.Parallel {
		t.Error("Upload.Parallel should be true")
	}
}

func TestTeraBoxEnabledRequiresAllFields(t *testing.T) {
	full := TeraBoxConfig{NDUS: "n", AppID: "a", UploadID: "u", JSToken: "j", BrowserID: "b"}
	if !full.Enabled() {
		t.Error("complete credentials should enable terabox")
	}

	partial := full
	partial.JSToken = ""

	if partial.Enabled() {
		t.Error("missing jsToken should disable terabox")
	}
}

func TestS3GetEndpointHost(t *testing.T) {
	cases := []struct {
		endpoint string
		useSSL   bool
		wantHost string
		wantSSL  bool
	}{
		{"minio.internal:9000", false, "minio.internal:9000", false},
		{"http://minio.internal:9000", false, "minio.internal:9000", false},
		{"https://s3.amazonaws.com", false, "s3.amazonaws.com", true},
	}

	for _, c := range cases {
		cfg := S3Config{Endpoint: c.endpoint, UseSSL: c.useSSL}

		host, ssl := cfg.GetEndpointHost()
		if host != c.wantHost || ssl != c.wantSSL {
			t.Errorf("GetEndpointHost(%q) = (%q, %v), want (%q, %v)",
				c.endpoint, host, ssl, c.wantHost, c.wantSSL)
		}
	}
}

func TestDBGetDSN(t *testing.T) {
	pg := DBConfig{Type: PostgreSQL, Host: "db", Port: 5432, User: "u", Password: "p", Database: "filerelay", SSLMode: "disable"}
	if dsn := pg.GetDSN(); dsn != "host=db port=5432 user=u password=p dbname=filerelay sslmode=disable" {
		t.Errorf("pg dsn = %q", dsn)
	}

	my := DBConfig{Type: MySQL, Host: "db", Port: 3306, User: "u", Password: "p", Database: "filerelay"}
	if dsn := my.GetDSN(); dsn != "u:p@tcp(db:3306)/filerelay?charset=utf8mb4&parseTime=True&loc=Local" {
		t.Errorf("mysql dsn = %q", dsn)
	}

	lite := DBConfig{Type: SQLite, Database: "data/filerelay.db"}
	if dsn := lite.GetDSN(); dsn != "data/filerelay.db" {
		t.Errorf("sqlite dsn = %q", dsn)
	}

	unknown := DBConfig{Type: "duckdb"}
	if dsn := unknown.GetDSN(); dsn != "" {
		t.Errorf("unknown dsn = %q", dsn)
	}
}
