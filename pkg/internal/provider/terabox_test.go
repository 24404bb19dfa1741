package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yeisme/filerelay/pkg/configs"
)

func testTeraBoxConfig() configs.TeraBoxConfig {
	return configs.TeraBoxConfig{
		NDUS:      "test-ndus",
		AppID:     "250528",
		UploadID:  "session-upload-id",
		JSToken:   "test-jstoken",
		BrowserID: "test-browser",
	}
}

func TestTeraBoxUploadFlow(t *testing.T) {
	var steps []string

	upload := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		steps = append(steps, "superfile")

		if !strings.HasPrefix(r.URL.Path, "/rest/2.0/pcs/superfile2") {
			t.Errorf("unexpected upload path %s", r.URL.Path)
		}

		if got := r.URL.Query().Get("uploadid"); got != "remote-upload-id" {
			t.Errorf("uploadid = %q", got)
		}

		fmt.Fprint(w, `{"md5":"d41d8cd98f00b204e9800998ecf8427e"}`)
	}))
	defer upload.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("app_id"); got != "250528" {
			t.Errorf("app_id = %q", got)
		}

		if got := r.URL.Query().Get("jsToken"); got != "test-jstoken" {
			t.Errorf("jsToken = %q", got)
		}

		if cookie := r.Header.Get("Cookie"); !strings.Contains(cookie, "ndus=test-ndus") {
			t.Errorf("Cookie = %q", cookie)
		}

		switch r.URL.Path {
		case "/api/precreate":
			steps = append(steps, "precreate")

			fmt.Fprint(w, `{"errno":0,"uploadid":"remote-upload-id"}`)
		case "/api/create":
			steps = append(steps, "create")

			fmt.Fprint(w, `{"errno":0,"fs_id":123456789}`)
		default:
			t.Errorf("unexpected api path %s", r.URL.Path)
		}
	}))
	defer api.Close()

	tb := NewTeraBox(testTeraBoxConfig())
	tb.apiURL = api.URL
	tb.uploadURL = upload.URL

	res, err := tb.Upload(context.Background(), writeTempFile(t, "content"), "video.mp4")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if !res.Success || res.URL == "" {
		t.Fatalf("result = %+v", res)
	}

	want := []string{"precreate", "superfile", "create"}
	if len(steps) != len(want) {
		t.Fatalf("steps = %v", steps)
	}

	for i, s := range want {
		if steps[i] != s {
			t.Errorf("steps[%d] = %s, want %s", i, steps[i], s)
		}
	}
}

func TestTeraBoxPrecreateFallsBackToSessionUploadID(t *testing.T) {
	var seenUploadID string

	upload := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUploadID = r.URL.Query().Get("uploadid")

		fmt.Fprint(w, `{}`)
	}))
	defer upload.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/precreate":
			// 不返回 uploadid
			fmt.Fprint(w, `{"errno":0}`)
		case "/api/create":
			fmt.Fprint(w, `{"errno":0,"fs_id":1}`)
		}
	}))
	defer api.Close()

	tb := NewTeraBox(testTeraBoxConfig())
	tb.apiURL = api.URL
	tb.uploadURL = upload.URL

	if _, err := tb.Upload(context.Background(), writeTempFile(t, "x"), "a.bin"); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if seenUploadID != "session-upload-id" {
		t.Errorf("uploadid = %q, want session fallback", seenUploadID)
	}
}

func TestTeraBoxPrecreateErrno(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"errno":-6}`)
	}))
	defer api.Close()

	tb := NewTeraBox(testTeraBoxConfig())
	tb.apiURL = api.URL
	tb.uploadURL = api.URL

	if _, err := tb.Upload(context.Background(), writeTempFile(t, "x"), "a.bin"); err == nil {
		t.Error("precreate errno should surface as error")
	}
}
