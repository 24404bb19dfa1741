package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/yeisme/filerelay/pkg/configs"
)

const (
	dropboxContentURL = "https://content.dropboxapi.com"
	dropboxAPIURL     = "https://api.dropboxapi.com"

	// dropboxRoot 远端存储根目录.
	dropboxRoot = "/"
)

// Dropbox 通过 Dropbox HTTP API 上传文件并生成共享链接.
type Dropbox struct {
	token      string
	httpClient *http.Client

	// 端点可替换，便于测试
	contentURL string
	apiURL     string
}

// NewDropbox 创建 Dropbox 后端. 调用方需保证 token 非空.
func NewDropbox(cfg configs.DropboxConfig) *Dropbox {
	return &Dropbox{
		token:      cfg.AccessToken,
		httpClient: &http.Client{},
		contentURL: dropboxContentURL,
		apiURL:     dropboxAPIURL,
	}
}

func (d *Dropbox) Name() string { return ProviderDropbox }

func (d *Dropbox) DisplayName() string { return "Dropbox" }

// uploadArg files/upload 的 Dropbox-API-Arg 参数.
type uploadArg struct {
	Path       string `json:"path"`
	Mode       string `json:"mode"`
	Autorename bool   `json:"autorename"`
	Mute       bool   `json:"mute"`
}

// Upload 上传文件到 Dropbox 根目录并返回共享链接（dl=1 直链形式）.
func (d *Dropbox) Upload(ctx context.Context, localPath, fileName string) (*Result, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("open staged file: %w", err)
	}
	defer f.Close()

	arg, err := json.Marshal(uploadArg{
		Path:       dropboxRoot + fileName,
		Mode:       "add",
		Autorename: true,
		Mute:       false,
	})
	if err != nil {
		return nil, fmt.Errorf("encode upload arg: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		d.contentURL+"/2/files/upload", f)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+d.token)
	req.Header.Set("Content-Type", "application/octet-stream")
	// HTTP 头只允许 ASCII，非 ASCII 字符按 Dropbox 约定转义为 \uXXXX
	req.Header.Set("Dropbox-API-Arg", escapeNonASCII(arg))

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dropbox upload: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return &Result{
			Success: false,
			Message: fmt.Sprintf("dropbox upload failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}, nil
	}

	var uploaded struct {
		PathDisplay string `json:"path_display"`
		Name        string `json:"name"`
	}

	if err := json.Unmarshal(body, &uploaded); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}

	url, err := d.shareLink(ctx, uploaded.PathDisplay)
	if err != nil {
		return nil, err
	}

	if url == "" {
		return &Result{Success: false, Message: "dropbox shared link unavailable"}, nil
	}

	// 共享链接默认是预览页，替换为直链下载
	url = strings.Replace(url, "dl=0", "dl=1", 1)

	return &Result{Success: true, URL: url}, nil
}

// shareLink 为已上传文件创建公开共享链接；链接已存在时改为查询现有链接.
func (d *Dropbox) shareLink(ctx context.Context, remotePath string) (string, error) {
	payload := map[string]any{"path": remotePath}

	var created struct {
		URL string `json:"url"`
	}

	status, body, err := d.postJSON(ctx, "/2/sharing/create_shared_link_with_settings", payload)
	if err != nil {
		return "", err
	}

	if status == http.StatusOK {
		if err := json.Unmarshal(body, &created); err != nil {
			return "", fmt.Errorf("decode share response: %w", err)
		}

		return created.URL, nil
	}

	// 409 shared_link_already_exists：查询现有链接
	if status == http.StatusConflict {
		listPayload := map[string]any{"path": remotePath, "direct_only": true}

		status, body, err = d.postJSON(ctx, "/2/sharing/list_shared_links", listPayload)
		if err != nil {
			return "", err
		}

		if status == http.StatusOK {
			var listed struct {
				Links []struct {
					URL string `json:"url"`
				} `json:"links"`
			}

			if err := json.Unmarshal(body, &listed); err != nil {
				return "", fmt.Errorf("decode shared links: %w", err)
			}

			if len(listed.Links) > 0 {
				return listed.Links[0].URL, nil
			}
		}
	}

	// 上传已经成功，拿不到链接交由派发层按失败上报
	return "", nil
}

// postJSON 向 Dropbox RPC 端点发送 JSON 请求.
func (d *Dropbox) postJSON(ctx context.Context, endpoint string, payload any) (int, []byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.apiURL+endpoint, bytes.NewReader(raw))
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+d.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("dropbox api: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	return resp.StatusCode, body, nil
}

// escapeNonASCII 把 JSON 字节串中的非 ASCII 字符转义为 \uXXXX 形式.
// BMP 之外的字符（如 emoji）按 JSON 规则拆成 UTF-16 代理对.
func escapeNonASCII(raw []byte) string {
	var b strings.Builder

	for _, r := range string(raw) {
		switch {
		case r <= unicode.MaxASCII:
			b.WriteRune(r)
		case r > 0xffff:
			hi, lo := utf16.EncodeRune(r)
			fmt.Fprintf(&b, "\\u%04x\\u%04x", hi, lo)
		default:
			fmt.Fprintf(&b, "\\u%04x", r)
		}
	}

	return b.String()
}
