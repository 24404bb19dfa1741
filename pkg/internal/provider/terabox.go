package provider

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/google/go-querystring/query"
	"github.com/tidwall/gjson"

	"github.com/yeisme/filerelay/pkg/configs"
)

const (
	teraboxAPIURL    = "https://www.terabox.com"
	teraboxUploadURL = "https://c-jp.terabox.com"

	// teraboxRoot 远端存储目录.
	teraboxRoot = "/filemanager-uploads"
)

// teraboxQuery TeraBox 接口的公共查询参数.
type teraboxQuery struct {
	AppID      string `url:"app_id"`
	Channel    string `url:"channel"`
	ClientType string `url:"clienttype"`
	JSToken    string `url:"jsToken"`
	Web        string `url:"web"`
}

// TeraBox 通过 TeraBox 网页端接口完成 precreate / superfile2 / create 三段式上传.
type TeraBox struct {
	cfg        configs.TeraBoxConfig
	httpClient *http.Client

	// 端点可替换，便于测试
	apiURL    string
	uploadURL string
}

// NewTeraBox 创建 TeraBox 后端. 调用方需保证五项凭据齐全.
func NewTeraBox(cfg configs.TeraBoxConfig) *TeraBox {
	return &TeraBox{
		cfg:        cfg,
		httpClient: &http.Client{},
		apiURL:     teraboxAPIURL,
		uploadURL:  teraboxUploadURL,
	}
}

func (t *TeraBox) Name() string { return ProviderTeraBox }

func (t *TeraBox) DisplayName() string { return "TeraBox" }

func (t *TeraBox) commonQuery() (string, error) {
	q, err := query.Values(teraboxQuery{
		AppID:      t.cfg.AppID,
		Channel:    "dubox",
		ClientType: "0",
		JSToken:    t.cfg.JSToken,
		Web:        "1",
	})
	if err != nil {
		return "", fmt.Errorf("encode query: %w", err)
	}

	return q.Encode(), nil
}

func (t *TeraBox) setCookies(req *http.Request) {
	req.Header.Set("Cookie", fmt.Sprintf("ndus=%s; browserid=%s", t.cfg.NDUS, t.cfg.BrowserID))
	req.Header.Set("Referer", t.apiURL+"/main")
}

// Upload 上传文件到 TeraBox 并返回文件管理页链接.
func (t *TeraBox) Upload(ctx context.Context, localPath, fileName string) (*Result, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("read staged file: %w", err)
	}

	remotePath := path.Join(teraboxRoot, fileName)

	sum := md5.Sum(data)
	blockList, _ := json.Marshal([]string{hex.EncodeToString(sum[:])})

	uploadID, err := t.precreate(ctx, remotePath, len(data), string(blockList))
	if err != nil {
		return nil, err
	}

	if err := t.superfile(ctx, remotePath, uploadID, data); err != nil {
		return nil, err
	}

	fsID, err := t.create(ctx, remotePath, len(data), uploadID, string(blockList))
	if err != nil {
		return nil, err
	}

	link := fmt.Sprintf("%s/main?category=all&path=%s#fsid=%s",
		t.apiURL, url.QueryEscape(teraboxRoot), fsID)

	return &Result{Success: true, URL: link}, nil
}

// precreate 预创建文件，换取分片上传用的 uploadid.
func (t *TeraBox) precreate(ctx context.Context, remotePath string, size int, blockList string) (string, error) {
	form := url.Values{}
	form.Set("path", remotePath)
	form.Set("size", strconv.Itoa(size))
	form.Set("block_list", blockList)
	form.Set("autoinit", "1")
	form.Set("rtype", "1")

	body, err := t.postForm(ctx, "/api/precreate", form)
	if err != nil {
		return "", err
	}

	if errno := gjson.GetBytes(body, "errno").Int(); errno != 0 {
		return "", fmt.Errorf("terabox precreate errno %d", errno)
	}

	uploadID := gjson.GetBytes(body, "uploadid").String()
	if uploadID == "" {
		// 秒传命中等场景下响应不带 uploadid，退回凭证中的会话 uploadid
		uploadID = t.cfg.UploadID
	}

	if uploadID == "" {
		return "", fmt.Errorf("terabox precreate: missing uploadid")
	}

	return uploadID, nil
}

// superfile 上传文件内容分片（单片）.
func (t *TeraBox) superfile(ctx context.Context, remotePath, uploadID string, data []byte) error {
	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", path.Base(remotePath))
	if err != nil {
		return fmt.Errorf("build multipart: %w", err)
	}

	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("write multipart: %w", err)
	}

	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}

	qs, err := t.commonQuery()
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/rest/2.0/pcs/superfile2?method=upload&type=tmpfile&path=%s&uploadid=%s&partseq=0&%s",
		t.uploadURL, url.QueryEscape(remotePath), url.QueryEscape(uploadID), qs)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}

	req.Header.Set("Content-Type", mw.FormDataContentType())
	t.setCookies(req)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("terabox upload: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("terabox upload failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if errMsg := gjson.GetBytes(raw, "error_msg").String(); errMsg != "" {
		return fmt.Errorf("terabox upload: %s", errMsg)
	}

	return nil
}

// create 合并分片并落盘，返回 fs_id.
func (t *TeraBox) create(ctx context.Context, remotePath string, size int, uploadID, blockList string) (string, error) {
	form := url.Values{}
	form.Set("path", remotePath)
	form.Set("size", strconv.Itoa(size))
	form.Set("uploadid", uploadID)
	form.Set("block_list", blockList)
	form.Set("rtype", "1")

	body, err := t.postForm(ctx, "/api/create", form)
	if err != nil {
		return "", err
	}

	if errno := gjson.GetBytes(body, "errno").Int(); errno != 0 {
		return "", fmt.Errorf("terabox create errno %d", errno)
	}

	return gjson.GetBytes(body, "fs_id").String(), nil
}

func (t *TeraBox) postForm(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	qs, err := t.commonQuery()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.apiURL+endpoint+"?"+qs, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	t.setCookies(req)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("terabox api: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("terabox api failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}
