package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// clampProgress 把进度限制在 0-100
func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// parseProgress 解析厂商上报的进度
// 可能是数字，也可能是 "45%" 这样的百分比字符串；解析失败时返回 fallback
func parseProgress(raw any, fallback int) int {
	switch v := raw.(type) {
	case float64:
		return clampProgress(int(v))
	case int:
		return clampProgress(v)
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "%"))
		if s == "" {
			return fallback
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fallback
		}
		return clampProgress(int(f))
	default:
		return fallback
	}
}

// asMap 容错读取嵌套 JSON 对象
func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// asList 容错读取 JSON 数组
func asList(v any) []any {
	l, _ := v.([]any)
	return l
}

// str 容错读取字符串字段
func str(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// postJSON 发送 JSON POST 请求并解析响应
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload any) (map[string]any, int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := decodeBody(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return data, resp.StatusCode, nil
}

// getJSON 发送 GET 请求并解析响应
func getJSON(ctx context.Context, client *http.Client, url string, headers map[string]string) (map[string]any, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := decodeBody(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return data, resp.StatusCode, nil
}

func decodeBody(r io.Reader) (map[string]any, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return data, nil
}

// imageFetcher 把存储中的图片取回并内联为 base64 data URI
// 厂商要求内联载荷而不是URL时使用；取回时把外部可达的存储地址改写为进程内部可达的地址
type imageFetcher struct {
	client       *http.Client
	publicBase   string // 外部可达的存储URL前缀
	internalBase string // 进程内部可达的存储URL前缀
}

// rewriteInternal 把外部地址改写为内部地址，本地进程取字节时用
func (f *imageFetcher) rewriteInternal(url string) string {
	if f.publicBase == "" || f.internalBase == "" {
		return url
	}
	return strings.Replace(url, f.publicBase, f.internalBase, 1)
}

// FetchAsDataURI 下载图片并编码为 data URI
func (f *imageFetcher) FetchAsDataURI(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.rewriteInternal(url), nil)
	if err != nil {
		return "", err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("fetch image: unexpected status %d", resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(content), nil
}
