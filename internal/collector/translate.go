package collector

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"
)

// 标题翻译：优先走 Google Translate 公开接口（client=gtx，无需密钥），
// 失败回退 MyMemory，仍失败保留原文。已是中文为主的文本不做处理。

const (
	translateMaxLen   = 500
	translateTimeout  = 20 * time.Second
	translateMaxBytes = 256 * 1024
)

// translateTitles 就地把条目标题翻成中文
func translateTitles(logger *zap.Logger, items []NewsItem) {
	for i := range items {
		items[i].Title = toChinese(logger, items[i].Title)
	}
}

func toChinese(logger *zap.Logger, text string) string {
	text = strings.TrimSpace(text)
	if text == "" || isMostlyChinese(text) {
		return text
	}
	if rs := []rune(text); len(rs) > translateMaxLen {
		text = string(rs[:translateMaxLen])
	}

	if out, err := translateViaGoogle(text); err == nil && out != "" {
		return out
	} else if err != nil {
		logger.Debug("translate via google failed", zap.Error(err))
	}

	if out, err := translateViaMyMemory(text); err == nil && out != "" {
		return out
	} else if err != nil {
		logger.Debug("translate via mymemory failed", zap.Error(err))
	}

	return text
}

func isMostlyChinese(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	var cjk, total int
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if isCJK(r) {
			cjk++
		}
	}
	if total == 0 {
		return true
	}
	return cjk >= 1 && (cjk*4 >= total || cjk >= 2)
}

func isCJK(r rune) bool {
	switch {
	case r >= 0x4e00 && r <= 0x9fff:
		return true
	case r >= 0x3400 && r <= 0x4dbf:
		return true
	case r >= 0x3000 && r <= 0x303f:
		return true
	}
	return false
}

func translateViaGoogle(text string) (string, error) {
	apiURL := fmt.Sprintf(
		"https://translate.googleapis.com/translate_a/single?client=gtx&sl=auto&tl=zh-CN&dt=t&q=%s",
		url.QueryEscape(text),
	)
	body, err := translateGet(apiURL)
	if err != nil {
		return "", err
	}

	// 响应格式: [[["翻译文本","原文",...],...],...]
	var raw []any
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	if len(raw) == 0 {
		return "", nil
	}
	outer, ok := raw[0].([]any)
	if !ok {
		return "", nil
	}

	var result strings.Builder
	for _, seg := range outer {
		pair, ok := seg.([]any)
		if !ok || len(pair) < 1 {
			continue
		}
		if s, ok := pair[0].(string); ok {
			result.WriteString(s)
		}
	}
	return strings.TrimSpace(result.String()), nil
}

func translateViaMyMemory(text string) (string, error) {
	apiURL := "https://api.mymemory.translated.net/get?langpair=" + sourceLang(text) + "|zh&q=" + url.QueryEscape(text)
	body, err := translateGet(apiURL)
	if err != nil {
		return "", err
	}

	var out struct {
		ResponseData struct {
			TranslatedText string `json:"translatedText"`
		} `json:"responseData"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	return strings.TrimSpace(out.ResponseData.TranslatedText), nil
}

// sourceLang MyMemory 不接受 auto，按是否含假名粗判一下
func sourceLang(s string) string {
	for _, r := range s {
		if r >= 0x3040 && r <= 0x309f || r >= 0x30a0 && r <= 0x30ff {
			return "ja"
		}
	}
	return "en"
}

func translateGet(apiURL string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	client := &http.Client{Timeout: translateTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, translateMaxBytes))
}
