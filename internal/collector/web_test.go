package collector

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/LJTian/MorningPost/internal/config"
)

const sampleHTML = `<!DOCTYPE html>
<html><body>
  <div class="news-item">
    <h2><a href="/news/1">城市更新试点政策出台</a></h2>
    <p class="summary">多个城市启动城市更新试点工作。</p>
    <span class="time">2024-05-20 09:00</span>
  </div>
  <div class="news-item">
    <h2><a href="http://example.com/news/2">第二条新闻标题</a></h2>
  </div>
  <div class="news-item"><h2><a href="/empty"></a></h2></div>
</body></html>`

func newWebServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(sampleHTML))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testSelectors() config.SelectorConfig {
	return config.SelectorConfig{
		Container: ".news-item",
		Title:     "h2 a",
		Summary:   ".summary",
		URL:       "h2 a",
		Time:      ".time",
	}
}

func TestWebFetcherExtractsItems(t *testing.T) {
	srv := newWebServer(t)

	f := &WebFetcher{
		src: config.SourceConfig{
			Name:      "新浪新闻",
			URL:       srv.URL + "/news",
			Selectors: testSelectors(),
		},
		timeout:  5 * time.Second,
		maxItems: 10,
		logger:   zap.NewNop(),
	}

	items, err := f.Fetch()
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	// 第三个 container 标题为空，应被跳过
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}

	first := items[0]
	if first.Title != "城市更新试点政策出台" {
		t.Fatalf("Title = %q", first.Title)
	}
	if first.Summary != "多个城市启动城市更新试点工作。" {
		t.Fatalf("Summary = %q", first.Summary)
	}
	// 相对链接应被解析为绝对地址
	if want := srv.URL + "/news/1"; first.URL != want {
		t.Fatalf("URL = %q, want %q", first.URL, want)
	}
	if first.RawPublished != "2024-05-20 09:00" {
		t.Fatalf("RawPublished = %q", first.RawPublished)
	}
	if first.Source != "新浪新闻" {
		t.Fatalf("Source = %q, want 新浪新闻", first.Source)
	}

	// 绝对链接保持原样
	if items[1].URL != "http://example.com/news/2" {
		t.Fatalf("items[1].URL = %q", items[1].URL)
	}
}

func TestWebFetcherFallsBackToHost(t *testing.T) {
	srv := newWebServer(t)

	f := &WebFetcher{
		src: config.SourceConfig{
			Name:      "sina",
			Key:       "sina",
			URL:       srv.URL,
			Selectors: testSelectors(),
		},
		timeout:  5 * time.Second,
		maxItems: 10,
		logger:   zap.NewNop(),
	}

	items, err := f.Fetch()
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	// httptest 服务器监听在 127.0.0.1
	if items[0].Source != "127.0.0.1" {
		t.Fatalf("Source = %q, want 127.0.0.1", items[0].Source)
	}
}

func TestWebFetcherCapsItems(t *testing.T) {
	srv := newWebServer(t)

	f := &WebFetcher{
		src: config.SourceConfig{
			Name:      "新浪新闻",
			URL:       srv.URL,
			Selectors: testSelectors(),
		},
		timeout:  5 * time.Second,
		maxItems: 1,
		logger:   zap.NewNop(),
	}

	items, err := f.Fetch()
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
}

func TestWebFetcherRejectsBadURL(t *testing.T) {
	f := &WebFetcher{
		src:     config.SourceConfig{Name: "坏源", URL: "not-a-url", Selectors: testSelectors()},
		timeout: time.Second,
		logger:  zap.NewNop(),
	}
	if _, err := f.Fetch(); err == nil {
		t.Fatal("Fetch should fail on invalid url")
	}
}
