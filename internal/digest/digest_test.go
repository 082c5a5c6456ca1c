package digest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/LJTian/MorningPost/internal/collector"
)

var genAt = time.Date(2025, 1, 15, 7, 30, 0, 0, time.Local)

func sampleItems() []collector.NewsItem {
	return []collector.NewsItem{
		{Title: "国务院部署扩大开放新措施", Summary: "会议决定优化营商环境", Source: "新华社", URL: "http://example.com/1", PublishedAt: time.Date(2025, 1, 15, 6, 0, 0, 0, time.UTC), Category: "政治", Importance: 5},
		{Title: "央行发布货币政策报告", Summary: "货币政策保持稳健", Source: "人民日报", URL: "http://example.com/2", Category: "经济", Importance: 4},
		{Title: "新能源汽车销量创新高", Source: "行业协会", Category: "经济", Importance: 3},
		{Title: "社区公益活动温暖人心", Summary: "志愿者走进社区", Source: "本地网", Category: "社会", Importance: 1},
	}
}

func TestRenderTXT(t *testing.T) {
	d := New("今日新闻早报", 3, sampleItems(), genAt)
	txt := d.RenderTXT()

	if !strings.Contains(txt, "📰 今日新闻早报 - 2025年01月15日") {
		t.Fatalf("missing header:\n%s", txt)
	}
	if !strings.Contains(txt, "📊 今日共收集 4 条新闻") {
		t.Fatalf("missing total line:\n%s", txt)
	}
	if !strings.Contains(txt, "⏰ 生成时间：2025-01-15 07:30:00") {
		t.Fatalf("missing generated-at line:\n%s", txt)
	}

	// 头条在最前，重要性最高的排第一
	top := strings.Index(txt, "🔥 头条新闻")
	first := strings.Index(txt, "1. 国务院部署扩大开放新措施")
	politics := strings.Index(txt, "📋 政治")
	if top < 0 || first < 0 || politics < 0 || !(top < first && first < politics) {
		t.Fatalf("headline section out of place (top=%d first=%d politics=%d):\n%s", top, first, politics, txt)
	}

	// 分类按固定顺序出现
	economy := strings.Index(txt, "📋 经济")
	society := strings.Index(txt, "📋 社会")
	if !(politics < economy && economy < society) {
		t.Fatalf("category order wrong (politics=%d economy=%d society=%d)", politics, economy, society)
	}

	if !strings.Contains(txt, "   来源：新华社") {
		t.Fatalf("missing source line:\n%s", txt)
	}
	// 没有摘要的条目不输出空摘要行
	if strings.Contains(txt, "新能源汽车销量创新高\n   来源：行业协会") == false {
		t.Fatalf("summary-less entry should go straight to source line:\n%s", txt)
	}
}

func TestRenderTXTEmpty(t *testing.T) {
	d := New("今日新闻早报", 3, nil, genAt)
	txt := d.RenderTXT()

	if !strings.Contains(txt, "今日暂无新闻") {
		t.Fatalf("missing empty notice:\n%s", txt)
	}
	if strings.Contains(txt, "🔥") || strings.Contains(txt, "📋") {
		t.Fatalf("empty digest should have no sections:\n%s", txt)
	}
	if !strings.Contains(txt, "⏰ 生成时间：") {
		t.Fatalf("empty digest still carries generated-at:\n%s", txt)
	}
}

func TestTopNews(t *testing.T) {
	items := []collector.NewsItem{
		{Title: "甲", Importance: 3},
		{Title: "乙", Importance: 5},
		{Title: "丙", Importance: 3},
	}
	d := New("t", 2, items, genAt)

	top := d.TopNews()
	if len(top) != 2 {
		t.Fatalf("top len = %d, want 2", len(top))
	}
	// 重要性相同的保持输入顺序
	if top[0].Title != "乙" || top[1].Title != "甲" {
		t.Fatalf("top = [%s, %s], want [乙, 甲]", top[0].Title, top[1].Title)
	}

	d.TopNewsCount = 0
	if got := d.TopNews(); got != nil {
		t.Fatalf("top with count 0 = %+v, want nil", got)
	}
}

func TestByCategoryOrder(t *testing.T) {
	d := New("t", 3, sampleItems(), genAt)
	sections := d.ByCategory()

	want := []string{"政治", "经济", "社会"}
	if len(sections) != len(want) {
		t.Fatalf("sections = %d, want %d", len(sections), len(want))
	}
	for i, label := range want {
		if sections[i].Label != label {
			t.Fatalf("sections[%d] = %s, want %s", i, sections[i].Label, label)
		}
	}
	if len(sections[1].Items) != 2 {
		t.Fatalf("经济 items = %d, want 2", len(sections[1].Items))
	}
}

func TestRenderJSONRoundTrip(t *testing.T) {
	orig := sampleItems()
	d := New("今日新闻早报", 3, orig, genAt)

	raw, err := d.RenderJSON()
	if err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}

	var doc struct {
		GeneratedAt string               `json:"generated_at"`
		TotalCount  int                  `json:"total_count"`
		Items       []collector.NewsItem `json:"items"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal rendered json: %v", err)
	}

	if doc.GeneratedAt != genAt.Format(time.RFC3339) {
		t.Fatalf("generated_at = %q", doc.GeneratedAt)
	}
	if doc.TotalCount != len(orig) || len(doc.Items) != len(orig) {
		t.Fatalf("total_count = %d, items = %d, want %d", doc.TotalCount, len(doc.Items), len(orig))
	}
	for i, got := range doc.Items {
		want := orig[i]
		if got.Title != want.Title || got.Summary != want.Summary || got.Source != want.Source ||
			got.URL != want.URL || got.Category != want.Category || got.Importance != want.Importance {
			t.Fatalf("items[%d] = %+v, want %+v", i, got, want)
		}
		if !got.PublishedAt.Equal(want.PublishedAt) {
			t.Fatalf("items[%d].PublishedAt = %v, want %v", i, got.PublishedAt, want.PublishedAt)
		}
	}
}

func TestRenderJSONEmptyItems(t *testing.T) {
	d := New("t", 3, nil, genAt)
	raw, err := d.RenderJSON()
	if err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}
	if !strings.Contains(string(raw), `"items": []`) {
		t.Fatalf("empty digest should render an empty array:\n%s", raw)
	}
}

func TestRenderHTML(t *testing.T) {
	d := New("今日新闻早报", 3, sampleItems(), genAt)
	raw, err := d.RenderHTML()
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	page := string(raw)

	for _, want := range []string{
		`<a href="#cat-0">政治</a>`,
		`<a href="#cat-1">经济</a>`,
		`<section id="cat-1">`,
		"国务院部署扩大开放新措施",
		"★★★★★",
		"共 4 条新闻",
		"2025-01-15 07:30:00",
	} {
		if !strings.Contains(page, want) {
			t.Fatalf("html missing %q:\n%s", want, page)
		}
	}
}

func TestRenderHTMLEscapes(t *testing.T) {
	items := []collector.NewsItem{{Title: "标题带<b>标签</b>测试", Source: "a", Category: "社会", Importance: 1}}
	d := New("t", 3, items, genAt)

	raw, err := d.RenderHTML()
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	page := string(raw)
	if strings.Contains(page, "<b>标签</b>") {
		t.Fatalf("html must escape item fields:\n%s", page)
	}
	if !strings.Contains(page, "&lt;b&gt;") {
		t.Fatalf("expected escaped tag in page:\n%s", page)
	}
}

func TestRenderHTMLEmpty(t *testing.T) {
	d := New("t", 3, nil, genAt)
	raw, err := d.RenderHTML()
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	if !strings.Contains(string(raw), "今日暂无新闻") {
		t.Fatalf("empty page missing notice:\n%s", raw)
	}
}

func TestWriterWriteAll(t *testing.T) {
	dir := t.TempDir()
	d := New("今日新闻早报", 3, sampleItems(), genAt)

	files, err := NewWriter(dir).WriteAll(d, []string{"txt", "json", "html"})
	if err != nil {
		t.Fatalf("WriteAll: %v", err)
	}

	want := []string{
		filepath.Join(dir, "news_digest_20250115.txt"),
		filepath.Join(dir, "news_data_20250115.json"),
		filepath.Join(dir, "news_digest_20250115.html"),
	}
	if len(files) != len(want) {
		t.Fatalf("files = %v", files)
	}
	for i, path := range want {
		if files[i] != path {
			t.Fatalf("files[%d] = %s, want %s", i, files[i], path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		if len(data) == 0 {
			t.Fatalf("%s is empty", path)
		}
	}

	// 同一天再写一次覆盖旧文件
	d2 := New("另一个标题", 3, sampleItems(), genAt)
	if _, err := NewWriter(dir).WriteAll(d2, []string{"txt"}); err != nil {
		t.Fatalf("second WriteAll: %v", err)
	}
	data, _ := os.ReadFile(want[0])
	if !strings.Contains(string(data), "另一个标题") {
		t.Fatalf("rewrite should overwrite: %s", data)
	}
}

func TestWriterUnknownFormat(t *testing.T) {
	d := New("t", 3, nil, genAt)
	if _, err := NewWriter(t.TempDir()).WriteAll(d, []string{"pdf"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestWriterBadDir(t *testing.T) {
	// 目录位置被文件占住时报错而不是悄悄丢输出
	base := t.TempDir()
	occupied := filepath.Join(base, "out")
	if err := os.WriteFile(occupied, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	d := New("t", 3, nil, genAt)
	if _, err := NewWriter(occupied).WriteAll(d, []string{"txt"}); err == nil {
		t.Fatal("expected error when output dir is a file")
	}
}
