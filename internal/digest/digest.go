package digest

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/LJTian/MorningPost/internal/collector"
	"github.com/LJTian/MorningPost/internal/config"
)

// Digest 一次运行产出的早报。Items 已经过分类和过滤，保持流水线给出的顺序
type Digest struct {
	Title        string
	GeneratedAt  time.Time
	TopNewsCount int
	Items        []collector.NewsItem
}

func New(title string, topNewsCount int, items []collector.NewsItem, generatedAt time.Time) *Digest {
	return &Digest{
		Title:        title,
		GeneratedAt:  generatedAt,
		TopNewsCount: topNewsCount,
		Items:        items,
	}
}

// TopNews 头条：按重要性从高到低取前 TopNewsCount 条，重要性相同保持原顺序
func (d *Digest) TopNews() []collector.NewsItem {
	if d.TopNewsCount <= 0 || len(d.Items) == 0 {
		return nil
	}
	sorted := make([]collector.NewsItem, len(d.Items))
	copy(sorted, d.Items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Importance > sorted[j].Importance
	})
	if len(sorted) > d.TopNewsCount {
		sorted = sorted[:d.TopNewsCount]
	}
	return sorted
}

// CategorySection 一个分类下的全部条目
type CategorySection struct {
	Label string
	Items []collector.NewsItem
}

// ByCategory 按固定的分类展示顺序分组，分类内保持原顺序，空分类不出现
func (d *Digest) ByCategory() []CategorySection {
	grouped := make(map[string][]collector.NewsItem)
	for _, it := range d.Items {
		grouped[it.Category] = append(grouped[it.Category], it)
	}

	sections := make([]CategorySection, 0, len(grouped))
	for _, label := range config.CategoryLabels {
		if items, ok := grouped[label]; ok {
			sections = append(sections, CategorySection{Label: label, Items: items})
			delete(grouped, label)
		}
	}

	// 展示顺序之外的标签放到最后，正常流程不会走到这里
	if len(grouped) > 0 {
		rest := make([]string, 0, len(grouped))
		for label := range grouped {
			rest = append(rest, label)
		}
		sort.Strings(rest)
		for _, label := range rest {
			sections = append(sections, CategorySection{Label: label, Items: grouped[label]})
		}
	}
	return sections
}

// RenderTXT 纯文本早报
func (d *Digest) RenderTXT() string {
	var b strings.Builder
	fmt.Fprintf(&b, "📰 %s - %s\n", d.Title, d.GeneratedAt.Format("2006年01月02日"))
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	if len(d.Items) == 0 {
		b.WriteString("今日暂无新闻\n\n")
		b.WriteString(strings.Repeat("=", 50) + "\n")
		fmt.Fprintf(&b, "⏰ 生成时间：%s\n", d.GeneratedAt.Format("2006-01-02 15:04:05"))
		return b.String()
	}

	if top := d.TopNews(); len(top) > 0 {
		b.WriteString("🔥 头条新闻\n")
		b.WriteString(strings.Repeat("-", 20) + "\n")
		writeEntries(&b, top)
	}

	for _, section := range d.ByCategory() {
		fmt.Fprintf(&b, "📋 %s\n", section.Label)
		b.WriteString(strings.Repeat("-", 20) + "\n")
		writeEntries(&b, section.Items)
	}

	b.WriteString(strings.Repeat("=", 50) + "\n")
	fmt.Fprintf(&b, "📊 今日共收集 %d 条新闻\n", len(d.Items))
	fmt.Fprintf(&b, "⏰ 生成时间：%s\n", d.GeneratedAt.Format("2006-01-02 15:04:05"))
	return b.String()
}

func writeEntries(b *strings.Builder, items []collector.NewsItem) {
	for i, it := range items {
		fmt.Fprintf(b, "%d. %s\n", i+1, it.Title)
		if it.Summary != "" {
			fmt.Fprintf(b, "   %s\n", it.Summary)
		}
		fmt.Fprintf(b, "   来源：%s\n\n", it.Source)
	}
}

type jsonDocument struct {
	GeneratedAt string               `json:"generated_at"`
	TotalCount  int                  `json:"total_count"`
	Items       []collector.NewsItem `json:"items"`
}

// RenderJSON 机器可读格式，两空格缩进
func (d *Digest) RenderJSON() ([]byte, error) {
	doc := jsonDocument{
		GeneratedAt: d.GeneratedAt.Format(time.RFC3339),
		TotalCount:  len(d.Items),
		Items:       d.Items,
	}
	if doc.Items == nil {
		doc.Items = []collector.NewsItem{}
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render json: %w", err)
	}
	return append(raw, '\n'), nil
}
