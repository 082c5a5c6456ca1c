package processor

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"

	"github.com/LJTian/MorningPost/internal/collector"
)

// Drop 记录被丢弃的原始条目，调用方负责写日志，方便事后排查
type Drop struct {
	Source   string
	RawTitle string
	Reason   string
}

// Normalize 把采集到的原始条目规整成统一形态：去掉 HTML 标记、压缩空白、
// 补齐缺失字段。纯函数，不做任何 IO。清洗后标题为空的条目丢弃并记入 dropped；
// 发布时间缺失或解析失败时回退为 fetchTime。
func Normalize(items []collector.NewsItem, fetchTime time.Time) (out []collector.NewsItem, dropped []Drop) {
	out = make([]collector.NewsItem, 0, len(items))

	for _, it := range items {
		title := cleanText(it.Title)
		if title == "" {
			dropped = append(dropped, Drop{Source: it.Source, RawTitle: it.Title, Reason: "empty title"})
			continue
		}

		it.Title = title
		it.Summary = cleanText(it.Summary)
		it.Source = strings.TrimSpace(it.Source)

		if it.PublishedAt.IsZero() {
			it.PublishedAt = parseTime(it.RawPublished, fetchTime)
		}

		out = append(out, it)
	}
	return out, dropped
}

// cleanText 去 HTML 标记、解码实体、压缩空白，并保证输出是合法 UTF-8
func cleanText(s string) string {
	s = strings.ToValidUTF8(s, "")
	if strings.ContainsAny(s, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}
	return strings.Join(strings.Fields(s), " ")
}

func parseTime(raw string, fallback time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	ts, err := dateparse.ParseAny(raw)
	if err != nil {
		return fallback
	}
	return ts
}
