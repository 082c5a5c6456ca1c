package filter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/LJTian/MorningPost/internal/collector"
	"github.com/LJTian/MorningPost/internal/config"
)

// Removal 一条被过滤掉的新闻和过滤原因，供日志排查
type Removal struct {
	Title  string
	Source string
	Reason string
}

// Filter 黑名单、长度与重复过滤。Apply 保持输入顺序，
// 输出条数不会超过输入条数。
type Filter struct {
	cfg      config.FilterConfig
	maxCount int
}

// New maxCount 为过滤去重后保留的条数上限，0 表示不限制
func New(cfg config.FilterConfig, maxCount int) *Filter {
	return &Filter{cfg: cfg, maxCount: maxCount}
}

// Apply 依次做标题/来源黑名单、标题长度、摘要长度、标题去重，
// 最后截断到条数上限。返回保留的条目和被去掉的条目。
//
// 标题重复时保留重要性更高的一条，平手保留先出现的；
// 无论哪条胜出，位置都沿用首次出现处。
func (f *Filter) Apply(items []collector.NewsItem) ([]collector.NewsItem, []Removal) {
	kept := make([]collector.NewsItem, 0, len(items))
	var removed []Removal
	index := make(map[string]int) // 规整后的标题 → kept 中的下标

	for _, it := range items {
		if reason := f.reject(it); reason != "" {
			removed = append(removed, Removal{Title: it.Title, Source: it.Source, Reason: reason})
			continue
		}

		key := normalizeTitle(it.Title)
		if pos, ok := index[key]; ok {
			if it.Importance > kept[pos].Importance {
				removed = append(removed, Removal{Title: kept[pos].Title, Source: kept[pos].Source, Reason: "duplicate title"})
				kept[pos] = it
			} else {
				removed = append(removed, Removal{Title: it.Title, Source: it.Source, Reason: "duplicate title"})
			}
			continue
		}
		index[key] = len(kept)
		kept = append(kept, it)
	}

	if f.maxCount > 0 && len(kept) > f.maxCount {
		for _, it := range kept[f.maxCount:] {
			removed = append(removed, Removal{Title: it.Title, Source: it.Source, Reason: "over news count limit"})
		}
		kept = kept[:f.maxCount]
	}

	return kept, removed
}

func (f *Filter) reject(it collector.NewsItem) string {
	for _, word := range f.cfg.TitleBlacklist {
		if word != "" && strings.Contains(it.Title, word) {
			return fmt.Sprintf("title contains %q", word)
		}
	}
	for _, word := range f.cfg.SourceBlacklist {
		if word != "" && strings.Contains(it.Source, word) {
			return fmt.Sprintf("source contains %q", word)
		}
	}

	titleLen := utf8.RuneCountInString(it.Title)
	if f.cfg.MinTitleLength > 0 && titleLen < f.cfg.MinTitleLength {
		return fmt.Sprintf("title too short (%d runes)", titleLen)
	}
	if f.cfg.MaxTitleLength > 0 && titleLen > f.cfg.MaxTitleLength {
		return fmt.Sprintf("title too long (%d runes)", titleLen)
	}

	summaryLen := utf8.RuneCountInString(it.Summary)
	if f.cfg.MinSummaryLength > 0 && summaryLen < f.cfg.MinSummaryLength {
		return fmt.Sprintf("summary too short (%d runes)", summaryLen)
	}
	if f.cfg.MaxSummaryLength > 0 && summaryLen > f.cfg.MaxSummaryLength {
		return fmt.Sprintf("summary too long (%d runes)", summaryLen)
	}

	return ""
}

// normalizeTitle 去重用的键：小写并把连续空白压成单个空格
func normalizeTitle(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
