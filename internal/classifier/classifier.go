package classifier

import (
	"sort"
	"strings"

	"github.com/cloudflare/ahocorasick"

	"github.com/LJTian/MorningPost/internal/collector"
	"github.com/LJTian/MorningPost/internal/config"
)

// 关闭 auto_importance 时所有条目的固定重要性
const fixedImportance = 3

// Engine 关键词分类与重要性评估。规则在构建时编译成 Aho-Corasick
// 自动机，Classify 本身是纯查表：同样的条目和规则必然得到同样的结果。
//
// 分类：统计标题+摘要里命中的各分类关键词个数（不区分大小写的子串匹配，
// 每个关键词只计一次），得分最高者胜出；平分先比声明的 priority（大者胜），
// 再按标签字节序兜底。全部为零分时用源配置的分类提示，否则落到默认分类。
//
// 重要性：胜出分类的 priority 定基础档（>=8 → 3，>=4 → 2，其余 → 1），
// 命中 critical_keywords 加 2，来源含权威媒体名加 1，最后压到 [1,5]。
type Engine struct {
	matcher *ahocorasick.Matcher
	// 模式下标 → 含有该关键词的分类；同一个关键词可能被多个分类声明
	kwCats [][]string
	rules  map[string]config.CategoryRule

	critical      *ahocorasick.Matcher
	authoritative []string

	defaultCategory string
	autoCategorize  bool
	autoImportance  bool
}

func New(cfg *config.Config) *Engine {
	e := &Engine{
		rules:           cfg.Categories,
		authoritative:   cfg.Importance.AuthoritativeSources,
		defaultCategory: cfg.System.DefaultCategory,
		autoCategorize:  cfg.System.AutoCategorize,
		autoImportance:  cfg.System.AutoImportance,
	}

	// 按标签排序遍历，保证自动机的模式顺序稳定
	labels := make([]string, 0, len(cfg.Categories))
	for label := range cfg.Categories {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var patterns []string
	index := make(map[string]int)
	for _, label := range labels {
		for _, kw := range cfg.Categories[label].Keywords {
			kw = normalizeKeyword(kw)
			if kw == "" {
				continue
			}
			idx, ok := index[kw]
			if !ok {
				idx = len(patterns)
				index[kw] = idx
				patterns = append(patterns, kw)
				e.kwCats = append(e.kwCats, nil)
			}
			e.kwCats[idx] = append(e.kwCats[idx], label)
		}
	}
	if len(patterns) > 0 {
		e.matcher = ahocorasick.NewStringMatcher(patterns)
	}

	var critical []string
	seen := make(map[string]struct{})
	for _, kw := range cfg.Importance.CriticalKeywords {
		kw = normalizeKeyword(kw)
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		critical = append(critical, kw)
	}
	if len(critical) > 0 {
		e.critical = ahocorasick.NewStringMatcher(critical)
	}

	return e
}

// Classify 返回条目的 (分类, 重要性)
func (e *Engine) Classify(it collector.NewsItem) (string, int) {
	category := e.categorize(it)
	return category, e.importance(it, category)
}

// Apply 返回填好 Category/Importance 的新切片，入参不被修改
func (e *Engine) Apply(items []collector.NewsItem) []collector.NewsItem {
	out := make([]collector.NewsItem, len(items))
	for i, it := range items {
		it.Category, it.Importance = e.Classify(it)
		out[i] = it
	}
	return out
}

func (e *Engine) categorize(it collector.NewsItem) string {
	if !e.autoCategorize {
		return e.defaultCategory
	}

	scores := make(map[string]int)
	if e.matcher != nil {
		text := normalizeText(it.Title + " " + it.Summary)
		for _, idx := range e.matcher.Match([]byte(text)) {
			for _, cat := range e.kwCats[idx] {
				scores[cat]++
			}
		}
	}

	if len(scores) == 0 {
		if it.CategoryHint != "" {
			return it.CategoryHint
		}
		return e.defaultCategory
	}

	var best string
	bestScore, bestPriority := -1, 0
	for cat, score := range scores {
		prio := e.rules[cat].Priority
		switch {
		case score > bestScore:
		case score == bestScore && prio > bestPriority:
		case score == bestScore && prio == bestPriority && cat < best:
		default:
			continue
		}
		best, bestScore, bestPriority = cat, score, prio
	}
	return best
}

func (e *Engine) importance(it collector.NewsItem, category string) int {
	if !e.autoImportance {
		return fixedImportance
	}

	level := baseLevel(e.rules[category].Priority)

	if e.critical != nil {
		text := normalizeText(it.Title + " " + it.Summary)
		if len(e.critical.Match([]byte(text))) > 0 {
			level += 2
		}
	}

	for _, name := range e.authoritative {
		if name != "" && strings.Contains(it.Source, name) {
			level++
			break
		}
	}

	if level < 1 {
		return 1
	}
	if level > 5 {
		return 5
	}
	return level
}

func baseLevel(priority int) int {
	switch {
	case priority >= 8:
		return 3
	case priority >= 4:
		return 2
	default:
		return 1
	}
}

func normalizeKeyword(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizeText(s string) string {
	return strings.ToLower(s)
}
