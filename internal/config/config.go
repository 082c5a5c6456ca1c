package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 新闻源类型
const (
	KindRSS  = "rss"
	KindHTML = "html"
)

// CategoryLabels 固定的十个分类标签，按早报里的展示顺序排列。
// 配置中出现集合之外的标签视为配置错误。
var CategoryLabels = []string{"政治", "经济", "社会", "科技", "文化", "体育", "国际", "健康", "教育", "环境"}

type Config struct {
	System     SystemConfig            `mapstructure:"system"`
	Sources    SourcesConfig           `mapstructure:"news_sources"`
	Categories map[string]CategoryRule `mapstructure:"categories"`
	Importance ImportanceConfig        `mapstructure:"importance"`
	Filters    FilterConfig            `mapstructure:"filters"`
	Output     OutputConfig            `mapstructure:"output"`
	Logging    LoggingConfig           `mapstructure:"logging"`
	Server     ServerConfig            `mapstructure:"server"`
	Converter  ConverterConfig         `mapstructure:"converter"`
}

type SystemConfig struct {
	// FetchInterval 服务模式下两轮采集之间的间隔（秒）
	FetchInterval     int    `mapstructure:"fetch_interval"`
	RequestTimeout    int    `mapstructure:"request_timeout"`
	MaxItemsPerSource int    `mapstructure:"max_items_per_source"`
	// MaxNewsCount 过滤去重后保留的条数上限，0 表示不限制
	MaxNewsCount    int    `mapstructure:"max_news_count"`
	AutoCategorize  bool   `mapstructure:"auto_categorize"`
	AutoImportance  bool   `mapstructure:"auto_importance"`
	DefaultCategory string `mapstructure:"default_category"`
}

// Timeout 单次 HTTP 请求的超时时间
func (s SystemConfig) Timeout() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// CronSpec 服务模式下采集任务的 cron 表达式
func (s SystemConfig) CronSpec() string {
	return fmt.Sprintf("@every %ds", s.FetchInterval)
}

type SourcesConfig struct {
	RSS  map[string]SourceConfig `mapstructure:"rss"`
	HTML map[string]SourceConfig `mapstructure:"html"`
}

type SourceConfig struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
	// Enabled 缺省视为 true，与旧配置保持一致
	Enabled  *bool  `mapstructure:"enabled"`
	Category string `mapstructure:"category"`
	// Translate 为 true 时采集后把标题翻译成中文（已是中文的不动）
	Translate bool           `mapstructure:"translate"`
	Selectors SelectorConfig `mapstructure:"selectors"`

	// 以下字段由 EnabledSources 填充，不从配置读取
	Key  string `mapstructure:"-"`
	Kind string `mapstructure:"-"`
}

func (s SourceConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// SelectorConfig html 源的条目抽取规则，container 圈定单条新闻的范围，
// 其余选择器都在 container 内部取值
type SelectorConfig struct {
	Container string `mapstructure:"container"`
	Title     string `mapstructure:"title"`
	Summary   string `mapstructure:"summary"`
	URL       string `mapstructure:"url"`
	Time      string `mapstructure:"time"`
}

type CategoryRule struct {
	Keywords []string `mapstructure:"keywords"`
	Priority int      `mapstructure:"priority"`
}

type ImportanceConfig struct {
	CriticalKeywords     []string `mapstructure:"critical_keywords"`
	AuthoritativeSources []string `mapstructure:"authoritative_sources"`
}

type FilterConfig struct {
	TitleBlacklist  []string `mapstructure:"title_blacklist"`
	SourceBlacklist []string `mapstructure:"source_blacklist"`
	// 标题长度按 rune 计
	MinTitleLength int `mapstructure:"min_title_length"`
	MaxTitleLength int `mapstructure:"max_title_length"`
	// 摘要长度限制，0 表示不启用
	MinSummaryLength int `mapstructure:"min_summary_length"`
	MaxSummaryLength int `mapstructure:"max_summary_length"`
}

type OutputConfig struct {
	Directory    string   `mapstructure:"directory"`
	Formats      []string `mapstructure:"formats"`
	Title        string   `mapstructure:"title"`
	TopNewsCount int      `mapstructure:"top_news_count"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	// File 额外的日志输出文件，留空则只写到 stdout
	File string `mapstructure:"file"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type ConverterConfig struct {
	Command     string `mapstructure:"command"`
	MaxUploadMB int    `mapstructure:"max_upload_mb"`
}

// Load 读取配置。path 非空时文件必须存在；path 为空时尝试当前目录下的
// news_config.yaml，找不到就退回内置默认值。环境变量（NEWS_ 前缀，点号换
// 下划线）优先于文件内容，.env 文件存在时先行载入。
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("NEWS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		v.SetConfigName("news_config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if len(cfg.Categories) == 0 {
		cfg.Categories = DefaultCategories()
	}
	if len(cfg.Importance.CriticalKeywords) == 0 && len(cfg.Importance.AuthoritativeSources) == 0 {
		cfg.Importance = defaultImportance()
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("system.fetch_interval", 3600)
	v.SetDefault("system.request_timeout", 10)
	v.SetDefault("system.max_items_per_source", 10)
	v.SetDefault("system.max_news_count", 50)
	v.SetDefault("system.auto_categorize", true)
	v.SetDefault("system.auto_importance", true)
	v.SetDefault("system.default_category", "社会")

	v.SetDefault("filters.min_title_length", 5)
	v.SetDefault("filters.max_title_length", 100)
	v.SetDefault("filters.min_summary_length", 0)
	v.SetDefault("filters.max_summary_length", 0)

	v.SetDefault("output.directory", ".")
	v.SetDefault("output.formats", []string{"txt", "json", "html"})
	v.SetDefault("output.title", "今日新闻早报")
	v.SetDefault("output.top_news_count", 3)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")

	v.SetDefault("server.addr", ":8080")

	v.SetDefault("converter.command", "soffice")
	v.SetDefault("converter.max_upload_mb", 16)
}

// DefaultCategories 内置的分类规则，优先级沿用旧版分类器的匹配顺序
func DefaultCategories() map[string]CategoryRule {
	return map[string]CategoryRule{
		"政治": {Keywords: []string{"国务院", "政治局", "中央", "政府", "政策", "法规", "会议", "领导人"}, Priority: 10},
		"经济": {Keywords: []string{"经济", "金融", "股市", "银行", "央行", "GDP", "投资", "贸易", "出口", "进口", "企业"}, Priority: 9},
		"科技": {Keywords: []string{"科技", "技术", "互联网", "AI", "人工智能", "5G", "芯片", "创新", "数字化"}, Priority: 8},
		"教育": {Keywords: []string{"教育", "学校", "学生", "教师", "考试", "招生", "大学", "培训"}, Priority: 7},
		"体育": {Keywords: []string{"体育", "足球", "篮球", "奥运会", "比赛", "运动员", "冠军", "赛事"}, Priority: 6},
		"健康": {Keywords: []string{"健康", "医疗", "医院", "疾病", "疫苗", "药品", "治疗", "医生"}, Priority: 5},
		"环境": {Keywords: []string{"环境", "环保", "污染", "气候", "生态", "绿色", "可持续发展"}, Priority: 4},
		"文化": {Keywords: []string{"文化", "艺术", "电影", "音乐", "文学", "历史", "传统", "博物馆"}, Priority: 3},
		"国际": {Keywords: []string{"国际", "外交", "美国", "日本", "欧洲", "联合国", "全球", "世界"}, Priority: 2},
		"社会": {Keywords: []string{"社会", "民生", "社区", "公益", "救援"}, Priority: 1},
	}
}

func defaultImportance() ImportanceConfig {
	return ImportanceConfig{
		CriticalKeywords:     []string{"紧急", "重大", "突发", "首次", "突破"},
		AuthoritativeSources: []string{"新华社", "人民日报", "央视", "中央", "国务院"},
	}
}

// EnabledSources 返回启用的新闻源：先 rss 后 html，各自按配置键名排序，
// 保证每轮运行的源顺序稳定
func (c *Config) EnabledSources() []SourceConfig {
	out := make([]SourceConfig, 0, len(c.Sources.RSS)+len(c.Sources.HTML))
	out = append(out, sortedSources(c.Sources.RSS, KindRSS)...)
	out = append(out, sortedSources(c.Sources.HTML, KindHTML)...)
	return out
}

func sortedSources(m map[string]SourceConfig, kind string) []SourceConfig {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]SourceConfig, 0, len(keys))
	for _, k := range keys {
		src := m[k]
		if !src.IsEnabled() {
			continue
		}
		src.Key = k
		src.Kind = kind
		if src.Name == "" {
			src.Name = k
		}
		out = append(out, src)
	}
	return out
}

func (c *Config) validate() error {
	known := make(map[string]struct{}, len(CategoryLabels))
	for _, label := range CategoryLabels {
		known[label] = struct{}{}
	}

	for label := range c.Categories {
		if _, ok := known[label]; !ok {
			return fmt.Errorf("unknown category %q", label)
		}
	}
	if _, ok := known[c.System.DefaultCategory]; !ok {
		return fmt.Errorf("unknown default category %q", c.System.DefaultCategory)
	}

	if c.System.FetchInterval <= 0 {
		return fmt.Errorf("fetch_interval must be positive, got %d", c.System.FetchInterval)
	}
	if c.System.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %d", c.System.RequestTimeout)
	}

	f := c.Filters
	if f.MaxTitleLength > 0 && f.MinTitleLength > f.MaxTitleLength {
		return fmt.Errorf("min_title_length %d > max_title_length %d", f.MinTitleLength, f.MaxTitleLength)
	}
	if f.MaxSummaryLength > 0 && f.MinSummaryLength > f.MaxSummaryLength {
		return fmt.Errorf("min_summary_length %d > max_summary_length %d", f.MinSummaryLength, f.MaxSummaryLength)
	}

	for _, format := range c.Output.Formats {
		switch format {
		case "txt", "json", "html":
		default:
			return fmt.Errorf("unknown output format %q", format)
		}
	}

	for _, src := range c.EnabledSources() {
		if src.URL == "" {
			return fmt.Errorf("source %s: url is required", src.Key)
		}
		if src.Category != "" {
			if _, ok := known[src.Category]; !ok {
				return fmt.Errorf("source %s: unknown category %q", src.Key, src.Category)
			}
		}
		if src.Kind == KindHTML && (src.Selectors.Container == "" || src.Selectors.Title == "") {
			return fmt.Errorf("source %s: html source needs container and title selectors", src.Key)
		}
	}

	if c.Converter.MaxUploadMB <= 0 {
		return fmt.Errorf("max_upload_mb must be positive, got %d", c.Converter.MaxUploadMB)
	}

	return nil
}
