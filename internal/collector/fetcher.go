package collector

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/LJTian/MorningPost/internal/config"
)

// 所有源共用的请求参数
const (
	userAgent        = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	maxResponseBytes = 1 << 20 // 1MB
)

// NewsItem 贯穿流水线的统一结构：采集器产出原始字段，规整阶段清洗补全，
// 分类阶段填入 Category/Importance，之后不再修改
type NewsItem struct {
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
	Category    string    `json:"category"`
	Importance  int       `json:"importance"`

	// RawPublished 源站原始的时间文本，规整阶段再解析
	RawPublished string `json:"-"`
	// CategoryHint 源配置声明的分类，关键词全不命中时兜底用
	CategoryHint string `json:"-"`
}

// Fetcher 抽象每一个新闻源
type Fetcher interface {
	Name() string
	Fetch() ([]NewsItem, error)
}

// FetchError 单个源的采集失败。调用方记日志后跳过该源，不中断整轮运行
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NewFetcher 按源类型构建对应的采集器
func NewFetcher(src config.SourceConfig, sys config.SystemConfig, logger *zap.Logger) (Fetcher, error) {
	switch src.Kind {
	case config.KindRSS:
		return &RSSFetcher{src: src, timeout: sys.Timeout(), maxItems: sys.MaxItemsPerSource, logger: logger}, nil
	case config.KindHTML:
		return &WebFetcher{src: src, timeout: sys.Timeout(), maxItems: sys.MaxItemsPerSource, logger: logger}, nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", src.Kind)
	}
}
