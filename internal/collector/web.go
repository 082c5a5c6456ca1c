package collector

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/LJTian/MorningPost/internal/config"
)

// WebFetcher 抓取 html 源，按该源配置的选择器抽取候选条目。
// container 圈定单条新闻的范围，title/summary/url/time 在其内部取值。
type WebFetcher struct {
	src      config.SourceConfig
	timeout  time.Duration
	maxItems int
	logger   *zap.Logger
}

func (f *WebFetcher) Name() string { return f.src.Name }

func (f *WebFetcher) Fetch() ([]NewsItem, error) {
	u, err := url.Parse(f.src.URL)
	if err != nil {
		return nil, &FetchError{Source: f.src.Name, Err: err}
	}
	if u.Hostname() == "" {
		return nil, &FetchError{Source: f.src.Name, Err: fmt.Errorf("invalid url %q", f.src.URL)}
	}

	c := colly.NewCollector(
		colly.AllowedDomains(u.Hostname()),
		colly.UserAgent(userAgent),
	)
	c.SetRequestTimeout(f.timeout)

	// 配置没写 name 时用站点域名
	sourceName := f.src.Name
	if sourceName == f.src.Key {
		sourceName = u.Hostname()
	}

	sel := f.src.Selectors
	items := make([]NewsItem, 0, 16)

	// 页面结构随时可能调整，这里按配置的选择器做尽力而为的解析
	c.OnHTML(sel.Container, func(e *colly.HTMLElement) {
		if f.maxItems > 0 && len(items) >= f.maxItems {
			return
		}

		title := strings.TrimSpace(e.ChildText(sel.Title))
		if title == "" {
			return
		}

		item := NewsItem{
			Title:        title,
			Source:       sourceName,
			CategoryHint: f.src.Category,
		}
		if sel.Summary != "" {
			item.Summary = strings.TrimSpace(e.ChildText(sel.Summary))
		}
		if sel.URL != "" {
			if href := e.ChildAttr(sel.URL, "href"); href != "" {
				item.URL = e.Request.AbsoluteURL(href)
			}
		}
		if sel.Time != "" {
			item.RawPublished = strings.TrimSpace(e.ChildText(sel.Time))
		}

		items = append(items, item)
	})

	if err := c.Visit(f.src.URL); err != nil {
		return nil, &FetchError{Source: f.src.Name, Err: err}
	}

	if f.src.Translate {
		translateTitles(f.logger, items)
	}
	return items, nil
}
