package collector

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/LJTian/MorningPost/internal/config"
)

// RSSFetcher 拉取单个 RSS/Atom 源
type RSSFetcher struct {
	src      config.SourceConfig
	timeout  time.Duration
	maxItems int
	logger   *zap.Logger
}

func (f *RSSFetcher) Name() string { return f.src.Name }

func (f *RSSFetcher) Fetch() ([]NewsItem, error) {
	req, err := http.NewRequest(http.MethodGet, f.src.URL, nil)
	if err != nil {
		return nil, &FetchError{Source: f.src.Name, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml, */*")

	client := &http.Client{Timeout: f.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{Source: f.src.Name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Source: f.src.Name, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	feed, err := gofeed.NewParser().Parse(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &FetchError{Source: f.src.Name, Err: err}
	}

	// 配置没写 name 时用源站自述的标题
	sourceName := f.src.Name
	if sourceName == f.src.Key && feed.Title != "" {
		sourceName = feed.Title
	}

	items := make([]NewsItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if f.maxItems > 0 && len(items) >= f.maxItems {
			break
		}
		if entry == nil || entry.Title == "" {
			continue
		}

		item := NewsItem{
			Title:        entry.Title,
			Summary:      entry.Description,
			Source:       sourceName,
			URL:          entry.Link,
			RawPublished: entry.Published,
			CategoryHint: f.src.Category,
		}
		// 部分源只在 GUID 里放链接
		if item.URL == "" && entry.GUID != "" {
			item.URL = entry.GUID
		}
		if entry.PublishedParsed != nil {
			item.PublishedAt = *entry.PublishedParsed
		}
		items = append(items, item)
	}

	if f.src.Translate {
		translateTitles(f.logger, items)
	}
	return items, nil
}
