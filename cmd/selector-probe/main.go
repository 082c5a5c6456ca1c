package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"github.com/LJTian/MorningPost/internal/config"
)

// 选择器调试工具：按配置里某个 html 源的选择器跑一遍抽取，把命中的
// 条目打印成 JSON。页面靠 JS 渲染时加 -render 用无头浏览器取最终 DOM。
type probeItem struct {
	Title   string `json:"title"`
	Summary string `json:"summary,omitempty"`
	URL     string `json:"url,omitempty"`
	Time    string `json:"time,omitempty"`
}

func main() {
	configPath := flag.String("config", "", "配置文件路径，留空则尝试当前目录的 news_config.yaml")
	sourceKey := flag.String("source", "", "news_sources.html 下的源键名")
	render := flag.Bool("render", false, "用无头浏览器渲染后再抽取")
	timeout := flag.Duration("timeout", 20*time.Second, "抓取超时")
	max := flag.Int("max", 20, "最多打印多少条")
	flag.Parse()

	if *sourceKey == "" {
		log.Fatal("-source is required")
	}
	if *max <= 0 {
		*max = 20
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	src, ok := cfg.Sources.HTML[*sourceKey]
	if !ok {
		log.Fatalf("html source %q not found in config", *sourceKey)
	}
	sel := src.Selectors
	if sel.Container == "" || sel.Title == "" {
		log.Fatalf("source %q has no container/title selectors", *sourceKey)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var page string
	if *render {
		page, err = renderedHTML(ctx, src.URL)
	} else {
		page, err = rawHTML(ctx, src.URL)
	}
	if err != nil {
		log.Fatalf("fetch %s failed: %v", src.URL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		log.Fatalf("parse html failed: %v", err)
	}

	items := make([]probeItem, 0, *max)
	doc.Find(sel.Container).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		item := probeItem{Title: strings.TrimSpace(s.Find(sel.Title).First().Text())}
		if sel.Summary != "" {
			item.Summary = strings.TrimSpace(s.Find(sel.Summary).First().Text())
		}
		if sel.URL != "" {
			item.URL, _ = s.Find(sel.URL).First().Attr("href")
		}
		if sel.Time != "" {
			item.Time = strings.TrimSpace(s.Find(sel.Time).First().Text())
		}
		items = append(items, item)
		return len(items) < *max
	})

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(items); err != nil {
		log.Fatalf("encode items failed: %v", err)
	}
	fmt.Fprintf(os.Stderr, "matched %d containers\n", len(items))
}

func rawHTML(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func renderedHTML(ctx context.Context, url string) (string, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	return html, err
}
