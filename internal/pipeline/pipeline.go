package pipeline

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/LJTian/MorningPost/internal/classifier"
	"github.com/LJTian/MorningPost/internal/collector"
	"github.com/LJTian/MorningPost/internal/config"
	"github.com/LJTian/MorningPost/internal/digest"
	"github.com/LJTian/MorningPost/internal/filter"
	"github.com/LJTian/MorningPost/internal/processor"
)

// RunResult 一轮运行的统计与产物
type RunResult struct {
	StartedAt     time.Time `json:"started_at"`
	Fetched       int       `json:"fetched"`
	Dropped       int       `json:"dropped"`
	Removed       int       `json:"removed"`
	Kept          int       `json:"kept"`
	FailedSources []string  `json:"failed_sources"`
	Files         []string  `json:"files"`

	Digest *digest.Digest `json:"-"`
}

// Pipeline 完整的一轮早报流程：采集 → 规整 → 分类 → 过滤 → 渲染落盘。
// 采集按源并发，其余阶段串行。
type Pipeline struct {
	cfg      *config.Config
	fetchers []collector.Fetcher
	engine   *classifier.Engine
	filter   *filter.Filter
	writer   *digest.Writer
	logger   *zap.Logger

	now func() time.Time
}

func New(cfg *config.Config, logger *zap.Logger) (*Pipeline, error) {
	sources := cfg.EnabledSources()
	if len(sources) == 0 {
		return nil, fmt.Errorf("pipeline: no enabled sources")
	}

	fetchers := make([]collector.Fetcher, 0, len(sources))
	for _, src := range sources {
		f, err := collector.NewFetcher(src, cfg.System, logger)
		if err != nil {
			return nil, fmt.Errorf("pipeline: source %s: %w", src.Key, err)
		}
		fetchers = append(fetchers, f)
	}

	return &Pipeline{
		cfg:      cfg,
		fetchers: fetchers,
		engine:   classifier.New(cfg),
		filter:   filter.New(cfg.Filters, cfg.System.MaxNewsCount),
		writer:   digest.NewWriter(cfg.Output.Directory),
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Run 执行一轮。单个源失败只记日志并跳过，不影响其它源；
// 渲染或写盘失败则整轮失败。
func (p *Pipeline) Run() (*RunResult, error) {
	startedAt := p.now()
	p.logger.Info("digest run started", zap.Int("sources", len(p.fetchers)))

	// 并发采集，结果按源的固定顺序落位，保证每轮产出顺序一致
	results := make([][]collector.NewsItem, len(p.fetchers))
	errs := make([]error, len(p.fetchers))

	var wg sync.WaitGroup
	for i, f := range p.fetchers {
		wg.Add(1)
		go func(i int, f collector.Fetcher) {
			defer wg.Done()
			items, err := f.Fetch()
			if err != nil {
				errs[i] = err
				return
			}
			p.logger.Info("source fetched", zap.String("source", f.Name()), zap.Int("items", len(items)))
			results[i] = items
		}(i, f)
	}
	wg.Wait()

	var flat []collector.NewsItem
	var failedSources []string
	for i := range p.fetchers {
		if errs[i] != nil {
			p.logger.Warn("source failed, skipping", zap.String("source", p.fetchers[i].Name()), zap.Error(errs[i]))
			failedSources = append(failedSources, p.fetchers[i].Name())
			continue
		}
		flat = append(flat, results[i]...)
	}

	normalized, drops := processor.Normalize(flat, startedAt)
	for _, d := range drops {
		p.logger.Debug("item dropped", zap.String("source", d.Source), zap.String("title", d.RawTitle), zap.String("reason", d.Reason))
	}

	classified := p.engine.Apply(normalized)

	kept, removed := p.filter.Apply(classified)
	for _, r := range removed {
		p.logger.Debug("item filtered", zap.String("source", r.Source), zap.String("title", r.Title), zap.String("reason", r.Reason))
	}

	doc := digest.New(p.cfg.Output.Title, p.cfg.Output.TopNewsCount, kept, startedAt)
	files, err := p.writer.WriteAll(doc, p.cfg.Output.Formats)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	result := &RunResult{
		StartedAt:     startedAt,
		Fetched:       len(flat),
		Dropped:       len(drops),
		Removed:       len(removed),
		Kept:          len(kept),
		FailedSources: failedSources,
		Files:         files,
		Digest:        doc,
	}
	p.logger.Info("digest run finished",
		zap.Int("fetched", result.Fetched),
		zap.Int("kept", result.Kept),
		zap.Int("failed_sources", len(failedSources)),
		zap.Strings("files", files))
	return result, nil
}
