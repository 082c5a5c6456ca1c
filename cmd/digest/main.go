package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"go.uber.org/zap"

	"github.com/LJTian/MorningPost/internal/config"
	"github.com/LJTian/MorningPost/internal/logging"
	"github.com/LJTian/MorningPost/internal/pipeline"
)

// 单次生成早报的命令行入口：采集整理落盘一轮，再把早报打印到标准输出
func main() {
	configPath := flag.String("config", "", "配置文件路径，留空则尝试当前目录的 news_config.yaml")
	formats := flag.String("formats", "", "输出格式，逗号分隔（txt,json,html），留空用配置里的")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	if *formats != "" {
		cfg.Output.Formats = splitFormats(*formats)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer logger.Sync()

	p, err := pipeline.New(cfg, logger)
	if err != nil {
		logger.Fatal("init pipeline failed", zap.Error(err))
	}

	result, err := p.Run()
	if err != nil {
		logger.Fatal("digest run failed", zap.Error(err))
	}

	fmt.Println(result.Digest.RenderTXT())
	for _, f := range result.Files {
		logger.Info("digest written", zap.String("file", f))
	}
}

func splitFormats(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
