package main

import (
	"flag"
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/LJTian/MorningPost/internal/api"
	"github.com/LJTian/MorningPost/internal/config"
	"github.com/LJTian/MorningPost/internal/converter"
	"github.com/LJTian/MorningPost/internal/logging"
	"github.com/LJTian/MorningPost/internal/pipeline"
	"github.com/LJTian/MorningPost/internal/scheduler"
)

// 常驻服务入口：定时生成早报，同时提供查询和手动触发的 HTTP 接口
func main() {
	configPath := flag.String("config", "", "配置文件路径，留空则尝试当前目录的 news_config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
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

	conv := converter.New(cfg.Converter.Command)
	server := api.NewServer(p, conv, cfg.Converter.MaxUploadMB, logger)

	// 定时任务和手动触发共用一条流水线，最近一轮结果都记到 latest
	job := func() {
		result, err := p.Run()
		if err != nil {
			logger.Error("scheduled digest run failed", zap.Error(err))
			return
		}
		server.SetLatest(result)
	}

	s, err := scheduler.New(cfg.System.CronSpec(), job, logger)
	if err != nil {
		logger.Fatal("init scheduler failed", zap.Error(err))
	}
	s.Start()

	r := gin.Default()
	server.RegisterRoutes(r)

	logger.Info("starting api server", zap.String("addr", cfg.Server.Addr))
	if err := r.Run(cfg.Server.Addr); err != nil {
		logger.Fatal("server exit", zap.Error(err))
	}
}
