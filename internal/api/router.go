package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/LJTian/MorningPost/internal/converter"
	"github.com/LJTian/MorningPost/internal/pipeline"
)

// 外部转换命令最长跑这么久
const convertTimeout = 60 * time.Second

// Runner 触发一轮早报流水线
type Runner interface {
	Run() (*pipeline.RunResult, error)
}

type Server struct {
	runner    Runner
	conv      *converter.Converter
	maxUpload int64
	logger    *zap.Logger

	mu     sync.Mutex
	latest *pipeline.RunResult
}

func NewServer(runner Runner, conv *converter.Converter, maxUploadMB int, logger *zap.Logger) *Server {
	return &Server{
		runner:    runner,
		conv:      conv,
		maxUpload: int64(maxUploadMB) << 20,
		logger:    logger,
	}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/digest/run", s.runDigest)
		v1.GET("/digest/latest", s.latestDigest)
	}

	r.GET("/convert", s.convertForm)
	r.POST("/convert", s.convertFile)
}

// SetLatest 记录最近一轮运行结果，供 /digest/latest 查询
func (s *Server) SetLatest(result *pipeline.RunResult) {
	s.mu.Lock()
	s.latest = result
	s.mu.Unlock()
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) runDigest(c *gin.Context) {
	result, err := s.runner.Run()
	if err != nil {
		s.logger.Error("digest run failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "digest run failed",
		})
		return
	}
	s.SetLatest(result)

	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    result,
	})
}

func (s *Server) latestDigest(c *gin.Context) {
	s.mu.Lock()
	latest := s.latest
	s.mu.Unlock()

	if latest == nil || latest.Digest == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "not_found",
			"message": "no digest generated yet",
		})
		return
	}

	d := latest.Digest
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data": gin.H{
			"generated_at": d.GeneratedAt.Format(time.RFC3339),
			"total_count":  len(d.Items),
			"items":        d.Items,
		},
	})
}

const convertFormHTML = `<!DOCTYPE html>
<html lang="zh-CN">
<head><meta charset="utf-8"><title>Word 转 PDF</title></head>
<body>
<h1>Word 转 PDF</h1>
<form action="/convert" method="post" enctype="multipart/form-data">
  <input type="file" name="file" accept=".doc,.docx" required>
  <button type="submit">转换</button>
</form>
</body>
</html>`

func (s *Server) convertForm(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(convertFormHTML))
}

func (s *Server) convertFile(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "bad_request",
			"message": "file field is required",
		})
		return
	}
	if !converter.IsSupported(file.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "bad_request",
			"message": "only .doc and .docx files are supported",
		})
		return
	}
	if file.Size > s.maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"code":    "too_large",
			"message": fmt.Sprintf("file exceeds %d MB limit", s.maxUpload>>20),
		})
		return
	}

	// uuid 前缀避免并发上传互相覆盖
	workDir := os.TempDir()
	inputPath := filepath.Join(workDir, uuid.NewString()+"_"+filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, inputPath); err != nil {
		s.logger.Error("save upload failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "failed to save upload",
		})
		return
	}
	defer os.Remove(inputPath)

	ctx, cancel := context.WithTimeout(c.Request.Context(), convertTimeout)
	defer cancel()

	pdfPath, err := s.conv.Convert(ctx, inputPath, workDir)
	if err != nil {
		s.logger.Error("convert failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "conversion failed",
		})
		return
	}
	defer os.Remove(pdfPath)

	download := strings.TrimSuffix(filepath.Base(file.Filename), filepath.Ext(file.Filename)) + ".pdf"
	c.FileAttachment(pdfPath, download)
}
