package converter

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Converter 调用外部 LibreOffice 命令把 Word 文档转成 PDF
type Converter struct {
	command string
}

func New(command string) *Converter {
	if command == "" {
		command = "soffice"
	}
	return &Converter{command: command}
}

// IsSupported 只接收 Word 文档
func IsSupported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".doc", ".docx":
		return true
	}
	return false
}

// Convert 转换 inputPath，产物写进 outDir，返回生成的 PDF 路径。
// LibreOffice 自己决定输出文件名：输入文件名换成 .pdf 后缀。
func (c *Converter) Convert(ctx context.Context, inputPath, outDir string) (string, error) {
	cmd := exec.CommandContext(ctx, c.command,
		"--headless",
		"--convert-to", "pdf",
		"--outdir", outDir,
		inputPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("convert %s: %w: %s", filepath.Base(inputPath), err, strings.TrimSpace(string(out)))
	}

	base := filepath.Base(inputPath)
	pdf := filepath.Join(outDir, strings.TrimSuffix(base, filepath.Ext(base))+".pdf")
	if _, err := os.Stat(pdf); err != nil {
		return "", fmt.Errorf("convert %s: output missing: %w", base, err)
	}
	return pdf, nil
}
