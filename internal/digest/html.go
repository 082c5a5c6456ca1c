package digest

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/LJTian/MorningPost/internal/collector"
)

//go:embed templates/digest.html
var digestTemplate string

var htmlTmpl = template.Must(template.New("digest").Funcs(template.FuncMap{
	"stars": func(n int) string {
		if n < 0 {
			n = 0
		}
		return strings.Repeat("★", n)
	},
}).Parse(digestTemplate))

type htmlData struct {
	Title       string
	Date        string
	GeneratedAt string
	Total       int
	Top         []collector.NewsItem
	Sections    []CategorySection
}

// RenderHTML 单文件页面，不依赖外部资源
func (d *Digest) RenderHTML() ([]byte, error) {
	data := htmlData{
		Title:       d.Title,
		Date:        d.GeneratedAt.Format("2006年01月02日"),
		GeneratedAt: d.GeneratedAt.Format("2006-01-02 15:04:05"),
		Total:       len(d.Items),
		Top:         d.TopNews(),
		Sections:    d.ByCategory(),
	}

	var buf bytes.Buffer
	if err := htmlTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}
